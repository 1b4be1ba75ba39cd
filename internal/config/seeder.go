package config

import (
	"log"

	"loancore/internal/adapters/persistence/models"
	"loancore/internal/core/domain"
	"loancore/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedDemoCustomers(); err != nil {
		log.Printf("⚠️ Customer seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@loancore.local",
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedDemoCustomers seeds a few customers so the API is usable out of the
// box in development
func (s *Seeder) seedDemoCustomers() error {
	var count int64
	s.db.Model(&models.Customer{}).Count(&count)
	if count > 0 {
		return nil // Customers already exist
	}

	customers := []models.Customer{
		{Name: "John", Surname: "Doe", CreditLimit: decimal.NewFromInt(10000), UsedCreditLimit: decimal.Zero},
		{Name: "Jane", Surname: "Smith", CreditLimit: decimal.NewFromInt(25000), UsedCreditLimit: decimal.Zero},
		{Name: "Bob", Surname: "Brown", CreditLimit: decimal.NewFromInt(5000), UsedCreditLimit: decimal.Zero},
	}

	if err := s.db.Create(&customers).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d demo customers", len(customers))
	return nil
}
