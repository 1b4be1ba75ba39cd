package repositories

import (
	"context"
	"time"

	"loancore/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormLoanRepository handles loan data access
type GormLoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// CreateWithInstallments creates a loan together with its installment
// schedule. The connection skips gorm's default transaction, so the
// multi-row insert is wrapped explicitly: either the loan and every
// installment land, or nothing does.
func (r *GormLoanRepository) CreateWithInstallments(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(loan).Error
	})
}

// GetByID gets a loan by ID with its customer and installments,
// installments ordered by due date
func (r *GormLoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC")
		}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetByCustomerID gets loans by customer ID, newest first
func (r *GormLoanRepository) GetByCustomerID(ctx context.Context, customerID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC")
		}).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}

// List lists all loans with pagination
func (r *GormLoanRepository) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	r.db.WithContext(ctx).Model(&models.Loan{}).Count(&total)

	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// SaveAllocation persists the outcome of a payment allocation: the paid
// installments, the loan status, and (when the loan closed) the customer's
// released credit. All writes run in one transaction.
func (r *GormLoanRepository) SaveAllocation(ctx context.Context, loan *models.Loan, installments []*models.LoanInstallment, customer *models.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, installment := range installments {
			if err := tx.Save(installment).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Loan{}).Where("id = ?", loan.ID).
			Update("is_paid", loan.IsPaid).Error; err != nil {
			return err
		}
		if customer != nil {
			if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
				Update("used_credit_limit", customer.UsedCreditLimit).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormLoanInstallmentRepository handles installment data access
type GormLoanInstallmentRepository struct {
	db *gorm.DB
}

// NewLoanInstallmentRepository creates a new installment repository
func NewLoanInstallmentRepository(db *gorm.DB) *GormLoanInstallmentRepository {
	return &GormLoanInstallmentRepository{db: db}
}

// GetByLoanID gets installments by loan ID ordered by due date
func (r *GormLoanInstallmentRepository) GetByLoanID(ctx context.Context, loanID uint) ([]*models.LoanInstallment, error) {
	var installments []*models.LoanInstallment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}

// GetOverdue gets unpaid installments whose due date has passed
func (r *GormLoanInstallmentRepository) GetOverdue(ctx context.Context, asOf time.Time) ([]*models.LoanInstallment, error) {
	var installments []*models.LoanInstallment
	err := r.db.WithContext(ctx).
		Where("is_paid = ? AND due_date < ?", false, asOf).
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}
