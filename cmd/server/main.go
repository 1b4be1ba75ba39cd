package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"loancore/internal/adapters/cache"
	"loancore/internal/adapters/http/middleware"
	"loancore/internal/adapters/http/routes"
	"loancore/internal/adapters/persistence/models"
	"loancore/internal/adapters/persistence/repositories"
	"loancore/internal/config"
	"loancore/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "loancore/docs" // Swagger docs
)

// @title LoanCore API
// @version 1.0
// @description Loan servicing API: credit limits, installment schedules and payment allocation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@loancore.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed admin user and demo customers
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Cache store: redis when configured, in-memory otherwise
	cacheStore := setupCache(cfg)

	// Start overdue-installment reminder job (08:30 daily)
	reminderService := services.NewReminderService(repositories.NewLoanInstallmentRepository(db))
	if err := reminderService.Start(); err != nil {
		log.Fatalf("❌ Failed to start reminder service: %v", err)
	}
	defer reminderService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LoanCore API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, cache and cfg for dependency injection)
	routes.Setup(app, db, cacheStore, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// setupCache picks the cache backend from config
func setupCache(cfg *config.Config) cache.Store {
	if cfg.Redis.Addr == "" {
		log.Println("✅ Using in-memory cache")
		return cache.NewMemoryStore()
	}

	store := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := store.Ping(context.Background()); err != nil {
		log.Printf("⚠️ Warning: redis unreachable (%v), falling back to in-memory cache", err)
		return cache.NewMemoryStore()
	}

	log.Printf("✅ Redis connected [%s]", cfg.Redis.Addr)
	return store
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
