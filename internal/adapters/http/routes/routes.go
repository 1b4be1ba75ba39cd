package routes

import (
	"loancore/internal/adapters/cache"
	"loancore/internal/adapters/http/handlers"
	"loancore/internal/adapters/http/middleware"
	"loancore/internal/adapters/persistence/repositories"
	"loancore/internal/config"
	"loancore/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cacheStore cache.Store, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	installmentRepo := repositories.NewLoanInstallmentRepository(db)

	// Initialize services
	creditLedger := services.NewCreditLedger()
	authService := services.NewAuthService(userRepo, refreshTokenRepo, customerRepo, cfg)
	customerService := services.NewCustomerService(customerRepo)
	loanService := services.NewLoanService(loanRepo, customerRepo, installmentRepo, creditLedger, cacheStore)
	paymentService := services.NewPaymentService(loanRepo, creditLedger, cacheStore)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	customerHandler := handlers.NewCustomerHandler(customerService)
	loanHandler := handlers.NewLoanHandler(loanService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, loanService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Customer routes
	customerRoutes := apiV1.Group("/customers")
	customerRoutes.Use(middleware.AuthMiddleware(cfg))
	setupCustomerRoutes(customerRoutes, customerHandler, loanHandler)

	// Loan routes
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	setupLoanRoutes(loanRoutes, loanHandler, paymentHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited harder than the rest of the API)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupCustomerRoutes configures customer routes
func setupCustomerRoutes(router fiber.Router, customerHandler *handlers.CustomerHandler, loanHandler *handlers.LoanHandler) {
	// Admin only: create and browse customers
	router.Post("/", middleware.AdminOnly(), customerHandler.Create)
	router.Get("/", middleware.AdminOnly(), customerHandler.List)

	// Customers may read their own record; admins may read anyone's
	router.Get("/:id", middleware.OwnCustomerOnly("id"), customerHandler.GetByID)
	router.Get("/:customerId/loans", middleware.OwnCustomerOnly("customerId"), loanHandler.ListByCustomer)
}

// setupLoanRoutes configures loan and payment routes
func setupLoanRoutes(router fiber.Router, loanHandler *handlers.LoanHandler, paymentHandler *handlers.PaymentHandler) {
	// Admin only: browse the full book (must be registered before /:id routes)
	router.Get("/all", middleware.AdminOnly(), loanHandler.ListAll)

	// Authenticated users; handlers enforce loan ownership for CUSTOMER role
	router.Post("/", loanHandler.Create)
	router.Get("/:id/installments", loanHandler.ListInstallments)
	router.Post("/:id/pay", paymentHandler.Pay)
}
