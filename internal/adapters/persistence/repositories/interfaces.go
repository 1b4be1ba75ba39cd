package repositories

import (
	"context"
	"time"

	"loancore/internal/adapters/persistence/models"
)

// CustomerRepository defines customer repository interface
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	Update(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error)
}

// LoanRepository defines loan repository interface. CreateWithInstallments
// and SaveAllocation must apply all their writes in a single transaction.
type LoanRepository interface {
	CreateWithInstallments(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	GetByCustomerID(ctx context.Context, customerID uint) ([]*models.Loan, error)
	List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error)
	SaveAllocation(ctx context.Context, loan *models.Loan, installments []*models.LoanInstallment, customer *models.Customer) error
}

// LoanInstallmentRepository defines installment repository interface
type LoanInstallmentRepository interface {
	GetByLoanID(ctx context.Context, loanID uint) ([]*models.LoanInstallment, error)
	GetOverdue(ctx context.Context, asOf time.Time) ([]*models.LoanInstallment, error)
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByCustomerID(ctx context.Context, customerID uint) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}
