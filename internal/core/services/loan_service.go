package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"loancore/internal/adapters/cache"
	"loancore/internal/adapters/persistence/models"
	"loancore/internal/adapters/persistence/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Loan service errors
var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrLoanNotFound         = errors.New("no loans found")
	ErrInstallmentsNotFound = errors.New("no installments found for loan")
	ErrInvalidLoanAmount    = errors.New("loan amount must be positive")
	ErrInvalidInterestRate  = errors.New("interest rate must be between 0.1 and 0.5")
)

// Accepted interest-rate range
var (
	minInterestRate = decimal.NewFromFloat(0.1)
	maxInterestRate = decimal.NewFromFloat(0.5)
)

const loanCacheTTL = 5 * time.Minute

// customerLoansKey is the cache key for a customer's loan listing. Both
// LoanService and PaymentService bust it on writes.
func customerLoansKey(customerID uint) string {
	return fmt.Sprintf("loans:customer:%d", customerID)
}

// LoanService handles loan origination and listing
type LoanService struct {
	loanRepo        repositories.LoanRepository
	customerRepo    repositories.CustomerRepository
	installmentRepo repositories.LoanInstallmentRepository
	creditLedger    *CreditLedger
	cache           cache.Store
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	customerRepo repositories.CustomerRepository,
	installmentRepo repositories.LoanInstallmentRepository,
	creditLedger *CreditLedger,
	cacheStore cache.Store,
) *LoanService {
	return &LoanService{
		loanRepo:        loanRepo,
		customerRepo:    customerRepo,
		installmentRepo: installmentRepo,
		creditLedger:    creditLedger,
		cache:           cacheStore,
	}
}

// CreateLoanInput represents loan origination input
type CreateLoanInput struct {
	CustomerID   uint            `json:"customer_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"required"`
	Installments int             `json:"installments" validate:"required"`
}

// CreateLoan originates a loan: the requested amount plus interest becomes
// the principal, the principal is checked against the customer's credit
// headroom, and an equal-amount monthly schedule is attached. Loan and
// installments are persisted as one unit.
func (s *LoanService) CreateLoan(ctx context.Context, input *CreateLoanInput) (*models.Loan, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidLoanAmount
	}
	if input.InterestRate.LessThan(minInterestRate) || input.InterestRate.GreaterThan(maxInterestRate) {
		return nil, ErrInvalidInterestRate
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	principal := input.Amount.Mul(decimal.NewFromInt(1).Add(input.InterestRate))

	if err := s.creditLedger.CheckLimit(customer, principal); err != nil {
		return nil, err
	}

	if !IsAllowedInstallmentCount(input.Installments) {
		return nil, ErrInvalidInstallmentCount
	}

	now := time.Now()
	installments, err := BuildInstallmentSchedule(principal, input.Installments, now)
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		CustomerID:          customer.ID,
		LoanAmount:          principal,
		NumberOfInstallment: input.Installments,
		CreateDate:          dateOnly(now),
		IsPaid:              false,
		Installments:        installments,
	}

	// Headroom was checked above; usedCreditLimit is only adjusted when a
	// loan is fully repaid (see PaymentService).
	if err := s.loanRepo.CreateWithInstallments(ctx, loan); err != nil {
		return nil, err
	}

	s.invalidateCustomerLoans(ctx, customer.ID)

	log.Printf("✅ Loan %d created for customer %d: %s in %d installments",
		loan.ID, customer.ID, principal.StringFixed(2), input.Installments)

	return loan, nil
}

// GetLoan gets a loan by ID with its installments and customer
func (s *LoanService) GetLoan(ctx context.Context, loanID uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// ListLoansByCustomer lists a customer's loans, oldest first. An empty
// result is reported as ErrLoanNotFound.
func (s *LoanService) ListLoansByCustomer(ctx context.Context, customerID uint) ([]*models.Loan, error) {
	key := customerLoansKey(customerID)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached []*models.Loan
			if err := json.Unmarshal([]byte(raw), &cached); err == nil && len(cached) > 0 {
				return cached, nil
			}
		}
	}

	loans, err := s.loanRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, ErrLoanNotFound
	}

	if s.cache != nil {
		if raw, err := json.Marshal(loans); err == nil {
			s.cache.Set(ctx, key, string(raw), loanCacheTTL)
		}
	}

	return loans, nil
}

// ListInstallmentsByLoan lists a loan's installments ordered by due date.
// An empty result is reported as ErrInstallmentsNotFound.
func (s *LoanService) ListInstallmentsByLoan(ctx context.Context, loanID uint) ([]*models.LoanInstallment, error) {
	installments, err := s.installmentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if len(installments) == 0 {
		return nil, ErrInstallmentsNotFound
	}
	return installments, nil
}

// ListLoansOutput represents a paginated loan listing
type ListLoansOutput struct {
	Loans []*models.Loan `json:"loans"`
	Total int64          `json:"total"`
}

// ListLoans lists all loans with pagination (admin browsing)
func (s *LoanService) ListLoans(ctx context.Context, offset, limit int) (*ListLoansOutput, error) {
	loans, total, err := s.loanRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ListLoansOutput{Loans: loans, Total: total}, nil
}

func (s *LoanService) invalidateCustomerLoans(ctx context.Context, customerID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, customerLoansKey(customerID)); err != nil {
		log.Printf("⚠️ Warning: failed to invalidate loan cache for customer %d: %v", customerID, err)
	}
}
