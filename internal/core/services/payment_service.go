package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"loancore/internal/adapters/cache"
	"loancore/internal/adapters/persistence/models"
	"loancore/internal/adapters/persistence/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment service errors
var (
	ErrNoPayableInstallments = errors.New("no payable installments found for loan")
	ErrInvalidPaymentAmount  = errors.New("payment amount must be positive")
)

// PaymentService allocates incoming payments against loan installments
type PaymentService struct {
	loanRepo     repositories.LoanRepository
	creditLedger *CreditLedger
	cache        cache.Store
}

// NewPaymentService creates a new payment service
func NewPaymentService(loanRepo repositories.LoanRepository, creditLedger *CreditLedger, cacheStore cache.Store) *PaymentService {
	return &PaymentService{
		loanRepo:     loanRepo,
		creditLedger: creditLedger,
		cache:        cacheStore,
	}
}

// PaymentResult represents the outcome of one allocation
type PaymentResult struct {
	PaidInstallments int             `json:"paid_installments"`
	TotalAmountSpent decimal.Decimal `json:"total_amount_spent"`
	IsLoanPaid       bool            `json:"is_loan_paid"`
}

// PayLoan allocates paymentAmount against the loan's payable installments.
// Installments are settled whole or not at all, earliest due date first;
// only installments due before the 3-month cutoff are payable. Any
// remainder below one installment amount is left unused. When the last
// installment settles, the loan closes and the customer's credit is
// released. All resulting writes are persisted atomically.
func (s *PaymentService) PayLoan(ctx context.Context, loanID uint, paymentAmount decimal.Decimal) (*PaymentResult, error) {
	if !paymentAmount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}

	now := time.Now()
	eligible := payableInstallments(loan.Installments, now)
	if len(eligible) == 0 {
		return nil, ErrNoPayableInstallments
	}

	// Installment amounts are uniform within a loan, so the first eligible
	// installment fixes the settlement unit.
	unit := eligible[0].Amount
	payableCount := int(paymentAmount.Div(unit).IntPart())

	paymentDate := dateOnly(now)
	totalPaid := decimal.Zero
	var settled []*models.LoanInstallment

	for _, installment := range eligible {
		if len(settled) >= payableCount {
			break
		}
		installment.IsPaid = true
		installment.PaidAmount = unit
		d := paymentDate
		installment.PaymentDate = &d
		totalPaid = totalPaid.Add(unit)
		settled = append(settled, installment)
	}

	// Loan status is derived from ALL installments, not just the window.
	loanPaid := true
	for i := range loan.Installments {
		if !loan.Installments[i].IsPaid {
			loanPaid = false
			break
		}
	}
	loan.IsPaid = loanPaid

	var customer *models.Customer
	if loanPaid && loan.Customer != nil {
		customer = loan.Customer
		s.creditLedger.Release(customer, loan.LoanAmount)
	}

	if err := s.loanRepo.SaveAllocation(ctx, loan, settled, customer); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(ctx, customerLoansKey(loan.CustomerID))
	}

	log.Printf("✅ Payment on loan %d: %d installments settled (%s), loan paid=%v",
		loan.ID, len(settled), totalPaid.StringFixed(2), loanPaid)

	return &PaymentResult{
		PaidInstallments: len(settled),
		TotalAmountSpent: totalPaid,
		IsLoanPaid:       loanPaid,
	}, nil
}

// payableInstallments returns pointers to the unpaid installments due
// strictly before the payment cutoff, earliest due date first.
func payableInstallments(installments []models.LoanInstallment, asOf time.Time) []*models.LoanInstallment {
	cutoff := paymentCutoff(asOf)

	var eligible []*models.LoanInstallment
	for i := range installments {
		installment := &installments[i]
		if !installment.IsPaid && installment.DueDate.Before(cutoff) {
			eligible = append(eligible, installment)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].DueDate.Before(eligible[j].DueDate)
	})
	return eligible
}

// paymentCutoff returns the last day of the month three calendar months
// ahead of asOf. Installments due on or after it cannot be paid yet.
func paymentCutoff(asOf time.Time) time.Time {
	year, month, _ := asOf.Date()
	// day 0 of month+4 normalizes to the last day of month+3
	return time.Date(year, month+4, 0, 0, 0, 0, 0, asOf.Location())
}
