package services

import (
	"errors"

	"loancore/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

// Credit errors
var (
	ErrInsufficientCredit = errors.New("customer does not have enough credit limit for this loan")
)

// CreditLedger applies the credit-limit rules for a customer. Headroom is
// checked at origination; usedCreditLimit is only ever decreased, when a
// loan is fully repaid.
type CreditLedger struct{}

// NewCreditLedger creates a new credit ledger
func NewCreditLedger() *CreditLedger {
	return &CreditLedger{}
}

// CheckLimit verifies the requested amount fits in the customer's remaining
// headroom. Pure check, no side effect.
func (CreditLedger) CheckLimit(customer *models.Customer, amount decimal.Decimal) error {
	if customer.AvailableCredit().LessThan(amount) {
		return ErrInsufficientCredit
	}
	return nil
}

// Release frees credit consumed by a fully repaid loan. UsedCreditLimit
// never drops below zero.
func (CreditLedger) Release(customer *models.Customer, amount decimal.Decimal) {
	remaining := customer.UsedCreditLimit.Sub(amount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	customer.UsedCreditLimit = remaining
}
