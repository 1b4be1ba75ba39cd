package services

import (
	"errors"
	"time"

	"loancore/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

// Schedule errors
var (
	ErrInvalidInstallmentCount = errors.New("invalid number of installments, valid values are 6, 9, 12 or 24")
)

// AllowedInstallmentCounts is the closed set of accepted loan terms.
var AllowedInstallmentCounts = []int{6, 9, 12, 24}

// IsAllowedInstallmentCount reports whether count is an accepted loan term.
func IsAllowedInstallmentCount(count int) bool {
	for _, allowed := range AllowedInstallmentCounts {
		if count == allowed {
			return true
		}
	}
	return false
}

// BuildInstallmentSchedule produces count equal installments for total.
// Every installment carries total/count rounded half-up to 2 decimals; the
// rounding delta against total is accepted, not redistributed. The first
// installment is due on the first day of the month after from, each next
// one exactly a calendar month later.
func BuildInstallmentSchedule(total decimal.Decimal, count int, from time.Time) ([]models.LoanInstallment, error) {
	if !IsAllowedInstallmentCount(count) {
		return nil, ErrInvalidInstallmentCount
	}

	perInstallment := total.DivRound(decimal.NewFromInt(int64(count)), 2)

	installments := make([]models.LoanInstallment, 0, count)
	dueDate := firstDayOfNextMonth(from)
	for i := 0; i < count; i++ {
		installments = append(installments, models.LoanInstallment{
			Amount:     perInstallment,
			PaidAmount: decimal.Zero,
			DueDate:    dueDate,
			IsPaid:     false,
		})
		dueDate = dueDate.AddDate(0, 1, 0)
	}
	return installments, nil
}

// firstDayOfNextMonth returns day 1 of the month following t, at midnight.
func firstDayOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// dateOnly truncates t to midnight of its calendar day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
