package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"loancore/internal/adapters/cache"
	"loancore/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

func newPaymentServiceForTest() (*PaymentService, *loanRepoMock) {
	loanRepo := newLoanRepoMock()
	svc := NewPaymentService(loanRepo, NewCreditLedger(), cache.NewMemoryStore())
	return svc, loanRepo
}

// loanWithInstallments builds a loan whose unpaid installments of amount
// each fall due on the first of the coming months, inside the payment
// window unless count pushes past it.
func loanWithInstallments(id uint, amount decimal.Decimal, count int) *models.Loan {
	installments := make([]models.LoanInstallment, 0, count)
	due := firstDayOfNextMonth(time.Now())
	for i := 0; i < count; i++ {
		installments = append(installments, models.LoanInstallment{
			ID:         uint(i + 1),
			LoanID:     id,
			Amount:     amount,
			PaidAmount: decimal.Zero,
			DueDate:    due,
		})
		due = due.AddDate(0, 1, 0)
	}
	return &models.Loan{
		ID:                  id,
		CustomerID:          1,
		LoanAmount:          amount.Mul(decimal.NewFromInt(int64(count))),
		NumberOfInstallment: count,
		Installments:        installments,
	}
}

func TestPayLoanSettlesEarliestFirst(t *testing.T) {
	svc, loanRepo := newPaymentServiceForTest()
	loan := loanWithInstallments(1, decimal.NewFromInt(100), 3)
	loanRepo.loans[1] = loan

	result, err := svc.PayLoan(context.Background(), 1, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PaidInstallments != 2 {
		t.Errorf("paid %d installments, want 2", result.PaidInstallments)
	}
	if !result.TotalAmountSpent.Equal(decimal.NewFromInt(200)) {
		t.Errorf("spent %s, want 200", result.TotalAmountSpent)
	}
	if result.IsLoanPaid {
		t.Error("loan must not be paid with one installment outstanding")
	}

	// The two earliest installments settle, the third stays open
	if !loan.Installments[0].IsPaid || !loan.Installments[1].IsPaid {
		t.Error("earliest installments should be settled")
	}
	if loan.Installments[2].IsPaid {
		t.Error("latest installment should stay open")
	}
	for i := 0; i < 2; i++ {
		if !loan.Installments[i].PaidAmount.Equal(decimal.NewFromInt(100)) {
			t.Errorf("installment %d: paid amount %s, want 100", i, loan.Installments[i].PaidAmount)
		}
		if loan.Installments[i].PaymentDate == nil {
			t.Errorf("installment %d: payment date not set", i)
		}
	}
	if len(loanRepo.savedInstallments) != 2 {
		t.Errorf("persisted %d installments, want 2", len(loanRepo.savedInstallments))
	}
}

func TestPayLoanRemainderUnused(t *testing.T) {
	svc, loanRepo := newPaymentServiceForTest()
	loanRepo.loans[1] = loanWithInstallments(1, decimal.NewFromInt(100), 3)

	result, err := svc.PayLoan(context.Background(), 1, decimal.NewFromInt(250))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 250 buys two whole installments, the 50 remainder is left unused
	if result.PaidInstallments != 2 {
		t.Errorf("paid %d installments, want 2", result.PaidInstallments)
	}
	if !result.TotalAmountSpent.Equal(decimal.NewFromInt(200)) {
		t.Errorf("spent %s, want 200", result.TotalAmountSpent)
	}
}

func TestPayLoanAmountBelowInstallment(t *testing.T) {
	svc, loanRepo := newPaymentServiceForTest()
	loanRepo.loans[1] = loanWithInstallments(1, decimal.NewFromInt(100), 3)

	result, err := svc.PayLoan(context.Background(), 1, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Not enough for a whole installment: nothing settles, no error
	if result.PaidInstallments != 0 {
		t.Errorf("paid %d installments, want 0", result.PaidInstallments)
	}
	if !result.TotalAmountSpent.IsZero() {
		t.Errorf("spent %s, want 0", result.TotalAmountSpent)
	}
	if result.IsLoanPaid {
		t.Error("loan must not be paid")
	}
}

func TestPayLoanRespectsPaymentWindow(t *testing.T) {
	svc, loanRepo := newPaymentServiceForTest()
	// Four installments: the fourth falls due in month +4, past the
	// last-day-of-month+3 cutoff.
	loanRepo.loans[1] = loanWithInstallments(1, decimal.NewFromInt(100), 4)

	result, err := svc.PayLoan(context.Background(), 1, decimal.NewFromInt(400))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PaidInstallments != 3 {
		t.Errorf("paid %d installments, want 3 (fourth is outside the window)", result.PaidInstallments)
	}
	if !result.TotalAmountSpent.Equal(decimal.NewFromInt(300)) {
		t.Errorf("spent %s, want 300", result.TotalAmountSpent)
	}
	if result.IsLoanPaid {
		t.Error("loan must not be paid while an installment is out of reach")
	}
}

func TestPayLoanNoPayableInstallments(t *testing.T) {
	svc, loanRepo := newPaymentServiceForTest()
	loan := loanWithInstallments(1, decimal.NewFromInt(100), 3)
	for i := range loan.Installments {
		loan.Installments[i].IsPaid = true
	}
	loan.IsPaid = true
	loanRepo.loans[1] = loan

	_, err := svc.PayLoan(context.Background(), 1, decimal.NewFromInt(100))
	if !errors.Is(err, ErrNoPayableInstallments) {
		t.Fatalf("expected ErrNoPayableInstallments, got %v", err)
	}
	if loanRepo.saveCalls != 0 {
		t.Error("nothing should be persisted when no installment is payable")
	}
}

func TestPayLoanAllDueOutsideWindow(t *testing.T) {
	svc, loanRepo := newPaymentServiceForTest()
	loan := loanWithInstallments(1, decimal.NewFromInt(100), 3)
	for i := range loan.Installments {
		loan.Installments[i].DueDate = loan.Installments[i].DueDate.AddDate(1, 0, 0)
	}
	loanRepo.loans[1] = loan

	_, err := svc.PayLoan(context.Background(), 1, decimal.NewFromInt(300))
	if !errors.Is(err, ErrNoPayableInstallments) {
		t.Fatalf("expected ErrNoPayableInstallments, got %v", err)
	}
}

func TestPayLoanPayoffReleasesCredit(t *testing.T) {
	svc, loanRepo := newPaymentServiceForTest()
	loan := loanWithInstallments(1, decimal.NewFromInt(100), 2)
	loan.Customer = &models.Customer{
		ID:              1,
		CreditLimit:     decimal.NewFromInt(10000),
		UsedCreditLimit: decimal.NewFromInt(500),
	}
	loanRepo.loans[1] = loan

	result, err := svc.PayLoan(context.Background(), 1, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.IsLoanPaid {
		t.Fatal("loan should be fully paid")
	}
	if !loan.IsPaid {
		t.Error("loan flag not set")
	}
	// LoanAmount (200) is released from the used credit
	if !loan.Customer.UsedCreditLimit.Equal(decimal.NewFromInt(300)) {
		t.Errorf("used credit %s, want 300", loan.Customer.UsedCreditLimit)
	}
	if loanRepo.savedCustomer == nil {
		t.Error("customer update should be part of the allocation write")
	}
}

func TestPayLoanPartialDoesNotReleaseCredit(t *testing.T) {
	svc, loanRepo := newPaymentServiceForTest()
	loan := loanWithInstallments(1, decimal.NewFromInt(100), 3)
	loan.Customer = &models.Customer{
		ID:              1,
		CreditLimit:     decimal.NewFromInt(10000),
		UsedCreditLimit: decimal.NewFromInt(500),
	}
	loanRepo.loans[1] = loan

	result, err := svc.PayLoan(context.Background(), 1, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IsLoanPaid {
		t.Error("loan must not be paid")
	}
	if !loan.Customer.UsedCreditLimit.Equal(decimal.NewFromInt(500)) {
		t.Errorf("used credit %s, want unchanged 500", loan.Customer.UsedCreditLimit)
	}
	if loanRepo.savedCustomer != nil {
		t.Error("customer must not be written on partial payment")
	}
}

func TestPayLoanReleaseClampsAtZero(t *testing.T) {
	svc, loanRepo := newPaymentServiceForTest()
	loan := loanWithInstallments(1, decimal.NewFromInt(100), 2)
	loan.Customer = &models.Customer{
		ID:              1,
		CreditLimit:     decimal.NewFromInt(10000),
		UsedCreditLimit: decimal.NewFromInt(150),
	}
	loanRepo.loans[1] = loan

	if _, err := svc.PayLoan(context.Background(), 1, decimal.NewFromInt(200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loan.Customer.UsedCreditLimit.IsZero() {
		t.Errorf("used credit %s, want 0", loan.Customer.UsedCreditLimit)
	}
}

func TestPayLoanInvalidAmount(t *testing.T) {
	svc, _ := newPaymentServiceForTest()

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-50)} {
		_, err := svc.PayLoan(context.Background(), 1, amount)
		if !errors.Is(err, ErrInvalidPaymentAmount) {
			t.Errorf("amount %s: expected ErrInvalidPaymentAmount, got %v", amount, err)
		}
	}
}

func TestPayLoanNotFound(t *testing.T) {
	svc, _ := newPaymentServiceForTest()

	_, err := svc.PayLoan(context.Background(), 42, decimal.NewFromInt(100))
	if !errors.Is(err, ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}
}

func TestPaymentCutoff(t *testing.T) {
	asOf := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	cutoff := paymentCutoff(asOf)

	want := time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC)
	if !cutoff.Equal(want) {
		t.Errorf("cutoff %s, want %s", cutoff, want)
	}

	// Month-end clamping across short months
	asOf = time.Date(2026, time.November, 25, 0, 0, 0, 0, time.UTC)
	cutoff = paymentCutoff(asOf)
	want = time.Date(2027, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !cutoff.Equal(want) {
		t.Errorf("cutoff %s, want %s", cutoff, want)
	}
}
