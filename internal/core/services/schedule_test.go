package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestIsAllowedInstallmentCount(t *testing.T) {
	for _, count := range []int{6, 9, 12, 24} {
		if !IsAllowedInstallmentCount(count) {
			t.Errorf("expected %d to be allowed", count)
		}
	}
	for _, count := range []int{0, 1, 3, 15, 36, -6} {
		if IsAllowedInstallmentCount(count) {
			t.Errorf("expected %d to be rejected", count)
		}
	}
}

func TestBuildInstallmentScheduleEqualAmounts(t *testing.T) {
	total := decimal.NewFromInt(12000)
	from := time.Date(2026, time.January, 15, 10, 30, 0, 0, time.UTC)

	installments, err := BuildInstallmentSchedule(total, 12, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(installments) != 12 {
		t.Fatalf("expected 12 installments, got %d", len(installments))
	}

	want := decimal.NewFromInt(1000)
	sum := decimal.Zero
	for i, installment := range installments {
		if !installment.Amount.Equal(want) {
			t.Errorf("installment %d: amount %s, want %s", i, installment.Amount, want)
		}
		if installment.IsPaid {
			t.Errorf("installment %d: should start unpaid", i)
		}
		if !installment.PaidAmount.IsZero() {
			t.Errorf("installment %d: paid amount should start zero", i)
		}
		sum = sum.Add(installment.Amount)
	}
	if !sum.Equal(total) {
		t.Errorf("schedule sum %s, want %s", sum, total)
	}
}

func TestBuildInstallmentScheduleDueDates(t *testing.T) {
	from := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	installments, err := BuildInstallmentSchedule(decimal.NewFromInt(600), 6, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	for i, installment := range installments {
		if !installment.DueDate.Equal(expected) {
			t.Errorf("installment %d: due %s, want %s", i, installment.DueDate, expected)
		}
		if installment.DueDate.Day() != 1 {
			t.Errorf("installment %d: due date must be first of month, got day %d", i, installment.DueDate.Day())
		}
		expected = expected.AddDate(0, 1, 0)
	}
}

func TestBuildInstallmentScheduleDueDatesCrossYear(t *testing.T) {
	from := time.Date(2026, time.November, 3, 0, 0, 0, 0, time.UTC)

	installments, err := BuildInstallmentSchedule(decimal.NewFromInt(900), 9, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)
	if !installments[0].DueDate.Equal(first) {
		t.Errorf("first due %s, want %s", installments[0].DueDate, first)
	}
	second := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !installments[1].DueDate.Equal(second) {
		t.Errorf("second due %s, want %s", installments[1].DueDate, second)
	}
}

func TestBuildInstallmentScheduleRounding(t *testing.T) {
	// 1000 / 6 = 166.666..., rounded half-up to 166.67 per installment.
	// The 2 cent surplus over the total is accepted, not redistributed.
	total := decimal.NewFromInt(1000)

	installments, err := BuildInstallmentSchedule(total, 6, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := decimal.RequireFromString("166.67")
	sum := decimal.Zero
	for i, installment := range installments {
		if !installment.Amount.Equal(want) {
			t.Errorf("installment %d: amount %s, want %s", i, installment.Amount, want)
		}
		sum = sum.Add(installment.Amount)
	}

	wantSum := decimal.RequireFromString("1000.02")
	if !sum.Equal(wantSum) {
		t.Errorf("schedule sum %s, want %s", sum, wantSum)
	}
}

func TestBuildInstallmentScheduleRejectsInvalidCount(t *testing.T) {
	_, err := BuildInstallmentSchedule(decimal.NewFromInt(1000), 15, time.Now())
	if !errors.Is(err, ErrInvalidInstallmentCount) {
		t.Fatalf("expected ErrInvalidInstallmentCount, got %v", err)
	}
}
