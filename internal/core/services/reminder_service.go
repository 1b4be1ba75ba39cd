package services

import (
	"context"
	"log"
	"time"

	"loancore/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// ReminderService runs background jobs over the installment book: a daily
// overdue sweep that logs installments past their due date. It is a
// reporting job only and never mutates loan state.
type ReminderService struct {
	installmentRepo repositories.LoanInstallmentRepository
	cron            *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(installmentRepo repositories.LoanInstallmentRepository) *ReminderService {
	return &ReminderService{
		installmentRepo: installmentRepo,
		cron:            cron.New(),
	}
}

// Start schedules the background jobs
func (s *ReminderService) Start() error {
	// Overdue sweep every morning at 08:30
	if _, err := s.cron.AddFunc("30 8 * * *", s.sweepOverdueInstallments); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 ReminderService started")
	return nil
}

// Stop stops the cron scheduler and waits for running jobs
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 ReminderService stopped")
}

func (s *ReminderService) sweepOverdueInstallments() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	today := time.Now().Truncate(24 * time.Hour)
	overdue, err := s.installmentRepo.GetOverdue(ctx, today)
	if err != nil {
		log.Printf("❌ Overdue sweep query error: %v", err)
		return
	}

	if len(overdue) == 0 {
		log.Println("✅ Overdue sweep: no overdue installments")
		return
	}

	for _, installment := range overdue {
		log.Printf("⚠️ Installment %d of loan %d overdue since %s (amount %s)",
			installment.ID,
			installment.LoanID,
			installment.DueDate.Format("2006-01-02"),
			installment.Amount.StringFixed(2),
		)
	}
	log.Printf("⚠️ Overdue sweep: %d overdue installments found", len(overdue))
}
