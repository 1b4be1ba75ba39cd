package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth Tables
// ============================================================

// User represents users table (login accounts, not customers)
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CustomerID *uint          `gorm:"uniqueIndex" json:"customer_id"`
	Username   string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email      string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password   string         `gorm:"size:255;not null" json:"-"`
	Role       string         `gorm:"size:20;default:'CUSTOMER'" json:"role"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID         uint      `json:"id"`
	CustomerID *uint     `json:"customer_id,omitempty"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		CustomerID: u.CustomerID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Loan Tables
// ============================================================

// Customer represents customers table. CreditLimit is the total line,
// UsedCreditLimit the portion consumed by open loans.
type Customer struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	Surname         string          `gorm:"size:100;not null" json:"surname"`
	CreditLimit     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"credit_limit"`
	UsedCreditLimit decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"used_credit_limit"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}

// AvailableCredit returns the remaining headroom on the credit line.
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.UsedCreditLimit)
}

// Loan represents loans table. LoanAmount is the principal with interest
// applied (requested amount x (1 + rate)). A loan owns its installments;
// the customer is referenced by ID only.
type Loan struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CustomerID          uint            `gorm:"not null;index" json:"customer_id"`
	LoanAmount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"loan_amount"`
	NumberOfInstallment int             `gorm:"not null" json:"number_of_installment"`
	CreateDate          time.Time       `gorm:"type:date;not null" json:"create_date"`
	IsPaid              bool            `gorm:"default:false" json:"is_paid"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"-"`

	// Relations
	Customer     *Customer         `gorm:"foreignKey:CustomerID" json:"-"`
	Installments []LoanInstallment `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"installments,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// LoanInstallment represents loan_installments table. Amount is fixed and
// identical across a loan's installments; PaidAmount is zero or exactly
// Amount, never in between.
type LoanInstallment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	LoanID      uint            `gorm:"not null;index" json:"loan_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"paid_amount"`
	DueDate     time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	PaymentDate *time.Time      `gorm:"type:date" json:"payment_date"`
	IsPaid      bool            `gorm:"default:false" json:"is_paid"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"-"`

	Loan *Loan `gorm:"foreignKey:LoanID" json:"-"`
}

func (LoanInstallment) TableName() string {
	return "loan_installments"
}

// ============================================================
// DTOs
// ============================================================

// LoanInstallmentResponse DTO
type LoanInstallmentResponse struct {
	ID          uint            `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	DueDate     string          `json:"due_date"`
	PaymentDate *string         `json:"payment_date"`
	IsPaid      bool            `json:"is_paid"`
}

func (i *LoanInstallment) ToResponse() *LoanInstallmentResponse {
	resp := &LoanInstallmentResponse{
		ID:         i.ID,
		Amount:     i.Amount,
		PaidAmount: i.PaidAmount,
		DueDate:    i.DueDate.Format("2006-01-02"),
		IsPaid:     i.IsPaid,
	}
	if i.PaymentDate != nil {
		d := i.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &d
	}
	return resp
}

// LoanResponse DTO
type LoanResponse struct {
	ID                  uint                       `json:"id"`
	CustomerID          uint                       `json:"customer_id"`
	LoanAmount          decimal.Decimal            `json:"loan_amount"`
	NumberOfInstallment int                        `json:"number_of_installment"`
	CreateDate          string                     `json:"create_date"`
	IsPaid              bool                       `json:"is_paid"`
	Installments        []*LoanInstallmentResponse `json:"installments,omitempty"`
}

func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:                  l.ID,
		CustomerID:          l.CustomerID,
		LoanAmount:          l.LoanAmount,
		NumberOfInstallment: l.NumberOfInstallment,
		CreateDate:          l.CreateDate.Format("2006-01-02"),
		IsPaid:              l.IsPaid,
	}
	for idx := range l.Installments {
		resp.Installments = append(resp.Installments, l.Installments[idx].ToResponse())
	}
	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Customer{},
		&Loan{},
		&LoanInstallment{},
	)
}
