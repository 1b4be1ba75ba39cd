package services

import (
	"context"
	"errors"
	"log"

	"loancore/internal/adapters/persistence/models"
	"loancore/internal/adapters/persistence/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer service errors
var (
	ErrCustomerExists     = errors.New("customer already exists")
	ErrInvalidCreditLimit = errors.New("credit limit must not be negative and used credit must not exceed it")
)

// CustomerService handles customer management
type CustomerService struct {
	customerRepo repositories.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repositories.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents create customer input. ID is optional;
// when set, creation fails if that ID is already taken.
type CreateCustomerInput struct {
	ID              uint            `json:"id,omitempty"`
	Name            string          `json:"name" validate:"required"`
	Surname         string          `json:"surname" validate:"required"`
	CreditLimit     decimal.Decimal `json:"credit_limit" validate:"required"`
	UsedCreditLimit decimal.Decimal `json:"used_credit_limit,omitempty"`
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, input *CreateCustomerInput) (*models.Customer, error) {
	if input.CreditLimit.IsNegative() || input.UsedCreditLimit.IsNegative() ||
		input.UsedCreditLimit.GreaterThan(input.CreditLimit) {
		return nil, ErrInvalidCreditLimit
	}

	if input.ID != 0 {
		exists, err := s.customerRepo.ExistsByID(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrCustomerExists
		}
	}

	customer := &models.Customer{
		ID:              input.ID,
		Name:            input.Name,
		Surname:         input.Surname,
		CreditLimit:     input.CreditLimit,
		UsedCreditLimit: input.UsedCreditLimit,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	log.Printf("✅ Customer %d created: %s %s (limit %s)",
		customer.ID, customer.Name, customer.Surname, customer.CreditLimit.StringFixed(2))

	return customer, nil
}

// GetByID gets a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// ListOutput represents a paginated customer listing
type ListOutput struct {
	Customers []*models.Customer `json:"customers"`
	Total     int64              `json:"total"`
}

// List lists customers with pagination
func (s *CustomerService) List(ctx context.Context, offset, limit int) (*ListOutput, error) {
	customers, total, err := s.customerRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Customers: customers, Total: total}, nil
}
