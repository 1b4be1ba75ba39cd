package services

import (
	"context"
	"time"

	"loancore/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// Hand-rolled repository mocks backed by maps and slices.

type customerRepoMock struct {
	customers map[uint]*models.Customer
	nextID    uint
	updated   []*models.Customer
}

func newCustomerRepoMock() *customerRepoMock {
	return &customerRepoMock{customers: make(map[uint]*models.Customer)}
}

func (m *customerRepoMock) Create(_ context.Context, customer *models.Customer) error {
	if customer.ID == 0 {
		m.nextID++
		customer.ID = m.nextID
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *customerRepoMock) GetByID(_ context.Context, id uint) (*models.Customer, error) {
	if c, ok := m.customers[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *customerRepoMock) ExistsByID(_ context.Context, id uint) (bool, error) {
	_, ok := m.customers[id]
	return ok, nil
}

func (m *customerRepoMock) Update(_ context.Context, customer *models.Customer) error {
	m.customers[customer.ID] = customer
	m.updated = append(m.updated, customer)
	return nil
}

func (m *customerRepoMock) List(_ context.Context, offset, limit int) ([]*models.Customer, int64, error) {
	var all []*models.Customer
	for _, c := range m.customers {
		all = append(all, c)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

type loanRepoMock struct {
	loans  map[uint]*models.Loan
	nextID uint

	savedLoan         *models.Loan
	savedInstallments []*models.LoanInstallment
	savedCustomer     *models.Customer
	saveCalls         int
}

func newLoanRepoMock() *loanRepoMock {
	return &loanRepoMock{loans: make(map[uint]*models.Loan)}
}

func (m *loanRepoMock) CreateWithInstallments(_ context.Context, loan *models.Loan) error {
	if loan.ID == 0 {
		m.nextID++
		loan.ID = m.nextID
	}
	m.loans[loan.ID] = loan
	return nil
}

func (m *loanRepoMock) GetByID(_ context.Context, id uint) (*models.Loan, error) {
	if l, ok := m.loans[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *loanRepoMock) GetByCustomerID(_ context.Context, customerID uint) ([]*models.Loan, error) {
	var result []*models.Loan
	for _, l := range m.loans {
		if l.CustomerID == customerID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *loanRepoMock) List(_ context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	var all []*models.Loan
	for _, l := range m.loans {
		all = append(all, l)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *loanRepoMock) SaveAllocation(_ context.Context, loan *models.Loan, installments []*models.LoanInstallment, customer *models.Customer) error {
	m.savedLoan = loan
	m.savedInstallments = installments
	m.savedCustomer = customer
	m.saveCalls++
	return nil
}

type installmentRepoMock struct {
	byLoan  map[uint][]*models.LoanInstallment
	overdue []*models.LoanInstallment
}

func newInstallmentRepoMock() *installmentRepoMock {
	return &installmentRepoMock{byLoan: make(map[uint][]*models.LoanInstallment)}
}

func (m *installmentRepoMock) GetByLoanID(_ context.Context, loanID uint) ([]*models.LoanInstallment, error) {
	return m.byLoan[loanID], nil
}

func (m *installmentRepoMock) GetOverdue(_ context.Context, _ time.Time) ([]*models.LoanInstallment, error) {
	return m.overdue, nil
}
