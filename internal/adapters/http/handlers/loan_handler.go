package handlers

import (
	"errors"
	"strconv"

	"loancore/internal/adapters/persistence/models"
	"loancore/internal/core/domain"
	"loancore/internal/core/services"
	"loancore/internal/pkg/pagination"
	"loancore/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// canAccessCustomer reports whether the authenticated user may act on the
// given customer's records: admins always, customers only for their own
// linked record.
func canAccessCustomer(c *fiber.Ctx, customerID uint) bool {
	role, ok := c.Locals("role").(string)
	if !ok {
		return false
	}
	if role == string(domain.RoleAdmin) {
		return true
	}
	own, ok := c.Locals("customerID").(*uint)
	return ok && own != nil && *own == customerID
}

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoanRequest represents loan origination request body
type CreateLoanRequest struct {
	CustomerID   uint            `json:"customer_id"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Installments int             `json:"installments"`
}

// Create handles loan origination
// @Summary Create loan
// @Description Originate a loan with an equal-amount monthly installment schedule
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateLoanRequest true "Loan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var req CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CustomerID == 0 {
		return response.BadRequest(c, "Customer ID is required")
	}
	if !canAccessCustomer(c, req.CustomerID) {
		return response.Forbidden(c, "You can only create loans for your own customer record")
	}

	input := &services.CreateLoanInput{
		CustomerID:   req.CustomerID,
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		Installments: req.Installments,
	}

	loan, err := h.loanService.CreateLoan(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidLoanAmount):
			return response.BadRequest(c, "Loan amount must be positive")
		case errors.Is(err, services.ErrInvalidInterestRate):
			return response.BadRequest(c, "Interest rate must be between 0.1 and 0.5")
		case errors.Is(err, services.ErrInvalidInstallmentCount):
			return response.BadRequest(c, "Number of installments must be 6, 9, 12 or 24")
		case errors.Is(err, services.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		case errors.Is(err, services.ErrInsufficientCredit):
			return response.Conflict(c, "Customer does not have enough credit limit")
		default:
			return response.InternalServerError(c, "Failed to create loan")
		}
	}

	return response.Created(c, "Loan created successfully", loan.ToResponse())
}

// ListByCustomer handles listing a customer's loans
// @Summary List customer loans
// @Description List all loans for a customer, oldest first
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param customerId path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{customerId}/loans [get]
func (h *LoanHandler) ListByCustomer(c *fiber.Ctx) error {
	customerID, err := strconv.ParseUint(c.Params("customerId"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	loans, err := h.loanService.ListLoansByCustomer(c.Context(), uint(customerID))
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			return response.NotFound(c, "No loans found for customer")
		}
		return response.InternalServerError(c, "Failed to list loans")
	}

	result := make([]*models.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		result = append(result, loan.ToResponse())
	}

	return response.Success(c, "Loans retrieved successfully", result)
}

// ListInstallments handles listing a loan's installments
// @Summary List loan installments
// @Description List all installments for a loan ordered by due date
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/installments [get]
func (h *LoanHandler) ListInstallments(c *fiber.Ctx) error {
	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetLoan(c.Context(), uint(loanID))
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}
	if !canAccessCustomer(c, loan.CustomerID) {
		return response.Forbidden(c, "You can only access your own loans")
	}

	installments, err := h.loanService.ListInstallmentsByLoan(c.Context(), uint(loanID))
	if err != nil {
		if errors.Is(err, services.ErrInstallmentsNotFound) {
			return response.NotFound(c, "No installments found for loan")
		}
		return response.InternalServerError(c, "Failed to list installments")
	}

	result := make([]*models.LoanInstallmentResponse, 0, len(installments))
	for _, installment := range installments {
		result = append(result, installment.ToResponse())
	}

	return response.Success(c, "Installments retrieved successfully", result)
}

// ListAll handles paginated listing of all loans
// @Summary List all loans
// @Description List all loans with pagination (admin only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /loans/all [get]
func (h *LoanHandler) ListAll(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.loanService.ListLoans(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	loans := make([]*models.LoanResponse, 0, len(result.Loans))
	for _, loan := range result.Loans {
		loans = append(loans, loan.ToResponse())
	}

	return response.Success(c, "Loans retrieved successfully",
		pagination.NewResponse(loans, params, result.Total))
}
