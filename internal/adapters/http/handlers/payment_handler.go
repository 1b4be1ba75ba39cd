package handlers

import (
	"errors"
	"strconv"

	"loancore/internal/core/services"
	"loancore/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
	loanService    *services.LoanService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, loanService *services.LoanService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		loanService:    loanService,
	}
}

// PayLoanRequest represents payment request body
type PayLoanRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Pay handles a payment against a loan
// @Summary Pay loan
// @Description Allocate a payment against a loan's installments, earliest due first
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body PayLoanRequest true "Payment amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/pay [post]
func (h *PaymentHandler) Pay(c *fiber.Ctx) error {
	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req PayLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.GetLoan(c.Context(), uint(loanID))
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}
	if !canAccessCustomer(c, loan.CustomerID) {
		return response.Forbidden(c, "You can only pay your own loans")
	}

	result, err := h.paymentService.PayLoan(c.Context(), uint(loanID), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPaymentAmount):
			return response.BadRequest(c, "Payment amount must be positive")
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, services.ErrNoPayableInstallments):
			return response.BadRequest(c, "No payable installments found for loan")
		default:
			return response.InternalServerError(c, "Failed to process payment")
		}
	}

	return response.Success(c, "Payment processed successfully", result)
}
