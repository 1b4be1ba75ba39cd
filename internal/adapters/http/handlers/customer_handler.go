package handlers

import (
	"errors"
	"strconv"

	"loancore/internal/core/services"
	"loancore/internal/pkg/pagination"
	"loancore/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CustomerHandler handles customer management endpoints
type CustomerHandler struct {
	customerService *services.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CreateCustomerRequest represents create customer request body
type CreateCustomerRequest struct {
	ID              uint            `json:"id,omitempty"`
	Name            string          `json:"name"`
	Surname         string          `json:"surname"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	UsedCreditLimit decimal.Decimal `json:"used_credit_limit,omitempty"`
}

// Create handles customer creation
// @Summary Create customer
// @Description Create a new customer with a credit limit
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCustomerRequest true "Customer data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Surname == "" {
		return response.BadRequest(c, "Surname is required")
	}

	input := &services.CreateCustomerInput{
		ID:              req.ID,
		Name:            req.Name,
		Surname:         req.Surname,
		CreditLimit:     req.CreditLimit,
		UsedCreditLimit: req.UsedCreditLimit,
	}

	customer, err := h.customerService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCreditLimit):
			return response.BadRequest(c, "Invalid credit limit")
		case errors.Is(err, services.ErrCustomerExists):
			return response.Conflict(c, "Customer already exists")
		default:
			return response.InternalServerError(c, "Failed to create customer")
		}
	}

	return response.Created(c, "Customer created successfully", customer)
}

// GetByID handles fetching a single customer
// @Summary Get customer
// @Description Get a customer by ID with credit usage
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	customer, err := h.customerService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to get customer")
	}

	return response.Success(c, "Customer retrieved successfully", fiber.Map{
		"customer":         customer,
		"available_credit": customer.AvailableCredit(),
	})
}

// List handles paginated customer listing
// @Summary List customers
// @Description List customers with pagination (admin only)
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.customerService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list customers")
	}

	return response.Success(c, "Customers retrieved successfully",
		pagination.NewResponse(result.Customers, params, result.Total))
}
