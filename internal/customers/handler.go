package customers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apotheka-systems/botendienst/pkg/common"
	"github.com/apotheka-systems/botendienst/pkg/middleware"
)

// Handler handles HTTP requests for delivery customers
type Handler struct {
	service *Service
}

// NewHandler creates a new customers handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create registers a delivery customer
// POST /api/v1/customers
func (h *Handler) Create(c *gin.Context) {
	pharmacyID, err := middleware.GetPharmacyID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "missing pharmacy identity")
		return
	}

	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	customer, err := h.service.Create(c.Request.Context(), pharmacyID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to create customer")
		return
	}

	common.CreatedResponse(c, customer)
}

// Get returns a customer
// GET /api/v1/customers/:id
func (h *Handler) Get(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid customer ID")
		return
	}

	customer, err := h.service.Get(c.Request.Context(), customerID)
	if err != nil {
		common.RespondError(c, err, "failed to get customer")
		return
	}

	common.SuccessResponse(c, customer)
}

// List lists the pharmacy's delivery customers
// GET /api/v1/customers?search=
func (h *Handler) List(c *gin.Context) {
	pharmacyID, err := middleware.GetPharmacyID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "missing pharmacy identity")
		return
	}

	result, err := h.service.List(c.Request.Context(), pharmacyID, c.Query("search"))
	if err != nil {
		common.RespondError(c, err, "failed to list customers")
		return
	}

	common.SuccessResponse(c, result)
}

// Update modifies a customer
// PUT /api/v1/customers/:id
func (h *Handler) Update(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid customer ID")
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	customer, err := h.service.Update(c.Request.Context(), customerID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to update customer")
		return
	}

	common.SuccessResponse(c, customer)
}

// Delete removes a customer
// DELETE /api/v1/customers/:id
func (h *Handler) Delete(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid customer ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), customerID); err != nil {
		common.RespondError(c, err, "failed to delete customer")
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}
