package tours

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apotheka-systems/botendienst/pkg/common"
	"github.com/apotheka-systems/botendienst/pkg/middleware"
)

// TourTokenHeader carries the driver access token on tokenized endpoints
const TourTokenHeader = "X-Tour-Token"

// Handler handles HTTP requests for tours
type Handler struct {
	service *Service
}

// NewHandler creates a new tours handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ========================================
// TOUR ENDPOINTS
// ========================================

// CreateTour creates a new tour
// POST /api/v1/tours
func (h *Handler) CreateTour(c *gin.Context) {
	pharmacyID, err := middleware.GetPharmacyID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "missing pharmacy identity")
		return
	}

	var req CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tour, err := h.service.CreateTour(c.Request.Context(), pharmacyID, middleware.GetStaffID(c), &req)
	if err != nil {
		common.RespondError(c, err, "failed to create tour")
		return
	}

	common.CreatedResponse(c, tour)
}

// GetTour gets a tour with stops and statistics
// GET /api/v1/tours/:id
func (h *Handler) GetTour(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	response, err := h.service.GetTour(c.Request.Context(), tourID)
	if err != nil {
		common.RespondError(c, err, "failed to get tour")
		return
	}

	common.SuccessResponse(c, response)
}

// ListTours lists the pharmacy's tours
// GET /api/v1/tours?status=&date=
func (h *Handler) ListTours(c *gin.Context) {
	pharmacyID, err := middleware.GetPharmacyID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "missing pharmacy identity")
		return
	}

	filters, err := parseTourFilters(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	tours, err := h.service.ListTours(c.Request.Context(), pharmacyID, filters)
	if err != nil {
		common.RespondError(c, err, "failed to list tours")
		return
	}

	common.SuccessResponse(c, tours)
}

// UpdateTour updates tour metadata
// PUT /api/v1/tours/:id
func (h *Handler) UpdateTour(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	var req UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tour, err := h.service.UpdateTour(c.Request.Context(), tourID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to update tour")
		return
	}

	common.SuccessResponse(c, tour)
}

// DeleteTour deletes a tour
// DELETE /api/v1/tours/:id
func (h *Handler) DeleteTour(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	if err := h.service.DeleteTour(c.Request.Context(), tourID); err != nil {
		common.RespondError(c, err, "failed to delete tour")
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

// GetTourStats returns a tour's aggregate statistics
// GET /api/v1/tours/:id/stats
func (h *Handler) GetTourStats(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	stats, err := h.service.GetTourStats(c.Request.Context(), tourID)
	if err != nil {
		common.RespondError(c, err, "failed to get tour stats")
		return
	}

	common.SuccessResponse(c, stats)
}

// StartTour marks a tour active
// POST /api/v1/tours/:id/start
func (h *Handler) StartTour(c *gin.Context) {
	h.tourTransition(c, h.service.StartTour, "failed to start tour")
}

// CompleteTour closes an active tour
// POST /api/v1/tours/:id/complete
func (h *Handler) CompleteTour(c *gin.Context) {
	h.tourTransition(c, h.service.CompleteTour, "failed to complete tour")
}

// CancelTour cancels a tour
// POST /api/v1/tours/:id/cancel
func (h *Handler) CancelTour(c *gin.Context) {
	h.tourTransition(c, h.service.CancelTour, "failed to cancel tour")
}

func (h *Handler) tourTransition(c *gin.Context, fn func(ctx context.Context, tourID uuid.UUID) (*Tour, error), msg string) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	tour, err := fn(c.Request.Context(), tourID)
	if err != nil {
		common.RespondError(c, err, msg)
		return
	}

	common.SuccessResponse(c, tour)
}

// ========================================
// ROUTE OPTIMIZATION & NAVIGATION
// ========================================

// OptimizeTour reorders a tour's stops
// POST /api/v1/tours/:id/optimize
func (h *Handler) OptimizeTour(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	var req OptimizeTourRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.service.OptimizeTour(c.Request.Context(), tourID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to optimize tour")
		return
	}

	common.SuccessResponse(c, response)
}

// GetTourNavigationURL returns a Google Maps link for the whole tour
// GET /api/v1/tours/:id/navigation
func (h *Handler) GetTourNavigationURL(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	url, err := h.service.TourNavigationURL(c.Request.Context(), tourID)
	if err != nil {
		common.RespondError(c, err, "failed to build navigation URL")
		return
	}

	common.SuccessResponse(c, gin.H{"url": url})
}

// ========================================
// STOP ENDPOINTS
// ========================================

// AddStop appends a stop to a tour
// POST /api/v1/tours/:id/stops
func (h *Handler) AddStop(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	var req CreateStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	stop, err := h.service.AddStop(c.Request.Context(), tourID, middleware.GetStaffID(c), &req)
	if err != nil {
		common.RespondError(c, err, "failed to add stop")
		return
	}

	common.CreatedResponse(c, stop)
}

// ReorderStops applies a manual stop order
// PUT /api/v1/tours/:id/stops/order
func (h *Handler) ReorderStops(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	var req ReorderStopsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	stops, err := h.service.ReorderStops(c.Request.Context(), tourID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to reorder stops")
		return
	}

	common.SuccessResponse(c, stops)
}

// UpdateStop updates a stop's details
// PUT /api/v1/stops/:id
func (h *Handler) UpdateStop(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	var req UpdateStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	stop, err := h.service.UpdateStop(c.Request.Context(), stopID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to update stop")
		return
	}

	common.SuccessResponse(c, stop)
}

// DeleteStop removes a stop
// DELETE /api/v1/stops/:id
func (h *Handler) DeleteStop(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	if err := h.service.DeleteStop(c.Request.Context(), stopID); err != nil {
		common.RespondError(c, err, "failed to delete stop")
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

// StartStop marks a stop in progress
// POST /api/v1/stops/:id/start
func (h *Handler) StartStop(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	stop, err := h.service.StartStop(c.Request.Context(), stopID)
	if err != nil {
		common.RespondError(c, err, "failed to start stop")
		return
	}

	common.SuccessResponse(c, stop)
}

// CompleteStop marks a stop delivered
// POST /api/v1/stops/:id/complete
func (h *Handler) CompleteStop(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	var req CompleteStopRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	stop, err := h.service.FinishStop(c.Request.Context(), stopID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to complete stop")
		return
	}

	common.SuccessResponse(c, stop)
}

// SkipStop defers a stop
// POST /api/v1/stops/:id/skip
func (h *Handler) SkipStop(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	var req SkipStopRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	stop, err := h.service.SkipStop(c.Request.Context(), stopID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to skip stop")
		return
	}

	common.SuccessResponse(c, stop)
}

// RescheduleStop moves a stop to a future date
// POST /api/v1/stops/:id/reschedule
func (h *Handler) RescheduleStop(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	var req RescheduleStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	stop, err := h.service.RescheduleStop(c.Request.Context(), stopID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to reschedule stop")
		return
	}

	common.SuccessResponse(c, stop)
}

// CollectCash records a cash collection
// POST /api/v1/stops/:id/cash
func (h *Handler) CollectCash(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	var req CollectCashRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	stop, err := h.service.CollectCash(c.Request.Context(), stopID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to collect cash")
		return
	}

	common.SuccessResponse(c, stop)
}

// GetStopNavigationURL returns a Google Maps link for one stop
// GET /api/v1/stops/:id/navigation
func (h *Handler) GetStopNavigationURL(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	url, err := h.service.StopNavigationURL(c.Request.Context(), stopID)
	if err != nil {
		common.RespondError(c, err, "failed to build navigation URL")
		return
	}

	common.SuccessResponse(c, gin.H{"url": url})
}

// ========================================
// DRIVER TOKEN ACCESS
// ========================================

func parseTourFilters(c *gin.Context) (TourListFilters, error) {
	var filters TourListFilters
	if raw := c.Query("status"); raw != "" {
		status := TourStatus(raw)
		filters.Status = &status
	}
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filters, errInvalidDateFilter
		}
		filters.Date = &d
	}
	return filters, nil
}

var errInvalidDateFilter = errors.New("invalid date filter, expected YYYY-MM-DD")

// GetTourByToken serves the driver's tour view without staff identity
// GET /api/v1/driver/tour
func (h *Handler) GetTourByToken(c *gin.Context) {
	token, err := uuid.Parse(c.GetHeader(TourTokenHeader))
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "missing or invalid tour token")
		return
	}

	response, err := h.service.GetTourByToken(c.Request.Context(), token)
	if err != nil {
		common.RespondError(c, err, "failed to get tour")
		return
	}

	common.SuccessResponse(c, response)
}
