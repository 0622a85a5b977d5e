package tracking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/apotheka-systems/botendienst/pkg/common"
	"github.com/apotheka-systems/botendienst/pkg/logger"
	ws "github.com/apotheka-systems/botendienst/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The service sits behind the pharmacy gateway; origin policy lives there
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler handles HTTP requests for driver tracking
type Handler struct {
	service *Service
	hub     *ws.Hub
}

// NewHandler creates a new tracking handler
func NewHandler(service *Service, hub *ws.Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// UpdatePosition records the driver's current position for a tour
// POST /api/v1/tours/:id/position
func (h *Handler) UpdatePosition(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	var req UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	pos, err := h.service.UpdatePosition(c.Request.Context(), tourID, &req)
	if err != nil {
		common.RespondError(c, err, "failed to record position")
		return
	}

	common.SuccessResponse(c, pos)
}

// GetLatestPosition returns the most recent position of a tour's driver
// GET /api/v1/tours/:id/position
func (h *Handler) GetLatestPosition(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	pos, err := h.service.GetLatestPosition(c.Request.Context(), tourID)
	if err != nil {
		common.RespondError(c, err, "failed to get position")
		return
	}

	common.SuccessResponse(c, pos)
}

// GetHistory returns a tour's recorded position trace
// GET /api/v1/tours/:id/position/history?limit=
func (h *Handler) GetHistory(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	positions, err := h.service.GetHistory(c.Request.Context(), tourID, limit)
	if err != nil {
		common.RespondError(c, err, "failed to get position history")
		return
	}

	common.SuccessResponse(c, positions)
}

// WatchTour upgrades to a websocket streaming live updates for one tour
// GET /api/v1/tours/:id/watch
func (h *Handler) WatchTour(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid tour ID")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithContext(c.Request.Context()).Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(uuid.New().String(), tourID.String(), conn, h.hub, logger.Get())
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
