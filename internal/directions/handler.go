package directions

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apotheka-systems/botendienst/internal/routing"
	"github.com/apotheka-systems/botendienst/pkg/common"
	"github.com/apotheka-systems/botendienst/pkg/logger"
	"github.com/apotheka-systems/botendienst/pkg/middleware"
)

// Handler exposes the route-optimization proxy endpoint. Browsers cannot call
// the directions API directly (same-origin policy), so clients post their
// stop list here and this service performs the upstream call.
//
// The request/response shape is a fixed external contract shared with mobile
// clients; it does not use the common response envelope.
type Handler struct {
	client *Client
}

// NewHandler creates a directions proxy handler
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// proxyError matches what clients of this endpoint branch on
type proxyError struct {
	Error string `json:"error"`
}

// OptimizeRoute handles POST /api/v1/routes/optimize
func (h *Handler) OptimizeRoute(c *gin.Context) {
	var req routing.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, proxyError{Error: "invalid request body"})
		return
	}

	if len(req.Stops) < 2 {
		c.JSON(http.StatusBadRequest, proxyError{Error: "at least 2 stops required"})
		return
	}
	if req.APIKey == "" {
		c.JSON(http.StatusBadRequest, proxyError{Error: "directions API key is missing"})
		return
	}

	var waypoints []string
	for _, s := range req.Stops {
		if s.HasValidAddress() {
			waypoints = append(waypoints, s.Address())
		}
	}
	if len(waypoints) < 2 {
		c.JSON(http.StatusBadRequest, proxyError{Error: "not enough valid addresses"})
		return
	}

	// With an explicit start address every stop is an optimizable waypoint.
	// Without one the first valid stop anchors the round trip as origin and
	// destination, and only the rest are submitted for reordering.
	origin := req.StartAddress
	submitted := waypoints
	if origin == "" {
		origin = waypoints[0]
		submitted = waypoints[1:]
	}

	trip, err := h.client.OptimizedRoundTrip(c.Request.Context(), origin, submitted, req.APIKey)
	middleware.ObserveRouteOptimization(string(routing.MethodDirections), err)
	if err != nil {
		logger.WithContext(c.Request.Context()).Warn("route optimization failed", zap.Error(err))
		status := http.StatusBadGateway
		if appErr, ok := err.(*common.AppError); ok {
			status = appErr.Code
		}
		c.JSON(status, proxyError{Error: err.Error()})
		return
	}

	ordered, err := routing.ReconcileOrder(req.Stops, req.StartAddress != "", trip.WaypointOrder)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("waypoint order reconciliation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, proxyError{Error: "directions service returned an inconsistent waypoint order"})
		return
	}

	details := routing.RouteDetails{
		TotalDistanceKm:  math.Round(float64(trip.TotalDistanceMeters)/1000*100) / 100,
		TotalDurationMin: int(math.Round(float64(trip.TotalDurationSeconds) / 60)),
	}
	for _, l := range trip.Legs {
		details.Legs = append(details.Legs, routing.RouteLeg{
			Distance:     l.DistanceText,
			Duration:     l.DurationText,
			StartAddress: l.StartAddress,
			EndAddress:   l.EndAddress,
		})
	}

	c.JSON(http.StatusOK, routing.OptimizeResponse{
		OptimizedStops:  ordered,
		Details:         details,
		EncodedPolyline: trip.EncodedPolyline,
		Message: fmt.Sprintf("Route optimized: %.2f km, approx. %d min",
			details.TotalDistanceKm, details.TotalDurationMin),
	})
}
