package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apotheka-systems/botendienst/pkg/common"
)

const optimizePath = "/api/v1/routes/optimize"

// RemoteOptimizer requests an optimized round trip from the directions proxy.
// The proxy talks to the external directions service; this client never does.
type RemoteOptimizer struct {
	proxyURL   string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteOptimizer creates a remote optimizer against the given proxy base URL
func NewRemoteOptimizer(proxyURL, apiKey string) *RemoteOptimizer {
	return &RemoteOptimizer{
		proxyURL: strings.TrimSuffix(proxyURL, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// OptimizeRoute submits the stops for round-trip optimization and returns the
// reordered list plus route geometry. If startAddress is empty, the first
// valid-address stop anchors the round trip and comes back at position 0.
//
// Validation failures and upstream errors are both reported as an error with
// a user-presentable message; no network call is made when validation fails,
// and the input stops are never modified either way.
func (o *RemoteOptimizer) OptimizeRoute(ctx context.Context, stops []Stop, startAddress string) (*Result, error) {
	if len(stops) < 2 {
		return nil, common.NewBadRequestError("at least 2 stops required for optimization")
	}
	if o.apiKey == "" {
		return nil, common.NewBadRequestError("directions API key is missing")
	}

	validCount := 0
	for _, s := range stops {
		if s.HasValidAddress() {
			validCount++
		}
	}
	if validCount < 2 {
		return nil, common.NewBadRequestError("not enough stops with a valid address")
	}

	reqBody, err := json.Marshal(OptimizeRequest{
		Stops:        stops,
		StartAddress: startAddress,
		APIKey:       o.apiKey,
	})
	if err != nil {
		return nil, common.NewInternalServerError("failed to encode optimization request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.proxyURL+optimizePath, bytes.NewReader(reqBody))
	if err != nil {
		return nil, common.NewInternalServerError("failed to build optimization request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, common.NewBadGatewayError("route optimization unavailable", err)
	}
	defer resp.Body.Close()

	var body OptimizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, common.NewBadGatewayError("invalid response from optimization service", err)
	}

	// Non-2xx status and an error field in a 2xx body are both failures
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || body.Error != "" {
		message := body.Error
		if message == "" {
			message = fmt.Sprintf("route optimization failed with status %d", resp.StatusCode)
		}
		return nil, common.NewBadGatewayError(message)
	}

	result := &Result{
		Stops:           body.OptimizedStops,
		Details:         body.Details,
		EncodedPolyline: body.EncodedPolyline,
		Message:         body.Message,
	}
	if body.EncodedPolyline != "" {
		result.RoutePolyline = DecodePolyline(body.EncodedPolyline)
	}

	return result, nil
}
