package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apotheka-systems/botendienst/pkg/common"
)

const statusOK = "OK"

// Client calls the Google Directions API. The base URL is configurable so
// tests can point it at a local server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a directions client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// OptimizedRoundTrip requests a driving round trip from origin back to origin
// with the given waypoints, letting the service pick the visiting order.
// The returned WaypointOrder is a permutation of indices into waypoints.
func (c *Client) OptimizedRoundTrip(ctx context.Context, origin string, waypoints []string, apiKey string) (*RoundTrip, error) {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", origin) // Back to start: round trip
	params.Set("key", apiKey)
	params.Set("mode", "driving")
	params.Set("language", "de")

	if len(waypoints) > 0 {
		params.Set("waypoints", "optimize:true|"+strings.Join(waypoints, "|"))
	}

	endpoint := c.baseURL + "/maps/api/directions/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, common.NewInternalServerError("failed to build directions request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.NewBadGatewayError("directions service unreachable", err)
	}
	defer resp.Body.Close()

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, common.NewBadGatewayError("invalid response from directions service", err)
	}

	if body.Status != statusOK {
		message := body.ErrorMessage
		if message == "" {
			message = fmt.Sprintf("API Status: %s", body.Status)
		}
		return nil, common.NewBadGatewayError(message)
	}

	if len(body.Routes) == 0 {
		return nil, common.NewBadGatewayError("directions service returned no routes")
	}

	r := body.Routes[0]
	trip := &RoundTrip{
		WaypointOrder:   r.WaypointOrder,
		EncodedPolyline: r.OverviewPolyline.Points,
	}

	for _, l := range r.Legs {
		trip.TotalDistanceMeters += l.Distance.Value
		trip.TotalDurationSeconds += l.Duration.Value
		trip.Legs = append(trip.Legs, Leg{
			DistanceText: l.Distance.Text,
			DurationText: l.Duration.Text,
			StartAddress: l.StartAddress,
			EndAddress:   l.EndAddress,
		})
	}

	return trip, nil
}
