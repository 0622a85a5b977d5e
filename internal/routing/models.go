package routing

import "fmt"

// OptimizeMethod identifies which strategy produced a stop ordering
type OptimizeMethod string

const (
	MethodNone        OptimizeMethod = "none"        // Not enough stops to optimize
	MethodCoordinates OptimizeMethod = "coordinates" // Nearest-neighbor over geocoded stops
	MethodPostalCode  OptimizeMethod = "postal_code" // Lexicographic postal-code fallback
	MethodDirections  OptimizeMethod = "directions"  // External directions service round trip
)

// LatLng is a decoded polyline point in decimal degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Stop is the routing view of a delivery stop. Optimizers treat stops as
// immutable input and return reordered copies; committing the new sort_order
// back to storage is the caller's job.
type Stop struct {
	ID           string   `json:"id"`
	CustomerName string   `json:"customer_name,omitempty"`
	Street       string   `json:"street"`
	PostalCode   string   `json:"postal_code,omitempty"`
	City         string   `json:"city,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	SortOrder    int      `json:"sort_order"`
}

// HasCoordinates reports whether the stop is eligible for coordinate-based routing
func (s Stop) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// HasValidAddress reports whether the stop can be submitted as a waypoint.
// A street is required, plus at least one of postal code or city.
func (s Stop) HasValidAddress() bool {
	return s.Street != "" && (s.PostalCode != "" || s.City != "")
}

// Address renders the stop as a geocodable address string
func (s Stop) Address() string {
	return fmt.Sprintf("%s, %s %s, Germany", s.Street, s.PostalCode, s.City)
}

// LocalResult is the outcome of an on-device optimization pass
type LocalResult struct {
	Stops   []Stop         `json:"stops"`
	Method  OptimizeMethod `json:"method"`
	Message string         `json:"message"`
}

// RouteLeg describes one leg of an optimized round trip
type RouteLeg struct {
	Distance     string `json:"distance"`
	Duration     string `json:"duration"`
	StartAddress string `json:"startAddress"`
	EndAddress   string `json:"endAddress"`
}

// RouteDetails aggregates metrics over all legs of an optimized route
type RouteDetails struct {
	TotalDistanceKm  float64    `json:"totalDistanceKm"`
	TotalDurationMin int        `json:"totalDurationMin"`
	Legs             []RouteLeg `json:"legs"`
}

// OptimizeRequest is the wire format of the optimization proxy endpoint
type OptimizeRequest struct {
	Stops        []Stop `json:"stops"`
	StartAddress string `json:"startAddress,omitempty"`
	APIKey       string `json:"apiKey"`
}

// OptimizeResponse is the proxy's success body. Failures carry a non-2xx
// status and an Error field instead; callers must treat both as failure.
type OptimizeResponse struct {
	OptimizedStops  []Stop       `json:"optimizedStops"`
	Details         RouteDetails `json:"details"`
	EncodedPolyline string       `json:"encodedPolyline,omitempty"`
	Message         string       `json:"message"`
	Error           string       `json:"error,omitempty"`
}

// Result is a completed remote optimization: the reordered stops plus the
// route geometry, both encoded (for persistence) and decoded (for rendering).
// It is ephemeral; nothing here is written to storage by the optimizer itself.
type Result struct {
	Stops           []Stop       `json:"stops"`
	Details         RouteDetails `json:"details"`
	RoutePolyline   []LatLng     `json:"routePolyline,omitempty"`
	EncodedPolyline string       `json:"encodedPolyline,omitempty"`
	Message         string       `json:"message"`
}
