package directions

// Wire types for the Google Directions API, trimmed to the fields the
// round-trip optimization consumes.

type directionsResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Routes       []route `json:"routes"`
}

type route struct {
	WaypointOrder    []int    `json:"waypoint_order"`
	Legs             []leg    `json:"legs"`
	OverviewPolyline polyline `json:"overview_polyline"`
}

type leg struct {
	Distance     textValue `json:"distance"`
	Duration     textValue `json:"duration"`
	StartAddress string    `json:"start_address"`
	EndAddress   string    `json:"end_address"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"` // meters for distance, seconds for duration
}

type polyline struct {
	Points string `json:"points"`
}

// RoundTrip is the parsed result of one optimized round-trip request
type RoundTrip struct {
	WaypointOrder        []int
	Legs                 []Leg
	TotalDistanceMeters  int
	TotalDurationSeconds int
	EncodedPolyline      string
}

// Leg is one segment of the round trip
type Leg struct {
	DistanceText string
	DurationText string
	StartAddress string
	EndAddress   string
}
