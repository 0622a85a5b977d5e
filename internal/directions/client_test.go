package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizedRoundTrip(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/directions/json", r.URL.Path)
		gotQuery = map[string]string{
			"origin":      r.URL.Query().Get("origin"),
			"destination": r.URL.Query().Get("destination"),
			"waypoints":   r.URL.Query().Get("waypoints"),
			"mode":        r.URL.Query().Get("mode"),
			"language":    r.URL.Query().Get("language"),
			"key":         r.URL.Query().Get("key"),
		}

		w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"waypoint_order": [1, 0],
				"overview_polyline": {"points": "_p~iF~ps|U"},
				"legs": [
					{"distance": {"text": "5,2 km", "value": 5200}, "duration": {"text": "12 Minuten", "value": 720}, "start_address": "A", "end_address": "B"},
					{"distance": {"text": "3,1 km", "value": 3100}, "duration": {"text": "8 Minuten", "value": 480}, "start_address": "B", "end_address": "C"},
					{"distance": {"text": "4,0 km", "value": 4000}, "duration": {"text": "9 Minuten", "value": 540}, "start_address": "C", "end_address": "A"}
				]
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	trip, err := client.OptimizedRoundTrip(context.Background(),
		"Apotheke, 10115 Berlin, Germany",
		[]string{"W1, Berlin", "W2, Berlin"},
		"test-key")
	require.NoError(t, err)

	// round trip: origin doubles as destination
	assert.Equal(t, "Apotheke, 10115 Berlin, Germany", gotQuery["origin"])
	assert.Equal(t, gotQuery["origin"], gotQuery["destination"])
	assert.Equal(t, "optimize:true|W1, Berlin|W2, Berlin", gotQuery["waypoints"])
	assert.Equal(t, "driving", gotQuery["mode"])
	assert.Equal(t, "de", gotQuery["language"])
	assert.Equal(t, "test-key", gotQuery["key"])

	assert.Equal(t, []int{1, 0}, trip.WaypointOrder)
	assert.Equal(t, 12300, trip.TotalDistanceMeters)
	assert.Equal(t, 1740, trip.TotalDurationSeconds)
	assert.Equal(t, "_p~iF~ps|U", trip.EncodedPolyline)
	require.Len(t, trip.Legs, 3)
	assert.Equal(t, "5,2 km", trip.Legs[0].DistanceText)
	assert.Equal(t, "A", trip.Legs[0].StartAddress)
}

func TestOptimizedRoundTrip_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.OptimizedRoundTrip(context.Background(), "A", []string{"B"}, "bad-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The provided API key is invalid.")
}

func TestOptimizedRoundTrip_StatusWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.OptimizedRoundTrip(context.Background(), "A", []string{"B"}, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API Status: ZERO_RESULTS")
}

func TestOptimizedRoundTrip_NoRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OK", "routes": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.OptimizedRoundTrip(context.Background(), "A", []string{"B"}, "key")
	assert.Error(t, err)
}

func TestOptimizedRoundTrip_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	_, err := client.OptimizedRoundTrip(context.Background(), "A", []string{"B"}, "key")
	assert.Error(t, err)
}
