package directions

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apotheka-systems/botendienst/internal/routing"
)

func setupProxyRouter(googleURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(NewClient(googleURL))
	router.POST("/api/v1/routes/optimize", handler.OptimizeRoute)
	return router
}

func proxyStop(id, street string) routing.Stop {
	return routing.Stop{ID: id, Street: street, PostalCode: "10115", City: "Berlin"}
}

func postOptimize(t *testing.T, router *gin.Engine, req routing.OptimizeRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/routes/optimize", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)
	return w
}

func TestOptimizeRouteProxy_Success(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Two waypoints were submitted (s1 anchors the trip); reverse them
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"waypoint_order": [1, 0],
				"overview_polyline": {"points": "_p~iF~ps|U"},
				"legs": [
					{"distance": {"text": "5,2 km", "value": 5200}, "duration": {"text": "12 Minuten", "value": 720}},
					{"distance": {"text": "3,1 km", "value": 3150}, "duration": {"text": "8 Minuten", "value": 480}}
				]
			}]
		}`))
	}))
	defer google.Close()

	router := setupProxyRouter(google.URL)
	w := postOptimize(t, router, routing.OptimizeRequest{
		Stops:  []routing.Stop{proxyStop("s1", "Erste Str. 1"), proxyStop("s2", "Zweite Str. 2"), proxyStop("s3", "Dritte Str. 3")},
		APIKey: "test-key",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp routing.OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// implicit origin s1 back at position 0, then s3, s2 per waypoint_order
	require.Len(t, resp.OptimizedStops, 3)
	assert.Equal(t, "s1", resp.OptimizedStops[0].ID)
	assert.Equal(t, "s3", resp.OptimizedStops[1].ID)
	assert.Equal(t, "s2", resp.OptimizedStops[2].ID)

	assert.Equal(t, 8.35, resp.Details.TotalDistanceKm)
	assert.Equal(t, 20, resp.Details.TotalDurationMin)
	assert.Equal(t, "_p~iF~ps|U", resp.EncodedPolyline)
	assert.Equal(t, "Route optimized: 8.35 km, approx. 20 min", resp.Message)
}

func TestOptimizeRouteProxy_ValidationErrors(t *testing.T) {
	hits := 0
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer google.Close()
	router := setupProxyRouter(google.URL)

	// too few stops
	w := postOptimize(t, router, routing.OptimizeRequest{
		Stops:  []routing.Stop{proxyStop("s1", "Erste Str. 1")},
		APIKey: "k",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// missing API key
	w = postOptimize(t, router, routing.OptimizeRequest{
		Stops: []routing.Stop{proxyStop("s1", "Erste Str. 1"), proxyStop("s2", "Zweite Str. 2")},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// not enough valid addresses
	w = postOptimize(t, router, routing.OptimizeRequest{
		Stops:  []routing.Stop{proxyStop("s1", "Erste Str. 1"), {ID: "s2"}},
		APIKey: "k",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 0, hits)
}

func TestOptimizeRouteProxy_UpstreamFailure(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT"}`))
	}))
	defer google.Close()

	router := setupProxyRouter(google.URL)
	w := postOptimize(t, router, routing.OptimizeRequest{
		Stops:  []routing.Stop{proxyStop("s1", "Erste Str. 1"), proxyStop("s2", "Zweite Str. 2"), proxyStop("s3", "Dritte Str. 3")},
		APIKey: "k",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp proxyError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "API Status: OVER_QUERY_LIMIT")
}

func TestOptimizeRouteProxy_InconsistentWaypointOrder(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// three indices for two submitted waypoints
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{"waypoint_order": [0, 1, 2], "legs": [], "overview_polyline": {"points": ""}}]
		}`))
	}))
	defer google.Close()

	router := setupProxyRouter(google.URL)
	w := postOptimize(t, router, routing.OptimizeRequest{
		Stops:  []routing.Stop{proxyStop("s1", "Erste Str. 1"), proxyStop("s2", "Zweite Str. 2"), proxyStop("s3", "Dritte Str. 3")},
		APIKey: "k",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestOptimizeRouteProxy_ExplicitStartAddress(t *testing.T) {
	var gotWaypoints string
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotWaypoints = r.URL.Query().Get("waypoints")
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{"waypoint_order": [1, 0], "legs": [], "overview_polyline": {"points": ""}}]
		}`))
	}))
	defer google.Close()

	router := setupProxyRouter(google.URL)
	w := postOptimize(t, router, routing.OptimizeRequest{
		Stops:        []routing.Stop{proxyStop("s1", "Erste Str. 1"), proxyStop("s2", "Zweite Str. 2")},
		StartAddress: "Apotheke, 10115 Berlin",
		APIKey:       "k",
	})

	require.Equal(t, http.StatusOK, w.Code)

	// both stops submitted as waypoints, none consumed as origin
	assert.Contains(t, gotWaypoints, "Erste Str. 1")
	assert.Contains(t, gotWaypoints, "Zweite Str. 2")

	var resp routing.OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s2", resp.OptimizedStops[0].ID)
	assert.Equal(t, "s1", resp.OptimizedStops[1].ID)
}
