package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coordStop(id string, lat, lng float64) Stop {
	return Stop{
		ID:        id,
		Street:    "Hauptstr. 1",
		City:      "Berlin",
		Latitude:  &lat,
		Longitude: &lng,
	}
}

func plzStop(id, plz string) Stop {
	return Stop{ID: id, Street: "Hauptstr. 1", PostalCode: plz}
}

func stopIDs(stops []Stop) []string {
	ids := make([]string, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestOptimizeLocal_TooFewStops(t *testing.T) {
	result := OptimizeLocal([]Stop{coordStop("1", 52.5, 13.4)})
	assert.Equal(t, MethodNone, result.Method)
	assert.Equal(t, "at least 2 stops required for optimization", result.Message)
	assert.Len(t, result.Stops, 1)
}

func TestOptimizeLocal_NearestNeighbor(t *testing.T) {
	// Input order 1, 3, 2 but 2 is the nearest neighbor of 1
	stops := []Stop{
		coordStop("1", 52.50, 13.40),
		coordStop("3", 52.90, 13.90),
		coordStop("2", 52.51, 13.41),
	}

	result := OptimizeLocal(stops)
	assert.Equal(t, MethodCoordinates, result.Method)
	assert.Equal(t, "optimized by distance", result.Message)
	assert.Equal(t, []string{"1", "2", "3"}, stopIDs(result.Stops))

	for i, s := range result.Stops {
		assert.Equal(t, i, s.SortOrder)
	}
}

func TestOptimizeLocal_TieKeepsFirstCandidate(t *testing.T) {
	// b and c are mirror images around a, exactly equidistant; the earlier
	// candidate in input order must win
	stops := []Stop{
		coordStop("a", 52.50, 13.40),
		coordStop("b", 52.50, 13.50),
		coordStop("c", 52.50, 13.30),
	}

	result := OptimizeLocal(stops)
	assert.Equal(t, []string{"a", "b", "c"}, stopIDs(result.Stops))

	// Determinism over repeated runs
	for i := 0; i < 5; i++ {
		again := OptimizeLocal(stops)
		assert.Equal(t, stopIDs(result.Stops), stopIDs(again.Stops))
	}
}

func TestOptimizeLocal_UngeocodedAppended(t *testing.T) {
	stops := []Stop{
		plzStop("x", "10115"),
		coordStop("1", 52.50, 13.40),
		plzStop("y", "80331"),
		coordStop("2", 52.51, 13.41),
	}

	result := OptimizeLocal(stops)
	assert.Equal(t, MethodCoordinates, result.Method)
	// geocoded stops first, then the rest in original relative order
	assert.Equal(t, []string{"1", "2", "x", "y"}, stopIDs(result.Stops))
}

func TestOptimizeLocal_PostalCodeFallback(t *testing.T) {
	stops := []Stop{
		plzStop("1", "80331"),
		plzStop("2", "10115"),
		plzStop("3", "80331"),
	}

	result := OptimizeLocal(stops)
	assert.Equal(t, MethodPostalCode, result.Method)
	assert.Equal(t, "sorted by postal code (no coordinates available)", result.Message)
	// stable: equal postal codes keep input order
	assert.Equal(t, []string{"2", "1", "3"}, stopIDs(result.Stops))
}

func TestOptimizeLocal_PostalCodeFallback_OneGeocoded(t *testing.T) {
	// A single geocoded stop is not enough for the distance heuristic
	stops := []Stop{
		coordStop("geo", 52.5, 13.4),
		plzStop("2", "10115"),
	}
	stops[0].PostalCode = "99999"

	result := OptimizeLocal(stops)
	assert.Equal(t, MethodPostalCode, result.Method)
	assert.Equal(t, []string{"2", "geo"}, stopIDs(result.Stops))
}

func TestOptimizeLocal_EmptyPostalCodesFirst(t *testing.T) {
	stops := []Stop{
		plzStop("1", "10115"),
		plzStop("2", ""),
	}

	result := OptimizeLocal(stops)
	assert.Equal(t, []string{"2", "1"}, stopIDs(result.Stops))
}

func TestOptimizeLocal_InputNotMutated(t *testing.T) {
	stops := []Stop{
		coordStop("1", 52.50, 13.40),
		coordStop("3", 52.90, 13.90),
		coordStop("2", 52.51, 13.41),
	}
	stops[0].SortOrder = 7
	stops[1].SortOrder = 8
	stops[2].SortOrder = 9

	result := OptimizeLocal(stops)
	require.Equal(t, []string{"1", "2", "3"}, stopIDs(result.Stops))

	assert.Equal(t, []string{"1", "3", "2"}, stopIDs(stops))
	assert.Equal(t, 7, stops[0].SortOrder)
	assert.Equal(t, 8, stops[1].SortOrder)
	assert.Equal(t, 9, stops[2].SortOrder)
}
