package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_BerlinMunich(t *testing.T) {
	// Berlin Mitte to Munich Marienplatz, roughly 504 km as the crow flies
	d := Haversine(52.5200, 13.4050, 48.1351, 11.5820)
	assert.InDelta(t, 504.2, d, 1.0)
}

func TestHaversine_SamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(52.52, 13.405, 52.52, 13.405))
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(52.52, 13.405, 48.1351, 11.5820)
	b := Haversine(48.1351, 11.5820, 52.52, 13.405)
	assert.InDelta(t, a, b, 1e-9)
}

func TestHaversine_ShortHop(t *testing.T) {
	// Two addresses a couple of streets apart; sub-kilometer but non-zero
	d := Haversine(52.5200, 13.4050, 52.5220, 13.4100)
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, 1.0)
}

func TestHaversine_AcrossEquator(t *testing.T) {
	d := Haversine(1.0, 10.0, -1.0, 10.0)
	assert.InDelta(t, 222.4, d, 0.5)
}
