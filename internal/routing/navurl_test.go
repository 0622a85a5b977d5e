package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigationURL(t *testing.T) {
	stop := Stop{Street: "Hauptstr. 1", PostalCode: "10115", City: "Berlin"}

	url := NavigationURL(stop)
	assert.Contains(t, url, "https://www.google.com/maps/dir/?api=1")
	assert.Contains(t, url, "destination=Hauptstr.+1%2C+10115+Berlin%2C+Germany")
	assert.Contains(t, url, "travelmode=driving")
}

func TestNavigationURL_NoStreet(t *testing.T) {
	assert.Equal(t, "", NavigationURL(Stop{City: "Berlin"}))
}

func TestTourMapsURL_Empty(t *testing.T) {
	assert.Equal(t, "", TourMapsURL(nil))
	assert.Equal(t, "", TourMapsURL([]Stop{{City: "Berlin"}}))
}

func TestTourMapsURL_SingleStop(t *testing.T) {
	url := TourMapsURL([]Stop{{Street: "Hauptstr. 1", PostalCode: "10115", City: "Berlin"}})
	assert.Contains(t, url, "https://www.google.com/maps/search/?api=1&query=")
}

func TestTourMapsURL_MultiStop(t *testing.T) {
	stops := []Stop{
		{Street: "Erste Str. 1", PostalCode: "10115", City: "Berlin"},
		{Street: "Zweite Str. 2", PostalCode: "10117", City: "Berlin"},
		{Street: "Dritte Str. 3", PostalCode: "10119", City: "Berlin"},
	}

	url := TourMapsURL(stops)
	assert.Contains(t, url, "origin=Erste+Str.+1")
	assert.Contains(t, url, "destination=Dritte+Str.+3")
	assert.Contains(t, url, "waypoints=Zweite+Str.+2")
	assert.Contains(t, url, "travelmode=driving")
}

func TestTourMapsURL_TwoStopsNoWaypoints(t *testing.T) {
	stops := []Stop{
		{Street: "Erste Str. 1", PostalCode: "10115", City: "Berlin"},
		{Street: "Zweite Str. 2", PostalCode: "10117", City: "Berlin"},
	}

	url := TourMapsURL(stops)
	assert.Contains(t, url, "origin=")
	assert.Contains(t, url, "destination=")
	assert.NotContains(t, url, "waypoints=")
}

func TestTourMapsURL_SkipsAddresslessStops(t *testing.T) {
	stops := []Stop{
		{Street: "Erste Str. 1", PostalCode: "10115", City: "Berlin"},
		{ID: "no-address"},
		{Street: "Zweite Str. 2", PostalCode: "10117", City: "Berlin"},
	}

	url := TourMapsURL(stops)
	assert.Contains(t, url, "origin=Erste+Str.+1")
	assert.Contains(t, url, "destination=Zweite+Str.+2")
}
