package routing

import (
	"net/url"
	"strings"
)

// NavigationURL builds a Google Maps driving-directions deep link for a
// single stop. Returns "" when the stop has no street.
func NavigationURL(stop Stop) string {
	if stop.Street == "" {
		return ""
	}

	return "https://www.google.com/maps/dir/?api=1&destination=" +
		url.QueryEscape(stop.Address()) + "&travelmode=driving"
}

// TourMapsURL builds a multi-stop Google Maps directions link: first
// valid-address stop as origin, last as destination, the rest as waypoints.
// Returns "" when no stop has a usable address, and a plain search link when
// only one does.
func TourMapsURL(stops []Stop) string {
	var addresses []string
	for _, s := range stops {
		if s.Street == "" {
			continue
		}
		addresses = append(addresses, url.QueryEscape(
			strings.TrimSpace(s.Street+", "+s.PostalCode+" "+s.City),
		))
	}

	if len(addresses) == 0 {
		return ""
	}
	if len(addresses) == 1 {
		return "https://www.google.com/maps/search/?api=1&query=" + addresses[0]
	}

	origin := addresses[0]
	destination := addresses[len(addresses)-1]
	waypoints := strings.Join(addresses[1:len(addresses)-1], "|")

	u := "https://www.google.com/maps/dir/?api=1&origin=" + origin + "&destination=" + destination
	if waypoints != "" {
		u += "&waypoints=" + waypoints
	}
	return u + "&travelmode=driving"
}
