package routing

import "fmt"

// ReconcileOrder maps a directions service permutation back onto the original
// stop list.
//
// The permutation indexes into the waypoint array that was submitted: stops
// with a valid address, minus the first such stop when no explicit start
// address anchored the round trip (that stop rode along as origin and
// destination instead). This function re-applies the same filtering, applies
// the permutation, re-inserts the implicit origin at position 0, appends the
// address-less stops unchanged, and assigns a fresh contiguous sort_order.
//
// A permutation whose length does not match the submitted waypoint count, or
// that contains an out-of-range or duplicate index, is rejected outright: a
// misaligned result would silently route drivers to the wrong addresses.
//
// The input slice is not modified; every output stop is a copy. The output
// always contains exactly the input stops, each once.
func ReconcileOrder(stops []Stop, hadExplicitOrigin bool, waypointOrder []int) ([]Stop, error) {
	var valid, invalid []Stop
	for _, s := range stops {
		if s.HasValidAddress() {
			valid = append(valid, s)
		} else {
			invalid = append(invalid, s)
		}
	}

	waypoints := valid
	if !hadExplicitOrigin && len(valid) > 0 {
		waypoints = valid[1:]
	}

	if len(waypointOrder) != len(waypoints) {
		return nil, fmt.Errorf(
			"waypoint order length %d does not match submitted waypoint count %d",
			len(waypointOrder), len(waypoints),
		)
	}

	ordered := make([]Stop, 0, len(stops))
	seen := make(map[int]bool, len(waypointOrder))
	for _, idx := range waypointOrder {
		if idx < 0 || idx >= len(waypoints) {
			return nil, fmt.Errorf("waypoint order index %d out of range [0,%d)", idx, len(waypoints))
		}
		if seen[idx] {
			return nil, fmt.Errorf("waypoint order index %d appears more than once", idx)
		}
		seen[idx] = true
		ordered = append(ordered, waypoints[idx])
	}

	if !hadExplicitOrigin && len(valid) > 0 {
		ordered = append([]Stop{valid[0]}, ordered...)
	}

	ordered = append(ordered, invalid...)
	assignSortOrder(ordered)

	return ordered, nil
}
