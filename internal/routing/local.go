package routing

import "sort"

// OptimizeLocal reorders stops without any external call.
//
// With at least two geocoded stops it runs a greedy nearest-neighbor pass:
// start at the first geocoded stop in input order, then repeatedly hop to the
// closest unvisited geocoded stop. Ties keep the first candidate encountered,
// so a fixed input always yields the same order. Stops without coordinates
// are appended afterwards in their original relative order.
//
// With fewer than two geocoded stops it falls back to sorting the whole list
// by postal code (empty postal codes first).
//
// This is a greedy approximation, not a TSP solver; it runs synchronously on
// a driver's daily stop count, where O(n²) is fine.
func OptimizeLocal(stops []Stop) LocalResult {
	if len(stops) < 2 {
		return LocalResult{
			Stops:   append([]Stop(nil), stops...),
			Method:  MethodNone,
			Message: "at least 2 stops required for optimization",
		}
	}

	var withCoords, withoutCoords []Stop
	for _, s := range stops {
		if s.HasCoordinates() {
			withCoords = append(withCoords, s)
		} else {
			withoutCoords = append(withoutCoords, s)
		}
	}

	if len(withCoords) >= 2 {
		optimized := nearestNeighbor(withCoords)
		result := append(optimized, withoutCoords...)
		assignSortOrder(result)
		return LocalResult{
			Stops:   result,
			Method:  MethodCoordinates,
			Message: "optimized by distance",
		}
	}

	// Postal codes sort roughly by geography in Germany, which beats
	// arbitrary order when coordinates are missing.
	sorted := append([]Stop(nil), stops...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PostalCode < sorted[j].PostalCode
	})
	assignSortOrder(sorted)
	return LocalResult{
		Stops:   sorted,
		Method:  MethodPostalCode,
		Message: "sorted by postal code (no coordinates available)",
	}
}

func nearestNeighbor(stops []Stop) []Stop {
	optimized := make([]Stop, 0, len(stops))
	optimized = append(optimized, stops[0])
	remaining := append([]Stop(nil), stops[1:]...)

	for len(remaining) > 0 {
		current := optimized[len(optimized)-1]
		nearestIndex := 0
		nearestDistance := Haversine(
			*current.Latitude, *current.Longitude,
			*remaining[0].Latitude, *remaining[0].Longitude,
		)

		for i := 1; i < len(remaining); i++ {
			d := Haversine(
				*current.Latitude, *current.Longitude,
				*remaining[i].Latitude, *remaining[i].Longitude,
			)
			// Strict less-than keeps the first candidate on ties
			if d < nearestDistance {
				nearestDistance = d
				nearestIndex = i
			}
		}

		optimized = append(optimized, remaining[nearestIndex])
		remaining = append(remaining[:nearestIndex], remaining[nearestIndex+1:]...)
	}

	return optimized
}

func assignSortOrder(stops []Stop) {
	for i := range stops {
		stops[i].SortOrder = i
	}
}
