package routing

// Google encoded polyline algorithm, 1e-5 precision. Stored route geometries
// round-trip through third-party encoders, so the bit layout here must match
// the standard exactly.

// DecodePolyline converts an encoded polyline string into coordinate pairs.
// It is total: malformed or truncated input yields whatever prefix parses
// cleanly, and empty input yields an empty slice.
func DecodePolyline(encoded string) []LatLng {
	var points []LatLng
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		dlat, next, ok := decodeVarint(encoded, index)
		if !ok {
			return points
		}
		lat += dlat

		dlng, next2, ok := decodeVarint(encoded, next)
		if !ok {
			return points
		}
		lng += dlng
		index = next2

		points = append(points, LatLng{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return points
}

// decodeVarint reads one zigzag-encoded signed value starting at index.
// Each character carries 5 payload bits; the 0x20 bit signals continuation.
func decodeVarint(encoded string, index int) (value, next int, ok bool) {
	shift, result := 0, 0
	for {
		if index >= len(encoded) {
			return 0, index, false
		}
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	// Un-zigzag: low bit holds the sign
	if result&1 != 0 {
		return ^(result >> 1), index, true
	}
	return result >> 1, index, true
}

// EncodePolyline renders coordinate pairs as an encoded polyline string
func EncodePolyline(points []LatLng) string {
	var out []byte
	prevLat, prevLng := 0, 0

	for _, p := range points {
		lat := int(round(p.Lat * 1e5))
		lng := int(round(p.Lng * 1e5))

		out = appendVarint(out, lat-prevLat)
		out = appendVarint(out, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return string(out)
}

func appendVarint(out []byte, value int) []byte {
	// Zigzag
	v := value << 1
	if value < 0 {
		v = ^v
	}

	for v >= 0x20 {
		out = append(out, byte((0x20|(v&0x1f))+63))
		v >>= 5
	}
	return append(out, byte(v+63))
}

func round(f float64) float64 {
	if f < 0 {
		return float64(int(f - 0.5))
	}
	return float64(int(f + 0.5))
}
