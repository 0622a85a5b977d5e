package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addressStop(id string) Stop {
	return Stop{ID: id, Street: id + " Str. 1", PostalCode: "10115", City: "Berlin"}
}

func TestReconcileOrder_ImplicitOrigin(t *testing.T) {
	// No explicit start address: s1 rode along as origin/destination and the
	// permutation covers only s2..s4
	stops := []Stop{addressStop("s1"), addressStop("s2"), addressStop("s3"), addressStop("s4")}

	ordered, err := ReconcileOrder(stops, false, []int{2, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s4", "s2", "s3"}, stopIDs(ordered))

	for i, s := range ordered {
		assert.Equal(t, i, s.SortOrder)
	}
}

func TestReconcileOrder_ExplicitOrigin(t *testing.T) {
	// An explicit start address anchored the trip, so every stop was a waypoint
	stops := []Stop{addressStop("s1"), addressStop("s2"), addressStop("s3")}

	ordered, err := ReconcileOrder(stops, true, []int{1, 2, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s3", "s1"}, stopIDs(ordered))
}

func TestReconcileOrder_InvalidAddressesAppended(t *testing.T) {
	noAddress := Stop{ID: "bad"}
	stops := []Stop{addressStop("s1"), noAddress, addressStop("s2"), addressStop("s3")}

	ordered, err := ReconcileOrder(stops, false, []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3", "s2", "bad"}, stopIDs(ordered))
}

func TestReconcileOrder_Multiset(t *testing.T) {
	// Output contains exactly the input stops, each once
	stops := []Stop{addressStop("a"), addressStop("b"), addressStop("c"), {ID: "d"}}

	ordered, err := ReconcileOrder(stops, false, []int{1, 0})
	require.NoError(t, err)
	require.Len(t, ordered, len(stops))

	seen := make(map[string]int)
	for _, s := range ordered {
		seen[s.ID]++
	}
	for _, s := range stops {
		assert.Equal(t, 1, seen[s.ID])
	}
}

func TestReconcileOrder_LengthMismatch(t *testing.T) {
	stops := []Stop{addressStop("s1"), addressStop("s2"), addressStop("s3")}

	_, err := ReconcileOrder(stops, false, []int{0})
	assert.Error(t, err)

	_, err = ReconcileOrder(stops, false, []int{0, 1, 2})
	assert.Error(t, err)
}

func TestReconcileOrder_OutOfRangeIndex(t *testing.T) {
	stops := []Stop{addressStop("s1"), addressStop("s2"), addressStop("s3")}

	_, err := ReconcileOrder(stops, false, []int{0, 5})
	assert.Error(t, err)

	_, err = ReconcileOrder(stops, false, []int{0, -1})
	assert.Error(t, err)
}

func TestReconcileOrder_DuplicateIndex(t *testing.T) {
	stops := []Stop{addressStop("s1"), addressStop("s2"), addressStop("s3")}

	_, err := ReconcileOrder(stops, false, []int{0, 0})
	assert.Error(t, err)
}

func TestReconcileOrder_InputNotMutated(t *testing.T) {
	stops := []Stop{addressStop("s1"), addressStop("s2"), addressStop("s3")}
	stops[0].SortOrder = 5
	stops[1].SortOrder = 6
	stops[2].SortOrder = 7

	_, err := ReconcileOrder(stops, false, []int{1, 0})
	require.NoError(t, err)

	assert.Equal(t, 5, stops[0].SortOrder)
	assert.Equal(t, 6, stops[1].SortOrder)
	assert.Equal(t, 7, stops[2].SortOrder)
}
