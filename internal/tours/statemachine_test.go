package tours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    StopStatus
		to      StopStatus
		allowed bool
	}{
		{"pending to in_progress", StopStatusPending, StopStatusInProgress, true},
		{"pending to completed", StopStatusPending, StopStatusCompleted, true},
		{"pending to skipped", StopStatusPending, StopStatusSkipped, true},
		{"pending to rescheduled", StopStatusPending, StopStatusRescheduled, true},
		{"in_progress to completed", StopStatusInProgress, StopStatusCompleted, true},
		{"in_progress to skipped", StopStatusInProgress, StopStatusSkipped, true},
		{"in_progress to in_progress", StopStatusInProgress, StopStatusInProgress, false},
		{"completed to in_progress", StopStatusCompleted, StopStatusInProgress, false},
		{"completed to skipped", StopStatusCompleted, StopStatusSkipped, false},
		{"completed to completed", StopStatusCompleted, StopStatusCompleted, false},
		{"skipped to completed", StopStatusSkipped, StopStatusCompleted, false},
		{"rescheduled to in_progress", StopStatusRescheduled, StopStatusInProgress, false},
		{"anything to pending", StopStatusSkipped, StopStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStartStop(t *testing.T) {
	stop := &Stop{Status: StopStatusPending}
	require.NoError(t, StartStop(stop))
	assert.Equal(t, StopStatusInProgress, stop.Status)

	// starting twice is rejected
	assert.Error(t, StartStop(stop))
	assert.Equal(t, StopStatusInProgress, stop.Status)
}

func TestCompleteStop_RequiresProof(t *testing.T) {
	stop := &Stop{Status: StopStatusInProgress}

	err := CompleteStop(stop, ProofArtifacts{}, time.Now(), nil)
	require.Error(t, err)
	assert.Equal(t, StopStatusInProgress, stop.Status)
	assert.Nil(t, stop.CompletedAt)
}

func TestCompleteStop_WithPhoto(t *testing.T) {
	stop := &Stop{Status: StopStatusPending}
	at := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	err := CompleteStop(stop, ProofArtifacts{PhotoCount: 1}, at, nil)
	require.NoError(t, err)
	assert.Equal(t, StopStatusCompleted, stop.Status)
	require.NotNil(t, stop.CompletedAt)
	assert.Equal(t, at, *stop.CompletedAt)
	assert.Nil(t, stop.CompletedLatitude)
}

func TestCompleteStop_WithSignatureAndPosition(t *testing.T) {
	stop := &Stop{Status: StopStatusInProgress}
	lat, lng := 52.52, 13.405

	err := CompleteStop(stop, ProofArtifacts{HasSignature: true}, time.Now(), &CompleteStopRequest{
		Latitude:  &lat,
		Longitude: &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, StopStatusCompleted, stop.Status)
	require.NotNil(t, stop.CompletedLatitude)
	assert.Equal(t, lat, *stop.CompletedLatitude)
	require.NotNil(t, stop.CompletedLongitude)
	assert.Equal(t, lng, *stop.CompletedLongitude)
}

func TestCompleteStop_NoReopenPath(t *testing.T) {
	stop := &Stop{Status: StopStatusCompleted}
	err := CompleteStop(stop, ProofArtifacts{PhotoCount: 2}, time.Now(), nil)
	assert.Error(t, err)
}

func TestSkipStop(t *testing.T) {
	stop := &Stop{Status: StopStatusPending}
	require.NoError(t, SkipStop(stop, "customer not home"))
	assert.Equal(t, StopStatusSkipped, stop.Status)
	require.NotNil(t, stop.StopNotes)
	assert.Equal(t, "Skipped: customer not home", *stop.StopNotes)
}

func TestSkipStop_NoReasonAppendsToExistingNotes(t *testing.T) {
	notes := "ring twice"
	stop := &Stop{Status: StopStatusInProgress, StopNotes: &notes}
	require.NoError(t, SkipStop(stop, ""))
	require.NotNil(t, stop.StopNotes)
	assert.Equal(t, "ring twice\nSkipped", *stop.StopNotes)
}

func TestRescheduleStop(t *testing.T) {
	stop := &Stop{Status: StopStatusPending}
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	reason := "vacation until April"

	require.NoError(t, RescheduleStop(stop, to, &reason))
	assert.Equal(t, StopStatusRescheduled, stop.Status)
	require.NotNil(t, stop.RescheduledTo)
	assert.Equal(t, to, *stop.RescheduledTo)
	require.NotNil(t, stop.RescheduledReason)
	assert.Equal(t, reason, *stop.RescheduledReason)

	// exit states are final
	assert.Error(t, StartStop(stop))
}

func TestCollectCash_FullAmount(t *testing.T) {
	stop := &Stop{Status: StopStatusPending, CashAmount: 23.50}

	require.NoError(t, CollectCash(stop, 23.50, nil))
	assert.True(t, stop.CashCollected)
	require.NotNil(t, stop.CashCollectedAmount)
	assert.Equal(t, 23.50, *stop.CashCollectedAmount)
	assert.Equal(t, 0.0, stop.CashRemaining())
}

func TestCollectCash_PartialAmount(t *testing.T) {
	stop := &Stop{Status: StopStatusInProgress, CashAmount: 50.0}

	require.NoError(t, CollectCash(stop, 20.0, nil))
	assert.False(t, stop.CashCollected)
	assert.Equal(t, 30.0, stop.CashRemaining())
}

func TestCollectCash_Overpayment(t *testing.T) {
	stop := &Stop{Status: StopStatusPending, CashAmount: 10.0}

	require.NoError(t, CollectCash(stop, 12.0, nil))
	assert.True(t, stop.CashCollected)
	assert.Equal(t, 0.0, stop.CashRemaining())
}

func TestCollectCash_Rejections(t *testing.T) {
	noCash := &Stop{Status: StopStatusPending}
	assert.Error(t, CollectCash(noCash, 5.0, nil))

	withCash := &Stop{Status: StopStatusPending, CashAmount: 10.0}
	assert.Error(t, CollectCash(withCash, -1.0, nil))
	assert.Nil(t, withCash.CashCollectedAmount)
}

func TestCollectCash_IndependentOfDeliveryStatus(t *testing.T) {
	// cash can still be settled after the delivery itself is done
	stop := &Stop{Status: StopStatusCompleted, CashAmount: 15.0}
	require.NoError(t, CollectCash(stop, 15.0, nil))
	assert.True(t, stop.CashCollected)
}

func TestComputeTourStats(t *testing.T) {
	collected := 10.0
	stops := []*Stop{
		{Status: StopStatusCompleted, PackageCount: 2, CashAmount: 10.0, CashCollectedAmount: &collected, CashCollected: true},
		{Status: StopStatusCompleted, PackageCount: 1},
		{Status: StopStatusPending, PackageCount: 3, CashAmount: 25.0},
		{Status: StopStatusInProgress, PackageCount: 1},
		{Status: StopStatusSkipped, CashAmount: 5.0},
	}

	stats := ComputeTourStats(stops)
	assert.Equal(t, 5, stats.TotalStops)
	assert.Equal(t, 2, stats.CompletedStops)
	assert.Equal(t, 2, stats.PendingStops)
	assert.Equal(t, 1, stats.SkippedStops)
	assert.Equal(t, 7, stats.TotalPackages)
	assert.Equal(t, 40.0, stats.TotalCash)
	assert.Equal(t, 10.0, stats.CollectedCash)
	assert.Equal(t, 30.0, stats.OutstandingCash)
	assert.Equal(t, 40, stats.Progress)
}

func TestComputeTourStats_Empty(t *testing.T) {
	stats := ComputeTourStats(nil)
	assert.Equal(t, 0, stats.TotalStops)
	assert.Equal(t, 0, stats.Progress)
}
