package tours

import (
	"time"

	"github.com/apotheka-systems/botendienst/pkg/common"
)

// Stop lifecycle rules. All functions here mutate only the stop passed in;
// persistence is the caller's job, and a returned error means the stop was
// left untouched.

// ProofArtifacts summarizes the delivery evidence captured for a stop
type ProofArtifacts struct {
	PhotoCount   int
	HasSignature bool
}

// Any reports whether at least one proof artifact exists
func (p ProofArtifacts) Any() bool {
	return p.PhotoCount > 0 || p.HasSignature
}

// activeStatuses are the states a driver can still act on
func isActive(status StopStatus) bool {
	return status == StopStatusPending || status == StopStatusInProgress
}

// CanTransition reports whether a stop status change is allowed.
// completed, skipped and rescheduled are exit states; only completed counts
// as success. There is no reopen path out of completed.
func CanTransition(from, to StopStatus) bool {
	switch to {
	case StopStatusInProgress:
		return from == StopStatusPending
	case StopStatusCompleted, StopStatusSkipped, StopStatusRescheduled:
		return isActive(from)
	default:
		return false
	}
}

// StartStop marks a stop as being worked on
func StartStop(stop *Stop) error {
	if !CanTransition(stop.Status, StopStatusInProgress) {
		return common.NewConflictError("stop is not pending")
	}
	stop.Status = StopStatusInProgress
	return nil
}

// CompleteStop marks a stop delivered. Completion requires at least one proof
// artifact (photo or signature); without proof the stop stays unchanged.
func CompleteStop(stop *Stop, proof ProofArtifacts, at time.Time, position *CompleteStopRequest) error {
	if !CanTransition(stop.Status, StopStatusCompleted) {
		return common.NewConflictError("stop cannot be completed from its current status")
	}
	if !proof.Any() {
		return common.NewUnprocessableError("proof of delivery required: capture a photo or signature first")
	}

	stop.Status = StopStatusCompleted
	stop.CompletedAt = &at
	if position != nil {
		stop.CompletedLatitude = position.Latitude
		stop.CompletedLongitude = position.Longitude
	}
	return nil
}

// SkipStop defers a stop without delivery. No proof is required.
func SkipStop(stop *Stop, reason string) error {
	if !CanTransition(stop.Status, StopStatusSkipped) {
		return common.NewConflictError("stop cannot be skipped from its current status")
	}

	stop.Status = StopStatusSkipped
	note := "Skipped"
	if reason != "" {
		note = "Skipped: " + reason
	}
	stop.StopNotes = appendNote(stop.StopNotes, note)
	return nil
}

// RescheduleStop moves a stop to a future tour date. No proof is required.
func RescheduleStop(stop *Stop, to time.Time, reason *string) error {
	if !CanTransition(stop.Status, StopStatusRescheduled) {
		return common.NewConflictError("stop cannot be rescheduled from its current status")
	}

	stop.Status = StopStatusRescheduled
	stop.RescheduledTo = &to
	stop.RescheduledReason = reason
	return nil
}

// CollectCash records collected cash on a stop. Collection is orthogonal to
// delivery status and may happen before or alongside completion. Partial
// amounts are a supported path; the remainder stays recoverable via
// CashRemaining. Collecting at least the full amount marks the stop
// fully collected.
func CollectCash(stop *Stop, amount float64, notes *string) error {
	if amount < 0 {
		return common.NewBadRequestError("collected amount cannot be negative")
	}
	if stop.CashAmount <= 0 {
		return common.NewBadRequestError("stop has no cash amount to collect")
	}

	stop.CashCollectedAmount = &amount
	stop.CashCollected = amount >= stop.CashAmount
	if notes != nil {
		stop.CashNotes = notes
	}
	return nil
}

// CashRemaining returns the outstanding cash for a stop, never negative
func (s *Stop) CashRemaining() float64 {
	collected := 0.0
	if s.CashCollectedAmount != nil {
		collected = *s.CashCollectedAmount
	}
	remaining := s.CashAmount - collected
	if remaining < 0 {
		return 0
	}
	return remaining
}

func appendNote(existing *string, note string) *string {
	if existing == nil || *existing == "" {
		return &note
	}
	combined := *existing + "\n" + note
	return &combined
}

// ========================================
// DERIVED TOUR STATISTICS
// ========================================

// TourStats is derived from the current stop set on demand, never cached
type TourStats struct {
	TotalStops      int     `json:"total_stops"`
	CompletedStops  int     `json:"completed_stops"`
	PendingStops    int     `json:"pending_stops"`
	SkippedStops    int     `json:"skipped_stops"`
	TotalPackages   int     `json:"total_packages"`
	TotalCash       float64 `json:"total_cash"`
	CollectedCash   float64 `json:"collected_cash"`
	OutstandingCash float64 `json:"outstanding_cash"`
	Progress        int     `json:"progress"` // Percent of stops completed
}

// ComputeTourStats aggregates progress and cash reconciliation over stops
func ComputeTourStats(stops []*Stop) TourStats {
	stats := TourStats{TotalStops: len(stops)}

	for _, s := range stops {
		switch s.Status {
		case StopStatusCompleted:
			stats.CompletedStops++
		case StopStatusPending, StopStatusInProgress:
			stats.PendingStops++
		case StopStatusSkipped:
			stats.SkippedStops++
		}

		stats.TotalPackages += s.PackageCount
		stats.TotalCash += s.CashAmount
		if s.CashCollectedAmount != nil {
			stats.CollectedCash += *s.CashCollectedAmount
		}
		stats.OutstandingCash += s.CashRemaining()
	}

	if stats.TotalStops > 0 {
		stats.Progress = int(float64(stats.CompletedStops)/float64(stats.TotalStops)*100 + 0.5)
	}
	return stats
}
