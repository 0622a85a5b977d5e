package tours

import (
	"time"

	"github.com/google/uuid"

	"github.com/apotheka-systems/botendienst/internal/routing"
)

// TourStatus represents the lifecycle of a delivery tour
type TourStatus string

const (
	TourStatusDraft     TourStatus = "draft"     // Being assembled by pharmacy staff
	TourStatusPlanned   TourStatus = "planned"   // Stops finalized, driver assigned
	TourStatusActive    TourStatus = "active"    // Driver on the road
	TourStatusCompleted TourStatus = "completed" // All stops worked through
	TourStatusCancelled TourStatus = "cancelled" // Tour abandoned
)

// StopStatus represents the lifecycle of a single delivery stop
type StopStatus string

const (
	StopStatusPending     StopStatus = "pending"     // Not yet visited
	StopStatusInProgress  StopStatus = "in_progress" // Driver at the door
	StopStatusCompleted   StopStatus = "completed"   // Delivered with proof
	StopStatusSkipped     StopStatus = "skipped"     // Deferred without delivery
	StopStatusRescheduled StopStatus = "rescheduled" // Moved to a future tour
)

// StopPriority controls ordering hints and badge display
type StopPriority string

const (
	PriorityLow    StopPriority = "low"
	PriorityNormal StopPriority = "normal"
	PriorityHigh   StopPriority = "high"
	PriorityUrgent StopPriority = "urgent"
)

// Tour is the ordered set of stops assigned to one driver for one day
type Tour struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	PharmacyID    uuid.UUID  `json:"pharmacy_id" db:"pharmacy_id"`
	Name          string     `json:"name" db:"name"`
	Date          time.Time  `json:"date" db:"date"`
	DriverStaffID *uuid.UUID `json:"driver_staff_id,omitempty" db:"driver_staff_id"`
	Status        TourStatus `json:"status" db:"status"`

	// Round-trip anchor; when nil the first routable stop is origin and destination
	StartAddress *string `json:"start_address,omitempty" db:"start_address"`

	// Persisted result of the last successful remote optimization
	EncodedPolyline  *string  `json:"encoded_polyline,omitempty" db:"encoded_polyline"`
	TotalDistanceKm  *float64 `json:"total_distance_km,omitempty" db:"total_distance_km"`
	TotalDurationMin *int     `json:"total_duration_min,omitempty" db:"total_duration_min"`

	// Drivers without a staff login open the tour via this token
	AccessToken uuid.UUID `json:"access_token" db:"access_token"`

	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Stop is a single delivery obligation within a tour
type Stop struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TourID     uuid.UUID  `json:"tour_id" db:"tour_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty" db:"customer_id"`

	CustomerName string   `json:"customer_name" db:"customer_name"`
	Street       string   `json:"street" db:"street"`
	PostalCode   string   `json:"postal_code" db:"postal_code"`
	City         string   `json:"city" db:"city"`
	Latitude     *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64 `json:"longitude,omitempty" db:"longitude"`

	PackageCount int          `json:"package_count" db:"package_count"`
	CashAmount   float64      `json:"cash_amount" db:"cash_amount"`
	Priority     StopPriority `json:"priority" db:"priority"`
	StopNotes    *string      `json:"stop_notes,omitempty" db:"stop_notes"`
	SortOrder    int          `json:"sort_order" db:"sort_order"`

	Status              StopStatus `json:"status" db:"status"`
	CashCollected       bool       `json:"cash_collected" db:"cash_collected"`
	CashCollectedAmount *float64   `json:"cash_collected_amount,omitempty" db:"cash_collected_amount"`
	CashNotes           *string    `json:"cash_notes,omitempty" db:"cash_notes"`

	CompletedAt        *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CompletedLatitude  *float64   `json:"completed_latitude,omitempty" db:"completed_latitude"`
	CompletedLongitude *float64   `json:"completed_longitude,omitempty" db:"completed_longitude"`

	RescheduledTo     *time.Time `json:"rescheduled_to,omitempty" db:"rescheduled_to"`
	RescheduledReason *string    `json:"rescheduled_reason,omitempty" db:"rescheduled_reason"`

	AddedBy   *uuid.UUID `json:"added_by,omitempty" db:"added_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// RoutingStop converts a stop to its routing view
func (s *Stop) RoutingStop() routing.Stop {
	return routing.Stop{
		ID:           s.ID.String(),
		CustomerName: s.CustomerName,
		Street:       s.Street,
		PostalCode:   s.PostalCode,
		City:         s.City,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		SortOrder:    s.SortOrder,
	}
}

// RoutingStops converts a stop list to its routing view
func RoutingStops(stops []*Stop) []routing.Stop {
	out := make([]routing.Stop, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.RoutingStop())
	}
	return out
}

// ========================================
// REQUEST/RESPONSE TYPES
// ========================================

// CreateTourRequest creates a new tour
type CreateTourRequest struct {
	Name          string     `json:"name"`
	Date          string     `json:"date"` // YYYY-MM-DD; defaults to today
	DriverStaffID *uuid.UUID `json:"driver_staff_id,omitempty"`
	StartAddress  *string    `json:"start_address,omitempty"`
}

// UpdateTourRequest updates tour metadata
type UpdateTourRequest struct {
	Name          *string    `json:"name,omitempty"`
	Date          *string    `json:"date,omitempty"`
	DriverStaffID *uuid.UUID `json:"driver_staff_id,omitempty"`
	StartAddress  *string    `json:"start_address,omitempty"`
}

// CreateStopRequest adds a stop to a tour
type CreateStopRequest struct {
	CustomerID   *uuid.UUID   `json:"customer_id,omitempty"`
	CustomerName string       `json:"customer_name" binding:"required"`
	Street       string       `json:"street" binding:"required"`
	PostalCode   string       `json:"postal_code"`
	City         string       `json:"city"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	PackageCount int          `json:"package_count"`
	CashAmount   float64      `json:"cash_amount"`
	Priority     StopPriority `json:"priority"`
	StopNotes    *string      `json:"stop_notes,omitempty"`
}

// UpdateStopRequest updates stop details
type UpdateStopRequest struct {
	CustomerName *string       `json:"customer_name,omitempty"`
	Street       *string       `json:"street,omitempty"`
	PostalCode   *string       `json:"postal_code,omitempty"`
	City         *string       `json:"city,omitempty"`
	Latitude     *float64      `json:"latitude,omitempty"`
	Longitude    *float64      `json:"longitude,omitempty"`
	PackageCount *int          `json:"package_count,omitempty"`
	CashAmount   *float64      `json:"cash_amount,omitempty"`
	Priority     *StopPriority `json:"priority,omitempty"`
	StopNotes    *string       `json:"stop_notes,omitempty"`
}

// ReorderStopsRequest sets an explicit manual stop order
type ReorderStopsRequest struct {
	StopIDs []uuid.UUID `json:"stop_ids" binding:"required"`
}

// CompleteStopRequest marks a stop delivered, optionally with the device position
type CompleteStopRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// SkipStopRequest defers a stop without delivery
type SkipStopRequest struct {
	Reason string `json:"reason"`
}

// RescheduleStopRequest moves a stop to a future date
type RescheduleStopRequest struct {
	RescheduledTo string  `json:"rescheduled_to" binding:"required"` // YYYY-MM-DD
	Reason        *string `json:"reason,omitempty"`
}

// CollectCashRequest records collected cash for a stop
type CollectCashRequest struct {
	Amount *float64 `json:"amount,omitempty"` // Defaults to the stop's full cash_amount
	Notes  *string  `json:"notes,omitempty"`
}

// OptimizeTourRequest triggers a stop reordering for a tour
type OptimizeTourRequest struct {
	UseDirections bool `json:"use_directions"` // false: local heuristic only
}

// OptimizeTourResponse reports the optimization outcome
type OptimizeTourResponse struct {
	Stops           []*Stop                `json:"stops"`
	Method          routing.OptimizeMethod `json:"method"`
	Message         string                 `json:"message"`
	Details         *routing.RouteDetails  `json:"details,omitempty"`
	RoutePolyline   []routing.LatLng       `json:"route_polyline,omitempty"`
	EncodedPolyline string                 `json:"encoded_polyline,omitempty"`
}

// TourResponse enriches a tour with its stops and derived statistics
type TourResponse struct {
	*Tour
	Stops []*Stop    `json:"stops,omitempty"`
	Stats *TourStats `json:"stats,omitempty"`
}

// TourListFilters filters tour listings
type TourListFilters struct {
	Status *TourStatus
	Date   *time.Time
}
