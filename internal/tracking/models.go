package tracking

import (
	"time"

	"github.com/google/uuid"
)

// Position is a single driver position fix during a tour
type Position struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TourID     uuid.UUID `json:"tour_id" db:"tour_id"`
	Latitude   float64   `json:"latitude" db:"latitude"`
	Longitude  float64   `json:"longitude" db:"longitude"`
	AccuracyM  *float64  `json:"accuracy_m,omitempty" db:"accuracy_m"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// UpdatePositionRequest reports the driver's current position
type UpdatePositionRequest struct {
	Latitude  float64  `json:"latitude" binding:"required"`
	Longitude float64  `json:"longitude" binding:"required"`
	AccuracyM *float64 `json:"accuracy_m,omitempty"`
}
