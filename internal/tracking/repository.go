package tracking

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the position history of tours
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new tracking repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RecordPosition appends a position fix to a tour's history
func (r *Repository) RecordPosition(ctx context.Context, pos *Position) error {
	query := `
		INSERT INTO delivery_driver_locations (id, tour_id, latitude, longitude, accuracy_m, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, pos.ID, pos.TourID, pos.Latitude, pos.Longitude, pos.AccuracyM, pos.RecordedAt)
	return err
}

// ListPositions returns a tour's position history, oldest first
func (r *Repository) ListPositions(ctx context.Context, tourID uuid.UUID, limit int) ([]*Position, error) {
	query := `
		SELECT id, tour_id, latitude, longitude, accuracy_m, recorded_at
		FROM delivery_driver_locations
		WHERE tour_id = $1
		ORDER BY recorded_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, tourID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.ID, &p.TourID, &p.Latitude, &p.Longitude, &p.AccuracyM, &p.RecordedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}
