package tours

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a tour or stop does not exist
var ErrNotFound = errors.New("not found")

// Repository handles tour and stop database operations
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new tours repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const tourColumns = `
	id, pharmacy_id, name, date, driver_staff_id, status,
	start_address, encoded_polyline, total_distance_km, total_duration_min,
	access_token, started_at, completed_at, created_by, created_at, updated_at
`

func scanTour(row pgx.Row) (*Tour, error) {
	var t Tour
	err := row.Scan(
		&t.ID, &t.PharmacyID, &t.Name, &t.Date, &t.DriverStaffID, &t.Status,
		&t.StartAddress, &t.EncodedPolyline, &t.TotalDistanceKm, &t.TotalDurationMin,
		&t.AccessToken, &t.StartedAt, &t.CompletedAt, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ========================================
// TOUR OPERATIONS
// ========================================

// CreateTour creates a new tour
func (r *Repository) CreateTour(ctx context.Context, tour *Tour) error {
	query := `
		INSERT INTO delivery_tours (
			id, pharmacy_id, name, date, driver_staff_id, status,
			start_address, access_token, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		tour.ID, tour.PharmacyID, tour.Name, tour.Date, tour.DriverStaffID, tour.Status,
		tour.StartAddress, tour.AccessToken, tour.CreatedBy, tour.CreatedAt, tour.UpdatedAt,
	)
	return err
}

// GetTour gets a tour by ID
func (r *Repository) GetTour(ctx context.Context, tourID uuid.UUID) (*Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM delivery_tours WHERE id = $1`
	return scanTour(r.db.QueryRow(ctx, query, tourID))
}

// GetTourByToken gets a tour by its driver access token
func (r *Repository) GetTourByToken(ctx context.Context, token uuid.UUID) (*Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM delivery_tours WHERE access_token = $1`
	return scanTour(r.db.QueryRow(ctx, query, token))
}

// ListTours lists tours for a pharmacy, newest first
func (r *Repository) ListTours(ctx context.Context, pharmacyID uuid.UUID, filters TourListFilters) ([]*Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM delivery_tours WHERE pharmacy_id = $1`
	args := []interface{}{pharmacyID}

	if filters.Status != nil {
		args = append(args, *filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Date != nil {
		args = append(args, *filters.Date)
		query += fmt.Sprintf(" AND date = $%d", len(args))
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Tour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// UpdateTour persists mutable tour fields
func (r *Repository) UpdateTour(ctx context.Context, tour *Tour) error {
	query := `
		UPDATE delivery_tours SET
			name = $2, date = $3, driver_staff_id = $4, status = $5,
			start_address = $6, encoded_polyline = $7, total_distance_km = $8,
			total_duration_min = $9, started_at = $10, completed_at = $11,
			updated_at = $12
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		tour.ID, tour.Name, tour.Date, tour.DriverStaffID, tour.Status,
		tour.StartAddress, tour.EncodedPolyline, tour.TotalDistanceKm,
		tour.TotalDurationMin, tour.StartedAt, tour.CompletedAt,
		time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTour deletes a tour and its stops (cascade in schema)
func (r *Repository) DeleteTour(ctx context.Context, tourID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM delivery_tours WHERE id = $1`, tourID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ========================================
// STOP OPERATIONS
// ========================================

const stopColumns = `
	id, tour_id, customer_id, customer_name, street, postal_code, city,
	latitude, longitude, package_count, cash_amount, priority, stop_notes,
	sort_order, status, cash_collected, cash_collected_amount, cash_notes,
	completed_at, completed_latitude, completed_longitude,
	rescheduled_to, rescheduled_reason, added_by, created_at, updated_at
`

func scanStop(row pgx.Row) (*Stop, error) {
	var s Stop
	err := row.Scan(
		&s.ID, &s.TourID, &s.CustomerID, &s.CustomerName, &s.Street, &s.PostalCode, &s.City,
		&s.Latitude, &s.Longitude, &s.PackageCount, &s.CashAmount, &s.Priority, &s.StopNotes,
		&s.SortOrder, &s.Status, &s.CashCollected, &s.CashCollectedAmount, &s.CashNotes,
		&s.CompletedAt, &s.CompletedLatitude, &s.CompletedLongitude,
		&s.RescheduledTo, &s.RescheduledReason, &s.AddedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateStop inserts a stop at the end of the tour's visiting order
func (r *Repository) CreateStop(ctx context.Context, stop *Stop) error {
	query := `
		INSERT INTO delivery_stops (
			id, tour_id, customer_id, customer_name, street, postal_code, city,
			latitude, longitude, package_count, cash_amount, priority, stop_notes,
			sort_order, status, cash_collected, added_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			COALESCE((SELECT MAX(sort_order) + 1 FROM delivery_stops WHERE tour_id = $2), 0),
			$14, $15, $16, $17, $18
		)
		RETURNING sort_order
	`

	return r.db.QueryRow(ctx, query,
		stop.ID, stop.TourID, stop.CustomerID, stop.CustomerName, stop.Street, stop.PostalCode, stop.City,
		stop.Latitude, stop.Longitude, stop.PackageCount, stop.CashAmount, stop.Priority, stop.StopNotes,
		stop.Status, stop.CashCollected, stop.AddedBy, stop.CreatedAt, stop.UpdatedAt,
	).Scan(&stop.SortOrder)
}

// GetStop gets a stop by ID
func (r *Repository) GetStop(ctx context.Context, stopID uuid.UUID) (*Stop, error) {
	query := `SELECT ` + stopColumns + ` FROM delivery_stops WHERE id = $1`
	return scanStop(r.db.QueryRow(ctx, query, stopID))
}

// ListStops lists a tour's stops in visiting order
func (r *Repository) ListStops(ctx context.Context, tourID uuid.UUID) ([]*Stop, error) {
	query := `SELECT ` + stopColumns + ` FROM delivery_stops WHERE tour_id = $1 ORDER BY sort_order ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// UpdateStop persists mutable stop fields
func (r *Repository) UpdateStop(ctx context.Context, stop *Stop) error {
	query := `
		UPDATE delivery_stops SET
			customer_id = $2, customer_name = $3, street = $4, postal_code = $5,
			city = $6, latitude = $7, longitude = $8, package_count = $9,
			cash_amount = $10, priority = $11, stop_notes = $12, sort_order = $13,
			status = $14, cash_collected = $15, cash_collected_amount = $16,
			cash_notes = $17, completed_at = $18, completed_latitude = $19,
			completed_longitude = $20, rescheduled_to = $21, rescheduled_reason = $22,
			updated_at = $23
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		stop.ID, stop.CustomerID, stop.CustomerName, stop.Street, stop.PostalCode,
		stop.City, stop.Latitude, stop.Longitude, stop.PackageCount,
		stop.CashAmount, stop.Priority, stop.StopNotes, stop.SortOrder,
		stop.Status, stop.CashCollected, stop.CashCollectedAmount,
		stop.CashNotes, stop.CompletedAt, stop.CompletedLatitude,
		stop.CompletedLongitude, stop.RescheduledTo, stop.RescheduledReason,
		time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStop deletes a stop
func (r *Repository) DeleteStop(ctx context.Context, stopID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM delivery_stops WHERE id = $1`, stopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSortOrders writes a new visiting order in one transaction. The order
// either commits completely or not at all; a failed reorder never leaves a
// tour half-sequenced.
func (r *Repository) UpdateSortOrders(ctx context.Context, tourID uuid.UUID, stopIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, stopID := range stopIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE delivery_stops SET sort_order = $1, updated_at = $2 WHERE id = $3 AND tour_id = $4`,
			i, time.Now(), stopID, tourID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("stop %s does not belong to tour %s: %w", stopID, tourID, ErrNotFound)
		}
	}

	return tx.Commit(ctx)
}

// ApplyOptimization persists an optimization result: the new stop order plus
// the tour's route geometry and metrics, atomically.
func (r *Repository) ApplyOptimization(
	ctx context.Context,
	tourID uuid.UUID,
	stopIDs []uuid.UUID,
	encodedPolyline *string,
	totalDistanceKm *float64,
	totalDurationMin *int,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, stopID := range stopIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE delivery_stops SET sort_order = $1, updated_at = $2 WHERE id = $3 AND tour_id = $4`,
			i, time.Now(), stopID, tourID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("stop %s does not belong to tour %s: %w", stopID, tourID, ErrNotFound)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE delivery_tours SET encoded_polyline = $1, total_distance_km = $2, total_duration_min = $3, updated_at = $4 WHERE id = $5`,
		encodedPolyline, totalDistanceKm, totalDurationMin, time.Now(), tourID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
