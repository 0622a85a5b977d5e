package customers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a customer does not exist
var ErrNotFound = errors.New("not found")

// Repository handles customer database operations
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new customers repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const customerColumns = `
	id, pharmacy_id, name, phone, street, postal_code, city,
	latitude, longitude, delivery_notes, access_info, created_at, updated_at
`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.PharmacyID, &c.Name, &c.Phone, &c.Street, &c.PostalCode, &c.City,
		&c.Latitude, &c.Longitude, &c.DeliveryNotes, &c.AccessInfo, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer
func (r *Repository) Create(ctx context.Context, c *Customer) error {
	query := `
		INSERT INTO delivery_customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.PharmacyID, c.Name, c.Phone, c.Street, c.PostalCode, c.City,
		c.Latitude, c.Longitude, c.DeliveryNotes, c.AccessInfo, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// Get gets a customer by ID
func (r *Repository) Get(ctx context.Context, customerID uuid.UUID) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM delivery_customers WHERE id = $1`
	return scanCustomer(r.db.QueryRow(ctx, query, customerID))
}

// List lists a pharmacy's customers by name, optionally filtered by a
// case-insensitive name search
func (r *Repository) List(ctx context.Context, pharmacyID uuid.UUID, search string) ([]*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM delivery_customers WHERE pharmacy_id = $1`
	args := []interface{}{pharmacyID}

	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` AND name ILIKE $2`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Update persists mutable customer fields
func (r *Repository) Update(ctx context.Context, c *Customer) error {
	query := `
		UPDATE delivery_customers SET
			name = $2, phone = $3, street = $4, postal_code = $5, city = $6,
			latitude = $7, longitude = $8, delivery_notes = $9, access_info = $10,
			updated_at = $11
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		c.ID, c.Name, c.Phone, c.Street, c.PostalCode, c.City,
		c.Latitude, c.Longitude, c.DeliveryNotes, c.AccessInfo, time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a customer
func (r *Repository) Delete(ctx context.Context, customerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM delivery_customers WHERE id = $1`, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
