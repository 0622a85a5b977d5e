package proof

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an artifact does not exist
var ErrNotFound = errors.New("not found")

// Repository persists proof artifacts
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new proof repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const artifactColumns = `id, stop_id, kind, file_key, file_url, mime_type, size_bytes, signed_by, uploaded_at`

func scanArtifact(row pgx.Row) (*Artifact, error) {
	var a Artifact
	err := row.Scan(&a.ID, &a.StopID, &a.Kind, &a.FileKey, &a.FileURL, &a.MimeType, &a.SizeBytes, &a.SignedBy, &a.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CreateArtifact inserts a proof artifact row
func (r *Repository) CreateArtifact(ctx context.Context, a *Artifact) error {
	query := `
		INSERT INTO delivery_proof_artifacts (` + artifactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.StopID, a.Kind, a.FileKey, a.FileURL, a.MimeType, a.SizeBytes, a.SignedBy, a.UploadedAt)
	return err
}

// GetArtifact gets an artifact by ID
func (r *Repository) GetArtifact(ctx context.Context, artifactID uuid.UUID) (*Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM delivery_proof_artifacts WHERE id = $1`
	return scanArtifact(r.db.QueryRow(ctx, query, artifactID))
}

// ListArtifacts lists a stop's artifacts, oldest first
func (r *Repository) ListArtifacts(ctx context.Context, stopID uuid.UUID) ([]*Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM delivery_proof_artifacts WHERE stop_id = $1 ORDER BY uploaded_at ASC`

	rows, err := r.db.Query(ctx, query, stopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// CountByKind counts a stop's artifacts grouped by kind
func (r *Repository) CountByKind(ctx context.Context, stopID uuid.UUID) (photos int, signatures int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'photo'),
			COUNT(*) FILTER (WHERE kind = 'signature')
		FROM delivery_proof_artifacts
		WHERE stop_id = $1
	`
	err = r.db.QueryRow(ctx, query, stopID).Scan(&photos, &signatures)
	return photos, signatures, err
}

// DeleteArtifact removes an artifact row
func (r *Repository) DeleteArtifact(ctx context.Context, artifactID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM delivery_proof_artifacts WHERE id = $1`, artifactID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
