package proof

import (
	"time"

	"github.com/google/uuid"
)

// ArtifactKind distinguishes the two accepted forms of delivery evidence
type ArtifactKind string

const (
	KindPhoto     ArtifactKind = "photo"
	KindSignature ArtifactKind = "signature"
)

// Artifact is one piece of delivery evidence attached to a stop
type Artifact struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	StopID     uuid.UUID    `json:"stop_id" db:"stop_id"`
	Kind       ArtifactKind `json:"kind" db:"kind"`
	FileKey    string       `json:"file_key" db:"file_key"`
	FileURL    string       `json:"file_url" db:"file_url"`
	MimeType   string       `json:"mime_type" db:"mime_type"`
	SizeBytes  int64        `json:"size_bytes" db:"size_bytes"`
	SignedBy   *string      `json:"signed_by,omitempty" db:"signed_by"` // Signature artifacts only
	UploadedAt time.Time    `json:"uploaded_at" db:"uploaded_at"`
}
