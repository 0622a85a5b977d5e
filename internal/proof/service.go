package proof

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apotheka-systems/botendienst/internal/tours"
	"github.com/apotheka-systems/botendienst/pkg/common"
	"github.com/apotheka-systems/botendienst/pkg/logger"
	"github.com/apotheka-systems/botendienst/pkg/storage"
)

const maxArtifactSize = 10 << 20 // 10 MiB

var allowedMimeTypes = []string{"image/jpeg", "image/png", "image/webp"}

// RepositoryInterface defines proof persistence operations
type RepositoryInterface interface {
	CreateArtifact(ctx context.Context, a *Artifact) error
	GetArtifact(ctx context.Context, artifactID uuid.UUID) (*Artifact, error)
	ListArtifacts(ctx context.Context, stopID uuid.UUID) ([]*Artifact, error)
	CountByKind(ctx context.Context, stopID uuid.UUID) (photos int, signatures int, err error)
	DeleteArtifact(ctx context.Context, artifactID uuid.UUID) error
}

// Service handles proof of delivery evidence
type Service struct {
	repo    RepositoryInterface
	storage storage.Storage
}

// NewService creates a new proof service
func NewService(repo RepositoryInterface, store storage.Storage) *Service {
	return &Service{repo: repo, storage: store}
}

// UploadPhoto stores a delivery photo for a stop
func (s *Service) UploadPhoto(ctx context.Context, stopID uuid.UUID, reader io.Reader, size int64, fileName, contentType string) (*Artifact, error) {
	return s.upload(ctx, stopID, KindPhoto, nil, reader, size, fileName, contentType)
}

// UploadSignature stores a recipient signature image for a stop
func (s *Service) UploadSignature(ctx context.Context, stopID uuid.UUID, signedBy *string, reader io.Reader, size int64, fileName, contentType string) (*Artifact, error) {
	return s.upload(ctx, stopID, KindSignature, signedBy, reader, size, fileName, contentType)
}

func (s *Service) upload(ctx context.Context, stopID uuid.UUID, kind ArtifactKind, signedBy *string, reader io.Reader, size int64, fileName, contentType string) (*Artifact, error) {
	if size <= 0 || size > maxArtifactSize {
		return nil, common.NewBadRequestError("file size must be between 1 byte and 10 MiB")
	}
	if !storage.ValidateMimeType(contentType, allowedMimeTypes) {
		return nil, common.NewBadRequestError("unsupported file type, expected jpeg, png or webp")
	}

	key := storage.ObjectKey("proof/"+string(kind), fileName)
	result, err := s.storage.Upload(ctx, key, reader, size, contentType)
	if err != nil {
		return nil, common.NewInternalServerError("failed to store file", err)
	}

	artifact := &Artifact{
		ID:         uuid.New(),
		StopID:     stopID,
		Kind:       kind,
		FileKey:    result.Key,
		FileURL:    result.URL,
		MimeType:   contentType,
		SizeBytes:  size,
		SignedBy:   signedBy,
		UploadedAt: time.Now(),
	}

	if err := s.repo.CreateArtifact(ctx, artifact); err != nil {
		// Orphaned objects are worse than a failed upload; clean up
		_ = s.storage.Delete(ctx, key)
		return nil, common.NewInternalServerError("failed to record artifact", err)
	}

	logger.WithContext(ctx).Info("proof artifact uploaded",
		zap.String("stop_id", stopID.String()),
		zap.String("kind", string(kind)),
		zap.Int64("size", size))

	return artifact, nil
}

// ListArtifacts lists a stop's proof artifacts
func (s *Service) ListArtifacts(ctx context.Context, stopID uuid.UUID) ([]*Artifact, error) {
	artifacts, err := s.repo.ListArtifacts(ctx, stopID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list artifacts", err)
	}
	return artifacts, nil
}

// DeleteArtifact removes an artifact and its stored file
func (s *Service) DeleteArtifact(ctx context.Context, artifactID uuid.UUID) error {
	artifact, err := s.repo.GetArtifact(ctx, artifactID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewNotFoundError("artifact not found", err)
		}
		return common.NewInternalServerError("failed to get artifact", err)
	}

	if err := s.repo.DeleteArtifact(ctx, artifactID); err != nil {
		return common.NewInternalServerError("failed to delete artifact", err)
	}
	if err := s.storage.Delete(ctx, artifact.FileKey); err != nil {
		logger.WithContext(ctx).Warn("failed to delete stored file",
			zap.String("file_key", artifact.FileKey),
			zap.Error(err))
	}
	return nil
}

// CountArtifacts reports the delivery evidence captured for a stop. Stop
// completion is gated on this.
func (s *Service) CountArtifacts(ctx context.Context, stopID uuid.UUID) (tours.ProofArtifacts, error) {
	photos, signatures, err := s.repo.CountByKind(ctx, stopID)
	if err != nil {
		return tours.ProofArtifacts{}, err
	}
	return tours.ProofArtifacts{
		PhotoCount:   photos,
		HasSignature: signatures > 0,
	}, nil
}
