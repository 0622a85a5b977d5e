package proof

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apotheka-systems/botendienst/pkg/storage"
)

// MockRepository implements RepositoryInterface for testing
type MockRepository struct {
	CreateArtifactFunc func(ctx context.Context, a *Artifact) error
	GetArtifactFunc    func(ctx context.Context, artifactID uuid.UUID) (*Artifact, error)
	ListArtifactsFunc  func(ctx context.Context, stopID uuid.UUID) ([]*Artifact, error)
	CountByKindFunc    func(ctx context.Context, stopID uuid.UUID) (int, int, error)
	DeleteArtifactFunc func(ctx context.Context, artifactID uuid.UUID) error
}

func (m *MockRepository) CreateArtifact(ctx context.Context, a *Artifact) error {
	if m.CreateArtifactFunc != nil {
		return m.CreateArtifactFunc(ctx, a)
	}
	return nil
}

func (m *MockRepository) GetArtifact(ctx context.Context, artifactID uuid.UUID) (*Artifact, error) {
	if m.GetArtifactFunc != nil {
		return m.GetArtifactFunc(ctx, artifactID)
	}
	return nil, ErrNotFound
}

func (m *MockRepository) ListArtifacts(ctx context.Context, stopID uuid.UUID) ([]*Artifact, error) {
	if m.ListArtifactsFunc != nil {
		return m.ListArtifactsFunc(ctx, stopID)
	}
	return nil, nil
}

func (m *MockRepository) CountByKind(ctx context.Context, stopID uuid.UUID) (int, int, error) {
	if m.CountByKindFunc != nil {
		return m.CountByKindFunc(ctx, stopID)
	}
	return 0, 0, nil
}

func (m *MockRepository) DeleteArtifact(ctx context.Context, artifactID uuid.UUID) error {
	if m.DeleteArtifactFunc != nil {
		return m.DeleteArtifactFunc(ctx, artifactID)
	}
	return nil
}

// MockStorage implements storage.Storage for testing
type MockStorage struct {
	UploadFunc func(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*storage.UploadResult, error)
	DeleteFunc func(ctx context.Context, key string) error
	Deleted    []string
}

func (m *MockStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*storage.UploadResult, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, body, size, contentType)
	}
	return &storage.UploadResult{
		Key:        key,
		URL:        "https://cdn.example.com/" + key,
		Size:       size,
		MimeType:   contentType,
		UploadedAt: time.Now(),
	}, nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	m.Deleted = append(m.Deleted, key)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *MockStorage) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestUploadPhoto(t *testing.T) {
	stopID := uuid.New()

	var created *Artifact
	repo := &MockRepository{
		CreateArtifactFunc: func(ctx context.Context, a *Artifact) error {
			created = a
			return nil
		},
	}
	svc := NewService(repo, &MockStorage{})

	body := bytes.NewBufferString("fake jpeg bytes")
	artifact, err := svc.UploadPhoto(context.Background(), stopID, body, int64(body.Len()), "door.jpg", "image/jpeg")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, KindPhoto, artifact.Kind)
	assert.Equal(t, stopID, artifact.StopID)
	assert.Contains(t, artifact.FileKey, "proof/photo/")
	assert.Contains(t, artifact.FileKey, ".jpg")
	assert.NotEmpty(t, artifact.FileURL)
}

func TestUploadSignature_CarriesSigner(t *testing.T) {
	signedBy := "H. Schmidt"
	svc := NewService(&MockRepository{}, &MockStorage{})

	body := bytes.NewBufferString("png bytes")
	artifact, err := svc.UploadSignature(context.Background(), uuid.New(), &signedBy, body, int64(body.Len()), "sig.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, KindSignature, artifact.Kind)
	require.NotNil(t, artifact.SignedBy)
	assert.Equal(t, signedBy, *artifact.SignedBy)
}

func TestUpload_RejectsBadInput(t *testing.T) {
	svc := NewService(&MockRepository{}, &MockStorage{})
	ctx := context.Background()
	body := bytes.NewBufferString("data")

	_, err := svc.UploadPhoto(ctx, uuid.New(), body, 0, "x.jpg", "image/jpeg")
	assert.Error(t, err)

	_, err = svc.UploadPhoto(ctx, uuid.New(), body, maxArtifactSize+1, "x.jpg", "image/jpeg")
	assert.Error(t, err)

	_, err = svc.UploadPhoto(ctx, uuid.New(), body, 4, "x.pdf", "application/pdf")
	assert.Error(t, err)
}

func TestUpload_CleansUpOnDatabaseFailure(t *testing.T) {
	store := &MockStorage{}
	repo := &MockRepository{
		CreateArtifactFunc: func(ctx context.Context, a *Artifact) error {
			return errors.New("insert failed")
		},
	}
	svc := NewService(repo, store)

	body := bytes.NewBufferString("data")
	_, err := svc.UploadPhoto(context.Background(), uuid.New(), body, int64(body.Len()), "x.jpg", "image/jpeg")
	require.Error(t, err)
	assert.Len(t, store.Deleted, 1)
}

func TestDeleteArtifact_RemovesFile(t *testing.T) {
	artifactID := uuid.New()
	store := &MockStorage{}
	repo := &MockRepository{
		GetArtifactFunc: func(ctx context.Context, id uuid.UUID) (*Artifact, error) {
			return &Artifact{ID: artifactID, FileKey: "proof/photo/abc.jpg"}, nil
		},
	}
	svc := NewService(repo, store)

	require.NoError(t, svc.DeleteArtifact(context.Background(), artifactID))
	assert.Equal(t, []string{"proof/photo/abc.jpg"}, store.Deleted)
}

func TestCountArtifacts(t *testing.T) {
	repo := &MockRepository{
		CountByKindFunc: func(ctx context.Context, stopID uuid.UUID) (int, int, error) {
			return 2, 1, nil
		},
	}
	svc := NewService(repo, &MockStorage{})

	proof, err := svc.CountArtifacts(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, proof.PhotoCount)
	assert.True(t, proof.HasSignature)
	assert.True(t, proof.Any())
}

func TestCountArtifacts_Empty(t *testing.T) {
	svc := NewService(&MockRepository{}, &MockStorage{})

	proof, err := svc.CountArtifacts(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, proof.Any())
}
