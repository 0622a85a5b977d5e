package tracking

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisClient "github.com/apotheka-systems/botendienst/pkg/redis"
	ws "github.com/apotheka-systems/botendienst/pkg/websocket"
)

// MockRecorder implements PositionRecorder for testing
type MockRecorder struct {
	RecordPositionFunc func(ctx context.Context, pos *Position) error
	ListPositionsFunc  func(ctx context.Context, tourID uuid.UUID, limit int) ([]*Position, error)
}

func (m *MockRecorder) RecordPosition(ctx context.Context, pos *Position) error {
	if m.RecordPositionFunc != nil {
		return m.RecordPositionFunc(ctx, pos)
	}
	return nil
}

func (m *MockRecorder) ListPositions(ctx context.Context, tourID uuid.UUID, limit int) ([]*Position, error) {
	if m.ListPositionsFunc != nil {
		return m.ListPositionsFunc(ctx, tourID, limit)
	}
	return nil, nil
}

func TestUpdatePosition(t *testing.T) {
	client, mock := redismock.NewClientMock()
	tourID := uuid.New()

	var recorded *Position
	repo := &MockRecorder{
		RecordPositionFunc: func(ctx context.Context, pos *Position) error {
			recorded = pos
			return nil
		},
	}

	mock.Regexp().ExpectSet(tourPositionPrefix+tourID.String(), `.*`, tourPositionTTL).SetVal("OK")

	hub := ws.NewHub()
	svc := NewService(repo, redisClient.Wrap(client), hub)

	pos, err := svc.UpdatePosition(context.Background(), tourID, &UpdatePositionRequest{
		Latitude:  52.52,
		Longitude: 13.405,
	})
	require.NoError(t, err)
	require.NotNil(t, recorded)
	assert.Equal(t, 52.52, recorded.Latitude)
	assert.Equal(t, tourID, pos.TourID)
	assert.NoError(t, mock.ExpectationsWereMet())

	// a broadcast was queued for tour watchers
	select {
	case msg := <-hub.Broadcast:
		assert.Equal(t, "position_update", msg.Type)
		assert.Equal(t, tourID.String(), msg.TourID)
	default:
		t.Fatal("expected a broadcast message")
	}
}

func TestUpdatePosition_CoordinatesOutOfRange(t *testing.T) {
	client, _ := redismock.NewClientMock()
	svc := NewService(&MockRecorder{}, redisClient.Wrap(client), nil)

	_, err := svc.UpdatePosition(context.Background(), uuid.New(), &UpdatePositionRequest{
		Latitude:  91.0,
		Longitude: 13.4,
	})
	assert.Error(t, err)
}

func TestUpdatePosition_RedisFailureTolerated(t *testing.T) {
	client, mock := redismock.NewClientMock()
	tourID := uuid.New()

	mock.Regexp().ExpectSet(tourPositionPrefix+tourID.String(), `.*`, tourPositionTTL).SetErr(assert.AnError)

	svc := NewService(&MockRecorder{}, redisClient.Wrap(client), nil)

	// the history row is the source of truth; a cache miss is tolerated
	_, err := svc.UpdatePosition(context.Background(), tourID, &UpdatePositionRequest{
		Latitude:  52.52,
		Longitude: 13.405,
	})
	assert.NoError(t, err)
}

func TestGetLatestPosition(t *testing.T) {
	client, mock := redismock.NewClientMock()
	tourID := uuid.New()

	cached := Position{
		ID:         uuid.New(),
		TourID:     tourID,
		Latitude:   52.52,
		Longitude:  13.405,
		RecordedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	mock.ExpectGet(tourPositionPrefix + tourID.String()).SetVal(string(data))

	svc := NewService(&MockRecorder{}, redisClient.Wrap(client), nil)

	pos, err := svc.GetLatestPosition(context.Background(), tourID)
	require.NoError(t, err)
	assert.Equal(t, cached.Latitude, pos.Latitude)
	assert.Equal(t, cached.TourID, pos.TourID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLatestPosition_Expired(t *testing.T) {
	client, mock := redismock.NewClientMock()
	tourID := uuid.New()

	mock.ExpectGet(tourPositionPrefix + tourID.String()).RedisNil()

	svc := NewService(&MockRecorder{}, redisClient.Wrap(client), nil)

	_, err := svc.GetLatestPosition(context.Background(), tourID)
	assert.Error(t, err)
}

func TestGetHistory_CapsLimit(t *testing.T) {
	client, _ := redismock.NewClientMock()

	var gotLimit int
	repo := &MockRecorder{
		ListPositionsFunc: func(ctx context.Context, tourID uuid.UUID, limit int) ([]*Position, error) {
			gotLimit = limit
			return []*Position{}, nil
		},
	}
	svc := NewService(repo, redisClient.Wrap(client), nil)
	ctx := context.Background()
	tourID := uuid.New()

	_, err := svc.GetHistory(ctx, tourID, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultHistoryCap, gotLimit)

	_, err = svc.GetHistory(ctx, tourID, 10_000)
	require.NoError(t, err)
	assert.Equal(t, defaultHistoryCap, gotLimit)

	_, err = svc.GetHistory(ctx, tourID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)
}
