package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apotheka-systems/botendienst/pkg/common"
	"github.com/apotheka-systems/botendienst/pkg/logger"
	redisClient "github.com/apotheka-systems/botendienst/pkg/redis"
	ws "github.com/apotheka-systems/botendienst/pkg/websocket"
)

const (
	tourPositionPrefix = "tour:position:"
	tourPositionTTL    = 5 * time.Minute
	defaultHistoryCap  = 500
)

// PositionRecorder persists position fixes
type PositionRecorder interface {
	RecordPosition(ctx context.Context, pos *Position) error
	ListPositions(ctx context.Context, tourID uuid.UUID, limit int) ([]*Position, error)
}

// Service handles driver position tracking. The latest fix lives in Redis
// with a short TTL so a stale tour stops reporting a position on its own;
// the full trace goes to Postgres for later review.
type Service struct {
	repo  PositionRecorder
	redis *redisClient.Client
	hub   *ws.Hub
}

// NewService creates a new tracking service
func NewService(repo PositionRecorder, redis *redisClient.Client, hub *ws.Hub) *Service {
	return &Service{repo: repo, redis: redis, hub: hub}
}

// UpdatePosition records a driver position fix for a tour
func (s *Service) UpdatePosition(ctx context.Context, tourID uuid.UUID, req *UpdatePositionRequest) (*Position, error) {
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, common.NewBadRequestError("coordinates out of range")
	}

	pos := &Position{
		ID:         uuid.New(),
		TourID:     tourID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		AccuracyM:  req.AccuracyM,
		RecordedAt: time.Now(),
	}

	if err := s.repo.RecordPosition(ctx, pos); err != nil {
		return nil, common.NewInternalServerError("failed to record position", err)
	}

	data, err := json.Marshal(pos)
	if err != nil {
		return nil, common.NewInternalServerError("failed to marshal position", err)
	}

	key := fmt.Sprintf("%s%s", tourPositionPrefix, tourID.String())
	if err := s.redis.SetWithExpiration(ctx, key, data, tourPositionTTL); err != nil {
		// History row is already written; the live position just goes stale
		logger.WithContext(ctx).Warn("failed to cache live position",
			zap.String("tour_id", tourID.String()),
			zap.Error(err))
	}

	if s.hub != nil {
		s.hub.Broadcast <- ws.Message{
			Type:    "position_update",
			TourID:  tourID.String(),
			Payload: data,
		}
	}

	return pos, nil
}

// GetLatestPosition returns the most recent cached position of a tour
func (s *Service) GetLatestPosition(ctx context.Context, tourID uuid.UUID) (*Position, error) {
	key := fmt.Sprintf("%s%s", tourPositionPrefix, tourID.String())
	data, err := s.redis.GetString(ctx, key)
	if err != nil {
		return nil, common.NewNotFoundError("no recent position for this tour", err)
	}

	var pos Position
	if err := json.Unmarshal([]byte(data), &pos); err != nil {
		return nil, common.NewInternalServerError("failed to unmarshal position", err)
	}
	return &pos, nil
}

// GetHistory returns a tour's recorded position trace
func (s *Service) GetHistory(ctx context.Context, tourID uuid.UUID, limit int) ([]*Position, error) {
	if limit <= 0 || limit > defaultHistoryCap {
		limit = defaultHistoryCap
	}
	positions, err := s.repo.ListPositions(ctx, tourID, limit)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list positions", err)
	}
	return positions, nil
}
