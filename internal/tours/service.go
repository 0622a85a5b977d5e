package tours

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apotheka-systems/botendienst/internal/routing"
	"github.com/apotheka-systems/botendienst/pkg/common"
	"github.com/apotheka-systems/botendienst/pkg/logger"
)

// RepositoryInterface defines tour persistence operations
type RepositoryInterface interface {
	CreateTour(ctx context.Context, tour *Tour) error
	GetTour(ctx context.Context, tourID uuid.UUID) (*Tour, error)
	GetTourByToken(ctx context.Context, token uuid.UUID) (*Tour, error)
	ListTours(ctx context.Context, pharmacyID uuid.UUID, filters TourListFilters) ([]*Tour, error)
	UpdateTour(ctx context.Context, tour *Tour) error
	DeleteTour(ctx context.Context, tourID uuid.UUID) error

	CreateStop(ctx context.Context, stop *Stop) error
	GetStop(ctx context.Context, stopID uuid.UUID) (*Stop, error)
	ListStops(ctx context.Context, tourID uuid.UUID) ([]*Stop, error)
	UpdateStop(ctx context.Context, stop *Stop) error
	DeleteStop(ctx context.Context, stopID uuid.UUID) error
	UpdateSortOrders(ctx context.Context, tourID uuid.UUID, stopIDs []uuid.UUID) error
	ApplyOptimization(ctx context.Context, tourID uuid.UUID, stopIDs []uuid.UUID, encodedPolyline *string, totalDistanceKm *float64, totalDurationMin *int) error
}

// RouteOptimizer computes an optimized round trip via an external service
type RouteOptimizer interface {
	OptimizeRoute(ctx context.Context, stops []routing.Stop, startAddress string) (*routing.Result, error)
}

// ProofChecker reports how much proof of delivery exists for a stop
type ProofChecker interface {
	CountArtifacts(ctx context.Context, stopID uuid.UUID) (ProofArtifacts, error)
}

// Service handles tour business logic
type Service struct {
	repo      RepositoryInterface
	optimizer RouteOptimizer // nil when no Maps API key is configured
	proof     ProofChecker
}

// NewService creates a new tours service
func NewService(repo RepositoryInterface, optimizer RouteOptimizer, proof ProofChecker) *Service {
	return &Service{
		repo:      repo,
		optimizer: optimizer,
		proof:     proof,
	}
}

// ========================================
// TOUR MANAGEMENT
// ========================================

// CreateTour creates a new draft tour
func (s *Service) CreateTour(ctx context.Context, pharmacyID uuid.UUID, createdBy *uuid.UUID, req *CreateTourRequest) (*Tour, error) {
	date := time.Now().Truncate(24 * time.Hour)
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, common.NewBadRequestError("invalid date format, expected YYYY-MM-DD", err)
		}
		date = d
	}

	name := req.Name
	if name == "" {
		name = "Tour " + date.Format("02.01.2006")
	}

	now := time.Now()
	tour := &Tour{
		ID:            uuid.New(),
		PharmacyID:    pharmacyID,
		Name:          name,
		Date:          date,
		DriverStaffID: req.DriverStaffID,
		Status:        TourStatusDraft,
		StartAddress:  req.StartAddress,
		AccessToken:   uuid.New(),
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateTour(ctx, tour); err != nil {
		return nil, common.NewInternalServerError("failed to create tour", err)
	}

	logger.WithContext(ctx).Info("tour created",
		zap.String("tour_id", tour.ID.String()),
		zap.String("date", date.Format("2006-01-02")))

	return tour, nil
}

// GetTour returns a tour with its stops and derived statistics
func (s *Service) GetTour(ctx context.Context, tourID uuid.UUID) (*TourResponse, error) {
	tour, err := s.repo.GetTour(ctx, tourID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("tour not found", err)
		}
		return nil, common.NewInternalServerError("failed to get tour", err)
	}
	return s.buildTourResponse(ctx, tour)
}

// GetTourByToken resolves the driver access token to a full tour view
func (s *Service) GetTourByToken(ctx context.Context, token uuid.UUID) (*TourResponse, error) {
	tour, err := s.repo.GetTourByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("tour not found", err)
		}
		return nil, common.NewInternalServerError("failed to get tour", err)
	}
	return s.buildTourResponse(ctx, tour)
}

func (s *Service) buildTourResponse(ctx context.Context, tour *Tour) (*TourResponse, error) {
	stops, err := s.repo.ListStops(ctx, tour.ID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list stops", err)
	}
	stats := ComputeTourStats(stops)
	return &TourResponse{Tour: tour, Stops: stops, Stats: &stats}, nil
}

// ListTours lists a pharmacy's tours
func (s *Service) ListTours(ctx context.Context, pharmacyID uuid.UUID, filters TourListFilters) ([]*Tour, error) {
	tours, err := s.repo.ListTours(ctx, pharmacyID, filters)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list tours", err)
	}
	return tours, nil
}

// UpdateTour updates tour metadata
func (s *Service) UpdateTour(ctx context.Context, tourID uuid.UUID, req *UpdateTourRequest) (*Tour, error) {
	tour, err := s.getTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tour.Name = *req.Name
	}
	if req.Date != nil {
		d, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, common.NewBadRequestError("invalid date format, expected YYYY-MM-DD", err)
		}
		tour.Date = d
	}
	if req.DriverStaffID != nil {
		tour.DriverStaffID = req.DriverStaffID
	}
	if req.StartAddress != nil {
		tour.StartAddress = req.StartAddress
	}

	if err := s.repo.UpdateTour(ctx, tour); err != nil {
		return nil, common.NewInternalServerError("failed to update tour", err)
	}
	return tour, nil
}

// DeleteTour deletes a tour that has not started yet
func (s *Service) DeleteTour(ctx context.Context, tourID uuid.UUID) error {
	tour, err := s.getTour(ctx, tourID)
	if err != nil {
		return err
	}
	if tour.Status == TourStatusActive {
		return common.NewConflictError("cannot delete an active tour", nil)
	}
	if err := s.repo.DeleteTour(ctx, tourID); err != nil {
		return common.NewInternalServerError("failed to delete tour", err)
	}
	return nil
}

// GetTourStats returns the aggregate statistics of a tour
func (s *Service) GetTourStats(ctx context.Context, tourID uuid.UUID) (*TourStats, error) {
	if _, err := s.getTour(ctx, tourID); err != nil {
		return nil, err
	}
	stops, err := s.repo.ListStops(ctx, tourID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list stops", err)
	}
	stats := ComputeTourStats(stops)
	return &stats, nil
}

// ========================================
// TOUR LIFECYCLE
// ========================================

// StartTour marks a tour as underway
func (s *Service) StartTour(ctx context.Context, tourID uuid.UUID) (*Tour, error) {
	tour, err := s.getTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if tour.Status != TourStatusDraft && tour.Status != TourStatusPlanned {
		return nil, common.NewConflictError("tour cannot be started from status "+string(tour.Status), nil)
	}

	now := time.Now()
	tour.Status = TourStatusActive
	tour.StartedAt = &now
	if err := s.repo.UpdateTour(ctx, tour); err != nil {
		return nil, common.NewInternalServerError("failed to update tour", err)
	}

	logger.WithContext(ctx).Info("tour started", zap.String("tour_id", tour.ID.String()))
	return tour, nil
}

// CompleteTour closes out an active tour. Stops left open stay as they are;
// the stats endpoint makes the shortfall visible.
func (s *Service) CompleteTour(ctx context.Context, tourID uuid.UUID) (*Tour, error) {
	tour, err := s.getTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if tour.Status != TourStatusActive {
		return nil, common.NewConflictError("only active tours can be completed", nil)
	}

	now := time.Now()
	tour.Status = TourStatusCompleted
	tour.CompletedAt = &now
	if err := s.repo.UpdateTour(ctx, tour); err != nil {
		return nil, common.NewInternalServerError("failed to update tour", err)
	}

	logger.WithContext(ctx).Info("tour completed", zap.String("tour_id", tour.ID.String()))
	return tour, nil
}

// CancelTour cancels a tour in any non-terminal state
func (s *Service) CancelTour(ctx context.Context, tourID uuid.UUID) (*Tour, error) {
	tour, err := s.getTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if tour.Status == TourStatusCompleted || tour.Status == TourStatusCancelled {
		return nil, common.NewConflictError("tour is already "+string(tour.Status), nil)
	}

	tour.Status = TourStatusCancelled
	if err := s.repo.UpdateTour(ctx, tour); err != nil {
		return nil, common.NewInternalServerError("failed to update tour", err)
	}
	return tour, nil
}

// ========================================
// STOP MANAGEMENT
// ========================================

// AddStop appends a stop to a tour
func (s *Service) AddStop(ctx context.Context, tourID uuid.UUID, addedBy *uuid.UUID, req *CreateStopRequest) (*Stop, error) {
	tour, err := s.getTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if tour.Status == TourStatusCompleted || tour.Status == TourStatusCancelled {
		return nil, common.NewConflictError("cannot add stops to a "+string(tour.Status)+" tour", nil)
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	if req.PackageCount < 0 || req.CashAmount < 0 {
		return nil, common.NewBadRequestError("package_count and cash_amount must not be negative", nil)
	}

	now := time.Now()
	stop := &Stop{
		ID:           uuid.New(),
		TourID:       tourID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Street:       req.Street,
		PostalCode:   req.PostalCode,
		City:         req.City,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		PackageCount: req.PackageCount,
		CashAmount:   req.CashAmount,
		Priority:     priority,
		StopNotes:    req.StopNotes,
		Status:       StopStatusPending,
		AddedBy:      addedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateStop(ctx, stop); err != nil {
		return nil, common.NewInternalServerError("failed to create stop", err)
	}
	return stop, nil
}

// UpdateStop updates a stop's details
func (s *Service) UpdateStop(ctx context.Context, stopID uuid.UUID, req *UpdateStopRequest) (*Stop, error) {
	stop, err := s.getStop(ctx, stopID)
	if err != nil {
		return nil, err
	}
	if stop.Status == StopStatusCompleted {
		return nil, common.NewConflictError("completed stops cannot be edited", nil)
	}

	if req.CustomerName != nil {
		stop.CustomerName = *req.CustomerName
	}
	if req.Street != nil {
		stop.Street = *req.Street
	}
	if req.PostalCode != nil {
		stop.PostalCode = *req.PostalCode
	}
	if req.City != nil {
		stop.City = *req.City
	}
	if req.Latitude != nil {
		stop.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		stop.Longitude = req.Longitude
	}
	if req.PackageCount != nil {
		if *req.PackageCount < 0 {
			return nil, common.NewBadRequestError("package_count must not be negative", nil)
		}
		stop.PackageCount = *req.PackageCount
	}
	if req.CashAmount != nil {
		if *req.CashAmount < 0 {
			return nil, common.NewBadRequestError("cash_amount must not be negative", nil)
		}
		stop.CashAmount = *req.CashAmount
	}
	if req.Priority != nil {
		stop.Priority = *req.Priority
	}
	if req.StopNotes != nil {
		stop.StopNotes = req.StopNotes
	}

	if err := s.repo.UpdateStop(ctx, stop); err != nil {
		return nil, common.NewInternalServerError("failed to update stop", err)
	}
	return stop, nil
}

// DeleteStop removes a stop from its tour
func (s *Service) DeleteStop(ctx context.Context, stopID uuid.UUID) error {
	stop, err := s.getStop(ctx, stopID)
	if err != nil {
		return err
	}
	if stop.Status == StopStatusCompleted {
		return common.NewConflictError("completed stops cannot be deleted", nil)
	}
	if err := s.repo.DeleteStop(ctx, stopID); err != nil {
		return common.NewInternalServerError("failed to delete stop", err)
	}
	return nil
}

// ReorderStops applies a manual visiting order. The request must name every
// stop of the tour exactly once.
func (s *Service) ReorderStops(ctx context.Context, tourID uuid.UUID, req *ReorderStopsRequest) ([]*Stop, error) {
	if _, err := s.getTour(ctx, tourID); err != nil {
		return nil, err
	}
	stops, err := s.repo.ListStops(ctx, tourID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list stops", err)
	}

	if len(req.StopIDs) != len(stops) {
		return nil, common.NewBadRequestError("stop_ids must name every stop of the tour exactly once", nil)
	}
	existing := make(map[uuid.UUID]bool, len(stops))
	for _, st := range stops {
		existing[st.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(req.StopIDs))
	for _, id := range req.StopIDs {
		if !existing[id] {
			return nil, common.NewBadRequestError("stop "+id.String()+" does not belong to this tour", nil)
		}
		if seen[id] {
			return nil, common.NewBadRequestError("duplicate stop id "+id.String(), nil)
		}
		seen[id] = true
	}

	if err := s.repo.UpdateSortOrders(ctx, tourID, req.StopIDs); err != nil {
		return nil, common.NewInternalServerError("failed to reorder stops", err)
	}

	reordered, err := s.repo.ListStops(ctx, tourID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list stops", err)
	}
	return reordered, nil
}

// ========================================
// STOP LIFECYCLE
// ========================================

// StartStop marks a stop as currently being delivered
func (s *Service) StartStop(ctx context.Context, stopID uuid.UUID) (*Stop, error) {
	return s.transitionStop(ctx, stopID, func(stop *Stop) error {
		return StartStop(stop)
	})
}

// FinishStop marks a stop delivered. At least one proof artifact (photo or
// signature) must exist before the transition is allowed.
func (s *Service) FinishStop(ctx context.Context, stopID uuid.UUID, req *CompleteStopRequest) (*Stop, error) {
	proof, err := s.proof.CountArtifacts(ctx, stopID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to check proof of delivery", err)
	}
	return s.transitionStop(ctx, stopID, func(stop *Stop) error {
		return CompleteStop(stop, proof, time.Now(), req)
	})
}

// SkipStop defers a stop without delivering it
func (s *Service) SkipStop(ctx context.Context, stopID uuid.UUID, req *SkipStopRequest) (*Stop, error) {
	return s.transitionStop(ctx, stopID, func(stop *Stop) error {
		return SkipStop(stop, req.Reason)
	})
}

// RescheduleStop moves a stop to a future date
func (s *Service) RescheduleStop(ctx context.Context, stopID uuid.UUID, req *RescheduleStopRequest) (*Stop, error) {
	to, err := time.Parse("2006-01-02", req.RescheduledTo)
	if err != nil {
		return nil, common.NewBadRequestError("invalid rescheduled_to format, expected YYYY-MM-DD", err)
	}
	return s.transitionStop(ctx, stopID, func(stop *Stop) error {
		return RescheduleStop(stop, to, req.Reason)
	})
}

// CollectCash records a cash collection for a stop. Partial amounts are
// allowed and do not mark the stop as settled.
func (s *Service) CollectCash(ctx context.Context, stopID uuid.UUID, req *CollectCashRequest) (*Stop, error) {
	stop, err := s.getStop(ctx, stopID)
	if err != nil {
		return nil, err
	}

	amount := stop.CashAmount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if err := CollectCash(stop, amount, req.Notes); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStop(ctx, stop); err != nil {
		return nil, common.NewInternalServerError("failed to update stop", err)
	}

	logger.WithContext(ctx).Info("cash collected",
		zap.String("stop_id", stop.ID.String()),
		zap.Float64("amount", amount),
		zap.Bool("settled", stop.CashCollected))

	return stop, nil
}

func (s *Service) transitionStop(ctx context.Context, stopID uuid.UUID, apply func(*Stop) error) (*Stop, error) {
	stop, err := s.getStop(ctx, stopID)
	if err != nil {
		return nil, err
	}
	if err := apply(stop); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStop(ctx, stop); err != nil {
		return nil, common.NewInternalServerError("failed to update stop", err)
	}
	return stop, nil
}

// ========================================
// ROUTE OPTIMIZATION
// ========================================

// OptimizeTour reorders a tour's stops. With use_directions set and a
// configured optimizer it asks the external service for a road-network
// optimum; on any remote failure it falls back to the local heuristic so
// the tour always comes back ordered.
func (s *Service) OptimizeTour(ctx context.Context, tourID uuid.UUID, req *OptimizeTourRequest) (*OptimizeTourResponse, error) {
	tour, err := s.getTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	stops, err := s.repo.ListStops(ctx, tourID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list stops", err)
	}
	if len(stops) < 2 {
		return nil, common.NewBadRequestError("at least 2 stops required for optimization", nil)
	}

	routingStops := RoutingStops(stops)
	byID := make(map[string]*Stop, len(stops))
	for _, st := range stops {
		byID[st.ID.String()] = st
	}

	startAddress := ""
	if tour.StartAddress != nil {
		startAddress = *tour.StartAddress
	}

	if req.UseDirections && s.optimizer != nil {
		result, err := s.optimizer.OptimizeRoute(ctx, routingStops, startAddress)
		if err == nil {
			resp, applyErr := s.applyRemoteResult(ctx, tour, byID, result)
			if applyErr != nil {
				return nil, applyErr
			}
			return resp, nil
		}
		logger.WithContext(ctx).Warn("remote optimization failed, falling back to local heuristic",
			zap.String("tour_id", tourID.String()),
			zap.Error(err))
	}

	local := routing.OptimizeLocal(routingStops)
	orderedIDs, err := mapOrderedIDs(byID, local.Stops)
	if err != nil {
		return nil, common.NewInternalServerError("optimizer returned unknown stops", err)
	}
	if err := s.repo.ApplyOptimization(ctx, tourID, orderedIDs, nil, nil, nil); err != nil {
		return nil, common.NewInternalServerError("failed to persist stop order", err)
	}

	reordered, err := s.repo.ListStops(ctx, tourID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list stops", err)
	}

	logger.WithContext(ctx).Info("tour optimized",
		zap.String("tour_id", tourID.String()),
		zap.String("method", string(local.Method)))

	return &OptimizeTourResponse{
		Stops:   reordered,
		Method:  local.Method,
		Message: local.Message,
	}, nil
}

func (s *Service) applyRemoteResult(ctx context.Context, tour *Tour, byID map[string]*Stop, result *routing.Result) (*OptimizeTourResponse, error) {
	orderedIDs, err := mapOrderedIDs(byID, result.Stops)
	if err != nil {
		return nil, common.NewBadGatewayError("optimization service returned unknown stops", err)
	}

	var encoded *string
	if result.EncodedPolyline != "" {
		encoded = &result.EncodedPolyline
	}
	distance := result.Details.TotalDistanceKm
	duration := result.Details.TotalDurationMin

	if err := s.repo.ApplyOptimization(ctx, tour.ID, orderedIDs, encoded, &distance, &duration); err != nil {
		return nil, common.NewInternalServerError("failed to persist optimization result", err)
	}

	reordered, err := s.repo.ListStops(ctx, tour.ID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list stops", err)
	}

	logger.WithContext(ctx).Info("tour optimized",
		zap.String("tour_id", tour.ID.String()),
		zap.String("method", string(routing.MethodDirections)),
		zap.Float64("distance_km", distance),
		zap.Int("duration_min", duration))

	details := result.Details
	return &OptimizeTourResponse{
		Stops:           reordered,
		Method:          routing.MethodDirections,
		Message:         result.Message,
		Details:         &details,
		RoutePolyline:   result.RoutePolyline,
		EncodedPolyline: result.EncodedPolyline,
	}, nil
}

// mapOrderedIDs translates a routing result back to stop UUIDs, preserving order
func mapOrderedIDs(byID map[string]*Stop, ordered []routing.Stop) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(ordered))
	for _, rs := range ordered {
		st, ok := byID[rs.ID]
		if !ok {
			return nil, errors.New("unknown stop id " + rs.ID)
		}
		ids = append(ids, st.ID)
	}
	return ids, nil
}

// ========================================
// NAVIGATION
// ========================================

// StopNavigationURL builds a Google Maps navigation link for one stop
func (s *Service) StopNavigationURL(ctx context.Context, stopID uuid.UUID) (string, error) {
	stop, err := s.getStop(ctx, stopID)
	if err != nil {
		return "", err
	}
	url := routing.NavigationURL(stop.RoutingStop())
	if url == "" {
		return "", common.NewUnprocessableError("stop has no navigable address", nil)
	}
	return url, nil
}

// TourNavigationURL builds a Google Maps link covering the whole tour
func (s *Service) TourNavigationURL(ctx context.Context, tourID uuid.UUID) (string, error) {
	if _, err := s.getTour(ctx, tourID); err != nil {
		return "", err
	}
	stops, err := s.repo.ListStops(ctx, tourID)
	if err != nil {
		return "", common.NewInternalServerError("failed to list stops", err)
	}
	url := routing.TourMapsURL(RoutingStops(stops))
	if url == "" {
		return "", common.NewUnprocessableError("tour has no navigable stops", nil)
	}
	return url, nil
}

// ========================================
// HELPERS
// ========================================

func (s *Service) getTour(ctx context.Context, tourID uuid.UUID) (*Tour, error) {
	tour, err := s.repo.GetTour(ctx, tourID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("tour not found", err)
		}
		return nil, common.NewInternalServerError("failed to get tour", err)
	}
	return tour, nil
}

func (s *Service) getStop(ctx context.Context, stopID uuid.UUID) (*Stop, error) {
	stop, err := s.repo.GetStop(ctx, stopID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("stop not found", err)
		}
		return nil, common.NewInternalServerError("failed to get stop", err)
	}
	return stop, nil
}
