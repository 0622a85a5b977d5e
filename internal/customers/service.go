package customers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/apotheka-systems/botendienst/pkg/common"
)

// RepositoryInterface defines customer persistence operations
type RepositoryInterface interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, customerID uuid.UUID) (*Customer, error)
	List(ctx context.Context, pharmacyID uuid.UUID, search string) ([]*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, customerID uuid.UUID) error
}

// Service handles customer business logic
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new customers service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// Create registers a recurring delivery recipient
func (s *Service) Create(ctx context.Context, pharmacyID uuid.UUID, req *CreateCustomerRequest) (*Customer, error) {
	if req.PostalCode == "" && req.City == "" {
		return nil, common.NewBadRequestError("postal_code or city required")
	}

	now := time.Now()
	customer := &Customer{
		ID:            uuid.New(),
		PharmacyID:    pharmacyID,
		Name:          req.Name,
		Phone:         req.Phone,
		Street:        req.Street,
		PostalCode:    req.PostalCode,
		City:          req.City,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		DeliveryNotes: req.DeliveryNotes,
		AccessInfo:    req.AccessInfo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, common.NewInternalServerError("failed to create customer", err)
	}
	return customer, nil
}

// Get returns a customer by ID
func (s *Service) Get(ctx context.Context, customerID uuid.UUID) (*Customer, error) {
	customer, err := s.repo.Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("customer not found", err)
		}
		return nil, common.NewInternalServerError("failed to get customer", err)
	}
	return customer, nil
}

// List lists a pharmacy's customers
func (s *Service) List(ctx context.Context, pharmacyID uuid.UUID, search string) ([]*Customer, error) {
	result, err := s.repo.List(ctx, pharmacyID, search)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list customers", err)
	}
	return result, nil
}

// Update modifies a customer's details. Changing the address clears stale
// coordinates unless the caller provides fresh ones.
func (s *Service) Update(ctx context.Context, customerID uuid.UUID, req *UpdateCustomerRequest) (*Customer, error) {
	customer, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	addressChanged := false
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Street != nil && *req.Street != customer.Street {
		customer.Street = *req.Street
		addressChanged = true
	}
	if req.PostalCode != nil && *req.PostalCode != customer.PostalCode {
		customer.PostalCode = *req.PostalCode
		addressChanged = true
	}
	if req.City != nil && *req.City != customer.City {
		customer.City = *req.City
		addressChanged = true
	}
	if req.DeliveryNotes != nil {
		customer.DeliveryNotes = req.DeliveryNotes
	}
	if req.AccessInfo != nil {
		customer.AccessInfo = req.AccessInfo
	}

	if req.Latitude != nil || req.Longitude != nil {
		customer.Latitude = req.Latitude
		customer.Longitude = req.Longitude
	} else if addressChanged {
		customer.Latitude = nil
		customer.Longitude = nil
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, common.NewInternalServerError("failed to update customer", err)
	}
	return customer, nil
}

// Delete removes a customer. Historical stops keep their copied address data.
func (s *Service) Delete(ctx context.Context, customerID uuid.UUID) error {
	if err := s.repo.Delete(ctx, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewNotFoundError("customer not found", err)
		}
		return common.NewInternalServerError("failed to delete customer", err)
	}
	return nil
}
