package customers

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a recurring delivery recipient of a pharmacy
type Customer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PharmacyID uuid.UUID `json:"pharmacy_id" db:"pharmacy_id"`

	Name       string  `json:"name" db:"name"`
	Phone      *string `json:"phone,omitempty" db:"phone"`
	Street     string  `json:"street" db:"street"`
	PostalCode string  `json:"postal_code" db:"postal_code"`
	City       string  `json:"city" db:"city"`

	// Geocoded once, reused for every stop created from this customer
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`

	DeliveryNotes *string `json:"delivery_notes,omitempty" db:"delivery_notes"`
	AccessInfo    *string `json:"access_info,omitempty" db:"access_info"` // Gate codes, floor, bell name

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateCustomerRequest creates a delivery customer
type CreateCustomerRequest struct {
	Name          string   `json:"name" binding:"required"`
	Phone         *string  `json:"phone,omitempty"`
	Street        string   `json:"street" binding:"required"`
	PostalCode    string   `json:"postal_code"`
	City          string   `json:"city"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	DeliveryNotes *string  `json:"delivery_notes,omitempty"`
	AccessInfo    *string  `json:"access_info,omitempty"`
}

// UpdateCustomerRequest updates a delivery customer
type UpdateCustomerRequest struct {
	Name          *string  `json:"name,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	Street        *string  `json:"street,omitempty"`
	PostalCode    *string  `json:"postal_code,omitempty"`
	City          *string  `json:"city,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	DeliveryNotes *string  `json:"delivery_notes,omitempty"`
	AccessInfo    *string  `json:"access_info,omitempty"`
}
