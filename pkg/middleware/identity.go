package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// PharmacyIDHeader identifies the tenant on staff requests. Identity is
	// established by the gateway in front of this service; here it is only
	// read, never verified.
	PharmacyIDHeader = "X-Pharmacy-ID"
	// StaffIDHeader optionally identifies the acting staff member
	StaffIDHeader = "X-Staff-ID"
)

// ErrNoPharmacyID is returned when a staff request carries no tenant header
var ErrNoPharmacyID = errors.New("missing pharmacy ID")

// GetPharmacyID extracts the tenant ID from the request
func GetPharmacyID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(PharmacyIDHeader)
	if raw == "" {
		return uuid.Nil, ErrNoPharmacyID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetStaffID extracts the acting staff member's ID, if present
func GetStaffID(c *gin.Context) *uuid.UUID {
	raw := c.GetHeader(StaffIDHeader)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
