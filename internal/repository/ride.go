package repository

import (
	"context"

	"nammauto/internal/domain"
)

// RidePatch describes a partial update to a ride. Nil fields are left
// untouched; the single Update call is the unit of atomicity.
type RidePatch struct {
	Status   *domain.RideStatus
	DriverID *string
	Price    *string
	Distance *float64
}

// Empty reports whether the patch changes nothing.
func (p RidePatch) Empty() bool {
	return p.Status == nil && p.DriverID == nil && p.Price == nil && p.Distance == nil
}

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetPending retrieves all pending rides, newest first.
	GetPending(ctx context.Context) ([]*domain.Ride, error)

	// GetActiveByParticipant retrieves the ride where the given id matches
	// the passenger or the driver and the status is pending or accepted.
	// Returns nil, nil when there is no active ride.
	GetActiveByParticipant(ctx context.Context, participantID string) (*domain.Ride, error)

	// Update applies a partial update to a ride.
	// Returns ErrNotFound if the id is unknown.
	Update(ctx context.Context, id string, patch RidePatch) (*domain.Ride, error)

	// AcceptPending assigns a driver and price to a ride, but only while the
	// ride is still pending. Returns ErrRideConflict if another driver got
	// there first, ErrNotFound if the id is unknown.
	AcceptPending(ctx context.Context, id, driverID, price string) (*domain.Ride, error)
}
