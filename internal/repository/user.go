package repository

import (
	"context"

	"nammauto/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create adds a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByPhone retrieves a user by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// GetOnlineDrivers retrieves all users with role driver and status online.
	GetOnlineDrivers(ctx context.Context) ([]*domain.User, error)

	// UpdateStatus updates the driver status of a user.
	// Returns ErrNotFound if the id is unknown.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error
}
