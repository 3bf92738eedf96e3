package redis

import (
	"context"
	"time"

	"nammauto/internal/domain"
)

// PresenceStoreInterface defines the interface for the cached driver roster.
type PresenceStoreInterface interface {
	GetRoster(ctx context.Context) ([]*domain.User, error)
	SetRoster(ctx context.Context, drivers []*domain.User) error
	Invalidate(ctx context.Context) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ PresenceStoreInterface = (*PresenceStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
