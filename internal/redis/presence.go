package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"nammauto/internal/domain"
)

const (
	rosterKey = "drivers:online"

	// RosterCacheTTL bounds how stale the cached roster can be. Driver
	// status flips frequently, so the TTL is short.
	RosterCacheTTL = 15 * time.Second
)

// cachedDriver is the cached representation of an online driver.
type cachedDriver struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	VehicleDetails *domain.VehicleDetails `json:"vehicleDetails,omitempty"`
	Location       string                 `json:"location,omitempty"`
	Rating         float64                `json:"rating"`
}

// PresenceStore caches the online-driver roster in Redis so the polling
// clients do not hit the persistence layer on every tick.
type PresenceStore struct {
	client *redis.Client
}

// NewPresenceStore creates a new PresenceStore.
func NewPresenceStore(client *redis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

// GetRoster retrieves the cached roster. Returns nil, nil on a cache miss.
func (s *PresenceStore) GetRoster(ctx context.Context) ([]*domain.User, error) {
	data, err := s.client.Get(ctx, rosterKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached []cachedDriver
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	drivers := make([]*domain.User, 0, len(cached))
	for _, c := range cached {
		drivers = append(drivers, &domain.User{
			ID:             c.ID,
			Name:           c.Name,
			Email:          c.Email,
			Phone:          c.Phone,
			Role:           domain.RoleDriver,
			VehicleDetails: c.VehicleDetails,
			Status:         domain.DriverStatusOnline,
			Location:       c.Location,
			Rating:         c.Rating,
		})
	}
	return drivers, nil
}

// SetRoster stores the roster in cache.
func (s *PresenceStore) SetRoster(ctx context.Context, drivers []*domain.User) error {
	cached := make([]cachedDriver, 0, len(drivers))
	for _, d := range drivers {
		cached = append(cached, cachedDriver{
			ID:             d.ID,
			Name:           d.Name,
			Email:          d.Email,
			Phone:          d.Phone,
			VehicleDetails: d.VehicleDetails,
			Location:       d.Location,
			Rating:         d.Rating,
		})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rosterKey, data, RosterCacheTTL).Err()
}

// Invalidate drops the cached roster. Called whenever a driver's status
// changes so the next read rebuilds from the repository.
func (s *PresenceStore) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, rosterKey).Err()
}
