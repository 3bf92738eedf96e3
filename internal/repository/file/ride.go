package file

import (
	"context"
	"sort"

	"nammauto/internal/domain"
	"nammauto/internal/repository"
)

// RideRepository is a flat-file implementation of repository.RideRepository.
type RideRepository struct {
	store *Store
}

// NewRideRepository creates a flat-file ride repository.
func NewRideRepository(store *Store) *RideRepository {
	return &RideRepository{store: store}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return err
	}

	db.Rides = append(db.Rides, toStoredRide(ride))
	return r.store.write(db)
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return nil, err
	}

	if ride := findRide(db, id); ride != nil {
		return toDomainRide(ride), nil
	}
	return nil, repository.ErrNotFound
}

// GetPending retrieves all pending rides, newest first.
func (r *RideRepository) GetPending(ctx context.Context) ([]*domain.Ride, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return nil, err
	}

	var rides []*domain.Ride
	for i := range db.Rides {
		if db.Rides[i].Status == domain.RideStatusPending {
			rides = append(rides, toDomainRide(&db.Rides[i]))
		}
	}

	sort.Slice(rides, func(i, j int) bool {
		return rides[i].CreatedAt.After(rides[j].CreatedAt)
	})
	return rides, nil
}

// GetActiveByParticipant retrieves the pending or accepted ride in which the
// given id is the passenger or the driver.
func (r *RideRepository) GetActiveByParticipant(ctx context.Context, participantID string) (*domain.Ride, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return nil, err
	}

	var active *storedRide
	for i := range db.Rides {
		ride := &db.Rides[i]
		if ride.Status != domain.RideStatusPending && ride.Status != domain.RideStatusAccepted {
			continue
		}
		if ride.PassengerID != participantID && ride.DriverID != participantID {
			continue
		}
		if active == nil || ride.CreatedAt.After(active.CreatedAt) {
			active = ride
		}
	}

	if active == nil {
		return nil, nil
	}
	return toDomainRide(active), nil
}

// Update applies a partial update to a ride and returns the updated record.
func (r *RideRepository) Update(ctx context.Context, id string, patch repository.RidePatch) (*domain.Ride, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return nil, err
	}

	ride := findRide(db, id)
	if ride == nil {
		return nil, repository.ErrNotFound
	}

	applyPatch(ride, patch)
	if err := r.store.write(db); err != nil {
		return nil, err
	}
	return toDomainRide(ride), nil
}

// AcceptPending assigns a driver and price to a ride while it is still
// pending. The status check and the write happen under the same lock, which
// is the flat-file equivalent of the conditional UPDATE in postgres.
func (r *RideRepository) AcceptPending(ctx context.Context, id, driverID, price string) (*domain.Ride, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return nil, err
	}

	ride := findRide(db, id)
	if ride == nil {
		return nil, repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusPending {
		return nil, repository.ErrRideConflict
	}

	ride.Status = domain.RideStatusAccepted
	ride.DriverID = driverID
	ride.Price = price

	if err := r.store.write(db); err != nil {
		return nil, err
	}
	return toDomainRide(ride), nil
}

func findRide(db *database, id string) *storedRide {
	for i := range db.Rides {
		if db.Rides[i].ID == id {
			return &db.Rides[i]
		}
	}
	return nil
}

func applyPatch(ride *storedRide, patch repository.RidePatch) {
	if patch.Status != nil {
		ride.Status = *patch.Status
	}
	if patch.DriverID != nil {
		ride.DriverID = *patch.DriverID
	}
	if patch.Price != nil {
		ride.Price = *patch.Price
	}
	if patch.Distance != nil {
		ride.Distance = *patch.Distance
	}
}
