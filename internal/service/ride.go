package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nammauto/internal/domain"
	"nammauto/internal/redis"
	"nammauto/internal/repository"
)

// acceptLockTTL bounds how long an accept holds its ride lock. The lock only
// narrows the double-accept window; the conditional repository write is the
// real guard.
const acceptLockTTL = 5 * time.Second

// RideService handles the ride lifecycle.
type RideService struct {
	rideRepo  repository.RideRepository
	lockStore redis.LockStoreInterface
}

// NewRideService creates a new RideService. lockStore may be nil when Redis
// is not configured.
func NewRideService(rideRepo repository.RideRepository, lockStore redis.LockStoreInterface) *RideService {
	return &RideService{
		rideRepo:  rideRepo,
		lockStore: lockStore,
	}
}

// CreateRideRequest contains the parameters for requesting a ride.
type CreateRideRequest struct {
	PassengerID   string
	PassengerName string
	From          string
	To            string
	Vehicle       string
	Type          domain.RideType
	Distance      float64
}

// CreateRide creates a new ride in pending state.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if req.PassengerID == "" || req.PassengerName == "" || req.From == "" || req.To == "" || req.Vehicle == "" {
		return nil, ErrMissingRideFields
	}

	rideType := req.Type
	if rideType == "" {
		rideType = domain.RideTypeDropOff
	}

	ride := &domain.Ride{
		ID:            uuid.New().String(),
		PassengerID:   req.PassengerID,
		PassengerName: req.PassengerName,
		From:          req.From,
		To:            req.To,
		Vehicle:       req.Vehicle,
		Type:          rideType,
		Status:        domain.RideStatusPending,
		Distance:      req.Distance,
		CreatedAt:     time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}
	return ride, nil
}

// PendingRides returns all pending rides, newest first.
func (s *RideService) PendingRides(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.GetPending(ctx)
}

// ActiveRideFor returns the pending or accepted ride the participant is part
// of, or nil when there is none.
func (s *RideService) ActiveRideFor(ctx context.Context, participantID string) (*domain.Ride, error) {
	if participantID == "" {
		return nil, ErrInvalidUserID
	}
	return s.rideRepo.GetActiveByParticipant(ctx, participantID)
}

// UpdateRide applies a partial update to a ride: accept (status=accepted,
// driverId, price), complete (status=completed, price) and cancel
// (status=cancelled) all flow through here. Status changes are checked
// against the lifecycle, so completed and cancelled rides stay terminal.
func (s *RideService) UpdateRide(ctx context.Context, rideID string, patch repository.RidePatch) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}

	if patch.Status != nil {
		if !domain.ValidRideStatus(*patch.Status) {
			return nil, ErrInvalidRideStatus
		}

		current, err := s.rideRepo.GetByID(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if *patch.Status != current.Status && !domain.CanTransition(current.Status, *patch.Status) {
			return nil, ErrInvalidTransition
		}

		if *patch.Status == domain.RideStatusAccepted {
			return s.accept(ctx, rideID, patch)
		}
	}

	return s.rideRepo.Update(ctx, rideID, patch)
}

// accept routes an accept through the conditional repository write, guarded
// by a short per-ride lock when Redis is available.
func (s *RideService) accept(ctx context.Context, rideID string, patch repository.RidePatch) (*domain.Ride, error) {
	if patch.DriverID == nil || *patch.DriverID == "" {
		return nil, ErrInvalidUserID
	}

	price := ""
	if patch.Price != nil {
		price = *patch.Price
	}

	if s.lockStore != nil {
		ok, err := s.lockStore.AcquireRideLock(ctx, rideID, acceptLockTTL)
		if err == nil && !ok {
			return nil, repository.ErrRideConflict
		}
		if err == nil {
			defer func() { _ = s.lockStore.ReleaseRideLock(ctx, rideID) }()
		}
		// Lock errors are ignored; the conditional write still protects us.
	}

	return s.rideRepo.AcceptPending(ctx, rideID, *patch.DriverID, price)
}
