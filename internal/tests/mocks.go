package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"nammauto/internal/domain"
	"nammauto/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	GetByPhoneError   error
	UpdateStatusError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser seeds a user into the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == user.Phone {
			return repository.ErrDuplicatePhone
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.GetByPhoneError != nil {
		return nil, m.GetByPhoneError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetOnlineDrivers(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var drivers []*domain.User
	for _, u := range m.users {
		if u.Role == domain.RoleDriver && u.Status == domain.DriverStatusOnline {
			copy := *u
			drivers = append(drivers, &copy)
		}
	}
	return drivers, nil
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Status = status
	return nil
}

// UserCount returns the number of stored users, for assertions.
func (m *MockUserRepository) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of repository.RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount        int32
	UpdateCallCount        int32
	AcceptPendingCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{rides: make(map[string]*domain.Ride)}
}

// AddRide seeds a ride into the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetPending(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rides []*domain.Ride
	for _, r := range m.rides {
		if r.Status == domain.RideStatusPending {
			copy := *r
			rides = append(rides, &copy)
		}
	}
	sort.Slice(rides, func(i, j int) bool {
		return rides[i].CreatedAt.After(rides[j].CreatedAt)
	})
	return rides, nil
}

func (m *MockRideRepository) GetActiveByParticipant(ctx context.Context, participantID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active *domain.Ride
	for _, r := range m.rides {
		if !r.Active() {
			continue
		}
		if r.PassengerID != participantID && r.DriverID != participantID {
			continue
		}
		if active == nil || r.CreatedAt.After(active.CreatedAt) {
			active = r
		}
	}
	if active == nil {
		return nil, nil
	}
	copy := *active
	return &copy, nil
}

func (m *MockRideRepository) Update(ctx context.Context, id string, patch repository.RidePatch) (*domain.Ride, error) {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
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
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) AcceptPending(ctx context.Context, id, driverID, price string) (*domain.Ride, error) {
	atomic.AddInt32(&m.AcceptPendingCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusPending {
		return nil, repository.ErrRideConflict
	}
	ride.Status = domain.RideStatusAccepted
	ride.DriverID = driverID
	ride.Price = price
	copy := *ride
	return &copy, nil
}

// GetRide returns the stored ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// ──────────────────────────────────────────────
// MOCK PRESENCE / LOCK STORES
// ──────────────────────────────────────────────

// MockPresenceStore is an in-memory stand-in for the Redis roster cache.
type MockPresenceStore struct {
	mu     sync.Mutex
	roster []*domain.User

	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockPresenceStore creates a new mock presence store.
func NewMockPresenceStore() *MockPresenceStore {
	return &MockPresenceStore{}
}

func (m *MockPresenceStore) GetRoster(ctx context.Context) ([]*domain.User, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roster, nil
}

func (m *MockPresenceStore) SetRoster(ctx context.Context, drivers []*domain.User) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roster = drivers
	return nil
}

func (m *MockPresenceStore) Invalidate(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roster = nil
	return nil
}

// MockLockStore is an in-memory stand-in for the Redis ride lock.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[rideID] {
		return false, nil
	}
	m.locks[rideID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, rideID)
	return nil
}
