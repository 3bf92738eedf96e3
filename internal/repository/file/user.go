package file

import (
	"context"

	"nammauto/internal/domain"
	"nammauto/internal/repository"
)

// UserRepository is a flat-file implementation of repository.UserRepository.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a flat-file user repository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return err
	}

	for i := range db.Users {
		if db.Users[i].Phone == user.Phone {
			return repository.ErrDuplicatePhone
		}
	}

	db.Users = append(db.Users, toStoredUser(user))
	return r.store.write(db)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(func(u *storedUser) bool { return u.ID == id })
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(func(u *storedUser) bool { return u.Phone == phone })
}

// GetOnlineDrivers retrieves all drivers currently online.
func (r *UserRepository) GetOnlineDrivers(ctx context.Context) ([]*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return nil, err
	}

	var drivers []*domain.User
	for i := range db.Users {
		u := &db.Users[i]
		if u.Role == domain.RoleDriver && u.Status == domain.DriverStatusOnline {
			drivers = append(drivers, toDomainUser(u))
		}
	}
	return drivers, nil
}

// UpdateStatus updates the driver status of a user.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return err
	}

	for i := range db.Users {
		if db.Users[i].ID == id {
			db.Users[i].Status = status
			return r.store.write(db)
		}
	}
	return repository.ErrNotFound
}

func (r *UserRepository) findOne(match func(*storedUser) bool) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	db, err := r.store.read()
	if err != nil {
		return nil, err
	}

	for i := range db.Users {
		if match(&db.Users[i]) {
			return toDomainUser(&db.Users[i]), nil
		}
	}
	return nil, repository.ErrNotFound
}
