// Package file implements the repository interfaces on top of a single flat
// JSON file. It is functionally equivalent to the postgres package and is
// meant for demos and tests where no database is available.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nammauto/internal/domain"
)

// storedUser is the on-disk representation of a user.
type storedUser struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	Role           domain.Role            `json:"role"`
	VehicleDetails *domain.VehicleDetails `json:"vehicleDetails,omitempty"`
	Status         domain.DriverStatus    `json:"status"`
	Location       string                 `json:"location,omitempty"`
	Rating         float64                `json:"rating"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// storedRide is the on-disk representation of a ride.
type storedRide struct {
	ID            string            `json:"id"`
	PassengerID   string            `json:"passengerId"`
	PassengerName string            `json:"passengerName"`
	From          string            `json:"from"`
	To            string            `json:"to"`
	Vehicle       string            `json:"vehicle"`
	Type          domain.RideType   `json:"type"`
	Status        domain.RideStatus `json:"status"`
	DriverID      string            `json:"driverId,omitempty"`
	Price         string            `json:"price,omitempty"`
	Distance      float64           `json:"distance"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// database is the full file contents.
type database struct {
	Users []storedUser `json:"users"`
	Rides []storedRide `json:"rides"`
}

// Store owns the flat file. All reads and writes go through the mutex, so a
// single document update is atomic with respect to other store operations.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the flat file at path.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(&database{Users: []storedUser{}, Rides: []storedRide{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return s, nil
}

// read loads the full database. Callers must hold the mutex.
func (s *Store) read() (*database, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var db database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return &db, nil
}

// write persists the full database. The write goes to a temp file first and
// is renamed into place, so the file is durable and never half-written.
// Callers must hold the mutex.
func (s *Store) write(db *database) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".namma-db-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", s.path, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", s.path, err)
	}
	return nil
}

func toDomainUser(u *storedUser) *domain.User {
	return &domain.User{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           u.Role,
		VehicleDetails: u.VehicleDetails,
		Status:         u.Status,
		Location:       u.Location,
		Rating:         u.Rating,
		CreatedAt:      u.CreatedAt,
	}
}

func toStoredUser(u *domain.User) storedUser {
	return storedUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           u.Role,
		VehicleDetails: u.VehicleDetails,
		Status:         u.Status,
		Location:       u.Location,
		Rating:         u.Rating,
		CreatedAt:      u.CreatedAt,
	}
}

func toDomainRide(r *storedRide) *domain.Ride {
	return &domain.Ride{
		ID:            r.ID,
		PassengerID:   r.PassengerID,
		PassengerName: r.PassengerName,
		From:          r.From,
		To:            r.To,
		Vehicle:       r.Vehicle,
		Type:          r.Type,
		Status:        r.Status,
		DriverID:      r.DriverID,
		Price:         r.Price,
		Distance:      r.Distance,
		CreatedAt:     r.CreatedAt,
	}
}

func toStoredRide(r *domain.Ride) storedRide {
	return storedRide{
		ID:            r.ID,
		PassengerID:   r.PassengerID,
		PassengerName: r.PassengerName,
		From:          r.From,
		To:            r.To,
		Vehicle:       r.Vehicle,
		Type:          r.Type,
		Status:        r.Status,
		DriverID:      r.DriverID,
		Price:         r.Price,
		Distance:      r.Distance,
		CreatedAt:     r.CreatedAt,
	}
}
