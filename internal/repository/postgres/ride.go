package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"nammauto/internal/domain"
	"nammauto/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, passenger_id, passenger_name, origin, destination, vehicle, type, status, driver_id, price, distance, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, passenger_id, passenger_name, origin, destination, vehicle, type, status, driver_id, price, distance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var driverID sql.NullString
	if ride.DriverID != "" {
		driverID = sql.NullString{String: ride.DriverID, Valid: true}
	}

	var price sql.NullString
	if ride.Price != "" {
		price = sql.NullString{String: ride.Price, Valid: true}
	}

	// Default type to drop_off if not set
	rideType := ride.Type
	if rideType == "" {
		rideType = domain.RideTypeDropOff
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.PassengerID,
		ride.PassengerName,
		ride.From,
		ride.To,
		ride.Vehicle,
		rideType,
		ride.Status,
		driverID,
		price,
		ride.Distance,
		ride.CreatedAt,
	)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetPending retrieves all pending rides, newest first.
func (r *RideRepository) GetPending(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, domain.RideStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows.Scan)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// GetActiveByParticipant retrieves the pending or accepted ride in which the
// given id is the passenger or the driver. At most one such ride is expected;
// the most recent one wins if the data holds more.
func (r *RideRepository) GetActiveByParticipant(ctx context.Context, participantID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE (passenger_id = $1 OR driver_id = $1) AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, participantID,
		domain.RideStatusPending, domain.RideStatusAccepted).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ride, nil
}

// Update applies a partial update to a ride and returns the updated row.
func (r *RideRepository) Update(ctx context.Context, id string, patch repository.RidePatch) (*domain.Ride, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.DriverID != nil {
		add("driver_id", *patch.DriverID)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Distance != nil {
		add("distance", *patch.Distance)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE rides SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), rideColumns,
	)

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// AcceptPending assigns a driver and price to a ride while it is still
// pending. The status guard in the WHERE clause makes the accept a single
// conditional write, so two racing drivers cannot both win.
func (r *RideRepository) AcceptPending(ctx context.Context, id, driverID, price string) (*domain.Ride, error) {
	query := `
		UPDATE rides
		SET status = $1, driver_id = $2, price = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + rideColumns

	ride, err := scanRide(r.q.QueryRowContext(ctx, query,
		domain.RideStatusAccepted, driverID, price, id, domain.RideStatusPending).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the id is unknown or the ride is no longer pending.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, repository.ErrRideConflict
		}
		return nil, err
	}
	return ride, nil
}

func scanRide(scan func(dest ...any) error) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID sql.NullString
	var price sql.NullString

	err := scan(
		&ride.ID,
		&ride.PassengerID,
		&ride.PassengerName,
		&ride.From,
		&ride.To,
		&ride.Vehicle,
		&ride.Type,
		&ride.Status,
		&driverID,
		&price,
		&ride.Distance,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		ride.DriverID = driverID.String
	}
	if price.Valid {
		ride.Price = price.String
	}
	return &ride, nil
}
