package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"nammauto/internal/domain"
	"nammauto/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

const userColumns = `id, name, email, phone, role, vehicle_details, status, location, rating, created_at`

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, role, vehicle_details, status, location, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var vehicleDetails sql.NullString
	if user.VehicleDetails != nil {
		data, err := json.Marshal(user.VehicleDetails)
		if err != nil {
			return err
		}
		vehicleDetails = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.Role,
		vehicleDetails,
		user.Status,
		user.Location,
		user.Rating,
		user.CreatedAt,
	)
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, phone))
}

// GetOnlineDrivers retrieves all drivers currently online.
func (r *UserRepository) GetOnlineDrivers(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND status = $2 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, domain.RoleDriver, domain.DriverStatusOnline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateStatus updates the driver status of a user.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE users SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	user, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(scan func(dest ...any) error) (*domain.User, error) {
	var user domain.User
	var email sql.NullString
	var vehicleDetails sql.NullString
	var location sql.NullString

	err := scan(
		&user.ID,
		&user.Name,
		&email,
		&user.Phone,
		&user.Role,
		&vehicleDetails,
		&user.Status,
		&location,
		&user.Rating,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		user.Email = email.String
	}
	if location.Valid {
		user.Location = location.String
	}
	if vehicleDetails.Valid {
		var vd domain.VehicleDetails
		if err := json.Unmarshal([]byte(vehicleDetails.String), &vd); err != nil {
			return nil, err
		}
		user.VehicleDetails = &vd
	}
	return &user, nil
}
