package app

import (
	"context"
	"fmt"
	"io"

	"github.com/newrelic/go-agent/v3/newrelic"

	"nammauto/internal/config"
	"nammauto/internal/repository"
	filerepo "nammauto/internal/repository/file"
	"nammauto/internal/repository/postgres"
)

// Storage bundles the two repositories behind whichever backend the
// configuration selected. The rest of the application only sees the
// repository interfaces, so the backends are interchangeable.
type Storage struct {
	Users  repository.UserRepository
	Rides  repository.RideRepository
	closer io.Closer
}

// Close releases the underlying backend, if it holds resources.
func (s *Storage) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// NewStorage opens the configured persistence backend.
func NewStorage(ctx context.Context, cfg *config.Config, nrApp *newrelic.Application) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Users:  postgres.NewUserRepository(db),
			Rides:  postgres.NewRideRepository(db),
			closer: db,
		}, nil

	case config.StorageFile:
		store, err := filerepo.NewStore(cfg.Storage.FilePath)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Users: filerepo.NewUserRepository(store),
			Rides: filerepo.NewRideRepository(store),
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
