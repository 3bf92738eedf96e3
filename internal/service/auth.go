package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nammauto/internal/domain"
	"nammauto/internal/redis"
	"nammauto/internal/repository"
)

// DefaultRating is the rating assigned to newly registered users.
const DefaultRating = 5.0

// AuthService handles login and driver-presence operations.
type AuthService struct {
	userRepo      repository.UserRepository
	presenceStore redis.PresenceStoreInterface
}

// NewAuthService creates a new AuthService. presenceStore may be nil when
// Redis is not configured; the service falls back to the repository.
func NewAuthService(userRepo repository.UserRepository, presenceStore redis.PresenceStoreInterface) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		presenceStore: presenceStore,
	}
}

// LoginRequest contains the parameters for login/registration.
type LoginRequest struct {
	Name           string
	Phone          string
	Role           domain.Role
	Email          string
	VehicleDetails *domain.VehicleDetails
}

// Login looks a user up by phone, creating the record on first contact.
// Repeated logins with the same phone return the same record, so login is
// idempotent. A driver logging in again is flipped back online.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*domain.User, error) {
	if err := s.validateLogin(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByPhone(ctx, req.Phone)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	if user == nil {
		email := req.Email
		if email == "" {
			email = fmt.Sprintf("%s@nammauto.com", req.Phone)
		}

		user = &domain.User{
			ID:             uuid.New().String(),
			Name:           req.Name,
			Email:          email,
			Phone:          req.Phone,
			Role:           req.Role,
			VehicleDetails: req.VehicleDetails,
			Status:         domain.DriverStatusOffline,
			Location:       "Unknown",
			Rating:         DefaultRating,
			CreatedAt:      time.Now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if user.Role == domain.RoleDriver {
		if err := s.userRepo.UpdateStatus(ctx, user.ID, domain.DriverStatusOnline); err != nil {
			return nil, err
		}
		user.Status = domain.DriverStatusOnline
		s.invalidateRoster(ctx)
	}

	return user, nil
}

// OnlineDrivers returns the roster of drivers that are currently online,
// served from the presence cache when it is warm.
func (s *AuthService) OnlineDrivers(ctx context.Context) ([]*domain.User, error) {
	if s.presenceStore != nil {
		cached, err := s.presenceStore.GetRoster(ctx)
		if err == nil && cached != nil {
			return cached, nil
		}
		// Cache errors fall through to the repository.
	}

	drivers, err := s.userRepo.GetOnlineDrivers(ctx)
	if err != nil {
		return nil, err
	}

	if s.presenceStore != nil {
		_ = s.presenceStore.SetRoster(ctx, drivers)
	}
	return drivers, nil
}

// SetDriverStatus updates a driver's availability.
func (s *AuthService) SetDriverStatus(ctx context.Context, userID string, status domain.DriverStatus) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if !domain.ValidDriverStatus(status) {
		return nil, ErrInvalidDriverStatus
	}

	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	s.invalidateRoster(ctx)

	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) validateLogin(req LoginRequest) error {
	if req.Phone == "" {
		return ErrPhoneRequired
	}
	if req.Name == "" {
		return ErrNameRequired
	}
	if req.Role != domain.RoleUser && req.Role != domain.RoleDriver {
		return ErrInvalidRole
	}
	return nil
}

func (s *AuthService) invalidateRoster(ctx context.Context) {
	if s.presenceStore != nil {
		_ = s.presenceStore.Invalidate(ctx)
	}
}
