// Package session holds one participant's view of the ride lifecycle and
// keeps it eventually consistent with the server through a polling loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"nammauto/internal/api"
)

// DefaultPollInterval is how often the store re-syncs with the server.
const DefaultPollInterval = 3 * time.Second

var (
	// ErrNotLoggedIn is returned by operations that need a current user.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrDriverOnly is returned when a passenger invokes a driver operation.
	ErrDriverOnly = errors.New("driver account required")

	// ErrNoActiveBooking is returned when there is no booking to act on.
	ErrNoActiveBooking = errors.New("no active booking")
)

// API is the server surface the store depends on. *api.Client implements it;
// tests substitute a fake.
type API interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.User, error)
	OnlineDrivers(ctx context.Context) ([]api.User, error)
	SetDriverStatus(ctx context.Context, userID, status string) (*api.User, error)
	CreateRide(ctx context.Context, req api.CreateRideRequest) (*api.Ride, error)
	PendingRides(ctx context.Context) ([]api.Ride, error)
	ActiveRide(ctx context.Context, participantID string) (*api.Ride, error)
	UpdateRide(ctx context.Context, rideID string, patch api.RidePatch) (*api.Ride, error)
}

var _ API = (*api.Client)(nil)

// DriverStats accumulates a driver's earnings for the current session only;
// it is never persisted server-side.
type DriverStats struct {
	Earnings int
	Rides    int
}

// Options configures a Store.
type Options struct {
	// Notifier receives toast-equivalent notifications. Defaults to NopNotifier.
	Notifier Notifier

	// SessionPath is where the logged-in profile is persisted. Empty
	// disables session persistence.
	SessionPath string

	// PollInterval overrides DefaultPollInterval.
	PollInterval time.Duration
}

// Store is the client-side ride store. All state is guarded by the mutex, so
// UI calls and the polling goroutine linearize; each poll result replaces the
// corresponding field wholesale.
type Store struct {
	client   API
	notifier Notifier
	session  *File
	interval time.Duration

	mu       sync.Mutex
	user     *api.User
	drivers  []api.User
	booking  *api.Ride
	pending  []api.Ride
	stats    DriverStats
	stopPoll chan struct{}
	pollDone chan struct{}
}

// NewStore creates a ride store backed by the given API client.
func NewStore(client API, opts Options) *Store {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var sessionFile *File
	if opts.SessionPath != "" {
		sessionFile = NewFile(opts.SessionPath)
	}

	return &Store{
		client:   client,
		notifier: notifier,
		session:  sessionFile,
		interval: interval,
	}
}

// Restore loads a previously saved session, if any, and resumes polling for
// it. Called once at startup.
func (s *Store) Restore(ctx context.Context) error {
	if s.session == nil {
		return nil
	}

	user, err := s.session.Load()
	if err != nil || user == nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.startPolling(ctx)
	return nil
}

// Login authenticates (or registers) against the server, persists the
// session and starts the polling loop. The failure path notifies and leaves
// all local state untouched.
func (s *Store) Login(ctx context.Context, name, role, email, phone string, vehicle *api.VehicleDetails) error {
	user, err := s.client.Login(ctx, api.LoginRequest{
		Name:           name,
		Phone:          phone,
		Role:           role,
		Email:          email,
		VehicleDetails: vehicle,
	})
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Login failed: %v", err))
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if s.session != nil {
		if err := s.session.Save(user); err != nil {
			log.Printf("session save failed: %v", err)
		}
	}

	s.startPolling(ctx)
	s.notifier.Success(fmt.Sprintf("Welcome back, %s", user.Name))
	return nil
}

// Logout clears the current user and booking from memory and persistent
// storage, and stops the polling loop. Server-side driver status is left
// alone.
func (s *Store) Logout() {
	s.stopPolling()

	s.mu.Lock()
	s.user = nil
	s.booking = nil
	s.drivers = nil
	s.pending = nil
	s.stats = DriverStats{}
	s.mu.Unlock()

	if s.session != nil {
		if err := s.session.Clear(); err != nil {
			log.Printf("session clear failed: %v", err)
		}
	}
}

// RequestRide creates a pending ride for the current passenger. A call
// without a logged-in user is a no-op.
func (s *Store) RequestRide(ctx context.Context, from, to, vehicle, rideType string) error {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return nil
	}

	ride, err := s.client.CreateRide(ctx, api.CreateRideRequest{
		PassengerID:   user.ID,
		PassengerName: user.Name,
		From:          from,
		To:            to,
		Vehicle:       vehicle,
		Type:          rideType,
	})
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Could not request ride: %v", err))
		return err
	}

	s.mu.Lock()
	s.booking = ride
	s.mu.Unlock()

	s.notifier.Info("Broadcasting request to nearby autos...")
	return nil
}

// AcceptRide claims a pending ride for the current driver at the given
// price. The ride is removed from the local pending queue immediately; the
// server's reply is authoritative and the next poll re-syncs the queue.
func (s *Store) AcceptRide(ctx context.Context, ride api.Ride, price string) error {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return ErrNotLoggedIn
	}
	if user.Role != "driver" {
		return ErrDriverOnly
	}

	status := "accepted"
	updated, err := s.client.UpdateRide(ctx, ride.ID, api.RidePatch{
		Status:   &status,
		DriverID: &user.ID,
		Price:    &price,
	})
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Could not accept ride: %v", err))
		return err
	}

	s.mu.Lock()
	s.booking = updated
	s.removePendingLocked(ride.ID)
	s.mu.Unlock()

	s.notifier.Success(fmt.Sprintf("Picking up %s from %s", updated.PassengerName, updated.From))
	return nil
}

// CompleteRide finalizes the active booking with the amount parsed from
// finalPriceInput and credits the session earnings accumulator.
func (s *Store) CompleteRide(ctx context.Context, finalPriceInput string) error {
	s.mu.Lock()
	user := s.user
	booking := s.booking
	s.mu.Unlock()
	if user == nil {
		return ErrNotLoggedIn
	}
	if user.Role != "driver" {
		return ErrDriverOnly
	}
	if booking == nil {
		return ErrNoActiveBooking
	}

	amount := ParseAmount(finalPriceInput)
	status := "completed"
	price := fmt.Sprintf("₹%d", amount)

	updated, err := s.client.UpdateRide(ctx, booking.ID, api.RidePatch{
		Status: &status,
		Price:  &price,
	})
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Could not complete ride: %v", err))
		return err
	}

	s.mu.Lock()
	s.booking = updated
	s.stats.Earnings += amount
	s.stats.Rides++
	s.mu.Unlock()

	s.notifier.Success(fmt.Sprintf("Ride completed, collected %s", price))
	return nil
}

// CancelRide cancels the active booking. Either role may call it.
func (s *Store) CancelRide(ctx context.Context) error {
	s.mu.Lock()
	booking := s.booking
	s.mu.Unlock()
	if booking == nil {
		return ErrNoActiveBooking
	}

	status := "cancelled"
	if _, err := s.client.UpdateRide(ctx, booking.ID, api.RidePatch{Status: &status}); err != nil {
		s.notifier.Error(fmt.Sprintf("Could not cancel ride: %v", err))
		return err
	}

	s.mu.Lock()
	s.booking = nil
	s.mu.Unlock()

	s.notifier.Info("Ride cancelled")
	return nil
}

// SubmitReview acknowledges passenger feedback locally and dismisses the
// completed booking. No server round trip is involved.
func (s *Store) SubmitReview(rating int, text string) {
	s.mu.Lock()
	s.booking = nil
	s.mu.Unlock()

	s.notifier.Success("Thanks for your feedback!")
}

// ToggleStatus switches the current driver between online, busy and offline.
func (s *Store) ToggleStatus(ctx context.Context, status string) error {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return ErrNotLoggedIn
	}
	if user.Role != "driver" {
		return ErrDriverOnly
	}

	updated, err := s.client.SetDriverStatus(ctx, user.ID, status)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Could not update status: %v", err))
		return err
	}

	s.mu.Lock()
	s.user = updated
	s.mu.Unlock()

	s.notifier.Info(fmt.Sprintf("Status updated to: %s", status))
	return nil
}

// CurrentUser returns the logged-in user, or nil.
func (s *Store) CurrentUser() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Drivers returns the last-polled online-driver roster.
func (s *Store) Drivers() []api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drivers
}

// ActiveBooking returns the booking relevant to the current participant,
// or nil.
func (s *Store) ActiveBooking() *api.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.booking
}

// PendingRequests returns the last-polled pending queue. Populated only for
// drivers.
func (s *Store) PendingRequests() []api.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Stats returns the session-local driver earnings accumulator.
func (s *Store) Stats() DriverStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Sync performs one poll cycle immediately. The polling loop calls this on
// every tick; tests call it directly.
func (s *Store) Sync(ctx context.Context) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return
	}

	drivers, err := s.client.OnlineDrivers(ctx)
	if err != nil {
		log.Printf("poll: drivers fetch failed: %v", err)
	} else {
		s.mu.Lock()
		s.drivers = drivers
		s.mu.Unlock()
	}

	active, err := s.client.ActiveRide(ctx, user.ID)
	if err != nil {
		log.Printf("poll: active ride fetch failed: %v", err)
	} else {
		s.mu.Lock()
		// A completed booking is no longer "active" server-side, but the
		// local copy stays until the review is submitted so the overlay is
		// not dismissed by the next tick.
		if active != nil || s.booking == nil || s.booking.Status != "completed" {
			s.booking = active
		}
		s.mu.Unlock()
	}

	if user.Role == "driver" {
		pending, err := s.client.PendingRides(ctx)
		if err != nil {
			log.Printf("poll: pending rides fetch failed: %v", err)
		} else {
			s.mu.Lock()
			s.pending = pending
			s.mu.Unlock()
		}
	}
}

// startPolling launches the polling goroutine if it is not already running.
func (s *Store) startPolling(ctx context.Context) {
	s.mu.Lock()
	if s.stopPoll != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stopPoll = stop
	s.pollDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sync(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// stopPolling tears the polling goroutine down and waits for it to exit.
func (s *Store) stopPolling() {
	s.mu.Lock()
	stop := s.stopPoll
	done := s.pollDone
	s.stopPoll = nil
	s.pollDone = nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (s *Store) removePendingLocked(rideID string) {
	for i := range s.pending {
		if s.pending[i].ID == rideID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// ParseAmount extracts a numeric amount from free-form price input, e.g.
// "₹55" or "55 rs". Unparsable input counts as zero.
func ParseAmount(input string) int {
	var digits strings.Builder
	for _, r := range input {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	amount, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return amount
}
