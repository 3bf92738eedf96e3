package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nammauto/internal/api"
)

// fakeAPI is an in-memory server for store tests.
type fakeAPI struct {
	users   map[string]*api.User // keyed by phone
	rides   map[string]*api.Ride
	nextID  int
	drivers []api.User

	loginErr  error
	updateErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users: make(map[string]*api.User),
		rides: make(map[string]*api.Ride),
	}
}

func (f *fakeAPI) Login(ctx context.Context, req api.LoginRequest) (*api.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if user, ok := f.users[req.Phone]; ok {
		return user, nil
	}
	f.nextID++
	user := &api.User{
		ID:     req.Phone, // deterministic ids keep assertions simple
		Name:   req.Name,
		Phone:  req.Phone,
		Role:   req.Role,
		Status: "offline",
		Rating: 5.0,
	}
	f.users[req.Phone] = user
	return user, nil
}

func (f *fakeAPI) OnlineDrivers(ctx context.Context) ([]api.User, error) {
	return f.drivers, nil
}

func (f *fakeAPI) SetDriverStatus(ctx context.Context, userID, status string) (*api.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			u.Status = status
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeAPI) CreateRide(ctx context.Context, req api.CreateRideRequest) (*api.Ride, error) {
	f.nextID++
	ride := &api.Ride{
		ID:            "r" + req.PassengerID,
		PassengerID:   req.PassengerID,
		PassengerName: req.PassengerName,
		From:          req.From,
		To:            req.To,
		Vehicle:       req.Vehicle,
		Type:          req.Type,
		Status:        "pending",
	}
	f.rides[ride.ID] = ride
	copy := *ride
	return &copy, nil
}

func (f *fakeAPI) PendingRides(ctx context.Context) ([]api.Ride, error) {
	var pending []api.Ride
	for _, r := range f.rides {
		if r.Status == "pending" {
			pending = append(pending, *r)
		}
	}
	return pending, nil
}

func (f *fakeAPI) ActiveRide(ctx context.Context, participantID string) (*api.Ride, error) {
	for _, r := range f.rides {
		if r.Status != "pending" && r.Status != "accepted" {
			continue
		}
		if r.PassengerID == participantID || r.DriverID == participantID {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

func (f *fakeAPI) UpdateRide(ctx context.Context, rideID string, patch api.RidePatch) (*api.Ride, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	ride, ok := f.rides[rideID]
	if !ok {
		return nil, errors.New("ride not found")
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
	copy := *ride
	return &copy, nil
}

func newTestStore(t *testing.T, f *fakeAPI) *Store {
	t.Helper()
	return NewStore(f, Options{
		SessionPath: filepath.Join(t.TempDir(), "session.json"),
	})
}

func login(t *testing.T, s *Store, name, phone, role string) {
	t.Helper()
	require.NoError(t, s.Login(context.Background(), name, role, "", phone, nil))
	s.stopPolling() // tests drive Sync directly
}

func TestLoginStoresUserAndSession(t *testing.T) {
	f := newFakeAPI()
	store := newTestStore(t, f)

	login(t, store, "Priya", "9000000001", "user")

	user := store.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "Priya", user.Name)

	// A fresh store over the same session file resumes the user.
	resumed := NewStore(f, Options{SessionPath: store.session.path})
	require.NoError(t, resumed.Restore(context.Background()))
	resumed.stopPolling()
	require.NotNil(t, resumed.CurrentUser())
	assert.Equal(t, user.ID, resumed.CurrentUser().ID)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	f := newFakeAPI()
	f.loginErr = errors.New("boom")
	store := newTestStore(t, f)

	err := store.Login(context.Background(), "Priya", "user", "", "9000000001", nil)

	require.Error(t, err)
	assert.Nil(t, store.CurrentUser())
}

func TestLogoutClearsEverything(t *testing.T) {
	f := newFakeAPI()
	store := newTestStore(t, f)
	login(t, store, "Priya", "9000000001", "user")
	require.NoError(t, store.RequestRide(context.Background(), "A", "B", "Auto", "drop_off"))

	store.Logout()

	assert.Nil(t, store.CurrentUser())
	assert.Nil(t, store.ActiveBooking())

	user, err := store.session.Load()
	require.NoError(t, err)
	assert.Nil(t, user, "session file should be cleared")
}

func TestRequestRideWithoutUserIsNoOp(t *testing.T) {
	f := newFakeAPI()
	store := newTestStore(t, f)

	require.NoError(t, store.RequestRide(context.Background(), "A", "B", "Auto", "drop_off"))
	assert.Nil(t, store.ActiveBooking())
	assert.Empty(t, f.rides)
}

func TestRequestRideSetsPendingBooking(t *testing.T) {
	f := newFakeAPI()
	store := newTestStore(t, f)
	login(t, store, "Priya", "9000000001", "user")

	require.NoError(t, store.RequestRide(context.Background(), "A", "B", "Auto", "drop_off"))

	booking := store.ActiveBooking()
	require.NotNil(t, booking)
	assert.Equal(t, "pending", booking.Status)
	assert.Equal(t, "A", booking.From)
}

func TestAcceptRideIsDriverOnly(t *testing.T) {
	f := newFakeAPI()
	store := newTestStore(t, f)
	login(t, store, "Priya", "9000000001", "user")

	err := store.AcceptRide(context.Background(), api.Ride{ID: "r1"}, "₹40")
	assert.ErrorIs(t, err, ErrDriverOnly)
}

func TestAcceptRideRemovesFromPendingQueue(t *testing.T) {
	f := newFakeAPI()

	passenger := newTestStore(t, f)
	login(t, passenger, "Priya", "9000000001", "user")
	require.NoError(t, passenger.RequestRide(context.Background(), "A", "B", "Auto", "drop_off"))

	driver := newTestStore(t, f)
	login(t, driver, "Raju", "9000000002", "driver")

	driver.Sync(context.Background())
	queue := driver.PendingRequests()
	require.Len(t, queue, 1)

	require.NoError(t, driver.AcceptRide(context.Background(), queue[0], "₹40"))

	assert.Empty(t, driver.PendingRequests(), "optimistic removal ahead of next poll")
	booking := driver.ActiveBooking()
	require.NotNil(t, booking)
	assert.Equal(t, "accepted", booking.Status)
	assert.Equal(t, driver.CurrentUser().ID, booking.DriverID)
	assert.Equal(t, "₹40", booking.Price)

	// The passenger's next poll sees the accept.
	passenger.Sync(context.Background())
	passengerView := passenger.ActiveBooking()
	require.NotNil(t, passengerView)
	assert.Equal(t, "accepted", passengerView.Status)
	assert.Equal(t, booking.DriverID, passengerView.DriverID)
}

func TestCompleteRideParsesAmountAndAccumulates(t *testing.T) {
	f := newFakeAPI()

	passenger := newTestStore(t, f)
	login(t, passenger, "Priya", "9000000001", "user")
	require.NoError(t, passenger.RequestRide(context.Background(), "A", "B", "Auto", "drop_off"))

	driver := newTestStore(t, f)
	login(t, driver, "Raju", "9000000002", "driver")
	driver.Sync(context.Background())
	require.NoError(t, driver.AcceptRide(context.Background(), driver.PendingRequests()[0], "₹40"))

	require.NoError(t, driver.CompleteRide(context.Background(), "₹55"))

	booking := driver.ActiveBooking()
	require.NotNil(t, booking)
	assert.Equal(t, "completed", booking.Status)
	assert.Equal(t, "₹55", booking.Price)

	stats := driver.Stats()
	assert.Equal(t, 55, stats.Earnings)
	assert.Equal(t, 1, stats.Rides)
}

func TestCompletedBookingSurvivesPoll(t *testing.T) {
	f := newFakeAPI()

	passenger := newTestStore(t, f)
	login(t, passenger, "Priya", "9000000001", "user")
	require.NoError(t, passenger.RequestRide(context.Background(), "A", "B", "Auto", "drop_off"))

	driver := newTestStore(t, f)
	login(t, driver, "Raju", "9000000002", "driver")
	driver.Sync(context.Background())
	require.NoError(t, driver.AcceptRide(context.Background(), driver.PendingRequests()[0], "₹40"))

	// The driver's local copy turns completed on the mutation response. The
	// active-ride query no longer reports the ride, but the next poll must
	// not dismiss the completed booking before the review is submitted.
	require.NoError(t, driver.CompleteRide(context.Background(), "55"))
	driver.Sync(context.Background())

	booking := driver.ActiveBooking()
	require.NotNil(t, booking, "completed booking must survive the poll")
	assert.Equal(t, "completed", booking.Status)

	driver.SubmitReview(5, "smooth ride")
	assert.Nil(t, driver.ActiveBooking())

	// The passenger's copy was still "accepted", so the poll clears it once
	// the server stops reporting an active ride.
	passenger.Sync(context.Background())
	assert.Nil(t, passenger.ActiveBooking())
}

func TestCancelRideClearsBooking(t *testing.T) {
	f := newFakeAPI()
	store := newTestStore(t, f)
	login(t, store, "Priya", "9000000001", "user")
	require.NoError(t, store.RequestRide(context.Background(), "A", "B", "Auto", "drop_off"))

	require.NoError(t, store.CancelRide(context.Background()))

	assert.Nil(t, store.ActiveBooking())
	store.Sync(context.Background())
	assert.Nil(t, store.ActiveBooking(), "cancelled ride must not come back on poll")
}

func TestFailedMutationLeavesBookingIntact(t *testing.T) {
	f := newFakeAPI()
	store := newTestStore(t, f)
	login(t, store, "Priya", "9000000001", "user")
	require.NoError(t, store.RequestRide(context.Background(), "A", "B", "Auto", "drop_off"))

	f.updateErr = errors.New("network down")
	err := store.CancelRide(context.Background())

	require.Error(t, err)
	require.NotNil(t, store.ActiveBooking(), "failed cancel must not clear the booking")
	assert.Equal(t, "pending", store.ActiveBooking().Status)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"55", 55},
		{"₹55", 55},
		{"55 rs", 55},
		{"₹1,250", 1250},
		{"", 0},
		{"free", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseAmount(tc.in), "input %q", tc.in)
	}
}
