package tests

import (
	"context"
	"testing"
	"time"

	"nammauto/internal/domain"
	"nammauto/internal/repository"
	"nammauto/internal/service"
)

func statusPtr(s domain.RideStatus) *domain.RideStatus { return &s }
func strPtr(s string) *string                          { return &s }

func TestCreateRide_RequiresAllFields(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, nil)

	testCases := []struct {
		name string
		req  service.CreateRideRequest
	}{
		{"missing passenger id", service.CreateRideRequest{PassengerName: "P", From: "A", To: "B", Vehicle: "Auto"}},
		{"missing passenger name", service.CreateRideRequest{PassengerID: "p1", From: "A", To: "B", Vehicle: "Auto"}},
		{"missing from", service.CreateRideRequest{PassengerID: "p1", PassengerName: "P", To: "B", Vehicle: "Auto"}},
		{"missing to", service.CreateRideRequest{PassengerID: "p1", PassengerName: "P", From: "A", Vehicle: "Auto"}},
		{"missing vehicle", service.CreateRideRequest{PassengerID: "p1", PassengerName: "P", From: "A", To: "B"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rideService.CreateRide(context.Background(), tc.req)
			if err != service.ErrMissingRideFields {
				t.Errorf("expected ErrMissingRideFields, got %v", err)
			}
		})
	}
}

func TestCreateRide_StartsPendingWithDefaults(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, nil)

	ride, err := rideService.CreateRide(context.Background(), service.CreateRideRequest{
		PassengerID:   "p1",
		PassengerName: "Priya",
		From:          "A",
		To:            "B",
		Vehicle:       "Auto",
	})
	if err != nil {
		t.Fatalf("CreateRide failed: %v", err)
	}

	if ride.ID == "" {
		t.Error("expected a server-assigned id")
	}
	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected pending, got %q", ride.Status)
	}
	if ride.Type != domain.RideTypeDropOff {
		t.Errorf("expected default type drop_off, got %q", ride.Type)
	}
	if ride.DriverID != "" {
		t.Errorf("expected no driver on creation, got %q", ride.DriverID)
	}
}

func TestPendingRides_NewestFirst(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, nil)

	base := time.Now()
	rideRepo.AddRide(&domain.Ride{ID: "r1", Status: domain.RideStatusPending, CreatedAt: base})
	rideRepo.AddRide(&domain.Ride{ID: "r2", Status: domain.RideStatusPending, CreatedAt: base.Add(time.Second)})
	rideRepo.AddRide(&domain.Ride{ID: "r3", Status: domain.RideStatusPending, CreatedAt: base.Add(2 * time.Second)})

	rides, err := rideService.PendingRides(context.Background())
	if err != nil {
		t.Fatalf("PendingRides failed: %v", err)
	}

	want := []string{"r3", "r2", "r1"}
	if len(rides) != len(want) {
		t.Fatalf("expected %d rides, got %d", len(want), len(rides))
	}
	for i, id := range want {
		if rides[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, rides[i].ID)
		}
	}
}

func TestActiveRideFor_IgnoresCompletedRides(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, nil)

	rideRepo.AddRide(&domain.Ride{ID: "old", PassengerID: "p1", Status: domain.RideStatusCompleted, CreatedAt: time.Now().Add(-time.Hour)})
	rideRepo.AddRide(&domain.Ride{ID: "current", PassengerID: "p1", Status: domain.RideStatusPending, CreatedAt: time.Now()})

	ride, err := rideService.ActiveRideFor(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ActiveRideFor failed: %v", err)
	}

	if ride == nil || ride.ID != "current" {
		t.Errorf("expected the pending ride, got %+v", ride)
	}
}

func TestActiveRideFor_MatchesDriverSide(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, nil)

	rideRepo.AddRide(&domain.Ride{ID: "r1", PassengerID: "p1", DriverID: "d1", Status: domain.RideStatusAccepted, CreatedAt: time.Now()})

	ride, err := rideService.ActiveRideFor(context.Background(), "d1")
	if err != nil {
		t.Fatalf("ActiveRideFor failed: %v", err)
	}
	if ride == nil || ride.ID != "r1" {
		t.Errorf("expected the accepted ride for the driver, got %+v", ride)
	}
}

func TestUpdateRide_UnknownIDIsNotFound(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, nil)

	_, err := rideService.UpdateRide(context.Background(), "nonexistent-id", repository.RidePatch{
		Status: statusPtr(domain.RideStatusCancelled),
	})

	if err != repository.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if rideRepo.GetRide("nonexistent-id") != nil {
		t.Error("update must not create a record")
	}
}

func TestUpdateRide_TerminalStatesStayTerminal(t *testing.T) {
	testCases := []struct {
		name string
		from domain.RideStatus
		to   domain.RideStatus
	}{
		{"completed to accepted", domain.RideStatusCompleted, domain.RideStatusAccepted},
		{"completed to pending", domain.RideStatusCompleted, domain.RideStatusPending},
		{"completed to cancelled", domain.RideStatusCompleted, domain.RideStatusCancelled},
		{"cancelled to accepted", domain.RideStatusCancelled, domain.RideStatusAccepted},
		{"cancelled to completed", domain.RideStatusCancelled, domain.RideStatusCompleted},
		{"pending straight to completed", domain.RideStatusPending, domain.RideStatusCompleted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rideRepo := NewMockRideRepository()
			rideService := service.NewRideService(rideRepo, nil)
			rideRepo.AddRide(&domain.Ride{ID: "r1", PassengerID: "p1", Status: tc.from, CreatedAt: time.Now()})

			_, err := rideService.UpdateRide(context.Background(), "r1", repository.RidePatch{
				Status: statusPtr(tc.to),
			})

			if err != service.ErrInvalidTransition {
				t.Errorf("expected ErrInvalidTransition for %s -> %s, got %v", tc.from, tc.to, err)
			}
		})
	}
}

func TestUpdateRide_SecondAcceptLoses(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, NewMockLockStore())
	rideRepo.AddRide(&domain.Ride{ID: "r1", PassengerID: "p1", Status: domain.RideStatusPending, CreatedAt: time.Now()})

	accept := func(driverID string) (*domain.Ride, error) {
		return rideService.UpdateRide(context.Background(), "r1", repository.RidePatch{
			Status:   statusPtr(domain.RideStatusAccepted),
			DriverID: strPtr(driverID),
			Price:    strPtr("₹40"),
		})
	}

	first, err := accept("d1")
	if err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	if first.DriverID != "d1" {
		t.Errorf("expected d1 to win, got %q", first.DriverID)
	}

	if _, err := accept("d2"); err != repository.ErrRideConflict {
		t.Errorf("expected ErrRideConflict for second accept, got %v", err)
	}

	if got := rideRepo.GetRide("r1").DriverID; got != "d1" {
		t.Errorf("expected winning driver to stick, got %q", got)
	}
}

func TestUpdateRide_AcceptRequiresDriverID(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, nil)
	rideRepo.AddRide(&domain.Ride{ID: "r1", Status: domain.RideStatusPending, CreatedAt: time.Now()})

	_, err := rideService.UpdateRide(context.Background(), "r1", repository.RidePatch{
		Status: statusPtr(domain.RideStatusAccepted),
	})

	if err != service.ErrInvalidUserID {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
}

// Full lifecycle: request, accept, complete, then the active-ride query goes
// quiet for both sides.
func TestRideLifecycle_EndToEnd(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	rideRepo := NewMockRideRepository()
	authService := service.NewAuthService(userRepo, nil)
	rideService := service.NewRideService(rideRepo, NewMockLockStore())

	passenger, err := authService.Login(ctx, service.LoginRequest{Name: "Priya", Phone: "9000000001", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("passenger login failed: %v", err)
	}
	driver, err := authService.Login(ctx, service.LoginRequest{Name: "Raju", Phone: "9000000002", Role: domain.RoleDriver})
	if err != nil {
		t.Fatalf("driver login failed: %v", err)
	}

	ride, err := rideService.CreateRide(ctx, service.CreateRideRequest{
		PassengerID:   passenger.ID,
		PassengerName: passenger.Name,
		From:          "A",
		To:            "B",
		Vehicle:       "Auto",
	})
	if err != nil {
		t.Fatalf("CreateRide failed: %v", err)
	}

	pending, err := rideService.PendingRides(ctx)
	if err != nil || len(pending) != 1 || pending[0].ID != ride.ID {
		t.Fatalf("expected the new ride in the pending queue, got %v (err %v)", pending, err)
	}

	accepted, err := rideService.UpdateRide(ctx, ride.ID, repository.RidePatch{
		Status:   statusPtr(domain.RideStatusAccepted),
		DriverID: &driver.ID,
		Price:    strPtr("₹40"),
	})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != domain.RideStatusAccepted || accepted.Price != "₹40" {
		t.Errorf("unexpected accepted ride: %+v", accepted)
	}

	for _, participant := range []string{passenger.ID, driver.ID} {
		active, err := rideService.ActiveRideFor(ctx, participant)
		if err != nil {
			t.Fatalf("ActiveRideFor(%s) failed: %v", participant, err)
		}
		if active == nil || active.ID != ride.ID || active.Status != domain.RideStatusAccepted || active.DriverID != driver.ID {
			t.Errorf("participant %s sees wrong active ride: %+v", participant, active)
		}
	}

	completed, err := rideService.UpdateRide(ctx, ride.ID, repository.RidePatch{
		Status: statusPtr(domain.RideStatusCompleted),
		Price:  strPtr("₹55"),
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != domain.RideStatusCompleted || completed.Price != "₹55" {
		t.Errorf("unexpected completed ride: %+v", completed)
	}

	active, err := rideService.ActiveRideFor(ctx, passenger.ID)
	if err != nil {
		t.Fatalf("ActiveRideFor after completion failed: %v", err)
	}
	if active != nil {
		t.Errorf("expected no active ride after completion, got %+v", active)
	}
}

func TestRideLifecycle_PassengerCancelsBeforeAccept(t *testing.T) {
	ctx := context.Background()
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, nil)

	ride, err := rideService.CreateRide(ctx, service.CreateRideRequest{
		PassengerID:   "p1",
		PassengerName: "Priya",
		From:          "A",
		To:            "B",
		Vehicle:       "Auto",
	})
	if err != nil {
		t.Fatalf("CreateRide failed: %v", err)
	}

	cancelled, err := rideService.UpdateRide(ctx, ride.ID, repository.RidePatch{
		Status: statusPtr(domain.RideStatusCancelled),
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if cancelled.Status != domain.RideStatusCancelled {
		t.Errorf("expected cancelled, got %q", cancelled.Status)
	}
	if cancelled.DriverID != "" {
		t.Errorf("expected no driver on a pre-accept cancel, got %q", cancelled.DriverID)
	}
}
