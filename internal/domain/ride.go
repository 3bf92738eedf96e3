package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending   RideStatus = "pending"
	RideStatusAccepted  RideStatus = "accepted"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

// ValidRideStatus reports whether s is a known ride status.
func ValidRideStatus(s RideStatus) bool {
	switch s {
	case RideStatusPending, RideStatusAccepted, RideStatusCompleted, RideStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a ride may move from one status to another.
// Allowed: pending -> accepted -> completed, and pending|accepted -> cancelled.
// Completed and cancelled are terminal.
func CanTransition(from, to RideStatus) bool {
	switch from {
	case RideStatusPending:
		return to == RideStatusAccepted || to == RideStatusCancelled
	case RideStatusAccepted:
		return to == RideStatusCompleted || to == RideStatusCancelled
	default:
		return false
	}
}

// RideType represents the kind of trip requested.
type RideType string

const (
	RideTypeDropOff   RideType = "drop_off"
	RideTypeRoundTrip RideType = "round_trip"
	RideTypeHourly    RideType = "hourly"
	RideTypeFullDay   RideType = "full_day"
)

// Ride represents a trip request moving through the ride lifecycle.
type Ride struct {
	ID            string
	PassengerID   string
	PassengerName string
	From          string
	To            string
	Vehicle       string
	Type          RideType
	Status        RideStatus
	DriverID      string // empty until a driver accepts
	Price         string // currency string, set on accept, may be revised on completion
	Distance      float64
	CreatedAt     time.Time
}

// Active reports whether the ride is still relevant to its participants.
func (r *Ride) Active() bool {
	return r.Status == RideStatusPending || r.Status == RideStatusAccepted
}
