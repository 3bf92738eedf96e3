package service

import "errors"

var (
	// ErrPhoneRequired is returned when login is attempted without a phone.
	ErrPhoneRequired = errors.New("phone is required")

	// ErrNameRequired is returned when login is attempted without a name.
	ErrNameRequired = errors.New("name is required")

	// ErrInvalidRole is returned when login carries an unknown role.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidUserID is returned when a user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidDriverStatus is returned when a status update carries an
	// unknown status value.
	ErrInvalidDriverStatus = errors.New("invalid driver status")

	// ErrInvalidRideID is returned when a ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrMissingRideFields is returned when a ride request omits a required
	// field (passenger, from, to or vehicle).
	ErrMissingRideFields = errors.New("please fill all fields")

	// ErrInvalidRideStatus is returned when a ride patch carries an unknown
	// status value.
	ErrInvalidRideStatus = errors.New("invalid ride status")

	// ErrInvalidTransition is returned when a ride patch would move a ride
	// out of a terminal state or skip a lifecycle step.
	ErrInvalidTransition = errors.New("ride cannot change state from its current status")

	// ErrEmptyPatch is returned when a ride patch changes nothing.
	ErrEmptyPatch = errors.New("no fields to update")
)
