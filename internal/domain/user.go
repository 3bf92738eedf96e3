package domain

import "time"

// Role distinguishes passengers from drivers.
type Role string

const (
	RoleUser   Role = "user"
	RoleDriver Role = "driver"
)

// DriverStatus represents the availability of a driver.
// Only meaningful when Role is RoleDriver.
type DriverStatus string

const (
	DriverStatusOnline  DriverStatus = "online"
	DriverStatusOffline DriverStatus = "offline"
	DriverStatusBusy    DriverStatus = "busy"
)

// ValidDriverStatus reports whether s is a known driver status.
func ValidDriverStatus(s DriverStatus) bool {
	switch s {
	case DriverStatusOnline, DriverStatusOffline, DriverStatusBusy:
		return true
	}
	return false
}

// VehicleDetails describes a driver's vehicle.
type VehicleDetails struct {
	Type    string `json:"type"`
	SubType string `json:"subType,omitempty"`
}

// User represents a passenger or driver in the system.
// Phone uniquely identifies a user; login is idempotent keyed on phone.
type User struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Role           Role
	VehicleDetails *VehicleDetails
	Status         DriverStatus
	Location       string
	Rating         float64
	CreatedAt      time.Time
}
