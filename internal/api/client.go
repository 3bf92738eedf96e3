// Package api is the HTTP client for the NammAuto REST API. It is the
// transport behind the client ride store and the CLI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// User is the wire representation of a user.
type User struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Role           string          `json:"role"`
	VehicleDetails *VehicleDetails `json:"vehicleDetails,omitempty"`
	Status         string          `json:"status"`
	Location       string          `json:"location,omitempty"`
	Rating         float64         `json:"rating"`
	CreatedAt      string          `json:"createdAt"`
}

// VehicleDetails is the wire representation of a driver's vehicle.
type VehicleDetails struct {
	Type    string `json:"type"`
	SubType string `json:"subType,omitempty"`
}

// Ride is the wire representation of a ride.
type Ride struct {
	ID            string  `json:"id"`
	PassengerID   string  `json:"passengerId"`
	PassengerName string  `json:"passengerName"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	Vehicle       string  `json:"vehicle"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	DriverID      string  `json:"driverId,omitempty"`
	Price         string  `json:"price,omitempty"`
	Distance      float64 `json:"distance"`
	CreatedAt     string  `json:"createdAt"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Role           string          `json:"role"`
	Email          string          `json:"email,omitempty"`
	VehicleDetails *VehicleDetails `json:"vehicleDetails,omitempty"`
}

// CreateRideRequest is the body for POST /api/rides.
type CreateRideRequest struct {
	PassengerID   string `json:"passengerId"`
	PassengerName string `json:"passengerName"`
	From          string `json:"from"`
	To            string `json:"to"`
	Vehicle       string `json:"vehicle"`
	Type          string `json:"type,omitempty"`
}

// RidePatch is the body for PATCH /api/rides/:id. Absent fields are left
// untouched by the server.
type RidePatch struct {
	Status   *string  `json:"status,omitempty"`
	DriverID *string  `json:"driverId,omitempty"`
	Price    *string  `json:"price,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// Error is a non-2xx API reply.
type Error struct {
	StatusCode int
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client talks to the NammAuto server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL (e.g.
// "http://localhost:5000").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Login registers or re-authenticates a user.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// OnlineDrivers fetches the online-driver roster.
func (c *Client) OnlineDrivers(ctx context.Context) ([]User, error) {
	var drivers []User
	if err := c.do(ctx, http.MethodGet, "/api/auth/drivers", nil, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// SetDriverStatus updates a driver's availability.
func (c *Client) SetDriverStatus(ctx context.Context, userID, status string) (*User, error) {
	var user User
	path := fmt.Sprintf("/api/auth/%s/status", userID)
	if err := c.do(ctx, http.MethodPatch, path, map[string]string{"status": status}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateRide requests a new ride.
func (c *Client) CreateRide(ctx context.Context, req CreateRideRequest) (*Ride, error) {
	var ride Ride
	if err := c.do(ctx, http.MethodPost, "/api/rides", req, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// PendingRides fetches all pending rides, newest first.
func (c *Client) PendingRides(ctx context.Context) ([]Ride, error) {
	var rides []Ride
	if err := c.do(ctx, http.MethodGet, "/api/rides/pending", nil, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// ActiveRide fetches the participant's active ride, or nil when there is
// none (the server replies with JSON null).
func (c *Client) ActiveRide(ctx context.Context, participantID string) (*Ride, error) {
	var ride *Ride
	path := fmt.Sprintf("/api/rides/active/%s", participantID)
	if err := c.do(ctx, http.MethodGet, path, nil, &ride); err != nil {
		return nil, err
	}
	return ride, nil
}

// UpdateRide applies a partial update to a ride.
func (c *Client) UpdateRide(ctx context.Context, rideID string, patch RidePatch) (*Ride, error) {
	var ride Ride
	path := fmt.Sprintf("/api/rides/%s", rideID)
	if err := c.do(ctx, http.MethodPatch, path, patch, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
