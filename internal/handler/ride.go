package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nammauto/internal/domain"
	"nammauto/internal/repository"
	"nammauto/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for requesting a ride.
type CreateRideRequest struct {
	PassengerID   string  `json:"passengerId"`
	PassengerName string  `json:"passengerName"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	Vehicle       string  `json:"vehicle"`
	Type          string  `json:"type,omitempty"`
	Distance      float64 `json:"distance,omitempty"`
}

// PatchRideRequest is the HTTP request body for partial ride updates.
// Absent fields are left untouched.
type PatchRideRequest struct {
	Status   *string  `json:"status,omitempty"`
	DriverID *string  `json:"driverId,omitempty"`
	Price    *string  `json:"price,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// RideResponse is the HTTP response for ride data.
type RideResponse struct {
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

func rideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:            r.ID,
		PassengerID:   r.PassengerID,
		PassengerName: r.PassengerName,
		From:          r.From,
		To:            r.To,
		Vehicle:       r.Vehicle,
		Type:          string(r.Type),
		Status:        string(r.Status),
		DriverID:      r.DriverID,
		Price:         r.Price,
		Distance:      r.Distance,
		CreatedAt:     r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateRide handles POST /api/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		PassengerID:   req.PassengerID,
		PassengerName: req.PassengerName,
		From:          req.From,
		To:            req.To,
		Vehicle:       req.Vehicle,
		Type:          domain.RideType(req.Type),
		Distance:      req.Distance,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, rideResponse(ride))
}

// PendingRides handles GET /api/rides/pending
func (h *RideHandler) PendingRides(c *gin.Context) {
	rides, err := h.rideService.PendingRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, rideResponse(r))
	}
	respondJSON(c, http.StatusOK, response)
}

// ActiveRide handles GET /api/rides/active/:userId
// Responds with JSON null when the participant has no active ride.
func (h *RideHandler) ActiveRide(c *gin.Context) {
	ride, err := h.rideService.ActiveRideFor(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	if ride == nil {
		respondJSON(c, http.StatusOK, nil)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// UpdateRide handles PATCH /api/rides/:id
func (h *RideHandler) UpdateRide(c *gin.Context) {
	rideID := c.Param("id")

	var req PatchRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	var patch repository.RidePatch
	if req.Status != nil {
		status := domain.RideStatus(*req.Status)
		patch.Status = &status
	}
	patch.DriverID = req.DriverID
	patch.Price = req.Price
	patch.Distance = req.Distance

	ride, err := h.rideService.UpdateRide(c.Request.Context(), rideID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride))
}
