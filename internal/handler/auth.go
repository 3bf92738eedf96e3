package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nammauto/internal/domain"
	"nammauto/internal/service"
)

// AuthHandler handles HTTP requests for login and driver presence.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest is the HTTP request body for login/registration.
type LoginRequest struct {
	Name           string                 `json:"name"`
	Phone          string                 `json:"phone"`
	Role           string                 `json:"role"`
	Email          string                 `json:"email,omitempty"`
	VehicleDetails *domain.VehicleDetails `json:"vehicleDetails,omitempty"`
}

// StatusRequest is the HTTP request body for driver status updates.
type StatusRequest struct {
	Status string `json:"status"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	Role           string                 `json:"role"`
	VehicleDetails *domain.VehicleDetails `json:"vehicleDetails,omitempty"`
	Status         string                 `json:"status"`
	Location       string                 `json:"location,omitempty"`
	Rating         float64                `json:"rating"`
	CreatedAt      string                 `json:"createdAt"`
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           string(u.Role),
		VehicleDetails: u.VehicleDetails,
		Status:         string(u.Status),
		Location:       u.Location,
		Rating:         u.Rating,
		CreatedAt:      u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleUser
	}

	user, err := h.authService.Login(c.Request.Context(), service.LoginRequest{
		Name:           req.Name,
		Phone:          req.Phone,
		Role:           role,
		Email:          req.Email,
		VehicleDetails: req.VehicleDetails,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, userResponse(user))
}

// OnlineDrivers handles GET /api/auth/drivers
func (h *AuthHandler) OnlineDrivers(c *gin.Context) {
	drivers, err := h.authService.OnlineDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, userResponse(d))
	}
	respondJSON(c, http.StatusOK, response)
}

// UpdateStatus handles PATCH /api/auth/:id/status
func (h *AuthHandler) UpdateStatus(c *gin.Context) {
	userID := c.Param("id")

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	user, err := h.authService.SetDriverStatus(c.Request.Context(), userID, domain.DriverStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, userResponse(user))
}
