package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nammauto/internal/repository"
	"nammauto/internal/service"
)

// ErrorResponse is the wire format for errors.
type ErrorResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Message: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrPhoneRequired),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidDriverStatus),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrMissingRideFields),
		errors.Is(err, service.ErrInvalidRideStatus),
		errors.Is(err, service.ErrEmptyPatch):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrRideConflict),
		errors.Is(err, repository.ErrDuplicatePhone),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict

	// Default to internal server error (storage failures land here)
	default:
		return http.StatusInternalServerError
	}
}
