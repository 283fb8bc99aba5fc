package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"valet/internal/repository"
	"valet/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
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
	case errors.Is(err, service.ErrInvalidPlate),
		errors.Is(err, service.ErrInvalidCardID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidRequestID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidDriverName),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		return http.StatusBadRequest

	// Conflict errors - rejected with current state, caller decides
	case errors.Is(err, service.ErrCardAlreadyBound),
		errors.Is(err, service.ErrCardNotBound),
		errors.Is(err, service.ErrVehicleAlreadyParked),
		errors.Is(err, service.ErrDuplicateActiveRequest),
		errors.Is(err, service.ErrDriverBusy),
		errors.Is(err, service.ErrDriverHasActiveRequest),
		errors.Is(err, service.ErrRequestNotPending),
		errors.Is(err, service.ErrStatusMismatch),
		errors.Is(err, service.ErrRequestNotActive),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrHookNotOccupied):
		return http.StatusConflict

	// Safety violations and incomplete handover preconditions
	case errors.Is(err, service.ErrUnsafeToRelease),
		errors.Is(err, service.ErrCannotCancelReadyRequest),
		errors.Is(err, service.ErrRequestNotReady),
		errors.Is(err, service.ErrPaymentNotConfirmed),
		errors.Is(err, service.ErrCardNotVerified),
		errors.Is(err, service.ErrCardMismatch):
		return http.StatusForbidden

	// Resource exhaustion
	case errors.Is(err, service.ErrNoHooksAvailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
