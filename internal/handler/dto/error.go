package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/clubpulse/clubpulse/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
// Business-rule rejections and not-found conditions are client errors;
// anything unmapped is an infrastructure failure surfaced as 500.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Business-rule rejections
	case errors.Is(err, domain.ErrEventFull):
		return http.StatusConflict, "EVENT_FULL", message
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return http.StatusConflict, "ALREADY_REGISTERED", message
	case errors.Is(err, domain.ErrEventClosed):
		return http.StatusConflict, "EVENT_CLOSED", message
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", message
	case errors.Is(err, domain.ErrBadgeAlreadyGranted):
		return http.StatusConflict, "BADGE_ALREADY_GRANTED", message

	// Permission errors
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", message

	// Not-found errors
	case errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound, "EVENT_NOT_FOUND", message
	case errors.Is(err, domain.ErrRegistrationNotFound):
		return http.StatusNotFound, "REGISTRATION_NOT_FOUND", message
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "TASK_NOT_FOUND", message
	case errors.Is(err, domain.ErrDepartmentNotFound):
		return http.StatusNotFound, "DEPARTMENT_NOT_FOUND", message
	case errors.Is(err, domain.ErrMemberNotFound):
		return http.StatusNotFound, "MEMBER_NOT_FOUND", message
	case errors.Is(err, domain.ErrBadgeNotFound):
		return http.StatusNotFound, "BADGE_NOT_FOUND", message

	// Authentication errors
	case errors.Is(err, domain.ErrMemberInactive):
		return http.StatusUnauthorized, "MEMBER_INACTIVE", message
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", message

	// Validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidReason):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Default: internal server error
	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
