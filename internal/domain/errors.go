package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Registration errors
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("member already registered for this event")
	ErrEventFull            = errors.New("event has no remaining capacity")
	ErrEventClosed          = errors.New("event is not accepting registrations")
	ErrInvalidTransition    = errors.New("invalid status transition")

	// Event errors
	ErrEventNotFound = errors.New("event not found")

	// Task errors
	ErrTaskNotFound       = errors.New("task not found")
	ErrDepartmentNotFound = errors.New("department not found")

	// Member errors
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberInactive      = errors.New("member is deactivated")
	ErrInvalidToken        = errors.New("invalid authentication token")
	ErrBadgeNotFound       = errors.New("badge not found")
	ErrBadgeAlreadyGranted = errors.New("badge already granted to member")

	// Permission errors
	ErrForbidden = errors.New("operation not permitted for this member")

	// Validation errors
	ErrValidation      = errors.New("validation failed")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidMethod   = errors.New("invalid registration method")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidReason   = errors.New("invalid award reason")
)
