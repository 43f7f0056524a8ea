package domain

import "time"

// RegistrationStatus represents the status of a registration in the state machine.
type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "registered"
	RegistrationStatusConfirmed  RegistrationStatus = "confirmed"
	RegistrationStatusCancelled  RegistrationStatus = "cancelled"
	RegistrationStatusAttended   RegistrationStatus = "attended"
	RegistrationStatusNoShow     RegistrationStatus = "no-show"
)

// IsTerminal returns true if the status is terminal (no transitions allowed).
func (s RegistrationStatus) IsTerminal() bool {
	return s == RegistrationStatusCancelled || s == RegistrationStatusAttended || s == RegistrationStatusNoShow
}

// IsActive returns true if the registration still holds a seat.
// A cancelled registration is kept as a tombstone and does not count
// against the uniqueness invariant or the occupied counter.
func (s RegistrationStatus) IsActive() bool {
	return s != RegistrationStatusCancelled
}

// HoldsSeat returns true if the registration occupies a seat that must be
// released when it leaves this status.
func (s RegistrationStatus) HoldsSeat() bool {
	return s == RegistrationStatusRegistered || s == RegistrationStatusConfirmed
}

// IsValid checks if the status is one of the allowed values.
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusRegistered, RegistrationStatusConfirmed,
		RegistrationStatusCancelled, RegistrationStatusAttended, RegistrationStatusNoShow:
		return true
	default:
		return false
	}
}

// RegistrationMethod distinguishes how a member was registered.
type RegistrationMethod string

const (
	RegistrationMethodInternal RegistrationMethod = "internal"
	RegistrationMethodExternal RegistrationMethod = "external"
)

// IsValid checks if the method is one of the allowed values.
func (m RegistrationMethod) IsValid() bool {
	return m == RegistrationMethodInternal || m == RegistrationMethodExternal
}

// Registration binds one member to one event's seat.
// At most one non-cancelled registration may exist per (event, member)
// pair; the database enforces this with a partial unique index.
type Registration struct {
	ID          string
	EventID     string
	MemberID    string
	Method      RegistrationMethod
	Status      RegistrationStatus
	CheckedInAt *time.Time
	Rating      *int
	Feedback    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOwnedBy checks if the registration belongs to the given member.
func (r *Registration) IsOwnedBy(memberID string) bool {
	return r.MemberID == memberID
}
