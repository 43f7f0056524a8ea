package domain

import "time"

// EventStatus represents the lifecycle status of an event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// IsValid checks if the status is one of the allowed values.
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusCompleted, EventStatusCancelled:
		return true
	default:
		return false
	}
}

// AcceptsRegistrations returns true if new seats may be reserved.
// Status is advisory only; the occupied counter is authoritative for capacity.
func (s EventStatus) AcceptsRegistrations() bool {
	return s == EventStatusUpcoming || s == EventStatusOngoing
}

// Event represents an organized event with limited capacity.
// The invariant 0 <= Occupied <= Capacity is enforced by the database
// and by the conditional seat updates in the repository; no other code
// path mutates the occupied counter.
type Event struct {
	ID          string
	Title       string
	Description string
	OrganizerID string
	Capacity    int
	Occupied    int
	Status      EventStatus
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsFull returns true if no seats remain.
func (e *Event) IsFull() bool {
	return e.Occupied >= e.Capacity
}
