package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clubpulse/clubpulse/internal/domain"
	"github.com/clubpulse/clubpulse/internal/repository"
)

// errValidation wraps domain.ErrValidation with a human-readable detail.
func errValidation(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

// EventService handles event creation and lookup. Seat accounting lives in
// the registration service; this one never touches the occupied counter.
type EventService struct {
	eventRepo *repository.EventRepository
}

// NewEventService creates a new EventService.
func NewEventService(eventRepo *repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

// CreateEventParams holds the inputs for CreateEvent.
type CreateEventParams struct {
	Title       string
	Description string
	Capacity    int
	StartsAt    time.Time
	EndsAt      time.Time
}

// CreateEvent validates and creates an event. Staff only; the actor becomes
// the organizer.
func (s *EventService) CreateEvent(ctx context.Context, actor *domain.Member, params CreateEventParams) (*domain.Event, error) {
	if err := capCreateEvent.Check(actor, "", nil); err != nil {
		return nil, err
	}

	params.Title = strings.TrimSpace(params.Title)
	if params.Title == "" {
		return nil, errValidation("title is required")
	}
	if params.Capacity <= 0 {
		return nil, errValidation("capacity must be a positive integer")
	}
	if !params.EndsAt.After(params.StartsAt) {
		return nil, errValidation("ends_at must be after starts_at")
	}

	event := &domain.Event{
		Title:       params.Title,
		Description: params.Description,
		OrganizerID: actor.ID,
		Capacity:    params.Capacity,
		Status:      domain.EventStatusUpcoming,
		StartsAt:    params.StartsAt,
		EndsAt:      params.EndsAt,
	}
	if _, err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	slog.Info("event created",
		"event_id", event.ID,
		"organizer_id", actor.ID,
		"capacity", event.Capacity,
	)

	return event, nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

// ListEvents returns all events.
func (s *EventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	return s.eventRepo.List(ctx)
}
