package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubpulse/clubpulse/internal/domain"
)

// eventColumns is the shared list of columns for event queries.
var eventColumns = []string{
	"id", "title", "description", "organizer_id", "capacity", "occupied",
	"status", "starts_at", "ends_at", "created_at", "updated_at",
}

// EventRepository handles database operations for events, including the
// seat ledger. The occupied counter is only ever mutated through
// ReserveSeat, ReleaseSeat, and RecountOccupied.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// scanEvent scans a single row into an Event struct.
func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.OrganizerID,
		&e.Capacity,
		&e.Occupied,
		&e.Status,
		&e.StartsAt,
		&e.EndsAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// Create inserts a new event and returns it with generated fields populated.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if event.Status == "" {
		event.Status = domain.EventStatusUpcoming
	}

	query, args, err := psql.
		Insert("events").
		Columns("title", "description", "organizer_id", "capacity", "status", "starts_at", "ends_at").
		Values(event.Title, event.Description, event.OrganizerID, event.Capacity,
			event.Status, event.StartsAt, event.EndsAt).
		Suffix("RETURNING id, occupied, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for event: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&event.ID, &event.Occupied, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	return event, nil
}

// GetByID retrieves an event by ID.
func (r *EventRepository) GetByID(ctx context.Context, eventID string) (*domain.Event, error) {
	query, args, err := psql.
		Select(eventColumns...).
		From("events").
		Where(sq.Eq{"id": eventID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for event: %w", err)
	}

	return scanEvent(r.pool.QueryRow(ctx, query, args...))
}

// List returns all events ordered by start time descending.
func (r *EventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query, args, err := psql.
		Select(eventColumns...).
		From("events").
		OrderBy("starts_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query for events: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return events, nil
}

// ReserveSeat claims one seat on the event as a single conditional update:
// the occupied counter is incremented only if it is still below capacity.
// Concurrent calls can never both pass the check because the comparison and
// the increment happen in one statement. Returns ErrEventFull when no seats
// remain, ErrEventClosed when the event no longer accepts registrations.
func (r *EventRepository) ReserveSeat(ctx context.Context, tx pgx.Tx, eventID string) error {
	query, args, err := psql.
		Update("events").
		Set("occupied", sq.Expr("occupied + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": eventID}).
		Where("occupied < capacity").
		Where(sq.Eq{"status": []domain.EventStatus{
			domain.EventStatusUpcoming,
			domain.EventStatusOngoing,
		}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build ReserveSeat query for event %s: %w", eventID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows: find out which precondition failed.
	event, err := r.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.Status.AcceptsRegistrations() {
		return fmt.Errorf("%w: event %s is %s", domain.ErrEventClosed, eventID, event.Status)
	}
	return fmt.Errorf("%w: event %s (%d/%d)", domain.ErrEventFull, eventID, event.Occupied, event.Capacity)
}

// ReleaseSeat returns one seat to the event, floored at zero. A release
// against an already-zero counter means the ledger drifted; it is clamped
// and logged as an anomaly rather than pushed negative.
func (r *EventRepository) ReleaseSeat(ctx context.Context, tx pgx.Tx, eventID string) error {
	query, args, err := psql.
		Update("events").
		Set("occupied", sq.Expr("occupied - 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": eventID}).
		Where("occupied > 0").
		ToSql()
	if err != nil {
		return fmt.Errorf("build ReleaseSeat query for event %s: %w", eventID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, eventID); err != nil {
		return err
	}

	slog.Error("seat release against empty event, counter clamped at zero",
		"event_id", eventID,
	)
	return nil
}

// RecountOccupied recomputes the occupied counter from the active
// registrations of the event and repairs any drift. The registrations table
// is the source of truth; the counter is a cache of it.
// Returns the counter value before and after the recount.
func (r *EventRepository) RecountOccupied(ctx context.Context, eventID string) (before, after int, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	query, args, err := psql.
		Select("occupied").
		From("events").
		Where(sq.Eq{"id": eventID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build recount lock query for event %s: %w", eventID, err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&before); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, domain.ErrEventNotFound
		}
		return 0, 0, fmt.Errorf("lock event: %w", err)
	}

	countQuery, countArgs, err := psql.
		Select("COUNT(*)").
		From("registrations").
		Where(sq.Eq{"event_id": eventID}).
		Where(sq.NotEq{"status": domain.RegistrationStatusCancelled}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build recount query for event %s: %w", eventID, err)
	}

	if err := tx.QueryRow(ctx, countQuery, countArgs...).Scan(&after); err != nil {
		return 0, 0, fmt.Errorf("count active registrations: %w", err)
	}

	if after != before {
		updateQuery, updateArgs, err := psql.
			Update("events").
			Set("occupied", after).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": eventID}).
			ToSql()
		if err != nil {
			return 0, 0, fmt.Errorf("build recount update for event %s: %w", eventID, err)
		}
		if _, err := tx.Exec(ctx, updateQuery, updateArgs...); err != nil {
			return 0, 0, fmt.Errorf("repair occupied counter: %w", err)
		}

		slog.Warn("occupied counter drifted from active registrations, repaired",
			"event_id", eventID,
			"counter", before,
			"active_registrations", after,
		)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit transaction: %w", err)
	}

	return before, after, nil
}

// UpdateStatus transitions an event's lifecycle status.
func (r *EventRepository) UpdateStatus(ctx context.Context, eventID string, status domain.EventStatus) error {
	query, args, err := psql.
		Update("events").
		Set("status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateStatus query for event %s: %w", eventID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

// ListIDs returns the IDs of all events.
func (r *EventRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT id FROM events ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("query event ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan event id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return ids, nil
}
