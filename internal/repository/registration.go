package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubpulse/clubpulse/internal/domain"
)

// PostgreSQL error codes for constraint violations.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// registrationColumns is the shared list of columns for registration queries.
var registrationColumns = []string{
	"id", "event_id", "member_id", "method", "status",
	"checked_in_at", "rating", "feedback", "created_at", "updated_at",
}

// RegistrationRepository handles database operations for registrations.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// scanRegistration scans a single row into a Registration struct.
func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.MemberID,
		&reg.Method,
		&reg.Status,
		&reg.CheckedInAt,
		&reg.Rating,
		&reg.Feedback,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	return &reg, nil
}

// Create inserts a new registration within a transaction. The partial unique
// index on (event_id, member_id) over non-cancelled rows makes a duplicate
// active registration impossible regardless of interleaving; a violation maps
// to ErrAlreadyRegistered. A dangling event or member reference maps to the
// matching not-found error.
func (r *RegistrationRepository) Create(
	ctx context.Context,
	tx pgx.Tx,
	reg *domain.Registration,
) (*domain.Registration, error) {
	if reg.Method == "" {
		reg.Method = domain.RegistrationMethodInternal
	}
	if reg.Status == "" {
		reg.Status = domain.RegistrationStatusRegistered
	}

	query, args, err := psql.
		Insert("registrations").
		Columns("event_id", "member_id", "method", "status").
		Values(reg.EventID, reg.MemberID, reg.Method, reg.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for registration: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == uniqueViolation:
				return nil, fmt.Errorf("%w: event %s, member %s",
					domain.ErrAlreadyRegistered, reg.EventID, reg.MemberID)
			case pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == "registrations_event_id_fkey":
				return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, reg.EventID)
			case pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == "registrations_member_id_fkey":
				return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, reg.MemberID)
			}
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	return reg, nil
}

// GetByID retrieves a registration by ID.
func (r *RegistrationRepository) GetByID(ctx context.Context, regID string) (*domain.Registration, error) {
	query, args, err := psql.
		Select(registrationColumns...).
		From("registrations").
		Where(sq.Eq{"id": regID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for registration: %w", err)
	}

	return scanRegistration(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a registration by ID with FOR UPDATE lock
// (within transaction).
func (r *RegistrationRepository) GetByIDForUpdate(
	ctx context.Context,
	tx pgx.Tx,
	regID string,
) (*domain.Registration, error) {
	query, args, err := psql.
		Select(registrationColumns...).
		From("registrations").
		Where(sq.Eq{"id": regID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for registration %s: %w", regID, err)
	}

	return scanRegistration(tx.QueryRow(ctx, query, args...))
}

// UpdateStatus conditionally transitions a registration from one of the
// given statuses. Returns false with no error when the row was not in any of
// them, so callers can treat an already-applied transition as a no-op.
func (r *RegistrationRepository) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	regID string,
	from []domain.RegistrationStatus,
	to domain.RegistrationStatus,
	stampCheckIn bool,
) (bool, error) {
	qb := psql.
		Update("registrations").
		Set("status", to).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     regID,
			"status": from,
		})
	if stampCheckIn {
		qb = qb.Set("checked_in_at", sq.Expr("NOW()"))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return false, fmt.Errorf("build UpdateStatus query for registration %s: %w", regID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update registration status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetFeedback stores a member's rating and feedback text.
func (r *RegistrationRepository) SetFeedback(
	ctx context.Context,
	regID string,
	rating int,
	feedback string,
) error {
	query, args, err := psql.
		Update("registrations").
		Set("rating", rating).
		Set("feedback", feedback).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": regID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build SetFeedback query for registration %s: %w", regID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRegistrationNotFound
	}

	return nil
}

// ListByEvent returns all registrations for an event, tombstones included.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return r.list(ctx, sq.Eq{"event_id": eventID})
}

// ListByMember returns all registrations of a member.
func (r *RegistrationRepository) ListByMember(ctx context.Context, memberID string) ([]*domain.Registration, error) {
	return r.list(ctx, sq.Eq{"member_id": memberID})
}

func (r *RegistrationRepository) list(ctx context.Context, where sq.Eq) ([]*domain.Registration, error) {
	query, args, err := psql.
		Select(registrationColumns...).
		From("registrations").
		Where(where).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query for registrations: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var regs []*domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return regs, nil
}

// FindLapsed returns registrations still holding a seat on events that have
// already ended. These are the candidates for the no-show sweep.
func (r *RegistrationRepository) FindLapsed(ctx context.Context) ([]*domain.Registration, error) {
	query, args, err := psql.
		Select(
			"r.id", "r.event_id", "r.member_id", "r.method", "r.status",
			"r.checked_in_at", "r.rating", "r.feedback", "r.created_at", "r.updated_at",
		).
		From("registrations r").
		Join("events e ON e.id = r.event_id").
		Where("e.ends_at < NOW()").
		Where(sq.Eq{"r.status": []domain.RegistrationStatus{
			domain.RegistrationStatusRegistered,
			domain.RegistrationStatusConfirmed,
		}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindLapsed query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lapsed registrations: %w", err)
	}
	defer rows.Close()

	var regs []*domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return regs, nil
}

// FindActiveByEventAndMember returns the active (non-cancelled) registration
// for the pair, if any.
func (r *RegistrationRepository) FindActiveByEventAndMember(
	ctx context.Context,
	eventID, memberID string,
) (*domain.Registration, error) {
	query, args, err := psql.
		Select(registrationColumns...).
		From("registrations").
		Where(sq.Eq{
			"event_id":  eventID,
			"member_id": memberID,
		}).
		Where(sq.NotEq{"status": domain.RegistrationStatusCancelled}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindActiveByEventAndMember query: %w", err)
	}

	return scanRegistration(r.pool.QueryRow(ctx, query, args...))
}
