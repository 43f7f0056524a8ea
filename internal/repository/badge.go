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

// BadgeRepository handles database operations for the badge catalog.
type BadgeRepository struct {
	pool *pgxpool.Pool
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(pool *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{pool: pool}
}

// GetByID retrieves a badge by ID.
func (r *BadgeRepository) GetByID(ctx context.Context, badgeID string) (*domain.Badge, error) {
	query, args, err := psql.
		Select("id", "name", "description", "points", "created_at").
		From("badges").
		Where(sq.Eq{"id": badgeID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for badge: %w", err)
	}

	var badge domain.Badge
	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&badge.ID, &badge.Name, &badge.Description, &badge.Points, &badge.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBadgeNotFound
		}
		return nil, fmt.Errorf("query badge: %w", err)
	}

	return &badge, nil
}

// Grant records a badge for a member within a transaction. The primary key
// on (member_id, badge_id) makes a second grant impossible; a violation maps
// to ErrBadgeAlreadyGranted so the accompanying point award is never applied
// twice.
func (r *BadgeRepository) Grant(ctx context.Context, tx pgx.Tx, memberID, badgeID string) error {
	query, args, err := psql.
		Insert("member_badges").
		Columns("member_id", "badge_id").
		Values(memberID, badgeID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Grant query for badge %s: %w", badgeID, err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: member %s, badge %s", domain.ErrBadgeAlreadyGranted, memberID, badgeID)
		}
		return fmt.Errorf("grant badge: %w", err)
	}

	return nil
}

// ListByMember returns a member's earned badges, oldest first.
func (r *BadgeRepository) ListByMember(ctx context.Context, memberID string) ([]*domain.Badge, error) {
	query, args, err := psql.
		Select("b.id", "b.name", "b.description", "b.points", "b.created_at").
		From("badges b").
		Join("member_badges mb ON mb.badge_id = b.id").
		Where(sq.Eq{"mb.member_id": memberID}).
		OrderBy("mb.awarded_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByMember query for badges: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query member badges: %w", err)
	}
	defer rows.Close()

	var badges []*domain.Badge
	for rows.Next() {
		var b domain.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Points, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return badges, nil
}
