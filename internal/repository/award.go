package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubpulse/clubpulse/internal/domain"
)

// AwardRepository handles the point_awards audit trail.
type AwardRepository struct {
	pool *pgxpool.Pool
}

// NewAwardRepository creates a new AwardRepository.
func NewAwardRepository(pool *pgxpool.Pool) *AwardRepository {
	return &AwardRepository{pool: pool}
}

// Create records one point award within the transaction that applied it.
func (r *AwardRepository) Create(ctx context.Context, tx pgx.Tx, award *domain.PointAward) error {
	query, args, err := psql.
		Insert("point_awards").
		Columns("member_id", "delta", "reason", "source_id", "note").
		Values(award.MemberID, award.Delta, award.Reason, award.SourceID, award.Note).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for point award: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&award.ID, &award.CreatedAt)
	if err != nil {
		return fmt.Errorf("create point award: %w", err)
	}

	return nil
}

// ListByMember returns a member's award history, newest first.
func (r *AwardRepository) ListByMember(ctx context.Context, memberID string) ([]*domain.PointAward, error) {
	query, args, err := psql.
		Select("id", "member_id", "delta", "reason", "source_id", "note", "created_at").
		From("point_awards").
		Where(sq.Eq{"member_id": memberID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByMember query for awards: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query point awards: %w", err)
	}
	defer rows.Close()

	var awards []*domain.PointAward
	for rows.Next() {
		var a domain.PointAward
		err := rows.Scan(&a.ID, &a.MemberID, &a.Delta, &a.Reason, &a.SourceID, &a.Note, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan point award: %w", err)
		}
		awards = append(awards, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return awards, nil
}
