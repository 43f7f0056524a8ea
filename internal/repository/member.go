package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubpulse/clubpulse/internal/domain"
)

// memberColumns is the shared list of columns for member queries.
var memberColumns = []string{
	"id", "email", "name", "role", "token", "points", "level",
	"is_active", "created_at", "updated_at",
}

// MemberRepository handles database operations for members.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// scanMember scans a single row into a Member struct.
func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(
		&m.ID,
		&m.Email,
		&m.Name,
		&m.Role,
		&m.Token,
		&m.Points,
		&m.Level,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("scan member: %w", err)
	}
	return &m, nil
}

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, memberID string) (*domain.Member, error) {
	query, args, err := psql.
		Select(memberColumns...).
		From("members").
		Where(sq.Eq{"id": memberID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for member: %w", err)
	}

	return scanMember(r.pool.QueryRow(ctx, query, args...))
}

// GetByToken finds a member by authentication token.
func (r *MemberRepository) GetByToken(ctx context.Context, token string) (*domain.Member, error) {
	query, args, err := psql.
		Select(memberColumns...).
		From("members").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByToken query: %w", err)
	}

	return scanMember(r.pool.QueryRow(ctx, query, args...))
}

// ApplyAward atomically applies a point delta to a member and recomputes the
// level from the new balance in the same statement. The balance is clamped at
// zero so a negative delta can never underflow. Returns the new balance and
// level.
func (r *MemberRepository) ApplyAward(
	ctx context.Context,
	tx pgx.Tx,
	memberID string,
	delta int,
	levelStep int,
) (points int, level int, err error) {
	query, args, err := psql.
		Update("members").
		Set("points", sq.Expr("GREATEST(points + ?, 0)", delta)).
		Set("level", sq.Expr("GREATEST(points + ?, 0) / ? + 1", delta, levelStep)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": memberID}).
		Suffix("RETURNING points, level").
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build ApplyAward query for member %s: %w", memberID, err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&points, &level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, domain.ErrMemberNotFound
		}
		return 0, 0, fmt.Errorf("apply award: %w", err)
	}

	return points, level, nil
}

// LeaderboardEntry is a member row on the leaderboard with its computed
// badge count.
type LeaderboardEntry struct {
	MemberID   string
	Name       string
	Points     int
	Level      int
	BadgeCount int
}

// TopN returns the n highest-scoring active members ordered by points
// descending. Equal totals order by member id ascending so repeated calls
// return the same sequence.
func (r *MemberRepository) TopN(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	query, args, err := psql.
		Select(
			"m.id", "m.name", "m.points", "m.level",
			"COUNT(mb.badge_id) AS badge_count",
		).
		From("members m").
		LeftJoin("member_badges mb ON mb.member_id = m.id").
		Where(sq.Eq{"m.is_active": true}).
		GroupBy("m.id", "m.name", "m.points", "m.level").
		OrderBy("m.points DESC", "m.id ASC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build TopN query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.MemberID, &e.Name, &e.Points, &e.Level, &e.BadgeCount); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}

	return entries, nil
}

// RankOf computes a member's rank as 1 + the number of active members with a
// strictly greater point total. Recomputed from the members table on every
// call; nothing is cached.
func (r *MemberRepository) RankOf(ctx context.Context, memberID string) (int, error) {
	member, err := r.GetByID(ctx, memberID)
	if err != nil {
		return 0, err
	}
	if !member.IsActive {
		return 0, domain.ErrMemberNotFound
	}

	query, args, err := psql.
		Select("COUNT(*) + 1").
		From("members").
		Where(sq.Eq{"is_active": true}).
		Where(sq.Gt{"points": member.Points}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build RankOf query for member %s: %w", memberID, err)
	}

	var rank int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&rank); err != nil {
		return 0, fmt.Errorf("query rank: %w", err)
	}

	return rank, nil
}

// ListAttendedEventIDs returns the IDs of events the member attended,
// derived from the registrations table rather than a stored list.
func (r *MemberRepository) ListAttendedEventIDs(ctx context.Context, memberID string) ([]string, error) {
	query, args, err := psql.
		Select("event_id").
		From("registrations").
		Where(sq.Eq{
			"member_id": memberID,
			"status":    domain.RegistrationStatusAttended,
		}).
		OrderBy("updated_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListAttendedEventIDs query: %w", err)
	}

	return r.queryIDs(ctx, query, args)
}

// ListCompletedTaskIDs returns the IDs of completed tasks the member was
// assigned to, derived from the tasks and task_assignees tables.
func (r *MemberRepository) ListCompletedTaskIDs(ctx context.Context, memberID string) ([]string, error) {
	query, args, err := psql.
		Select("t.id").
		From("tasks t").
		Join("task_assignees ta ON ta.task_id = t.id").
		Where(sq.Eq{
			"ta.member_id": memberID,
			"t.status":     domain.TaskStatusCompleted,
		}).
		OrderBy("t.completed_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListCompletedTaskIDs query: %w", err)
	}

	return r.queryIDs(ctx, query, args)
}

func (r *MemberRepository) queryIDs(ctx context.Context, query string, args []interface{}) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return ids, nil
}
