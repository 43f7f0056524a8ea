package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubpulse/clubpulse/internal/config"
	"github.com/clubpulse/clubpulse/internal/domain"
	"github.com/clubpulse/clubpulse/internal/repository"
)

// Level computes a member's level from a point balance:
// level = points/step + 1. Monotonic in points, deterministic, and
// mirrored by the SQL expression in MemberRepository.ApplyAward so the
// stored level can never disagree with this function.
func Level(points, step int) int {
	if points < 0 {
		points = 0
	}
	return points/step + 1
}

// ApplyDelta applies a point delta to a balance, clamped at zero.
// A negative delta can reduce a balance but never push it below zero.
func ApplyDelta(balance, delta int) int {
	next := balance + delta
	if next < 0 {
		return 0
	}
	return next
}

// Ledger converts award events (attendance confirmed, task completed, badge
// granted, manual adjustment) into point-balance mutations. It is the only
// writer of member balances; every mutation is one atomic update plus an
// audit row in the same transaction.
type Ledger struct {
	pool       *pgxpool.Pool
	memberRepo *repository.MemberRepository
	awardRepo  *repository.AwardRepository
	badgeRepo  *repository.BadgeRepository
	cfg        config.Points
}

// NewLedger creates a new Ledger with the injected points configuration.
func NewLedger(
	pool *pgxpool.Pool,
	memberRepo *repository.MemberRepository,
	awardRepo *repository.AwardRepository,
	badgeRepo *repository.BadgeRepository,
	cfg config.Points,
) *Ledger {
	return &Ledger{
		pool:       pool,
		memberRepo: memberRepo,
		awardRepo:  awardRepo,
		badgeRepo:  badgeRepo,
		cfg:        cfg,
	}
}

// AttendancePoints returns the configured award for a confirmed attendance.
func (l *Ledger) AttendancePoints() int {
	return l.cfg.AttendancePoints
}

// Award applies a point delta to a member and records the audit row, both
// within the caller's transaction. Returns the award with the row id
// populated.
func (l *Ledger) Award(
	ctx context.Context,
	tx pgx.Tx,
	memberID string,
	delta int,
	reason domain.AwardReason,
	sourceID *string,
	note string,
) (*domain.PointAward, error) {
	if !reason.IsValid() {
		return nil, domain.ErrInvalidReason
	}

	points, level, err := l.memberRepo.ApplyAward(ctx, tx, memberID, delta, l.cfg.LevelStep)
	if err != nil {
		return nil, fmt.Errorf("apply award to member %s: %w", memberID, err)
	}

	award := &domain.PointAward{
		MemberID: memberID,
		Delta:    delta,
		Reason:   reason,
		SourceID: sourceID,
		Note:     note,
	}
	if err := l.awardRepo.Create(ctx, tx, award); err != nil {
		return nil, fmt.Errorf("record award: %w", err)
	}

	slog.Info("points awarded",
		"member_id", memberID,
		"delta", delta,
		"reason", reason,
		"points", points,
		"level", level,
	)

	return award, nil
}

// GrantBadge grants a badge to a member and awards the badge's point value.
// The member_badges primary key rejects a second grant, so the award can
// never be applied twice for the same badge.
func (l *Ledger) GrantBadge(
	ctx context.Context,
	actor *domain.Member,
	memberID string,
	badgeID string,
) (*domain.PointAward, error) {
	if err := capGrantBadge.Check(actor, "", nil); err != nil {
		return nil, err
	}

	if _, err := l.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	badge, err := l.badgeRepo.GetByID(ctx, badgeID)
	if err != nil {
		return nil, err
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	if err := l.badgeRepo.Grant(ctx, tx, memberID, badgeID); err != nil {
		return nil, err
	}

	award, err := l.Award(ctx, tx, memberID, badge.Points, domain.AwardReasonBadgeGrant, &badgeID, badge.Name)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("badge granted",
		"member_id", memberID,
		"badge_id", badgeID,
		"actor_id", actor.ID,
	)

	return award, nil
}

// AdjustPoints applies a manual point adjustment (positive or negative).
// The balance is clamped at zero by the ledger update.
func (l *Ledger) AdjustPoints(
	ctx context.Context,
	actor *domain.Member,
	memberID string,
	delta int,
	note string,
) (*domain.PointAward, error) {
	if err := capAdjustPoints.Check(actor, "", nil); err != nil {
		return nil, err
	}

	if _, err := l.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	award, err := l.Award(ctx, tx, memberID, delta, domain.AwardReasonManualAdjustment, nil, note)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return award, nil
}

// rollback rolls back a transaction, tolerating the already-closed case.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
		slog.Error("failed to rollback transaction", "error", err)
	}
}
