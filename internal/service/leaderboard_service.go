package service

import (
	"context"

	"github.com/clubpulse/clubpulse/internal/repository"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardService answers read-side rank queries. Nothing here is
// stateful: every call recomputes from the members table so the results can
// never drift from the balances the ledger wrote.
type LeaderboardService struct {
	memberRepo *repository.MemberRepository
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(memberRepo *repository.MemberRepository) *LeaderboardService {
	return &LeaderboardService{memberRepo: memberRepo}
}

// TopN returns the highest-scoring active members with badge counts.
// The limit is clamped to [1, 100] with a default of 10.
func (s *LeaderboardService) TopN(ctx context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	return s.memberRepo.TopN(ctx, limit)
}

// RankOf returns 1 + the number of active members with strictly more points.
// Members with equal totals therefore share the same rank value.
func (s *LeaderboardService) RankOf(ctx context.Context, memberID string) (int, error) {
	return s.memberRepo.RankOf(ctx, memberID)
}
