package app

import (
	"context"

	"webnova-quiz-service/internal/domain"
)

// LeaderboardService serves ranked views and per-user rank lookups.
type LeaderboardService struct {
	boards Leaderboard
	hub    *LeaderboardHub
	limit  int
}

func NewLeaderboardService(store BackingStore, hub *LeaderboardHub, limit int) *LeaderboardService {
	if limit <= 0 {
		limit = defaultBoardLimit
	}
	if hub == nil {
		hub = NewLeaderboardHub()
	}
	return &LeaderboardService{boards: store.Leaderboards(), hub: hub, limit: limit}
}

// Board returns the top entries of a period.
func (s *LeaderboardService) Board(ctx context.Context, period domain.Period) ([]domain.RankedEntry, error) {
	entries, err := s.boards.Top(ctx, period, s.limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.RankedEntry{}
	}
	return entries, nil
}

// Rank locates userID on the all-time board.
func (s *LeaderboardService) Rank(ctx context.Context, userID string) (domain.RankInfo, error) {
	return s.boards.RankOf(ctx, domain.PeriodAllTime, userID)
}

// Friends is a placeholder until a friends graph exists: it returns the caller's own rank.
func (s *LeaderboardService) Friends(ctx context.Context, userID string) (domain.RankInfo, error) {
	return s.Rank(ctx, userID)
}

// Watch subscribes to live updates of a period, starting from its current board.
// The caller must invoke the returned cancel function.
func (s *LeaderboardService) Watch(ctx context.Context, period domain.Period) (<-chan BoardUpdate, func(), error) {
	initial, err := s.Board(ctx, period)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(period, initial)
	return ch, cancel, nil
}
