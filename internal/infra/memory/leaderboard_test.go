package memory

import (
	"context"
	"testing"

	"webnova-quiz-service/internal/domain"
)

func TestLeaderboardUpsertAndRank(t *testing.T) {
	board := NewLeaderboard()
	ctx := context.Background()
	for _, e := range []domain.LeaderboardEntry{
		{UserID: "a", Username: "A", Points: 100},
		{UserID: "b", Username: "B", Points: 300},
		{UserID: "c", Username: "C", Points: 100},
	} {
		if err := board.Upsert(ctx, domain.PeriodAllTime, e); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	top, err := board.Top(ctx, domain.PeriodAllTime, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	got := []string{top[0].UserID, top[1].UserID, top[2].UserID}
	if got[0] != "b" || got[1] != "a" || got[2] != "c" {
		t.Fatalf("unexpected order %v", got)
	}

	info, _ := board.RankOf(ctx, domain.PeriodAllTime, "c")
	if info.CurrentRank != 3 || info.TotalUsers != 3 || info.PointsToNextRank != 0 {
		t.Fatalf("unexpected rank %+v", info)
	}

	// Replacing a row keeps one entry per user.
	_ = board.Upsert(ctx, domain.PeriodAllTime, domain.LeaderboardEntry{UserID: "a", Username: "A", Points: 350})
	info, _ = board.RankOf(ctx, domain.PeriodAllTime, "b")
	if info.CurrentRank != 2 || info.TotalUsers != 3 || info.PointsToNextRank != 50 {
		t.Fatalf("unexpected rank after upsert %+v", info)
	}
}

func TestLeaderboardPeriodsAreIndependent(t *testing.T) {
	board := NewLeaderboard()
	ctx := context.Background()
	_ = board.Upsert(ctx, domain.PeriodDaily, domain.LeaderboardEntry{UserID: "a", Points: 10})

	weekly, _ := board.Top(ctx, domain.PeriodWeekly, 10)
	if len(weekly) != 0 {
		t.Fatalf("expected empty weekly board, got %d", len(weekly))
	}
	info, _ := board.RankOf(ctx, domain.PeriodWeekly, "a")
	if info.CurrentRank != 0 || info.TotalUsers != 0 {
		t.Fatalf("unexpected rank on empty board %+v", info)
	}
}

func TestLeaderboardMissingUserRanksLast(t *testing.T) {
	board := NewLeaderboard()
	ctx := context.Background()
	_ = board.Upsert(ctx, domain.PeriodAllTime, domain.LeaderboardEntry{UserID: "a", Points: 10})
	_ = board.Upsert(ctx, domain.PeriodAllTime, domain.LeaderboardEntry{UserID: "b", Points: 20})

	info, _ := board.RankOf(ctx, domain.PeriodAllTime, "ghost")
	if info.CurrentRank != 2 || info.TotalUsers != 2 {
		t.Fatalf("unexpected rank for missing user %+v", info)
	}
}
