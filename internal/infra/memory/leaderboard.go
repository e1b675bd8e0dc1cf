package memory

import (
	"context"
	"sync"

	"webnova-quiz-service/internal/domain"
	"webnova-quiz-service/internal/ranking"
)

// Leaderboard keeps per-period rows in insertion order; ranking happens on read.
type Leaderboard struct {
	mu      sync.RWMutex
	periods map[domain.Period]*board
}

type board struct {
	order []string
	rows  map[string]domain.LeaderboardEntry
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{periods: make(map[domain.Period]*board)}
}

// Upsert replaces the user's row wholesale. A new user is appended after existing rows.
func (l *Leaderboard) Upsert(_ context.Context, period domain.Period, entry domain.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.periods[period]
	if !ok {
		b = &board{rows: make(map[string]domain.LeaderboardEntry)}
		l.periods[period] = b
	}
	if _, exists := b.rows[entry.UserID]; !exists {
		b.order = append(b.order, entry.UserID)
	}
	b.rows[entry.UserID] = entry
	return nil
}

func (l *Leaderboard) Top(_ context.Context, period domain.Period, limit int) ([]domain.RankedEntry, error) {
	return ranking.Top(l.rows(period), limit), nil
}

func (l *Leaderboard) RankOf(_ context.Context, period domain.Period, userID string) (domain.RankInfo, error) {
	return ranking.Locate(l.rows(period), userID), nil
}

func (l *Leaderboard) rows(period domain.Period) []domain.LeaderboardEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.periods[period]
	if !ok {
		return nil
	}
	rows := make([]domain.LeaderboardEntry, 0, len(b.order))
	for _, id := range b.order {
		rows = append(rows, b.rows[id])
	}
	return rows
}
