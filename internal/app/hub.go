package app

import (
	"sync"
	"time"

	"webnova-quiz-service/internal/domain"
)

// BoardUpdate is a leaderboard snapshot pushed to live subscribers.
type BoardUpdate struct {
	Period    domain.Period        `json:"period"`
	Entries   []domain.RankedEntry `json:"entries"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// LeaderboardHub fans leaderboard snapshots out to in-process subscribers.
type LeaderboardHub struct {
	now         func() time.Time
	mu          sync.RWMutex
	subscribers map[domain.Period]map[chan BoardUpdate]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return NewLeaderboardHubWithClock(time.Now)
}

// NewLeaderboardHubWithClock allows deterministic timestamps in tests.
func NewLeaderboardHubWithClock(now func() time.Time) *LeaderboardHub {
	return &LeaderboardHub{
		now:         now,
		subscribers: make(map[domain.Period]map[chan BoardUpdate]struct{}),
	}
}

// Subscribe registers a channel for period updates, seeded with initial.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *LeaderboardHub) Subscribe(period domain.Period, initial []domain.RankedEntry) (<-chan BoardUpdate, func()) {
	ch := make(chan BoardUpdate, 8)
	ch <- BoardUpdate{Period: period, Entries: initial, UpdatedAt: h.now()}

	h.mu.Lock()
	subs, ok := h.subscribers[period]
	if !ok {
		subs = make(map[chan BoardUpdate]struct{})
		h.subscribers[period] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[period][ch]; ok {
			delete(h.subscribers[period], ch)
			close(ch)
		}
	}
	return ch, cancel
}

// HasSubscribers reports whether anyone listens to period.
func (h *LeaderboardHub) HasSubscribers(period domain.Period) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[period]) > 0
}

// Publish delivers entries to every subscriber of period without blocking.
func (h *LeaderboardHub) Publish(period domain.Period, entries []domain.RankedEntry) {
	update := BoardUpdate{Period: period, Entries: entries, UpdatedAt: h.now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[period] {
		select {
		case ch <- update:
		default:
			// Slow reader: drop its oldest pending snapshot so the newest one fits.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
