package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"webnova-quiz-service/internal/domain"
)

// DefaultFreezeCost is the price of a streak freeze in points.
const DefaultFreezeCost = 50

// StreakService serves streak status and the freeze purchase.
type StreakService struct {
	users      UserLedger
	hook       DailyCheckHook
	freezeCost int
	now        func() time.Time
}

func NewStreakService(store BackingStore, hook DailyCheckHook, freezeCost int, log *zap.Logger) *StreakService {
	return NewStreakServiceWithClock(store, hook, freezeCost, log, time.Now)
}

// NewStreakServiceWithClock allows deterministic "today" checks in tests.
func NewStreakServiceWithClock(store BackingStore, hook DailyCheckHook, freezeCost int, log *zap.Logger, now func() time.Time) *StreakService {
	if freezeCost <= 0 {
		freezeCost = DefaultFreezeCost
	}
	if hook == nil {
		hook = NoopDailyCheck{Log: log}
	}
	return &StreakService{users: store.Users(), hook: hook, freezeCost: freezeCost, now: now}
}

// Status reports the streak. daysUntilBreak is 1 when a quiz was completed today (UTC), else 0.
func (s *StreakService) Status(ctx context.Context, userID string) (domain.StreakStatus, error) {
	account, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.StreakStatus{}, err
	}
	status := domain.StreakStatus{
		CurrentStreak:     account.CurrentStreak,
		LongestStreak:     account.LongestStreak,
		LastCompletedDate: account.LastQuizDate,
		StreakFrozen:      account.StreakFrozen,
	}
	if account.LastQuizDate != nil && sameUTCDay(*account.LastQuizDate, s.now()) {
		status.DaysUntilBreak = 1
	}
	return status, nil
}

// Freeze spends the freeze cost and marks the streak frozen.
func (s *StreakService) Freeze(ctx context.Context, userID string) (domain.FreezeResult, error) {
	if _, err := s.users.SpendPoints(ctx, userID, s.freezeCost); err != nil {
		return domain.FreezeResult{}, err
	}
	return domain.FreezeResult{Success: true, PointsUsed: s.freezeCost}, nil
}

// DailyCheck runs the daily streak hook once.
func (s *StreakService) DailyCheck(ctx context.Context) error {
	return s.hook.Run(ctx, s.now())
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// NoopDailyCheck is the default daily hook. No missed-day policy is defined, so it changes nothing.
type NoopDailyCheck struct {
	Log *zap.Logger
}

func (h NoopDailyCheck) Run(_ context.Context, now time.Time) error {
	if h.Log != nil {
		h.Log.Info("daily streak check invoked", zap.Time("at", now.UTC()))
	}
	return nil
}
