package app

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"webnova-quiz-service/internal/domain"
)

const (
	progressPageSize  = 50
	maxUsernameLength = 32
)

// UserService serves profile, stats and progress reads for a user.
type UserService struct {
	users UserLedger
}

func NewUserService(store BackingStore) *UserService {
	return &UserService{users: store.Users()}
}

func (s *UserService) Profile(ctx context.Context, userID string) (domain.UserAccount, error) {
	return s.users.Get(ctx, userID)
}

// UpdateProfile applies the username/avatar whitelist. Reward fields are not writable here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.UserAccount, error) {
	if update.Username != nil {
		name := strings.TrimSpace(*update.Username)
		if name == "" || utf8.RuneCountInString(name) > maxUsernameLength {
			return domain.UserAccount{}, domain.Errorf(domain.KindBadRequest, "Username must be 1-%d characters", maxUsernameLength)
		}
		update.Username = &name
	}
	if update.Empty() {
		return s.users.Get(ctx, userID)
	}
	return s.users.UpdateProfile(ctx, userID, update)
}

// Stats combines the account's reward state with its progress history.
func (s *UserService) Stats(ctx context.Context, userID string) (domain.UserStats, error) {
	var (
		account domain.UserAccount
		summary domain.ProgressStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		account, err = s.users.Get(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.users.ProgressStats(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.UserStats{}, err
	}

	return domain.UserStats{
		Streak:           account.CurrentStreak,
		LongestStreak:    account.LongestStreak,
		TotalPoints:      account.TotalPoints,
		Level:            account.Level,
		QuizzesCompleted: summary.QuizzesCompleted,
		AvgScore:         math.Round(summary.AverageScore*100) / 100,
	}, nil
}

// Progress returns the latest progress items, newest first.
func (s *UserService) Progress(ctx context.Context, userID string) ([]domain.ProgressItem, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Progress(ctx, userID, progressPageSize)
}
