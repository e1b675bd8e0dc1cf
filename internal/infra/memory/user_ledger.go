package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"webnova-quiz-service/internal/domain"
)

// UserLedger keeps accounts and progress in memory. One mutex serialises
// every read-modify-write, so concurrent rewards for a user compose.
type UserLedger struct {
	clock func() time.Time

	mu       sync.Mutex
	accounts map[string]domain.UserAccount
	progress map[string][]domain.ProgressItem
}

func NewUserLedger() *UserLedger {
	return &UserLedger{
		clock:    time.Now,
		accounts: make(map[string]domain.UserAccount),
		progress: make(map[string][]domain.ProgressItem),
	}
}

func (l *UserLedger) Create(_ context.Context, account domain.UserAccount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[account.ID]; ok {
		return domain.Errorf(domain.KindBadRequest, "Account already exists")
	}
	if account.Level == 0 {
		account.Level = domain.LevelFor(account.TotalPoints)
	}
	l.accounts[account.ID] = account
	return nil
}

func (l *UserLedger) Get(_ context.Context, userID string) (domain.UserAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[userID]
	if !ok {
		return domain.UserAccount{}, domain.ErrUserNotFound
	}
	return account, nil
}

func (l *UserLedger) UpdateProfile(_ context.Context, userID string, update domain.ProfileUpdate) (domain.UserAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[userID]
	if !ok {
		return domain.UserAccount{}, domain.ErrUserNotFound
	}
	account = update.Apply(account)
	l.accounts[userID] = account
	return account, nil
}

func (l *UserLedger) ApplyReward(_ context.Context, userID, quizID string, result domain.GradingResult) (domain.UserAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[userID]
	if !ok {
		return domain.UserAccount{}, domain.ErrUserNotFound
	}
	account = account.WithReward(result, l.clock())
	l.accounts[userID] = account
	l.putProgressLocked(userID, domain.NewProgressItem(quizID, result))
	return account, nil
}

func (l *UserLedger) SpendPoints(_ context.Context, userID string, amount int) (domain.UserAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[userID]
	if !ok {
		return domain.UserAccount{}, domain.ErrUserNotFound
	}
	next, err := account.WithSpend(amount)
	if err != nil {
		return account, err
	}
	l.accounts[userID] = next
	return next, nil
}

func (l *UserLedger) Progress(_ context.Context, userID string, limit int) ([]domain.ProgressItem, error) {
	l.mu.Lock()
	items := make([]domain.ProgressItem, len(l.progress[userID]))
	copy(items, l.progress[userID])
	l.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CompletedAt.After(items[j].CompletedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (l *UserLedger) ProgressStats(_ context.Context, userID string) (domain.ProgressStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := l.progress[userID]
	if len(items) == 0 {
		return domain.ProgressStats{}, nil
	}
	sum := 0
	for _, item := range items {
		sum += item.Score
	}
	return domain.ProgressStats{
		QuizzesCompleted: len(items),
		AverageScore:     float64(sum) / float64(len(items)),
	}, nil
}

// putProgressLocked replaces the item for the same quiz, keyed by (user, quiz).
func (l *UserLedger) putProgressLocked(userID string, item domain.ProgressItem) {
	items := l.progress[userID]
	for i := range items {
		if items[i].QuizID == item.QuizID {
			items[i] = item
			return
		}
	}
	l.progress[userID] = append(items, item)
}
