package app

import (
	"context"
	"time"

	"webnova-quiz-service/internal/domain"
)

// QuizRepository stores generated quizzes. Implementations stamp ids, creation time and expiry.
type QuizRepository interface {
	Create(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error)
	Get(ctx context.Context, quizID string) (domain.Quiz, error)
}

// UserLedger owns accounts and their reward state.
// ApplyReward and SpendPoints must be atomic per user: concurrent calls compose, never overwrite.
type UserLedger interface {
	Create(ctx context.Context, account domain.UserAccount) error
	Get(ctx context.Context, userID string) (domain.UserAccount, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.UserAccount, error)
	ApplyReward(ctx context.Context, userID, quizID string, result domain.GradingResult) (domain.UserAccount, error)
	SpendPoints(ctx context.Context, userID string, amount int) (domain.UserAccount, error)
	Progress(ctx context.Context, userID string, limit int) ([]domain.ProgressItem, error)
	ProgressStats(ctx context.Context, userID string) (domain.ProgressStats, error)
}

// Leaderboard keeps the per-period materialized view of user points.
type Leaderboard interface {
	Upsert(ctx context.Context, period domain.Period, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, period domain.Period, limit int) ([]domain.RankedEntry, error)
	RankOf(ctx context.Context, period domain.Period, userID string) (domain.RankInfo, error)
}

// CredentialStore maps login emails to users.
type CredentialStore interface {
	Create(ctx context.Context, cred domain.Credential) error
	FindByEmail(ctx context.Context, email string) (domain.Credential, error)
	// Delete removes a credential. Deleting an unknown email is not an error.
	Delete(ctx context.Context, email string) error
}

// BackingStore is the single persistence capability selected at startup.
type BackingStore interface {
	Quizzes() QuizRepository
	Users() UserLedger
	Leaderboards() Leaderboard
	Credentials() CredentialStore
}

// Stores composes independently built parts into a BackingStore.
type Stores struct {
	QuizRepo QuizRepository
	UserRepo UserLedger
	Boards   Leaderboard
	Creds    CredentialStore
}

func (s Stores) Quizzes() QuizRepository { return s.QuizRepo }

func (s Stores) Users() UserLedger { return s.UserRepo }

func (s Stores) Leaderboards() Leaderboard { return s.Boards }

func (s Stores) Credentials() CredentialStore { return s.Creds }

// QuizGenerator produces quiz questions for a subject.
type QuizGenerator interface {
	Generate(ctx context.Context, subject string, difficulty int, lastScore float64) ([]domain.Question, error)
}

// IdentityProvider issues and resolves bearer credentials.
type IdentityProvider interface {
	Issue(ctx context.Context, userID string) (string, error)
	ResolveIdentity(ctx context.Context, credential string) (string, error)
	Revoke(ctx context.Context, credential string) error
}

// DailyCheckHook is the externally triggered daily streak job.
type DailyCheckHook interface {
	Run(ctx context.Context, now time.Time) error
}
