package memory

import (
	"time"

	"webnova-quiz-service/internal/app"
)

// Store is the in-memory BackingStore used in demo mode and tests.
type Store struct {
	quizzes     *QuizRepository
	users       *UserLedger
	boards      *Leaderboard
	credentials *CredentialStore
}

func NewStore(quizLifetime time.Duration) *Store {
	return &Store{
		quizzes:     NewQuizRepository(quizLifetime),
		users:       NewUserLedger(),
		boards:      NewLeaderboard(),
		credentials: NewCredentialStore(),
	}
}

func (s *Store) Quizzes() app.QuizRepository { return s.quizzes }

func (s *Store) Users() app.UserLedger { return s.users }

func (s *Store) Leaderboards() app.Leaderboard { return s.boards }

func (s *Store) Credentials() app.CredentialStore { return s.credentials }
