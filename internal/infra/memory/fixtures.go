package memory

import (
	"context"
	"fmt"
	"time"

	"webnova-quiz-service/internal/app"
	"webnova-quiz-service/internal/domain"
)

type demoUser struct {
	account  domain.UserAccount
	password string
	lastQuiz time.Duration
}

// demoUsers are listed in leaderboard storage order.
func demoUsers() []demoUser {
	return []demoUser{
		{account: domain.UserAccount{ID: "uid-diana", Email: "diana@webnova.ai", Username: "DianaWins", Avatar: "🏆", TotalPoints: 4500, CurrentStreak: 20, LongestStreak: 30}, password: "DianaAI@2025!", lastQuiz: time.Hour},
		{account: domain.UserAccount{ID: "uid-charlie", Email: "charlie@webnova.ai", Username: "CodeChampion", Avatar: "💻", TotalPoints: 2950, CurrentStreak: 12, LongestStreak: 18}, password: "CharlieCode@2025!", lastQuiz: 20 * time.Hour},
		{account: domain.UserAccount{ID: "uid-demo", Email: "demo@webnova.ai", Username: "QuizMaster", Avatar: "🧠", TotalPoints: 2850, CurrentStreak: 12, LongestStreak: 25}, password: "DemoWebNova@2025!", lastQuiz: 2 * time.Hour},
		{account: domain.UserAccount{ID: "uid-alice", Email: "alice@webnova.ai", Username: "AliceLeads", Avatar: "🎯", TotalPoints: 3200, CurrentStreak: 15, LongestStreak: 20}, password: "AliceQuiz@2025!", lastQuiz: 5 * time.Hour},
		{account: domain.UserAccount{ID: "uid-bob", Email: "bob@webnova.ai", Username: "BobTheBuilder", Avatar: "⚡", TotalPoints: 2100, CurrentStreak: 8, LongestStreak: 12}, password: "BobLearns@2025!", lastQuiz: 8 * time.Hour},
		{account: domain.UserAccount{ID: "uid-evan", Email: "evan@webnova.ai", Username: "SpeedLearner", Avatar: "🚀", TotalPoints: 1200, CurrentStreak: 5, LongestStreak: 9}, password: "EvanQuick@2025!", lastQuiz: 30 * time.Hour},
	}
}

// NewFixtureStore returns a Store seeded with the demo accounts, their
// passwords, all three leaderboards and a short progress history.
func NewFixtureStore(ctx context.Context, hasher app.PasswordHasher, quizLifetime time.Duration) (*Store, error) {
	store := NewStore(quizLifetime)
	now := time.Now().UTC()

	for _, demo := range demoUsers() {
		account := demo.account
		account.Level = domain.LevelFor(account.TotalPoints)
		account.CreatedAt = now.Add(-1000 * time.Hour)
		last := now.Add(-demo.lastQuiz)
		account.LastQuizDate = &last

		hash, err := hasher.Hash(demo.password)
		if err != nil {
			return nil, fmt.Errorf("hash demo password: %w", err)
		}
		if err := store.credentials.Create(ctx, domain.Credential{UserID: account.ID, Email: account.Email, PasswordHash: hash}); err != nil {
			return nil, err
		}
		if err := store.users.Create(ctx, account); err != nil {
			return nil, err
		}
		for _, period := range domain.Periods {
			if err := store.boards.Upsert(ctx, period, domain.EntryFor(account)); err != nil {
				return nil, err
			}
		}
	}

	store.users.mu.Lock()
	store.users.progress["uid-demo"] = []domain.ProgressItem{
		{QuizID: "q1", Score: 90, PointsEarned: 35, CompletedAt: now.Add(-2 * time.Hour)},
		{QuizID: "q2", Score: 85, PointsEarned: 28, CompletedAt: now.Add(-2 * time.Hour)},
		{QuizID: "q3", Score: 80, PointsEarned: 32, CompletedAt: now.Add(-26 * time.Hour)},
	}
	store.users.mu.Unlock()

	return store, nil
}
