package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"webnova-quiz-service/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            string     `bun:"id,pk"`
	Email         string     `bun:"email"`
	Username      string     `bun:"username"`
	Avatar        string     `bun:"avatar"`
	TotalPoints   int        `bun:"total_points"`
	CurrentStreak int        `bun:"current_streak"`
	LongestStreak int        `bun:"longest_streak"`
	Level         int        `bun:"level"`
	LastQuizDate  *time.Time `bun:"last_quiz_date"`
	StreakFrozen  bool       `bun:"streak_frozen"`
	CreatedAt     time.Time  `bun:"created_at"`
}

func newUserRow(u domain.UserAccount) *userRow {
	return &userRow{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Avatar:        u.Avatar,
		TotalPoints:   u.TotalPoints,
		CurrentStreak: u.CurrentStreak,
		LongestStreak: u.LongestStreak,
		Level:         u.Level,
		LastQuizDate:  u.LastQuizDate,
		StreakFrozen:  u.StreakFrozen,
		CreatedAt:     u.CreatedAt,
	}
}

func (r *userRow) account() domain.UserAccount {
	return domain.UserAccount{
		ID:            r.ID,
		Email:         r.Email,
		Username:      r.Username,
		Avatar:        r.Avatar,
		TotalPoints:   r.TotalPoints,
		CurrentStreak: r.CurrentStreak,
		LongestStreak: r.LongestStreak,
		Level:         r.Level,
		LastQuizDate:  r.LastQuizDate,
		StreakFrozen:  r.StreakFrozen,
		CreatedAt:     r.CreatedAt,
	}
}

type progressRow struct {
	bun.BaseModel `bun:"table:progress,alias:p"`

	UserID            string    `bun:"user_id,pk"`
	QuizID            string    `bun:"quiz_id,pk"`
	Score             int       `bun:"score"`
	PointsEarned      int       `bun:"points_earned"`
	StreakIncremented bool      `bun:"streak_incremented"`
	CompletedAt       time.Time `bun:"completed_at"`
	Answers           []string  `bun:"answers,type:jsonb"`
}

func (r progressRow) item() domain.ProgressItem {
	return domain.ProgressItem{
		QuizID:            r.QuizID,
		Score:             r.Score,
		PointsEarned:      r.PointsEarned,
		StreakIncremented: r.StreakIncremented,
		CompletedAt:       r.CompletedAt,
		Answers:           r.Answers,
	}
}

type credentialRow struct {
	bun.BaseModel `bun:"table:credentials,alias:c"`

	Email        string `bun:"email,pk"`
	UserID       string `bun:"user_id"`
	PasswordHash string `bun:"password_hash"`
}

// entryRow is a leaderboard row. Seq is assigned by the database on first insert.
type entryRow struct {
	bun.BaseModel `bun:"table:leaderboard_entries,alias:le"`

	Period   string `bun:"period,pk"`
	UserID   string `bun:"user_id,pk"`
	Seq      int64  `bun:"seq,nullzero"`
	Username string `bun:"username"`
	Avatar   string `bun:"avatar"`
	Points   int    `bun:"points"`
	Streak   int    `bun:"streak"`
}

func (r entryRow) entry() domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		UserID:   r.UserID,
		Username: r.Username,
		Avatar:   r.Avatar,
		Points:   r.Points,
		Streak:   r.Streak,
	}
}
