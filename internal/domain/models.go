package domain

import "time"

const (
	// QuestionsPerQuiz is the fixed length of a generated quiz.
	QuestionsPerQuiz = 5
	// OptionsPerQuestion is the fixed number of choices per question.
	OptionsPerQuestion = 4
	// QuizLifetime is how long a quiz stays fresh after creation. Expiry is advisory.
	QuizLifetime = 24 * time.Hour
	// DefaultDifficulty is used when a quiz carries no difficulty.
	DefaultDifficulty = 3
	// PointsPerLevel is the number of points needed to advance one level.
	PointsPerLevel = 100
)

// Question models an MCQ question with exactly one correct option.
type Question struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Difficulty    int      `json:"difficulty"`
	Topic         string   `json:"topic"`
}

// HasOption reports whether answer is one of the question's options.
func (q Question) HasOption(answer string) bool {
	for _, opt := range q.Options {
		if opt == answer {
			return true
		}
	}
	return false
}

// QuizDraft is generated content that has not been stored yet.
type QuizDraft struct {
	UserID     string
	Subject    string
	Difficulty int
	Questions  []Question
}

// Quiz is a stored, user-owned set of questions.
type Quiz struct {
	ID         string     `json:"quizId"`
	UserID     string     `json:"userId"`
	Subject    string     `json:"subject"`
	Difficulty int        `json:"difficulty"`
	Questions  []Question `json:"questions"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}

// NewQuiz stamps a draft with an identifier, its creation time and expiry.
func NewQuiz(id string, draft QuizDraft, now time.Time, lifetime time.Duration) Quiz {
	if lifetime <= 0 {
		lifetime = QuizLifetime
	}
	now = now.UTC()
	return Quiz{
		ID:         id,
		UserID:     draft.UserID,
		Subject:    draft.Subject,
		Difficulty: draft.Difficulty,
		Questions:  draft.Questions,
		CreatedAt:  now,
		ExpiresAt:  now.Add(lifetime),
	}
}

// Expired reports whether the quiz is stale at now.
func (q Quiz) Expired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && now.After(q.ExpiresAt)
}

// GradingResult is the outcome of grading one submission.
type GradingResult struct {
	Score             int       `json:"score"`
	TotalQuestions    int       `json:"totalQuestions"`
	PointsEarned      int       `json:"pointsEarned"`
	StreakIncremented bool      `json:"streakIncremented"`
	Correct           []bool    `json:"correct"`
	Answers           []string  `json:"answers"`
	Message           string    `json:"message"`
	CompletedAt       time.Time `json:"completedAt"`
}

// ProgressItem is the persisted record of a graded submission, keyed by (user, quiz).
type ProgressItem struct {
	QuizID            string    `json:"quizId"`
	Score             int       `json:"score"`
	PointsEarned      int       `json:"pointsEarned"`
	StreakIncremented bool      `json:"streakIncremented"`
	CompletedAt       time.Time `json:"completedAt"`
	Answers           []string  `json:"answers"`
}

// NewProgressItem projects a grading result onto its persisted form.
func NewProgressItem(quizID string, result GradingResult) ProgressItem {
	return ProgressItem{
		QuizID:            quizID,
		Score:             result.Score,
		PointsEarned:      result.PointsEarned,
		StreakIncremented: result.StreakIncremented,
		CompletedAt:       result.CompletedAt,
		Answers:           result.Answers,
	}
}

// ProgressStats aggregates a user's progress history.
type ProgressStats struct {
	QuizzesCompleted int
	AverageScore     float64
}

// UserAccount holds a user's profile and cumulative reward state.
type UserAccount struct {
	ID            string     `json:"userId"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	Avatar        string     `json:"avatar"`
	TotalPoints   int        `json:"totalPoints"`
	CurrentStreak int        `json:"currentStreak"`
	LongestStreak int        `json:"longestStreak"`
	Level         int        `json:"level"`
	LastQuizDate  *time.Time `json:"lastQuizDate"`
	StreakFrozen  bool       `json:"streakFrozen"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// LevelFor derives the display level from a point total.
func LevelFor(totalPoints int) int {
	level := totalPoints/PointsPerLevel + 1
	if level < 1 {
		return 1
	}
	return level
}

// WithReward returns the account after applying a grading result at now.
// A low score never resets the streak; it only fails to extend it.
func (u UserAccount) WithReward(result GradingResult, now time.Time) UserAccount {
	next := u
	if result.StreakIncremented {
		next.CurrentStreak++
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	next.TotalPoints += result.PointsEarned
	next.Level = LevelFor(next.TotalPoints)
	completed := now.UTC()
	next.LastQuizDate = &completed
	return next
}

// WithSpend returns the account after spending amount points and freezing the streak.
func (u UserAccount) WithSpend(amount int) (UserAccount, error) {
	if amount < 0 {
		return u, Errorf(KindBadRequest, "Amount must not be negative")
	}
	if u.TotalPoints < amount {
		return u, ErrInsufficientPoints
	}
	next := u
	next.TotalPoints -= amount
	next.StreakFrozen = true
	next.Level = LevelFor(next.TotalPoints)
	return next, nil
}

// ProfileUpdate carries the externally writable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Username *string
	Avatar   *string
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Username == nil && p.Avatar == nil
}

// Apply copies the set fields onto the account.
func (p ProfileUpdate) Apply(u UserAccount) UserAccount {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	return u
}

// Credential binds a login email to a user and its password hash.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
}

// SubmissionResult is returned to the client after a submission is applied.
type SubmissionResult struct {
	Score             int    `json:"score"`
	TotalQuestions    int    `json:"totalQuestions"`
	PointsEarned      int    `json:"pointsEarned"`
	StreakIncremented bool   `json:"streakIncremented"`
	Correct           []bool `json:"correct"`
	Message           string `json:"message"`
	TotalPoints       int    `json:"totalPoints"`
	CurrentStreak     int    `json:"currentStreak"`
}

// UserStats summarises a user's reward state and history.
type UserStats struct {
	Streak           int     `json:"streak"`
	LongestStreak    int     `json:"longestStreak"`
	TotalPoints      int     `json:"totalPoints"`
	Level            int     `json:"level"`
	QuizzesCompleted int     `json:"quizzesCompleted"`
	AvgScore         float64 `json:"avgScore"`
}

// StreakStatus describes a user's current streak.
type StreakStatus struct {
	CurrentStreak     int        `json:"currentStreak"`
	LongestStreak     int        `json:"longestStreak"`
	LastCompletedDate *time.Time `json:"lastCompletedDate"`
	DaysUntilBreak    int        `json:"daysUntilBreak"`
	StreakFrozen      bool       `json:"streakFrozen"`
}

// FreezeResult is returned after a streak freeze is bought.
type FreezeResult struct {
	Success    bool `json:"success"`
	PointsUsed int  `json:"pointsUsed"`
}
