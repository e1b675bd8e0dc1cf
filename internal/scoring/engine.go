// Package scoring grades quiz submissions and computes their reward.
package scoring

import (
	"math"
	"time"

	"webnova-quiz-service/internal/domain"
)

const (
	// PassingScore is the minimum score that extends a streak.
	PassingScore = 60

	passMessage = "Great job!"
	failMessage = "Keep practicing!"
)

// Rules parameterise the reward formula.
type Rules struct {
	BasePointsPerCorrect int
	DifficultyMultiplier float64
}

// DefaultRules returns 5 points per correct answer and a 1.5x multiplier step.
func DefaultRules() Rules {
	return Rules{BasePointsPerCorrect: 5, DifficultyMultiplier: 1.5}
}

// Engine grades submissions. It is safe for concurrent use.
type Engine struct {
	rules Rules
	now   func() time.Time
}

func NewEngine(rules Rules) *Engine {
	return NewEngineWithClock(rules, time.Now)
}

// NewEngineWithClock allows deterministic completion timestamps in tests.
func NewEngineWithClock(rules Rules, now func() time.Time) *Engine {
	if rules.BasePointsPerCorrect == 0 && rules.DifficultyMultiplier == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules, now: now}
}

// Grade compares answers against the quiz positionally. Missing answers count as wrong.
func (e *Engine) Grade(quiz domain.Quiz, answers []string) domain.GradingResult {
	total := len(quiz.Questions)
	correct := make([]bool, total)
	correctCount := 0
	for i, q := range quiz.Questions {
		if i >= len(answers) {
			continue
		}
		if answers[i] == q.CorrectAnswer {
			correct[i] = true
			correctCount++
		}
	}

	denominator := total
	if denominator < 1 {
		denominator = 1
	}
	score := int(math.Round(float64(correctCount) / float64(denominator) * 100))

	// The quiz-level difficulty drives the multiplier, not a mean of per-question values.
	difficulty := quiz.Difficulty
	if difficulty == 0 {
		difficulty = domain.DefaultDifficulty
	}
	factor := 1 + float64(difficulty-1)*(e.rules.DifficultyMultiplier-1)
	points := int(float64(correctCount*e.rules.BasePointsPerCorrect) * factor)

	passed := score >= PassingScore
	message := failMessage
	if passed {
		message = passMessage
	}

	submitted := make([]string, len(answers))
	copy(submitted, answers)

	return domain.GradingResult{
		Score:             score,
		TotalQuestions:    total,
		PointsEarned:      points,
		StreakIncremented: passed,
		Correct:           correct,
		Answers:           submitted,
		Message:           message,
		CompletedAt:       e.now().UTC(),
	}
}
