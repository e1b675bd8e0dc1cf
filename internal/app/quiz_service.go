package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"webnova-quiz-service/internal/domain"
	"webnova-quiz-service/internal/scoring"
)

const (
	defaultGenerateTimeout = 30 * time.Second
	defaultBoardLimit      = 10
	rewardAttempts         = 4
)

// GenerateRequest is the input of a quiz generation.
type GenerateRequest struct {
	Subject    string
	Difficulty int
	LastScore  float64
}

// QuizOptions tune QuizService. Zero values fall back to defaults.
type QuizOptions struct {
	GenerateTimeout time.Duration
	BoardLimit      int
	// RetryBackoff builds the backoff used when reward application conflicts.
	RetryBackoff func() backoff.BackOff
}

// QuizService contains the quiz generation and submission use cases.
type QuizService struct {
	quizzes   QuizRepository
	users     UserLedger
	boards    Leaderboard
	generator QuizGenerator
	grader    *scoring.Engine
	hub       *LeaderboardHub
	log       *zap.Logger
	opts      QuizOptions
}

func NewQuizService(store BackingStore, generator QuizGenerator, grader *scoring.Engine, hub *LeaderboardHub, log *zap.Logger, opts QuizOptions) *QuizService {
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = defaultGenerateTimeout
	}
	if opts.BoardLimit <= 0 {
		opts.BoardLimit = defaultBoardLimit
	}
	if opts.RetryBackoff == nil {
		opts.RetryBackoff = defaultRetryBackoff
	}
	if hub == nil {
		hub = NewLeaderboardHub()
	}
	return &QuizService{
		quizzes:   store.Quizzes(),
		users:     store.Users(),
		boards:    store.Leaderboards(),
		generator: generator,
		grader:    grader,
		hub:       hub,
		log:       log,
		opts:      opts,
	}
}

func defaultRetryBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 25 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	return backoff.WithMaxRetries(b, rewardAttempts-1)
}

// Generate asks the generator for questions and stores them as a new quiz owned by userID.
func (s *QuizService) Generate(ctx context.Context, userID string, req GenerateRequest) (domain.Quiz, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return domain.Quiz{}, domain.Errorf(domain.KindBadRequest, "Subject is required")
	}
	if req.Difficulty < 1 || req.Difficulty > 5 {
		return domain.Quiz{}, domain.Errorf(domain.KindBadRequest, "Difficulty must be between 1 and 5")
	}
	if req.LastScore < 0 || req.LastScore > 100 {
		return domain.Quiz{}, domain.Errorf(domain.KindBadRequest, "Last score must be between 0 and 100")
	}

	genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerateTimeout)
	defer cancel()
	questions, err := s.generator.Generate(genCtx, subject, req.Difficulty, req.LastScore)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz, err := s.quizzes.Create(ctx, domain.QuizDraft{
		UserID:     userID,
		Subject:    subject,
		Difficulty: req.Difficulty,
		Questions:  questions,
	})
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("store quiz: %w", err)
	}
	s.log.Info("quiz generated",
		zap.String("user_id", userID),
		zap.String("quiz_id", quiz.ID),
		zap.String("subject", subject),
		zap.Int("difficulty", req.Difficulty))
	return quiz, nil
}

// Get returns a stored quiz, including its correct answers.
func (s *QuizService) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	if strings.TrimSpace(quizID) == "" {
		return domain.Quiz{}, domain.Errorf(domain.KindBadRequest, "Quiz id is required")
	}
	return s.quizzes.Get(ctx, quizID)
}

// Submit grades answers, applies the reward and refreshes the leaderboards.
func (s *QuizService) Submit(ctx context.Context, userID, quizID string, answers []string) (domain.SubmissionResult, error) {
	if strings.TrimSpace(quizID) == "" {
		return domain.SubmissionResult{}, domain.Errorf(domain.KindBadRequest, "Quiz id is required")
	}
	if answers == nil {
		return domain.SubmissionResult{}, domain.Errorf(domain.KindBadRequest, "Answers are required")
	}

	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	grading := s.grader.Grade(quiz, answers)

	account, err := s.applyReward(ctx, userID, quizID, grading)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	s.refreshLeaderboards(ctx, account)

	return domain.SubmissionResult{
		Score:             grading.Score,
		TotalQuestions:    grading.TotalQuestions,
		PointsEarned:      grading.PointsEarned,
		StreakIncremented: grading.StreakIncremented,
		Correct:           grading.Correct,
		Message:           grading.Message,
		TotalPoints:       account.TotalPoints,
		CurrentStreak:     account.CurrentStreak,
	}, nil
}

// applyReward retries store conflicts; any other failure is returned immediately.
func (s *QuizService) applyReward(ctx context.Context, userID, quizID string, grading domain.GradingResult) (domain.UserAccount, error) {
	var account domain.UserAccount
	attempt := 0
	op := func() error {
		attempt++
		updated, err := s.users.ApplyReward(ctx, userID, quizID, grading)
		if err == nil {
			account = updated
			return nil
		}
		if errors.Is(err, domain.ErrConflict) {
			s.log.Warn("reward conflict, retrying", zap.String("user_id", userID), zap.Int("attempt", attempt))
			return err
		}
		return backoff.Permanent(err)
	}
	if err := backoff.Retry(op, backoff.WithContext(s.opts.RetryBackoff(), ctx)); err != nil {
		return domain.UserAccount{}, fmt.Errorf("apply reward: %w", err)
	}
	return account, nil
}

// refreshLeaderboards writes the same post-reward totals to every period.
// The reward is already committed at this point, so failures are only logged.
func (s *QuizService) refreshLeaderboards(ctx context.Context, account domain.UserAccount) {
	entry := domain.EntryFor(account)

	g, gctx := errgroup.WithContext(ctx)
	for _, period := range domain.Periods {
		period := period
		g.Go(func() error {
			if err := s.boards.Upsert(gctx, period, entry); err != nil {
				return fmt.Errorf("upsert %s leaderboard: %w", period, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("leaderboard refresh failed", zap.String("user_id", account.ID), zap.Error(err))
		return
	}

	for _, period := range domain.Periods {
		if !s.hub.HasSubscribers(period) {
			continue
		}
		top, err := s.boards.Top(ctx, period, s.opts.BoardLimit)
		if err != nil {
			s.log.Warn("leaderboard snapshot failed", zap.String("period", string(period)), zap.Error(err))
			continue
		}
		s.hub.Publish(period, top)
	}
}
