package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"webnova-quiz-service/internal/app"
	"webnova-quiz-service/internal/auth"
	"webnova-quiz-service/internal/config"
	"webnova-quiz-service/internal/generator"
	"webnova-quiz-service/internal/infra/memory"
	"webnova-quiz-service/internal/infra/postgres"
	redisstore "webnova-quiz-service/internal/infra/redis"
	"webnova-quiz-service/internal/scoring"
	transport "webnova-quiz-service/internal/transport/http"
)

// stack is the fully wired set of services plus the resources to release on exit.
type stack struct {
	services transport.Services
	closers  []func() error
}

func (s *stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildStack selects the backing store once and builds every service on it.
func buildStack(ctx context.Context, cfg config.Config, log *zap.Logger) (*stack, error) {
	st := &stack{}
	quizLifetime := config.TTLDuration(cfg.Quiz.Lifetime, 24*time.Hour)
	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	hasher := auth.BcryptHasher{}

	var (
		store      app.BackingStore
		identities app.IdentityProvider
		gen        app.QuizGenerator
	)

	aiTimeout := config.TTLDuration(cfg.AI.Timeout, 30*time.Second)
	chat := generator.NewChat(generator.ChatConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: aiTimeout,
	}, log)

	if cfg.Demo() {
		fixtures, err := memory.NewFixtureStore(ctx, hasher, quizLifetime)
		if err != nil {
			return nil, fmt.Errorf("seed demo store: %w", err)
		}
		store = fixtures
		identities = auth.DemoTokens{}
		gen = generator.Fixture{}
		if cfg.AI.APIKey != "" {
			gen = chat
		}
		log.Info("running in demo mode", zap.Bool("ai_enabled", cfg.AI.APIKey != ""))
	} else {
		pg, err := postgres.Open(ctx, cfg.Postgres.URL, quizLifetime)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, pg.Close)
		group, err := postgres.Migrate(ctx, pg.DB())
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		if !group.IsZero() {
			log.Info("migrations applied", zap.String("group", group.String()))
		}

		tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
		composed := app.Stores{
			QuizRepo: pg.Quizzes(),
			UserRepo: pg.Users(),
			Boards:   pg.Leaderboards(),
			Creds:    pg.Credentials(),
		}
		if cfg.Redis.Addr != "" {
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			st.closers = append(st.closers, client.Close)
			if err := client.Ping(ctx).Err(); err != nil {
				_ = st.Close()
				return nil, fmt.Errorf("ping redis: %w", err)
			}
			composed.QuizRepo = redisstore.NewQuizCache(client, pg.Quizzes(), cacheTTL)
			composed.Boards = redisstore.NewLeaderboard(client)
			identities = auth.NewTokenManager(cfg.Auth.JWTSecret, tokenTTL, redisstore.NewRevocationStore(client))
		} else {
			composed.QuizRepo = memory.NewQuizCache(pg.Quizzes(), cacheTTL)
			identities = auth.NewTokenManager(cfg.Auth.JWTSecret, tokenTTL, memory.NewRevocationList())
		}
		store = composed
		gen = chat
		log.Info("running with live stores", zap.Bool("redis", cfg.Redis.Addr != ""))
	}

	hub := app.NewLeaderboardHub()
	grader := scoring.NewEngine(scoring.Rules{
		BasePointsPerCorrect: cfg.Scoring.BasePointsPerCorrect,
		DifficultyMultiplier: cfg.Scoring.DifficultyMultiplier,
	})
	st.services = transport.Services{
		Quiz: app.NewQuizService(store, gen, grader, hub, log, app.QuizOptions{
			GenerateTimeout: aiTimeout,
			BoardLimit:      cfg.Leaderboard.Limit,
		}),
		User:        app.NewUserService(store),
		Leaderboard: app.NewLeaderboardService(store, hub, cfg.Leaderboard.Limit),
		Streak:      app.NewStreakService(store, app.NoopDailyCheck{Log: log}, cfg.Streak.FreezeCost, log),
		Auth:        app.NewAuthService(store, identities, hasher, log),
	}
	return st, nil
}
