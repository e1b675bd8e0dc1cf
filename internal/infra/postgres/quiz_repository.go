package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"webnova-quiz-service/internal/domain"
)

// QuizRepository keeps quizzes as JSONB documents.
type QuizRepository struct {
	pool     *pgxpool.Pool
	lifetime time.Duration
	clock    func() time.Time
}

func NewQuizRepository(pool *pgxpool.Pool, lifetime time.Duration) *QuizRepository {
	return &QuizRepository{pool: pool, lifetime: lifetime, clock: time.Now}
}

func (r *QuizRepository) Create(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	quiz := domain.NewQuiz(uuid.NewString(), draft, r.clock(), r.lifetime)
	raw, err := json.Marshal(quiz)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO quizzes (id, user_id, data, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		quiz.ID, quiz.UserID, raw, quiz.CreatedAt, quiz.ExpiresAt)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return quiz, nil
}

func (r *QuizRepository) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
