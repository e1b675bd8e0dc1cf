package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"webnova-quiz-service/internal/domain"
)

// QuizRepository is an in-memory quiz store.
type QuizRepository struct {
	lifetime time.Duration
	clock    func() time.Time

	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizRepository(lifetime time.Duration) *QuizRepository {
	return &QuizRepository{
		lifetime: lifetime,
		clock:    time.Now,
		quizzes:  make(map[string]domain.Quiz),
	}
}

func (r *QuizRepository) Create(_ context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	quiz := domain.NewQuiz(uuid.NewString(), draft, r.clock(), r.lifetime)

	r.mu.Lock()
	r.quizzes[quiz.ID] = quiz
	r.mu.Unlock()
	return quiz, nil
}

func (r *QuizRepository) Get(_ context.Context, quizID string) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if quiz, ok := r.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}
