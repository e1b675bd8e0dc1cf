package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"webnova-quiz-service/internal/domain"
)

func TestQuizCacheServesRepeatReads(t *testing.T) {
	repo := &countingRepo{QuizRepository: NewQuizRepository(time.Hour)}
	quiz, err := repo.Create(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	cache := NewQuizCache(repo, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := cache.Get(context.Background(), quiz.ID)
		if err != nil {
			t.Fatalf("get quiz: %v", err)
		}
		if got.ID != quiz.ID {
			t.Fatalf("expected %s, got %s", quiz.ID, got.ID)
		}
	}
	if calls := repo.gets(); calls != 1 {
		t.Fatalf("expected one backing read, got %d", calls)
	}
}

func TestQuizCacheCreateWarms(t *testing.T) {
	repo := &countingRepo{QuizRepository: NewQuizRepository(time.Hour)}
	cache := NewQuizCache(repo, time.Minute)

	quiz, err := cache.Create(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if _, err := cache.Get(context.Background(), quiz.ID); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if calls := repo.gets(); calls != 0 {
		t.Fatalf("expected warm cache, got %d backing reads", calls)
	}
}

func TestQuizCacheExpires(t *testing.T) {
	repo := &countingRepo{QuizRepository: NewQuizRepository(time.Hour)}
	quiz, _ := repo.Create(context.Background(), sampleDraft())

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewQuizCache(repo, time.Minute)
	cache.clock = func() time.Time { return now }

	if _, err := cache.Get(context.Background(), quiz.ID); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.Get(context.Background(), quiz.ID); err != nil {
		t.Fatalf("get quiz after ttl: %v", err)
	}
	if calls := repo.gets(); calls != 2 {
		t.Fatalf("expected reload after ttl, got %d backing reads", calls)
	}
}

func TestQuizCacheMissIsNotCached(t *testing.T) {
	repo := &countingRepo{QuizRepository: NewQuizRepository(time.Hour)}
	cache := NewQuizCache(repo, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected quiz not found, got %v", err)
		}
	}
	if calls := repo.gets(); calls != 2 {
		t.Fatalf("expected both misses to reach the repository, got %d", calls)
	}
}

func TestQuizRepositoryStampsQuiz(t *testing.T) {
	repo := NewQuizRepository(time.Hour)
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	repo.clock = func() time.Time { return fixed }

	quiz, err := repo.Create(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if quiz.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !quiz.CreatedAt.Equal(fixed) || !quiz.ExpiresAt.Equal(fixed.Add(time.Hour)) {
		t.Fatalf("unexpected timestamps: %v %v", quiz.CreatedAt, quiz.ExpiresAt)
	}
	got, err := repo.Get(context.Background(), quiz.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if got.Questions[0].CorrectAnswer != "4" {
		t.Fatalf("expected stored questions, got %+v", got.Questions)
	}
}

type countingRepo struct {
	*QuizRepository
	mu    sync.Mutex
	calls int
}

func (r *countingRepo) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.QuizRepository.Get(ctx, quizID)
}

func (r *countingRepo) gets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func sampleDraft() domain.QuizDraft {
	return domain.QuizDraft{
		UserID:     "user-1",
		Subject:    "math",
		Difficulty: 2,
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectAnswer: "4"},
		},
	}
}
