package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"webnova-quiz-service/internal/app"
	"webnova-quiz-service/internal/domain"
)

// QuizCache keeps recently used quizzes in process with TTL to avoid repeated DB hits.
type QuizCache struct {
	next  app.QuizRepository
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(next app.QuizRepository, ttl time.Duration) *QuizCache {
	return &QuizCache{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedQuiz),
	}
}

// Create stores through to the backing repository and warms the cache.
func (c *QuizCache) Create(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	quiz, err := c.next.Create(ctx, draft)
	if err != nil {
		return domain.Quiz{}, err
	}
	c.put(quiz, c.clock())
	return quiz, nil
}

func (c *QuizCache) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(quizID, c.clock()); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		if quiz, ok := c.lookup(quizID, now); ok {
			return quiz, nil
		}

		quiz, err := c.next.Get(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.put(quiz, now)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) lookup(quizID string, now time.Time) (domain.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (c *QuizCache) put(quiz domain.Quiz, now time.Time) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[quiz.ID] = cachedQuiz{quiz: quiz, expiresAt: now.Add(c.ttlWithJitterLocked())}
}

// ttlWithJitterLocked adds up to 10% jitter to spread expirations. Callers hold mu.
func (c *QuizCache) ttlWithJitterLocked() time.Duration {
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
