package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"webnova-quiz-service/internal/app"
	"webnova-quiz-service/internal/domain"
)

// QuizCache keeps whole quizzes in Redis as JSON and falls back to the
// backing repository on a miss:
//
//	SET quiz:{quizID} <json> EX ttl
type QuizCache struct {
	client *redis.Client
	next   app.QuizRepository
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizCache(client *redis.Client, next app.QuizRepository, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		next:   next,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create writes through to the backing repository and warms the cache.
func (c *QuizCache) Create(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	quiz, err := c.next.Create(ctx, draft)
	if err != nil {
		return domain.Quiz{}, err
	}
	c.store(ctx, quiz)
	return quiz, nil
}

func (c *QuizCache) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.load(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Another caller may have filled the key while we waited.
		if quiz, ok := c.load(ctx, quizID); ok {
			return quiz, nil
		}
		quiz, err := c.next.Get(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.store(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) load(ctx context.Context, quizID string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, quizKey(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

// store is best effort: a failed write only costs a later cache miss.
func (c *QuizCache) store(ctx context.Context, quiz domain.Quiz) {
	if c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, quizKey(quiz.ID), raw, c.ttlWithJitter()).Err()
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func quizKey(quizID string) string {
	return "quiz:" + quizID
}

// isMiss reports whether err is a plain key miss.
func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func wrap(op string, err error) error {
	return fmt.Errorf("redis %s: %w", op, err)
}
