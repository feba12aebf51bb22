// Package usage counts AI requests per Telegram account and day.
package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/repository"
	"github.com/vladimiradmaev/diabetes-webapp/internal/session"
)

// DayLayout formats the day keys counters are stored under.
const DayLayout = "2006-01-02"

// Counter increments the request counter of an account for a day and
// returns the new value.
type Counter interface {
	Increment(ctx context.Context, telegramID int64, day string) (int, error)
}

// ForStore picks the counter backend that matches the session store, so
// both share one connection.
func ForStore(store session.Store) Counter {
	switch s := store.(type) {
	case *session.RedisStore:
		return NewRedisCounter(s.Client(), 48*time.Hour)
	case *repository.SessionRepository:
		return repository.NewAIUsageRepository(s.DB())
	default:
		return NewMemoryCounter()
	}
}

// MemoryCounter keeps the counters of the current day in process memory
type MemoryCounter struct {
	mu     sync.Mutex
	day    string
	counts map[int64]int
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[int64]int)}
}

// Increment drops the counters of earlier days when a new day starts
func (c *MemoryCounter) Increment(_ context.Context, telegramID int64, day string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if day != c.day {
		c.day = day
		c.counts = make(map[int64]int)
	}
	c.counts[telegramID]++
	return c.counts[telegramID], nil
}

// RedisCounter uses INCR with an expiry so old days vanish on their own
type RedisCounter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCounter(client *redis.Client, ttl time.Duration) *RedisCounter {
	return &RedisCounter{client: client, ttl: ttl}
}

func counterKey(telegramID int64, day string) string {
	return fmt.Sprintf("user:%d:ai:%s", telegramID, day)
}

func (c *RedisCounter) Increment(ctx context.Context, telegramID int64, day string) (int, error) {
	key := counterKey(telegramID, day)
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	return int(incr.Val()), nil
}

var (
	_ Counter = (*MemoryCounter)(nil)
	_ Counter = (*RedisCounter)(nil)
	_ Counter = (*repository.AIUsageRepository)(nil)
)
