package usage

import (
	"context"
	"sync"
	"time"

	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
)

// DefaultDailyLimit is the number of AI requests an account may make per day
const DefaultDailyLimit = 10

// Quota is the outcome of taking one request from the daily allowance.
type Quota struct {
	Allowed   bool
	Unlimited bool
	Limit     int
	Used      int
	Remaining int
}

// Purger is implemented by counters that keep earlier days around
type Purger interface {
	PurgeBefore(ctx context.Context, day string) (int64, error)
}

// Limiter enforces a per-account daily limit. Days follow the configured
// time zone. A limit of zero or less disables it.
type Limiter struct {
	counter Counter
	limit   int
	loc     *time.Location
	now     func() time.Time

	mu      sync.Mutex
	lastDay string
}

func NewLimiter(counter Counter, limit int, loc *time.Location) *Limiter {
	if loc == nil {
		loc = time.UTC
	}
	return &Limiter{counter: counter, limit: limit, loc: loc, now: time.Now}
}

// Limit returns the daily limit
func (l *Limiter) Limit() int {
	return l.limit
}

// Take counts one request of telegramID against today's allowance.
// A nil Limiter allows everything.
func (l *Limiter) Take(ctx context.Context, telegramID int64) (Quota, error) {
	if l == nil || l.limit <= 0 {
		return Quota{Allowed: true, Unlimited: true}, nil
	}

	day := l.now().In(l.loc).Format(DayLayout)
	l.rollover(ctx, day)

	used, err := l.counter.Increment(ctx, telegramID, day)
	if err != nil {
		return Quota{}, err
	}
	if used > l.limit {
		logger.WithContext(ctx).Info("AI usage limit reached", "telegram_id", telegramID, "limit", l.limit)
		return Quota{Limit: l.limit, Used: l.limit}, nil
	}
	return Quota{Allowed: true, Limit: l.limit, Used: used, Remaining: l.limit - used}, nil
}

// rollover purges counters of earlier days once per day
func (l *Limiter) rollover(ctx context.Context, day string) {
	p, ok := l.counter.(Purger)
	if !ok {
		return
	}
	l.mu.Lock()
	if l.lastDay == day {
		l.mu.Unlock()
		return
	}
	l.lastDay = day
	l.mu.Unlock()

	if n, err := p.PurgeBefore(ctx, day); err != nil {
		logger.WithContext(ctx).Warn("Failed to purge old AI usage counters", "error", err)
	} else if n > 0 {
		logger.WithContext(ctx).Debug("Purged old AI usage counters", "count", n)
	}
}
