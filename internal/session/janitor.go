package session

import (
	"context"
	"time"

	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
)

// Purger is implemented by stores that do not expire entries on their own
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RunJanitor purges expired sessions every interval until ctx is done.
// Stores without a Purger (Redis expires keys itself) return immediately.
func RunJanitor(ctx context.Context, store Store, interval time.Duration) error {
	p, ok := store.(Purger)
	if !ok || interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("Failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("Purged expired sessions", "count", n)
			}
		}
	}
}

var _ Purger = (*MemoryStore)(nil)
