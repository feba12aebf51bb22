// Package session holds the session-scoped copy of the current user.
package session

import (
	"context"
	"fmt"

	"github.com/vladimiradmaev/diabetes-webapp/internal/config"
	"github.com/vladimiradmaev/diabetes-webapp/internal/database"
	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/repository"
)

// Store keeps one user per Telegram id. Set replaces the stored copy
// wholesale; it never merges fields.
type Store interface {
	Get(ctx context.Context, telegramID int64) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, telegramID int64) error
}

// New builds the store selected by cfg.Session.Backend. The returned close
// function releases the backend's connections.
func New(cfg *config.Config) (Store, func() error, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		s, err := NewRedisStore(cfg.Session.RedisHost, cfg.Session.RedisPort, cfg.Session.TTL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.SessionBackendPostgres:
		db, err := database.NewPostgresDB(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSessionRepository(db, cfg.Session.TTL), func() error { return database.Close(db) }, nil
	case config.SessionBackendMemory, "":
		return NewMemoryStore(cfg.Session.TTL), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*repository.SessionRepository)(nil)

	_ Purger = (*repository.SessionRepository)(nil)
)
