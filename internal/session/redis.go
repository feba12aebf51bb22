package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
)

// RedisStore keeps sessions in Redis with a TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(redisHost, redisPort string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(telegramID int64) string {
	return fmt.Sprintf("user:%d:session", telegramID)
}

// Get returns the stored user
func (s *RedisStore) Get(ctx context.Context, telegramID int64) (*domain.User, error) {
	data, err := s.client.Get(ctx, sessionKey(telegramID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("corrupt session payload: %w", err))
	}
	return &user, nil
}

// Set replaces the stored user and renews the TTL
func (s *RedisStore) Set(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	if err := s.client.Set(ctx, sessionKey(user.TelegramID), data, s.ttl).Err(); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// Delete removes the stored user
func (s *RedisStore) Delete(ctx context.Context, telegramID int64) error {
	if err := s.client.Del(ctx, sessionKey(telegramID)).Err(); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Client exposes the underlying connection so other components can share it
func (s *RedisStore) Client() *redis.Client {
	return s.client
}
