package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
)

// DefaultStateTTL bounds how long an unfinished conversation is remembered
const DefaultStateTTL = 24 * time.Hour

const redisTimeout = 3 * time.Second

// RedisManager keeps conversation states in Redis so they survive restarts
type RedisManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisManager wraps a client shared with the session store
func NewRedisManager(client *redis.Client, ttl time.Duration) *RedisManager {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisManager{client: client, ttl: ttl}
}

func stateKey(userID int64) string {
	return fmt.Sprintf("user:%d:state", userID)
}

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	if state == None {
		m.ClearUserState(userID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := m.client.Set(ctx, stateKey(userID), state, m.ttl).Err(); err != nil {
		logger.Warn("Failed to store user state", "telegram_id", userID, "error", err)
	}
}

// GetUserState gets the state for a user. Lookup failures read as None.
func (m *RedisManager) GetUserState(userID int64) string {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	val, err := m.client.Get(ctx, stateKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return None
	}
	if err != nil {
		logger.Warn("Failed to read user state", "telegram_id", userID, "error", err)
		return None
	}
	return val
}

// ClearUserState clears the state for a user
func (m *RedisManager) ClearUserState(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := m.client.Del(ctx, stateKey(userID)).Err(); err != nil {
		logger.Warn("Failed to clear user state", "telegram_id", userID, "error", err)
	}
}

var _ StateManager = (*RedisManager)(nil)
