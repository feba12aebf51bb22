package session

import (
	"context"
	"sync"
	"time"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
)

type memoryEntry struct {
	user      domain.User
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store. A zero ttl never expires.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the stored user
func (s *MemoryStore) Get(_ context.Context, telegramID int64) (*domain.User, error) {
	s.mu.RLock()
	entry, ok := s.entries[telegramID]
	s.mu.RUnlock()

	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if s.expired(entry) {
		s.mu.Lock()
		// A Set may have landed between the two locks.
		if current, ok := s.entries[telegramID]; ok && s.expired(current) {
			delete(s.entries, telegramID)
		}
		s.mu.Unlock()
		return nil, apperrors.ErrSessionNotFound
	}
	user := entry.user
	return &user, nil
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return s.ttl > 0 && !s.now().Before(e.expiresAt)
}

// Set stores a copy of user, replacing any previous one
func (s *MemoryStore) Set(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[user.TelegramID] = memoryEntry{
		user:      *user,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete removes the stored user
func (s *MemoryStore) Delete(_ context.Context, telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, telegramID)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// PurgeExpired drops expired sessions and reports how many were removed
func (s *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var purged int64
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			purged++
		}
	}
	return purged, nil
}
