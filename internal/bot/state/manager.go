package state

import (
	"strings"
	"sync"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
)

// User states constants
const (
	None              = "none"
	WaitingForGlucose = "waiting_for_glucose"
)

const waitingForFoodPrefix = "waiting_for_food:"

// WaitingForFood is the state of a user asked to describe a meal of type t
func WaitingForFood(t domain.FoodType) string {
	return waitingForFoodPrefix + string(t)
}

// FoodTypeOf returns the meal type a WaitingForFood state carries
func FoodTypeOf(s string) (domain.FoodType, bool) {
	if !strings.HasPrefix(s, waitingForFoodPrefix) {
		return "", false
	}
	return domain.FoodType(strings.TrimPrefix(s, waitingForFoodPrefix)), true
}

// StateManager tracks where each user is in a conversation
type StateManager interface {
	SetUserState(userID int64, state string)
	GetUserState(userID int64) string
	ClearUserState(userID int64)
}

// Manager manages user states in memory
type Manager struct {
	userStates map[int64]string
	mu         sync.RWMutex
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]string),
	}
}

// SetUserState sets the state for a user
func (m *Manager) SetUserState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state == None {
		delete(m.userStates, userID)
		return
	}
	m.userStates[userID] = state
}

// GetUserState gets the state for a user
func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

// ClearUserState clears the state for a user
func (m *Manager) ClearUserState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userStates, userID)
}

var _ StateManager = (*Manager)(nil)
