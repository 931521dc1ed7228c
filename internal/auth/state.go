package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const stateTTL = 10 * time.Minute

// StateManager tracks one-time OAuth state tokens to defend the
// callback against CSRF.
type StateManager struct {
	states map[string]stateEntry
	mutex  sync.Mutex
}

type stateEntry struct {
	createdAt time.Time
	provider  string
	userAgent string
}

var globalStateManager *StateManager

func init() {
	globalStateManager = NewStateManager()
	go globalStateManager.runCleanup()
}

func NewStateManager() *StateManager {
	return &StateManager{
		states: make(map[string]stateEntry),
	}
}

// GenerateState creates a new state token and stores it for validation.
func (sm *StateManager) GenerateState(provider, userAgent string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	state := base64.URLEncoding.EncodeToString(b)

	sm.mutex.Lock()
	sm.states[state] = stateEntry{
		createdAt: time.Now(),
		provider:  provider,
		userAgent: userAgent,
	}
	sm.mutex.Unlock()

	return state, nil
}

// ValidateState checks the state token and consumes it. Tokens are
// single-use regardless of outcome.
func (sm *StateManager) ValidateState(state, provider, userAgent string) error {
	logger := slog.With("component", "state_manager", "provider", provider)

	if state == "" {
		return fmt.Errorf("state token is required")
	}

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	entry, exists := sm.states[state]
	if !exists {
		logger.Warn("Invalid or expired state token")
		return fmt.Errorf("invalid or expired state token")
	}
	delete(sm.states, state)

	if time.Since(entry.createdAt) > stateTTL {
		logger.Warn("Expired state token", "created_at", entry.createdAt)
		return fmt.Errorf("state token has expired")
	}

	if entry.provider != provider {
		logger.Warn("State token provider mismatch",
			"expected_provider", entry.provider,
			"received_provider", provider)
		return fmt.Errorf("state token provider mismatch")
	}

	if entry.userAgent != userAgent {
		logger.Warn("State token user agent mismatch",
			"stored_user_agent", entry.userAgent,
			"received_user_agent", userAgent)
	}

	return nil
}

func (sm *StateManager) runCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sm.mutex.Lock()
		now := time.Now()
		for state, entry := range sm.states {
			if now.Sub(entry.createdAt) > stateTTL {
				delete(sm.states, state)
			}
		}
		sm.mutex.Unlock()
	}
}

func GenerateOAuthState(provider, userAgent string) (string, error) {
	return globalStateManager.GenerateState(provider, userAgent)
}

func ValidateOAuthState(state, provider, userAgent string) error {
	return globalStateManager.ValidateState(state, provider, userAgent)
}
