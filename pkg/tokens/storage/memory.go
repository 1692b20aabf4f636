package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryBackend implements Backend using in-memory storage.
// All data is lost when the process exits, so every restart puts each
// realm back through the consent flow. Suitable for tests and one-shot
// CLI runs, not for a long-lived server.
//
// MemoryBackend is thread-safe and supports concurrent access using sync.RWMutex.
type MemoryBackend struct {
	// tokens maps realm ID to its stored token set.
	tokens map[string]*Token

	// mu protects access to the tokens map.
	mu sync.RWMutex
}

// NewMemoryBackend creates a new in-memory storage backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tokens: make(map[string]*Token),
	}
}

// Save persists the token set for a realm.
func (m *MemoryBackend) Save(ctx context.Context, token *Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}
	if token.RealmID == "" {
		return fmt.Errorf("realm id cannot be empty")
	}
	if token.AccessToken == "" {
		return fmt.Errorf("access token cannot be empty")
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("refresh token cannot be empty")
	}

	stored := token.clone()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[stored.RealmID] = stored
	return nil
}

// Load retrieves the token set for a realm.
func (m *MemoryBackend) Load(ctx context.Context, realmID string) (*Token, error) {
	if realmID == "" {
		return nil, fmt.Errorf("realm id cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	token, exists := m.tokens[realmID]
	if !exists {
		return nil, nil
	}

	return token.clone(), nil
}

// Delete removes the token set for a realm.
func (m *MemoryBackend) Delete(ctx context.Context, realmID string) error {
	if realmID == "" {
		return fmt.Errorf("realm id cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, realmID)
	return nil
}

// List returns the token sets for all connected realms, ordered by realm ID.
func (m *MemoryBackend) List(ctx context.Context) ([]*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tokens []*Token
	for _, token := range m.tokens {
		tokens = append(tokens, token.clone())
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].RealmID < tokens[j].RealmID
	})

	return tokens, nil
}

// Close releases any resources held by the backend.
func (m *MemoryBackend) Close() error {
	return nil
}

// Size returns the current number of stored token sets.
// This is useful for monitoring and testing.
func (m *MemoryBackend) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}
