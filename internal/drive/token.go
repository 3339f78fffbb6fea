package drive

import "sync"

// TokenStore holds the access token shared by every authenticated caller.
// Reads copy the current value out under the lock; the copy stays valid for
// the duration of one call even if a concurrent refresh replaces the stored
// value mid-flight. Replacement is last-writer-wins.
type TokenStore struct {
	mu    sync.Mutex
	token string
}

// NewTokenStore creates a store holding the given initial token.
// An empty initial token is allowed; the first Refresh populates it.
func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

// Read returns a snapshot of the current token. The lock is held only for
// the copy, never across I/O.
func (s *TokenStore) Read() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token
}

// Replace atomically swaps the stored token for a new value.
func (s *TokenStore) Replace(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}
