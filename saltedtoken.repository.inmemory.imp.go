// File: saltedtoken.repository.inmemory.imp.go

package saltedtoken

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryTokenDenylist is an in-memory implementation of TokenDenylist.
// Suitable for development, testing, or single-instance deployments.
type MemoryTokenDenylist struct {
	mu              sync.RWMutex
	denied          map[string]time.Time
	now             func() time.Time
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

// NewMemoryTokenDenylist creates a new in-memory denylist.
// cleanupInterval determines how often expired entries are removed (default: 5 minutes).
func NewMemoryTokenDenylist(cleanupInterval time.Duration) *MemoryTokenDenylist {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	denylist := &MemoryTokenDenylist{
		denied:          make(map[string]time.Time),
		now:             time.Now,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go denylist.periodicCleanup()

	return denylist
}

// Deny stores the token hash until ttl elapses.
func (m *MemoryTokenDenylist) Deny(ctx context.Context, token string, ttl time.Duration) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	tokenHash := hashToken(token)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.denied[tokenHash] = m.now().Add(ttl)
	return nil
}

// IsDenied reports whether the token hash is stored and not yet expired.
func (m *MemoryTokenDenylist) IsDenied(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, fmt.Errorf("token cannot be empty")
	}

	tokenHash := hashToken(token)

	m.mu.RLock()
	defer m.mu.RUnlock()

	expiresAt, exists := m.denied[tokenHash]
	if !exists {
		return false, nil
	}

	return !m.now().After(expiresAt), nil
}

// CleanupExpired removes expired entries.
func (m *MemoryTokenDenylist) CleanupExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for hash, expiresAt := range m.denied {
		if now.After(expiresAt) {
			delete(m.denied, hash)
		}
	}

	return nil
}

// periodicCleanup runs background cleanup of expired entries
func (m *MemoryTokenDenylist) periodicCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	ctx := context.Background()

	for {
		select {
		case <-m.stopCleanup:
			return
		case <-ticker.C:
			_ = m.CleanupExpired(ctx)
		}
	}
}

// Close stops the background cleanup goroutine.
func (m *MemoryTokenDenylist) Close() error {
	m.cleanupOnce.Do(func() {
		close(m.stopCleanup)
	})
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryTokenDenylist) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.denied)
}
