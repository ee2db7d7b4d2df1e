package userauth

import (
	"context"
	"sync"
	"time"
)

// NoopBlacklist is the revocation capability when no backing store is
// configured: nothing is recorded and nothing is ever reported revoked.
// Logout and rotation still succeed against it.
type NoopBlacklist struct{}

var _ Blacklist = NoopBlacklist{}

// Add satisfies the Blacklist interface.
func (NoopBlacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	return nil
}

// Contains satisfies the Blacklist interface.
func (NoopBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	return false, nil
}

// MemoryBlacklist is an in-process revocation store. Suitable for a
// single instance or tests; use the Redis adapter when revocations must
// be shared.
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

var _ Blacklist = (*MemoryBlacklist)(nil)

// MemoryBlacklistOption customizes construction.
type MemoryBlacklistOption func(*MemoryBlacklist)

// WithBlacklistClock injects a custom clock (useful for tests).
func WithBlacklistClock(clock func() time.Time) MemoryBlacklistOption {
	return func(b *MemoryBlacklist) {
		if clock != nil {
			b.now = clock
		}
	}
}

// NewMemoryBlacklist creates an empty in-memory revocation store.
func NewMemoryBlacklist(opts ...MemoryBlacklistOption) *MemoryBlacklist {
	b := &MemoryBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Add records the jti until expiresAt. Re-adding is a no-op except that
// a later expiry wins, so a revocation is never shortened.
func (b *MemoryBlacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.entries[jti]; ok && existing.After(expiresAt) {
		return nil
	}
	b.entries[jti] = expiresAt
	return nil
}

// Contains reports whether the jti is revoked. Entries past their
// expiry read as absent.
func (b *MemoryBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if !expiresAt.IsZero() && !expiresAt.After(b.now()) {
		return false, nil
	}
	return true, nil
}

// PurgeExpired drops entries whose tokens have passed their natural
// expiry and returns the number removed. Intended for a periodic sweep
// owned by the host, not by per-request logic.
func (b *MemoryBlacklist) PurgeExpired() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	removed := 0
	for jti, expiresAt := range b.entries {
		if !expiresAt.IsZero() && !expiresAt.After(now) {
			delete(b.entries, jti)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked revocations, expired or not.
func (b *MemoryBlacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
