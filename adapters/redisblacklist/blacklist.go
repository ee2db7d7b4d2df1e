// Package redisblacklist implements the userauth revocation store on
// Redis, for deployments where revocations must be shared across
// instances. Entries carry a TTL equal to the token's remaining
// lifetime, so Redis garbage-collects them at natural expiry and no
// sweep is needed.
package redisblacklist

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	goerrors "github.com/goliatone/go-errors"

	userauth "github.com/arkead/go-userauth"
)

const defaultKeyPrefix = "userauth:revoked:"

// Blacklist is a Redis-backed revocation store.
type Blacklist struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ userauth.Blacklist = (*Blacklist)(nil)

// Option customizes construction.
type Option func(*Blacklist)

// WithKeyPrefix overrides the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(b *Blacklist) {
		if prefix != "" {
			b.prefix = prefix
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(b *Blacklist) {
		if clock != nil {
			b.now = clock
		}
	}
}

// New wraps a Redis client.
func New(client *redis.Client, opts ...Option) *Blacklist {
	b := &Blacklist{
		client: client,
		prefix: defaultKeyPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Add records the jti until expiresAt. Re-adding an existing jti just
// overwrites the same key, so revocation stays idempotent. A jti whose
// token has already expired is not recorded, expiry rejects it anyway.
func (b *Blacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if !expiresAt.IsZero() && ttl <= 0 {
		return nil
	}
	if expiresAt.IsZero() {
		ttl = 0 // no expiry claim, keep until deleted
	}

	if err := b.client.Set(ctx, b.key(jti), 1, ttl).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record revocation").
			WithTextCode(userauth.TextCodeBackendUnavailable)
	}
	return nil
}

// Contains reports whether the jti is revoked.
func (b *Blacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "revocation lookup failed").
			WithTextCode(userauth.TextCodeBackendUnavailable)
	}
	return n > 0, nil
}

func (b *Blacklist) key(jti string) string {
	return b.prefix + jti
}
