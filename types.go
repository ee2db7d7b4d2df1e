package userauth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger is the minimal logging contract consumed by this package.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// UserStore is the durable account record store. Implementations must
// return ErrNotFound (or an error wrapping it) for absent records and
// must be atomic at the single-record level.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Save(ctx context.Context, user *User) error
}

// Blacklist tracks revoked refresh-token ids until their natural
// expiry. Add must be idempotent: revoking an already revoked id
// succeeds. Implementations should let entries lapse once expiresAt has
// passed, a revoked-and-expired token is rejected by expiry anyway.
type Blacklist interface {
	Add(ctx context.Context, jti string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// TokenPair is the result of a successful login or refresh. Refresh is
// empty when rotation is disabled and the caller should keep using the
// token it presented.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] USERAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] USERAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] USERAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] USERAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
