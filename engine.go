package userauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Engine orchestrates login, refresh, logout, password changes, and
// user provisioning over the store, hasher, codec, and revocation
// collaborators. Each call is one logical unit of work; the engine owns
// no background tasks.
type Engine struct {
	store     UserStore
	hasher    *PasswordHasher
	tokens    *TokenService
	blacklist Blacklist
	cfg       Config
	logger    Logger
	clock     func() time.Time
}

// EngineOption customizes engine construction. Options only record
// their setting; the token service is assembled once after all options
// have been applied, so option order does not matter.
type EngineOption func(*Engine)

// WithLogger overrides the default logger on the engine and its token
// service.
func WithLogger(logger Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithBlacklist attaches a revocation store. Without one the engine
// runs with NoopBlacklist: logout and rotation succeed but nothing is
// tracked.
func WithBlacklist(blacklist Blacklist) EngineOption {
	return func(e *Engine) {
		if blacklist != nil {
			e.blacklist = blacklist
		}
	}
}

// WithClock injects a custom clock into the token service (useful for
// tests).
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithTokenService replaces the token service entirely, ignoring
// WithLogger and WithClock as far as token handling is concerned.
func WithTokenService(ts *TokenService) EngineOption {
	return func(e *Engine) {
		if ts != nil {
			e.tokens = ts
		}
	}
}

// NewEngine builds an engine from the store and configuration.
func NewEngine(store UserStore, cfg Config, opts ...EngineOption) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration")
	}

	e := &Engine{
		store:     store,
		hasher:    NewPasswordHasher(cfg),
		blacklist: NoopBlacklist{},
		cfg:       cfg,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if e.tokens == nil {
		tokenOpts := []TokenServiceOption{WithTokenLogger(e.logger)}
		if e.clock != nil {
			tokenOpts = append(tokenOpts, WithTokenClock(e.clock))
		}
		e.tokens = NewTokenService(cfg, tokenOpts...)
	}

	return e, nil
}

// TokenService returns the codec used by this engine, for callers that
// verify access tokens at the transport boundary.
func (e *Engine) TokenService() *TokenService {
	return e.tokens
}

// Login authenticates username/password and returns an access/refresh
// pair. Validation order is lookup, password, state, flag: password
// verification comes first so account state is not disclosed for bad
// credentials. Unknown usernames and wrong passwords both fail with
// ErrInvalidCredentials.
func (e *Engine) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := e.store.GetByUsername(ctx, username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		e.logger.Error("Login user lookup failed", "error", err)
		return nil, backendError(err, "login user lookup failed")
	}

	if err := e.hasher.Verify(password, user.PasswordHash); err != nil {
		if goerrors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		e.logger.Error("Login password verification failed", "error", err)
		return nil, err
	}

	pair, err := e.issuePair(user)
	if err != nil {
		e.logger.Warn("Login blocked", "username", username, "error", err)
		return nil, err
	}

	return pair, nil
}

// Refresh validates a refresh token and returns a new access token.
// The account state is re-checked against the live record, not the
// claims, since the account may have changed since issuance. With
// rotation enabled the result carries a new refresh token and, when
// blacklist-after-rotation is set, the presented jti is revoked.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := e.tokens.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := e.blacklist.Contains(ctx, claims.JTI())
	if err != nil {
		e.logger.Error("Refresh revocation lookup failed", "error", err)
		return nil, backendError(err, "revocation lookup failed")
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenMalformed.WithMetadata(map[string]any{"claim": "sub"})
	}

	user, err := e.store.GetByID(ctx, userID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrNotFound
		}
		e.logger.Error("Refresh user lookup failed", "error", err)
		return nil, backendError(err, "refresh user lookup failed")
	}

	access, err := e.tokens.IssueAccess(user)
	if err != nil {
		e.logger.Warn("Refresh blocked", "user_id", claims.Subject, "error", err)
		return nil, err
	}

	pair := &TokenPair{Access: access}
	if !e.cfg.RotateOnRefresh {
		return pair, nil
	}

	if e.cfg.BlacklistAfterRotation {
		if err := e.blacklist.Add(ctx, claims.JTI(), claims.Expires()); err != nil {
			e.logger.Error("Refresh rotation blacklist failed", "error", err)
			return nil, backendError(err, "failed to revoke rotated token")
		}
	}

	refresh, err := e.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	pair.Refresh = refresh

	return pair, nil
}

// Logout revokes a refresh token. Revoking an already revoked token
// succeeds, revocation is idempotent. A token that verifies but carries
// no subject fails with ErrLogoutFailed instead of crashing.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	claims, err := e.tokens.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		return err
	}

	if claims.Subject == "" || claims.JTI() == "" {
		return ErrLogoutFailed
	}

	if err := e.blacklist.Add(ctx, claims.JTI(), claims.Expires()); err != nil {
		e.logger.Error("Logout revocation failed", "error", err)
		return backendError(err, "failed to revoke token")
	}

	return nil
}

// ChangePassword verifies the current password, stores a hash of the
// new one, and clears the must-change-password flag.
func (e *Engine) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	payload := ChangePasswordPayload{Password: oldPassword, NewPassword: newPassword}
	if err := payload.Validate(e.cfg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid change password request")
	}

	user, err := e.store.GetByUsername(ctx, username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrNotFound
		}
		e.logger.Error("ChangePassword user lookup failed", "error", err)
		return backendError(err, "change password user lookup failed")
	}

	if err := e.hasher.Verify(oldPassword, user.PasswordHash); err != nil {
		if goerrors.Is(err, ErrMismatchedHashAndPassword) {
			return ErrWrongPassword
		}
		return err
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.MustChangePassword = false

	if err := e.store.Save(ctx, user); err != nil {
		e.logger.Error("ChangePassword save failed", "error", err)
		return backendError(err, "failed to persist new password")
	}

	return nil
}

func (e *Engine) issuePair(user *User) (*TokenPair, error) {
	access, err := e.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}

	refresh, err := e.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}
