package userauth

import (
	"context"
	"time"
)

// Lifecycle enforces the account state machine and persists
// transitions. Only two edges exist: deactivated accounts may be
// activated and activated accounts may be deactivated. Admin-gating of
// these operations belongs to the permission layer; this type only
// enforces the state invariants, plus the rule that admin-role accounts
// are never deactivated.
type Lifecycle struct {
	store       UserStore
	transitions map[UserState]map[UserState]struct{}
	now         func() time.Time
	logger      Logger
}

// LifecycleOption customizes lifecycle construction.
type LifecycleOption func(*Lifecycle)

// WithLifecycleClock injects a custom clock (useful for tests).
func WithLifecycleClock(clock func() time.Time) LifecycleOption {
	return func(l *Lifecycle) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithLifecycleLogger overrides the default logger.
func WithLifecycleLogger(logger Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLifecycle returns the default implementation backed by the
// provided store.
func NewLifecycle(store UserStore, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store: store,
		transitions: map[UserState]map[UserState]struct{}{
			StateDeactivated: {
				StateActivated: {},
			},
			StateActivated: {
				StateDeactivated: {},
			},
		},
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l
}

// Activate re-enables a deactivated account. Any other starting state,
// including already activated, fails with ErrInvalidStateTransition.
func (l *Lifecycle) Activate(ctx context.Context, user *User) error {
	return l.transition(ctx, user, StateActivated)
}

// Deactivate disables an activated account. Accounts holding the admin
// role fail with ErrAdminProtected regardless of state; any starting
// state other than activated fails with ErrInvalidStateTransition.
func (l *Lifecycle) Deactivate(ctx context.Context, user *User) error {
	if user != nil && user.Roles.Has(RoleAdmin) {
		return ErrAdminProtected
	}
	return l.transition(ctx, user, StateDeactivated)
}

func (l *Lifecycle) transition(ctx context.Context, user *User, target UserState) error {
	if user == nil {
		return ErrInvalidStateTransition.WithMetadata(map[string]any{
			"reason": "user is nil",
			"to":     target,
		})
	}

	user.EnsureState()
	from := user.State

	if !l.canTransition(from, target) {
		return ErrInvalidStateTransition.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	user.State = target
	now := l.now()
	user.UpdatedAt = &now

	if err := l.store.Save(ctx, user); err != nil {
		// leave the in-memory record consistent with the store
		user.State = from
		l.logger.Error("Lifecycle transition save failed", "error", err)
		return backendError(err, "failed to persist state transition")
	}

	l.logger.Info("Account state changed", "user_id", user.ID.String(), "from", from, "to", target)

	return nil
}

func (l *Lifecycle) canTransition(from, to UserState) bool {
	allowed, ok := l.transitions[from]
	if !ok {
		return false
	}
	_, exists := allowed[to]
	return exists
}
