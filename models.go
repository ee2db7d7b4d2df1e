package userauth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserState is the account lifecycle state. Transitions are triggered
// only by explicit lifecycle operations, never as a side effect of
// login.
type UserState string

const (
	// StateInitialized is a provisioned account that has not been
	// through activation yet.
	StateInitialized UserState = "initialized"
	// StateLocked is an account frozen by policy (too many attempts,
	// manual lock).
	StateLocked UserState = "locked"
	// StateActivated is the only state that may authenticate.
	StateActivated UserState = "activated"
	// StateDeactivated is an account disabled by an admin.
	StateDeactivated UserState = "deactivated"
)

// IsValid reports whether s is a recognized lifecycle state.
func (s UserState) IsValid() bool {
	switch s {
	case StateInitialized, StateLocked, StateActivated, StateDeactivated:
		return true
	default:
		return false
	}
}

// User is the account record.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID                 uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username           string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email              string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash       string     `bun:"password_hash,notnull" json:"-"`
	Roles              RoleSet    `bun:"roles,notnull" json:"roles,omitempty"`
	State              UserState  `bun:"state,notnull" json:"state,omitempty"`
	MustChangePassword bool       `bun:"must_change_password" json:"must_change_password,omitempty"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureState backfills records persisted before the state column
// existed. Blank means activated, matching the provisioning default.
func (u *User) EnsureState() {
	if u.State == "" {
		u.State = StateActivated
	}
}

// IsActivated reports whether the account may authenticate.
func (u *User) IsActivated() bool {
	u.EnsureState()
	return u.State == StateActivated
}
