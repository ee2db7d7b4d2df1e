package userauth

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// CreateUserPayload carries the provisioning input for a new account.
type CreateUserPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// Roles is the encoded role string; empty defaults to the baseline
	// user role.
	Roles string `json:"roles"`
}

// Validate checks the payload against the configured password policy.
// No upper password length here: longer input is truncated by the
// hasher, not rejected.
func (p CreateUserPayload) Validate(cfg Config) error {
	cfg = cfg.withDefaults()
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(cfg.MinPasswordLength, 0)),
		validation.Field(&p.Roles, validation.By(validateRoleCodes)),
	)
}

// ChangePasswordPayload carries a password change request.
type ChangePasswordPayload struct {
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}

// Validate enforces the minimum length policy on both passwords. This
// is the caller-facing validation the engine runs before touching the
// store.
func (p ChangePasswordPayload) Validate(cfg Config) error {
	cfg = cfg.withDefaults()
	return validation.ValidateStruct(&p,
		validation.Field(&p.Password, validation.Required, validation.Length(cfg.MinPasswordLength, 0)),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(cfg.MinPasswordLength, 0)),
	)
}

func validateRoleCodes(value any) error {
	encoded, _ := value.(string)
	if encoded == "" {
		return nil
	}
	_, err := ParseRoleSet(encoded)
	return err
}

// CreateUser provisions a new account. New accounts start activated
// with the must-change-password flag set, so the owner has to replace
// the provisioned password before their first login. Duplicate
// usernames or emails surface as a conflict from the store.
func (e *Engine) CreateUser(ctx context.Context, payload CreateUserPayload) (*User, error) {
	if err := payload.Validate(e.cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload")
	}

	roles := RoleSet(payload.Roles)
	if roles == "" {
		roles = DefaultRoleSet
	}

	hash, err := e.hasher.Hash(payload.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:                 uuid.New(),
		Username:           strings.TrimSpace(payload.Username),
		Email:              normalizeEmail(payload.Email),
		PasswordHash:       hash,
		Roles:              roles,
		State:              StateActivated,
		MustChangePassword: true,
	}

	if err := e.store.Save(ctx, user); err != nil {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) && rich.Category == goerrors.CategoryConflict {
			return nil, rich
		}
		e.logger.Error("CreateUser save failed", "username", user.Username, "error", err)
		return nil, backendError(err, "could not create user")
	}

	return user, nil
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}
