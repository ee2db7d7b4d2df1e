package userauth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt. Input is
// truncated to the configured maximum length before hashing; the same
// bound is applied on verification so passwords longer than the bound
// still authenticate. Empty input is not rejected here, payload
// validation owns that.
type PasswordHasher struct {
	cost      int
	maxLength int
}

// NewPasswordHasher builds a hasher from the configured cost and
// truncation bound. Call after Config defaults have been applied.
func NewPasswordHasher(cfg Config) *PasswordHasher {
	cfg = cfg.withDefaults()
	return &PasswordHasher{
		cost:      cfg.BcryptCost,
		maxLength: cfg.MaxPasswordLength,
	}
}

// Hash generates a salted digest of the (truncated) password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(h.truncate(password), h.cost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(digest), nil
}

// Verify compares the (truncated) password against a stored digest.
// Returns ErrMismatchedHashAndPassword on mismatch.
func (h *PasswordHasher) Verify(password, digest string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(digest), h.truncate(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to compare password and hash")
	}
	return nil
}

func (h *PasswordHasher) truncate(password string) []byte {
	b := []byte(password)
	if h.maxLength > 0 && len(b) > h.maxLength {
		b = b[:h.maxLength]
	}
	return b
}
