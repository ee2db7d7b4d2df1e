package userauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind tags a token as access or refresh so one kind cannot be
// replayed where the other is expected.
type TokenKind string

const (
	// TokenKindAccess is the short-lived, stateless token.
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh is the long-lived token checked against the
	// revocation store.
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the payload embedded in every token. Access tokens carry
// the username and role set; refresh tokens carry only the subject and
// a unique jti (RegisteredClaims.ID).
type Claims struct {
	jwt.RegisteredClaims
	Username string    `json:"username,omitempty"`
	Roles    RoleSet   `json:"roles,omitempty"`
	Kind     TokenKind `json:"kind,omitempty"`
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.RegisteredClaims.Subject
}

// JTI returns the unique token id used as the revocation key.
func (c *Claims) JTI() string {
	return c.RegisteredClaims.ID
}

// HasRole reports whether the embedded role set contains the role.
func (c *Claims) HasRole(r Role) bool {
	return c.Roles.Has(r)
}

// Allows evaluates a permission requirement against the embedded role
// set. Evaluation is pure and reflects the roles at issuance time.
func (c *Claims) Allows(req Requirement) bool {
	return c.Roles.Allows(req)
}

// Expires returns the expiration time, zero if unset.
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issuance time, zero if unset.
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
