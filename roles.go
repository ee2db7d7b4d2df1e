package userauth

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Role is a single role code. The wire and storage encoding is one
// character per role; keep the codes behind these constants.
type Role string

const (
	// RoleAdmin grants account-management operations.
	RoleAdmin Role = "A"
	// RoleUser is the baseline authenticated role.
	RoleUser Role = "U"
)

// IsValid reports whether r is a recognized role code.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// RoleSet is an account's role collection, encoded as a string of role
// codes ("UA" holds both roles). The set travels inside access-token
// claims, so permission checks never need a store lookup.
type RoleSet string

// DefaultRoleSet is assigned to accounts provisioned without explicit
// roles.
const DefaultRoleSet = RoleSet(RoleUser)

// ParseRoleSet validates an encoded role string.
func ParseRoleSet(encoded string) (RoleSet, error) {
	rs := RoleSet(encoded)
	if err := rs.Validate(); err != nil {
		return "", err
	}
	return rs, nil
}

// Validate checks that the set is non-empty and every code is known.
func (rs RoleSet) Validate() error {
	if rs == "" {
		return goerrors.New("role set must not be empty", goerrors.CategoryValidation).
			WithTextCode("INVALID_ROLE")
	}
	for _, c := range rs {
		if !Role(c).IsValid() {
			return goerrors.New(fmt.Sprintf("%q is not a valid role", string(c)), goerrors.CategoryValidation).
				WithTextCode("INVALID_ROLE").
				WithMetadata(map[string]any{"role": string(c)})
		}
	}
	return nil
}

// Has reports whether the set contains the given role.
func (rs RoleSet) Has(r Role) bool {
	return strings.Contains(string(rs), string(r))
}

// Add returns a set containing r. Adding a role twice is a no-op.
func (rs RoleSet) Add(r Role) RoleSet {
	if rs.Has(r) {
		return rs
	}
	return rs + RoleSet(r)
}

// Roles expands the set into individual roles.
func (rs RoleSet) Roles() []Role {
	out := make([]Role, 0, len(rs))
	for _, c := range rs {
		out = append(out, Role(c))
	}
	return out
}

// Allows evaluates a requirement against the set.
func (rs RoleSet) Allows(req Requirement) bool {
	if req == nil {
		return false
	}
	return req.Allows(rs)
}

// Requirement is a composable permission predicate over a role set. It
// is pure: evaluation never touches the store, the caller supplies the
// role set from verified access-token claims.
type Requirement interface {
	Allows(rs RoleSet) bool
}

// RequirementFunc adapts a function into a Requirement.
type RequirementFunc func(rs RoleSet) bool

// Allows satisfies the Requirement interface.
func (f RequirementFunc) Allows(rs RoleSet) bool {
	if f == nil {
		return false
	}
	return f(rs)
}

// RequireRole requires a single role to be present.
func RequireRole(r Role) Requirement {
	return RequirementFunc(func(rs RoleSet) bool {
		return rs.Has(r)
	})
}

// AllOf requires every sub-requirement to pass. With no arguments it
// denies.
func AllOf(reqs ...Requirement) Requirement {
	return RequirementFunc(func(rs RoleSet) bool {
		if len(reqs) == 0 {
			return false
		}
		for _, req := range reqs {
			if req == nil || !req.Allows(rs) {
				return false
			}
		}
		return true
	})
}

// AnyOf requires at least one sub-requirement to pass.
func AnyOf(reqs ...Requirement) Requirement {
	return RequirementFunc(func(rs RoleSet) bool {
		for _, req := range reqs {
			if req != nil && req.Allows(rs) {
				return true
			}
		}
		return false
	})
}
