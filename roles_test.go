package userauth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userauth "github.com/arkead/go-userauth"
)

func TestParseRoleSet(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantErr bool
	}{
		{name: "single user role", encoded: "U"},
		{name: "single admin role", encoded: "A"},
		{name: "both roles", encoded: "UA"},
		{name: "empty set", encoded: "", wantErr: true},
		{name: "unknown code", encoded: "UX", wantErr: true},
		{name: "lowercase code", encoded: "u", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := userauth.ParseRoleSet(tt.encoded)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userauth.RoleSet(tt.encoded), rs)
		})
	}
}

func TestRoleSetHasAndAdd(t *testing.T) {
	rs := userauth.RoleSet("U")

	assert.True(t, rs.Has(userauth.RoleUser))
	assert.False(t, rs.Has(userauth.RoleAdmin))

	rs = rs.Add(userauth.RoleAdmin)
	assert.True(t, rs.Has(userauth.RoleAdmin))

	// adding twice is a no-op
	assert.Equal(t, rs, rs.Add(userauth.RoleAdmin))

	assert.Equal(t, []userauth.Role{userauth.RoleUser, userauth.RoleAdmin}, rs.Roles())
}

func TestRequirements(t *testing.T) {
	admin := userauth.RequireRole(userauth.RoleAdmin)
	user := userauth.RequireRole(userauth.RoleUser)

	tests := []struct {
		name    string
		roles   userauth.RoleSet
		req     userauth.Requirement
		allowed bool
	}{
		{name: "admin passes admin check", roles: "A", req: admin, allowed: true},
		{name: "user fails admin check", roles: "U", req: admin, allowed: false},
		{name: "authenticated and admin", roles: "UA", req: userauth.AllOf(user, admin), allowed: true},
		{name: "all-of fails on missing role", roles: "U", req: userauth.AllOf(user, admin), allowed: false},
		{name: "any-of passes on one role", roles: "U", req: userauth.AnyOf(admin, user), allowed: true},
		{name: "any-of fails on none", roles: "A", req: userauth.AnyOf(userauth.RequireRole(userauth.RoleUser)), allowed: false},
		{name: "empty all-of denies", roles: "UA", req: userauth.AllOf(), allowed: false},
		{name: "empty any-of denies", roles: "UA", req: userauth.AnyOf(), allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.roles.Allows(tt.req))
		})
	}
}

func TestRequirementNilSafety(t *testing.T) {
	assert.False(t, userauth.RoleSet("UA").Allows(nil))
	assert.False(t, userauth.AllOf(nil, userauth.RequireRole(userauth.RoleUser)).Allows("U"))
	assert.True(t, userauth.AnyOf(nil, userauth.RequireRole(userauth.RoleUser)).Allows("U"))
}
