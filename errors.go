package userauth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced alongside domain errors. Transport layers should
// branch on these rather than on error messages.
const (
	TextCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	TextCodeAccountDeactivated     = "ACCOUNT_DEACTIVATED"
	TextCodePasswordChangeRequired = "PASSWORD_CHANGE_REQUIRED"
	TextCodeWrongPassword          = "WRONG_PASSWORD"
	TextCodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	TextCodeAdminProtected         = "ADMIN_PROTECTED"
	TextCodeTokenExpired           = "TOKEN_EXPIRED"
	TextCodeTokenMalformed         = "TOKEN_MALFORMED"
	TextCodeTokenRevoked           = "TOKEN_REVOKED"
	TextCodeWrongTokenKind         = "WRONG_TOKEN_KIND"
	TextCodeLogoutFailed           = "LOGOUT_FAILED"
	TextCodeNotFound               = "NOT_FOUND"
	TextCodeBackendUnavailable     = "BACKEND_UNAVAILABLE"
)

// ErrInvalidCredentials covers both unknown usernames and password
// mismatches so callers cannot probe which accounts exist.
var ErrInvalidCredentials = goerrors.New("invalid username or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountDeactivated is returned when the account state blocks login
// or refresh.
var ErrAccountDeactivated = goerrors.New("account is deactivated, contact support", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountDeactivated).
	WithCode(goerrors.CodeForbidden)

// ErrPasswordChangeRequired blocks token issuance until the account
// replaces its provisioned password.
var ErrPasswordChangeRequired = goerrors.New("password change required before login", goerrors.CategoryAuth).
	WithTextCode(TextCodePasswordChangeRequired).
	WithCode(goerrors.CodeForbidden)

// ErrWrongPassword is the change-password rejection for a bad current
// password.
var ErrWrongPassword = goerrors.New("wrong password", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the hasher-level mismatch. The engine
// maps it to ErrInvalidCredentials or ErrWrongPassword depending on the
// operation.
var ErrMismatchedHashAndPassword = goerrors.New("hashed password does not match", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidStateTransition is returned when a requested lifecycle
// change is not allowed from the current state.
var ErrInvalidStateTransition = goerrors.New("invalid account state transition", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidStateTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrAdminProtected rejects deactivation of accounts holding the Admin
// role.
var ErrAdminProtected = goerrors.New("cannot deactivate an account with the admin role", goerrors.CategoryAuthz).
	WithTextCode(TextCodeAdminProtected).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned for tokens past their expiry claim.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures, wrong issuer or audience,
// and undecodable payloads.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenRevoked is returned when a refresh token's jti is present in
// the revocation store, typically after rotation or logout.
var ErrTokenRevoked = goerrors.New("token has been revoked", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(goerrors.CodeUnauthorized)

// ErrWrongTokenKind rejects a structurally valid token presented where
// the other kind was expected, e.g. an access token sent to Refresh.
var ErrWrongTokenKind = goerrors.New("unexpected token kind", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongTokenKind).
	WithCode(goerrors.CodeUnauthorized)

// ErrLogoutFailed is returned when a refresh token verifies but carries
// no usable identity, e.g. a token minted from a null subject.
var ErrLogoutFailed = goerrors.New("logout failed", goerrors.CategoryBadInput).
	WithTextCode(TextCodeLogoutFailed).
	WithCode(goerrors.CodeBadRequest)

// ErrNotFound is the canonical missing-record error. UserStore
// implementations must return it (or wrap it) for absent users.
var ErrNotFound = goerrors.New("record not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(goerrors.CodeNotFound)

// IsTokenExpiredError reports whether err is an expiry rejection,
// covering both structured errors and raw jwt library messages.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError reports whether err is a malformed-token rejection.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed")
}

// IsBackendUnavailableError reports whether err is an infrastructure
// failure rather than a domain rejection.
func IsBackendUnavailableError(err error) bool {
	return hasTextCode(err, TextCodeBackendUnavailable)
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// backendError wraps a collaborator failure so it is surfaced as a
// generic outage instead of being misreported as a domain rejection.
// Domain errors already raised by a collaborator pass through untouched.
func backendError(err error, msg string) error {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" && rich.TextCode != TextCodeBackendUnavailable {
		return rich
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(TextCodeBackendUnavailable).
		WithCode(goerrors.CodeInternal)
}
