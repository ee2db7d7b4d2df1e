package userauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService signs and verifies access and refresh tokens with a
// shared HS256 secret. Verification is side-effect-free and safe for
// concurrent use.
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
	now        func() time.Time
}

// TokenServiceOption customizes token service construction.
type TokenServiceOption func(*TokenService)

// WithTokenLogger overrides the default logger.
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// WithTokenClock injects a custom clock (useful for tests).
func WithTokenClock(clock func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// NewTokenService creates a token service from the configuration.
func NewTokenService(cfg Config, opts ...TokenServiceOption) *TokenService {
	cfg = cfg.withDefaults()

	var aud jwt.ClaimStrings
	if len(cfg.Audience) > 0 {
		aud = make(jwt.ClaimStrings, len(cfg.Audience))
		copy(aud, cfg.Audience)
	}

	ts := &TokenService{
		signingKey: cfg.SigningKey,
		issuer:     cfg.Issuer,
		audience:   aud,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		logger:     defLogger{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// IssueAccess mints a short-lived access token for the user. It fails
// with ErrAccountDeactivated unless the account is activated, and with
// ErrPasswordChangeRequired while the provisioned-password flag is set.
// The username and role set are embedded so downstream permission
// checks need no store lookup.
func (ts *TokenService) IssueAccess(user *User) (string, error) {
	if user == nil {
		return "", goerrors.New("user must not be nil", goerrors.CategoryInternal)
	}

	user.EnsureState()
	if user.State != StateActivated {
		return "", ErrAccountDeactivated
	}
	if user.MustChangePassword {
		return "", ErrPasswordChangeRequired
	}

	claims := ts.newClaims(user, TokenKindAccess, ts.accessTTL)
	claims.Username = user.Username
	claims.Roles = user.Roles

	return ts.sign(claims)
}

// IssueRefresh mints a long-lived refresh token with a fresh jti. State
// preconditions are enforced by the access-token issuance in the same
// flow, not repeated here.
func (ts *TokenService) IssueRefresh(user *User) (string, error) {
	if user == nil {
		return "", goerrors.New("user must not be nil", goerrors.CategoryInternal)
	}

	return ts.sign(ts.newClaims(user, TokenKindRefresh, ts.refreshTTL))
}

// Verify parses raw, checks signature and expiry, and enforces the
// expected kind. Expiry is an absolute timestamp with no extra leeway.
func (ts *TokenService) Verify(raw string, kind TokenKind) (*Claims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(TextCodeTokenMalformed)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService verify could not decode claims")
		return nil, ErrTokenMalformed
	}

	if claims.Kind != kind {
		return nil, ErrWrongTokenKind.WithMetadata(map[string]any{
			"expected": string(kind),
			"got":      string(claims.Kind),
		})
	}

	return claims, nil
}

func (ts *TokenService) newClaims(user *User, kind TokenKind, ttl time.Duration) *Claims {
	now := ts.now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return claims
}

func (ts *TokenService) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
