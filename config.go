package userauth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/crypto/bcrypt"
)

// Config is the explicit, immutable configuration for the auth core.
// The host process builds one at startup (from env, files, flags,
// whatever) and passes it into constructors; nothing here reads ambient
// state.
type Config struct {
	// SigningKey is the HS256 shared secret for both token kinds.
	SigningKey []byte
	// Issuer and Audience are embedded in and enforced on every token
	// when set.
	Issuer   string
	Audience []string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// RotateOnRefresh makes Refresh return a new refresh token with a
	// fresh jti. BlacklistAfterRotation additionally revokes the
	// presented token's jti.
	RotateOnRefresh        bool
	BlacklistAfterRotation bool

	MinPasswordLength int
	// MaxPasswordLength is the truncation bound applied before hashing
	// and verification. Capped at 72, bcrypt rejects longer inputs.
	MaxPasswordLength int
	BcryptCost        int
}

const (
	defaultAccessTokenTTL    = 15 * time.Minute
	defaultRefreshTokenTTL   = 7 * 24 * time.Hour
	defaultMinPasswordLength = 8
	defaultMaxPasswordLength = 72
	defaultBcryptCost        = 14
)

// Validate checks the configuration after defaults have been applied.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required),
		validation.Field(&c.AccessTokenTTL, validation.Required),
		validation.Field(&c.RefreshTokenTTL, validation.Required),
		validation.Field(&c.MinPasswordLength, validation.Min(1)),
		validation.Field(&c.MaxPasswordLength, validation.Min(c.MinPasswordLength), validation.Max(72)),
		validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
	)
}

func (c Config) withDefaults() Config {
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = defaultAccessTokenTTL
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	if c.MinPasswordLength == 0 {
		c.MinPasswordLength = defaultMinPasswordLength
	}
	if c.MaxPasswordLength == 0 {
		c.MaxPasswordLength = defaultMaxPasswordLength
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = defaultBcryptCost
	}
	return c
}
