package config

import (
	"encoding/hex"
	"time"

	"github.com/jrsteele09/go-flickr-colours/internal/errors"
)

// cookieKeyLength matches the secretbox key size.
const cookieKeyLength = 32

type SecurityConfig interface {
	GetCookieKey() []byte
	GetMaxSessionAge() time.Duration
	GetSessionCookieName() string
	GetEnableRateLimiting() bool
	GetLoginRateLimit() float64
	GetLoginRateBurst() int
}

type Security struct {
	CookieKeyHex       string        `envconfig:"COOKIE_KEY" required:"true"`
	MaxSessionAge      time.Duration `envconfig:"SESSION_MAX_AGE" default:"24h"`
	SessionCookieName  string        `envconfig:"SESSION_COOKIE_NAME" default:"session"`
	EnableRateLimiting bool          `envconfig:"LOGIN_RATE_LIMITING" default:"true"`
	LoginRateLimit     float64       `envconfig:"LOGIN_RATE_LIMIT" default:"1"`
	LoginRateBurst     int           `envconfig:"LOGIN_RATE_BURST" default:"5"`

	cookieKey []byte
}

var _ SecurityConfig = Security{}

func (s *Security) decodeCookieKey() error {
	key, err := hex.DecodeString(s.CookieKeyHex)
	if err != nil {
		return errors.Wrapf(errors.ErrConfig, "COOKIE_KEY is not hex: %v", err)
	}
	if len(key) != cookieKeyLength {
		return errors.Wrapf(errors.ErrConfig, "COOKIE_KEY must decode to %d bytes, got %d", cookieKeyLength, len(key))
	}
	s.cookieKey = key
	return nil
}

func (s Security) GetCookieKey() []byte {
	return s.cookieKey
}

func (s Security) GetMaxSessionAge() time.Duration {
	return s.MaxSessionAge
}

func (s Security) GetSessionCookieName() string {
	return s.SessionCookieName
}

func (s Security) GetEnableRateLimiting() bool {
	return s.EnableRateLimiting
}

func (s Security) GetLoginRateLimit() float64 {
	return s.LoginRateLimit
}

func (s Security) GetLoginRateBurst() int {
	return s.LoginRateBurst
}
