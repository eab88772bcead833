// Package session keeps per-browser login state in a single cookie. The state
// is encoded as an HS256 JWT (for issue and expiry times) and then sealed with
// NaCl secretbox so the browser can neither read nor alter it.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-flickr-colours/flickr"
	"github.com/jrsteele09/go-flickr-colours/internal/errors"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	DefaultCookieName = "session"
	keyLength         = 32
	nonceLength       = 24
	issuer            = "flickr-colours"
)

type claims struct {
	jwt.RegisteredClaims
	Kind     Kind   `json:"knd"`
	Token    string `json:"tok,omitempty"`
	Secret   string `json:"sec,omitempty"`
	Verifier string `json:"ver,omitempty"`
	FullName string `json:"fn,omitempty"`
	Username string `json:"un,omitempty"`
	NSID     string `json:"nsid,omitempty"`
}

type Store struct {
	cookieName string
	maxAge     time.Duration
	sealKey    [keyLength]byte
	signKey    []byte
	now        func() time.Time
}

type Option func(*Store)

func WithCookieName(name string) Option {
	return func(s *Store) { s.cookieName = name }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore derives independent sealing and signing keys from key, which must be 32 bytes.
func NewStore(key []byte, maxAge time.Duration, opts ...Option) (*Store, error) {
	if len(key) != keyLength {
		return nil, errors.Wrapf(errors.ErrConfig, "[session NewStore] key must be %d bytes", keyLength)
	}
	s := &Store{
		cookieName: DefaultCookieName,
		maxAge:     maxAge,
		signKey:    make([]byte, keyLength),
		now:        time.Now,
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte("session-seal")), s.sealKey[:]); err != nil {
		return nil, fmt.Errorf("[session NewStore] derive seal key: %w", err)
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte("session-sign")), s.signKey); err != nil {
		return nil, fmt.Errorf("[session NewStore] derive sign key: %w", err)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load returns the request's session state. A missing cookie is Anonymous with
// no error; an unreadable or expired cookie is Anonymous with an error.
func (s *Store) Load(r *http.Request) (State, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return Anonymous{}, nil
	}
	state, err := s.Decode(cookie.Value)
	if err != nil {
		return Anonymous{}, err
	}
	return state, nil
}

// Save replaces the session with state. Saving Anonymous clears the cookie.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, state State) error {
	if state == nil || state.Kind() == KindAnonymous {
		s.Clear(w, r)
		return nil
	}
	value, err := s.Encode(state)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.maxAge.Seconds()),
	})
	return nil
}

// Clear deletes the session cookie.
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Store) Encode(state State) (string, error) {
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
		Kind: state.Kind(),
	}
	switch st := state.(type) {
	case Pending:
		c.Token, c.Secret = st.Request.Token, st.Request.Secret
	case Authenticated:
		c.Token, c.Secret = st.Access.Token, st.Access.Secret
		c.Verifier = st.Verifier
		c.FullName, c.Username, c.NSID = st.Identity.FullName, st.Identity.Username, st.Identity.NSID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("[session Encode] sign: %w", err)
	}

	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("[session Encode] nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(signed), &nonce, &s.sealKey)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *Store) Decode(value string) (State, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(sealed) < nonceLength+secretbox.Overhead {
		return nil, errors.Wrapf(errors.ErrSessionInvalid, "[session Decode] malformed cookie")
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])
	signed, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, &s.sealKey)
	if !ok {
		return nil, errors.Wrapf(errors.ErrSessionInvalid, "[session Decode] cookie failed authentication")
	}

	var c claims
	_, err = jwt.ParseWithClaims(string(signed), &c, func(*jwt.Token) (interface{}, error) {
		return s.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, errors.Wrapf(errors.ErrSessionExpired, "[session Decode] %v", err)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSessionInvalid, "[session Decode] %v", err)
	}
	return c.state()
}

func (c claims) state() (State, error) {
	switch c.Kind {
	case KindAnonymous:
		return Anonymous{}, nil
	case KindPending:
		if c.Token == "" || c.Secret == "" {
			return nil, errors.Wrapf(errors.ErrSessionInvalid, "[session Decode] pending without request token")
		}
		return Pending{Request: flickr.Credentials{Token: c.Token, Secret: c.Secret}}, nil
	case KindAuthenticated:
		if c.Token == "" || c.Secret == "" || c.NSID == "" {
			return nil, errors.Wrapf(errors.ErrSessionInvalid, "[session Decode] authenticated without credentials")
		}
		return Authenticated{
			Access:   flickr.Credentials{Token: c.Token, Secret: c.Secret},
			Verifier: c.Verifier,
			Identity: flickr.Identity{FullName: c.FullName, Username: c.Username, NSID: c.NSID},
		}, nil
	default:
		return nil, errors.Wrapf(errors.ErrSessionInvalid, "[session Decode] unknown kind %q", c.Kind)
	}
}

func isSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
