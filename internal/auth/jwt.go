package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/example/sugrae-storefront/internal/domain/customer"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWeakSecret   = errors.New("session secret must be at least 32 characters")
)

// MinSecretLength is the shortest accepted session secret
const MinSecretLength = 32

const (
	issuer      = "sugrae-storefront"
	keyInfo     = "sugrae session token v1"
	signingAlgo = "HS256"
)

// SessionClaims is the persisted form of a customer session
type SessionClaims struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DisplayName string `json:"display_name"`
	AccessToken string `json:"cat"`
	jwt.RegisteredClaims
}

// SessionCodec signs customer sessions for storage and verifies them on read.
// A token expires at the backend token expiry or after maxAge, whichever is first.
type SessionCodec struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSessionCodec derives the signing key from secret. A zero maxAge relies on
// the backend expiry alone.
func NewSessionCodec(secret string, maxAge time.Duration) (*SessionCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("deriving session key: %w", err)
	}

	return &SessionCodec{key: key, maxAge: maxAge, now: time.Now}, nil
}

// WithClock replaces the time source, for tests
func (c *SessionCodec) WithClock(now func() time.Time) *SessionCodec {
	c.now = now
	return c
}

func (c *SessionCodec) expiry(s customer.Session) time.Time {
	exp := s.ExpiresAt
	if c.maxAge > 0 {
		capped := c.now().Add(c.maxAge)
		if exp.IsZero() || capped.Before(exp) {
			exp = capped
		}
	}
	return exp
}

// Encode signs s. The session's ExpiresAt is kept as the token expiry.
func (c *SessionCodec) Encode(s customer.Session) (string, error) {
	if s.ID == "" {
		return "", ErrInvalidToken
	}

	claims := SessionClaims{
		Email:       s.Email,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		DisplayName: s.DisplayName,
		AccessToken: s.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  s.ID,
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	if exp := c.expiry(s); !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.key)
}

// Decode verifies a stored token and returns the session it carries
func (c *SessionCodec) Decode(tokenString string) (customer.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.key, nil
	},
		jwt.WithValidMethods([]string{signingAlgo}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return customer.Session{}, ErrExpiredToken
		}
		return customer.Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return customer.Session{}, ErrInvalidToken
	}

	s := customer.Session{
		ID:          claims.Subject,
		Email:       claims.Email,
		FirstName:   claims.FirstName,
		LastName:    claims.LastName,
		DisplayName: claims.DisplayName,
		AccessToken: claims.AccessToken,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
