package identity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/go-cellar-backend/internal/domain"
)

const sessionIssuer = "vintner"

// ErrInvalidSession is returned for tokens that fail signature, expiry or
// claim validation.
var ErrInvalidSession = errors.New("identity: invalid session token")

// SessionClaims is the payload of a session token. The subject is the LINE
// user id and the JWT id is the server-side session id.
type SessionClaims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"name,omitempty"`
	PictureURL  string `json:"picture,omitempty"`
}

// Profile rebuilds the profile carried by the claims.
func (c SessionClaims) Profile() domain.Profile {
	return domain.Profile{UserID: c.Subject, DisplayName: c.DisplayName, PictureURL: c.PictureURL}
}

// SessionIssuer signs and validates HS256 session tokens.
type SessionIssuer struct {
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
	ephemeral bool
}

// NewSessionIssuer builds an issuer. An empty secret gets a random key, so
// tokens do not survive a restart; Ephemeral reports that case.
func NewSessionIssuer(secret string, ttl time.Duration) (*SessionIssuer, error) {
	key := []byte(secret)
	ephemeral := len(key) == 0
	if ephemeral {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionIssuer{secret: key, ttl: ttl, now: time.Now, ephemeral: ephemeral}, nil
}

// Ephemeral reports whether the signing key was generated at startup.
func (s *SessionIssuer) Ephemeral() bool { return s.ephemeral }

// TTL returns the token lifetime.
func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

// Issue signs a token binding sessionID to p.
func (s *SessionIssuer) Issue(sessionID string, p domain.Profile) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    sessionIssuer,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		DisplayName: p.DisplayName,
		PictureURL:  p.PictureURL,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates a token and returns its claims.
func (s *SessionIssuer) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
