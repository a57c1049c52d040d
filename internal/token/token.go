// Package token issues and verifies the signed bearer tokens that identify
// a subscriber on every protected route.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret is returned when the service was built without a signing
	// secret. Verification fails closed rather than accepting anything.
	ErrNoSecret = errors.New("token: signing secret not configured")

	// ErrInvalidToken is returned for any token that cannot be accepted:
	// malformed, wrong algorithm, bad signature, or expired. Callers get a
	// single error so responses do not reveal which check failed.
	ErrInvalidToken = errors.New("token: invalid or expired token")
)

// Claims identify an authenticated subscriber.
type Claims struct {
	SubscriberID string
	Email        string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// Service signs and verifies subscriber tokens using HMAC-SHA256.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token service. ttl is the token lifetime; zero means
// the 30-day default.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for the given subscriber.
func (s *Service) Issue(subscriberID, email string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   subscriberID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify checks the token's signature and expiry and returns its claims.
// Only HS256 is accepted; a token whose header names any other algorithm is
// rejected regardless of its signature.
func (s *Service) Verify(raw string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrNoSecret
	}

	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := mc["email"].(string)

	claims := &Claims{SubscriberID: sub, Email: email}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
