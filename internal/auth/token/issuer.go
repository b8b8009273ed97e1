// Package token signs and verifies the HS256 identity tokens handed to users.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSigningFailed is returned when a token cannot be signed.
	ErrSigningFailed = errors.New("token signing failed")
	// ErrInvalid covers bad signatures, malformed tokens and unexpected algorithms.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired is returned for well-signed tokens past their expiry.
	ErrExpired = errors.New("token expired")
)

// Claims carries the user identity embedded in a token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// Issuer mints and verifies tokens with a process-wide secret.
type Issuer struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// New builds an Issuer. defaultTTL applies when Issue is called without a
// lifetime.
func New(secret string, defaultTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: secret must be provided")
	}
	if defaultTTL <= 0 {
		return nil, errors.New("token: default ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), defaultTTL: defaultTTL, now: time.Now}, nil
}

// DefaultTTL returns the lifetime used when Issue gets none.
func (i *Issuer) DefaultTTL() time.Duration {
	return i.defaultTTL
}

// Issue signs a token for the subject. A non-positive ttl selects the default.
func (i *Issuer) Issue(subjectID, email string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = i.defaultTTL
	}
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: subjectID,
		Email:  email,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}
	if signed == "" {
		return "", ErrSigningFailed
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}
