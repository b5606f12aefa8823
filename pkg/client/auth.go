package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token for each request
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed bearer token
type StaticToken string

func (t StaticToken) Token() (string, error) {
	return string(t), nil
}

// JWTSigner mints a short-lived HS256 token per request
type JWTSigner struct {
	Secret  []byte
	Subject string
	Issuer  string
	TTL     time.Duration

	now func() time.Time
}

// NewJWTSigner creates an HS256 token source
func NewJWTSigner(secret, subject string, ttl time.Duration) (*JWTSigner, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &JWTSigner{Secret: []byte(secret), Subject: subject, Issuer: "crosscheck", TTL: ttl, now: time.Now}, nil
}

func (s *JWTSigner) Token() (string, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	issued := now()
	claims := jwt.RegisteredClaims{
		Subject:   s.Subject,
		Issuer:    s.Issuer,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(s.TTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
