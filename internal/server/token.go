package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// authCookieName is the cookie carrying the session token.
const authCookieName = "auth-token"

// TokenService issues and verifies HS256 session tokens. Tokens are
// stateless: verification needs only the signing secret, and there is no
// revocation list.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given user id and returns it together with
// its expiry time.
func (t *TokenService) Issue(userID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(t.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses and validates a token and returns the user id it was
// issued for. Every failure mode, from a garbled token to an expired one,
// reports ErrInvalidToken so callers cannot tell them apart.
func (t *TokenService) Verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
