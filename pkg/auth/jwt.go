// Package auth issues and validates the bearer tokens a block-store
// API uses to authenticate callers, and hashes the passwords behind
// them.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Parse for a missing, malformed,
// expired, or wrong-signature token.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims identifies the caller a token was issued to.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenIssuer signs and verifies JWTs with a single HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds a TokenIssuer around secret. An empty secret
// still produces working tokens, but any caller who also knows it can
// forge them; production configuration should always set jwt_secret.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed JWT for the given identity.
func (t *TokenIssuer) Issue(username, role string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a signed JWT and extracts its claims.
func (t *TokenIssuer) Parse(tokenString string) (Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if username == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{Username: username, Role: role}, nil
}
