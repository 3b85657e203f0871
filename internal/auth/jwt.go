// Package auth issues and checks the credentials that gate every mutating
// API call.
//
// AUTHENTICATION FLOW:
//  1. A client registers or logs in (email + password, or GitHub sign-in)
//  2. The server answers with a signed JWT whose "sub" claim is the user ID
//  3. The client sends it back as "Authorization: Bearer <jwt>" (or the
//     "token" cookie set by the GitHub flow)
//  4. Middleware validates the token, confirms the user still exists and
//     puts the user ID in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<userID>","iss":"videohub","exp":1234567890,"iat":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// Only "sub" identifies the user. There are no alternative claim names.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "videohub"

// DefaultTokenTTL is used when NewTokenService is given a non-positive TTL.
const DefaultTokenTTL = 24 * time.Hour

// MinSecretLength is the shortest HMAC secret NewTokenService accepts.
const MinSecretLength = 16

// TokenService signs and verifies access tokens with a shared HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters; generate one with `openssl rand -hex 32`.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is how long tokens from Generate stay valid. The handler uses it for
// the cookie Max-Age.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for userID that expires after the service TTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration signs a token with an explicit lifetime. Tests use a
// negative duration to get an already expired token.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate verifies the signature, algorithm, issuer and expiry of tokenStr
// and returns the user ID from its "sub" claim.
//
// jwt.WithValidMethods pins HS256 so a token claiming "alg":"none" (or an
// asymmetric algorithm keyed with our secret) is rejected before the key
// function runs.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
