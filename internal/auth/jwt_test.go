package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short", time.Hour); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	if ts.TTL() != DefaultTokenTTL {
		t.Errorf("TTL() = %v, want %v", ts.TTL(), DefaultTokenTTL)
	}
}

// =========================================================================
// GENERATE / VALIDATE TESTS
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if n := strings.Count(token, "."); n != 2 {
		t.Errorf("token has %d dots, want 2", n)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-abc-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != "user-abc-123" {
		t.Errorf("Validate() userID = %q, want %q", got, "user-abc-123")
	}
}

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	other, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", time.Hour)

	valid, _ := ts.Generate("user-123")
	expired, _ := ts.GenerateWithDuration("user-123", -time.Second)
	foreign, _ := other.Generate("user-123")

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))

	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-123",
		Issuer:  issuer,
	}).SignedString([]byte(testSecret))

	// A token that names its user under a non-standard claim is not accepted.
	legacyClaim, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "user-123",
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt.token"},
		{"tampered", valid[:len(valid)-3] + "xxx"},
		{"expired", expired},
		{"wrong secret", foreign},
		{"no subject", noSubject},
		{"wrong issuer", wrongIssuer},
		{"no expiry", noExpiry},
		{"legacy id claim", legacyClaim},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ts.Validate(tt.token); err == nil {
				t.Errorf("Validate(%s) should return an error", tt.name)
			}
		})
	}
}

func TestGenerate_UsesTTL(t *testing.T) {
	ts, err := NewTokenService(testSecret, 2*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("GetExpirationTime() = %v, %v", exp, err)
	}
	remaining := time.Until(exp.Time)
	if remaining < time.Hour+55*time.Minute || remaining > 2*time.Hour+time.Minute {
		t.Errorf("token expires in %v, want about 2h", remaining)
	}
}
