package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit. Longer passwords are rejected
// rather than silently truncated.
const MaxPasswordBytes = 72

// defaultCost takes roughly 250ms per hash on a modern server.
const defaultCost = 12

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService hashes and verifies account passwords with bcrypt.
//
// The bcrypt output embeds version, cost and salt:
//
//	$2a$12$<22-char salt><31-char hash>
//
// so the whole string goes into users.password_hash.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a PasswordService with the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest returns a PasswordService with a custom cost.
// Tests in other packages pass bcrypt.MinCost (4). Never use it in main.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt hash of plaintext.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash and ErrPasswordMismatch
// when it does not. bcrypt compares in constant time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
