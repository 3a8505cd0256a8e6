// Package auth — password hashing and token utilities.
//
// TWO HASHERS:
// The default hasher is HashPassword: hex(SHA-256(password + "|" + secret)).
// It is deterministic, uses one application-wide secret instead of a
// per-user salt and does no stretching, so a leaked users table can be
// brute-forced offline. It exists to stay compatible with databases seeded
// by existing installs and is a placeholder, not a reference design.
//
// Set PASSWORD_HASHER=bcrypt to store bcrypt hashes instead. Verification
// recognises both formats, so a database can move from one to the other
// as users are re-seeded.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned by Verify when the password does not match.
var ErrInvalidPassword = errors.New("auth: invalid password")

// HashPassword digests password and secret, in that order, separated by "|".
func HashPassword(password, secret string) string {
	h := sha256.New()
	h.Write([]byte(password))
	h.Write([]byte("|"))
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// Hasher hashes new passwords and verifies stored hashes.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) error
}

// SHA256Hasher wraps HashPassword with a fixed secret.
type SHA256Hasher struct {
	Secret string
}

func (h SHA256Hasher) Hash(plaintext string) (string, error) {
	return HashPassword(plaintext, h.Secret), nil
}

// Verify compares in constant time.
func (h SHA256Hasher) Verify(hash, plaintext string) error {
	want := HashPassword(plaintext, h.Secret)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(want)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// defaultCost is the bcrypt work factor (2^12 rounds).
const defaultCost = 12

// BcryptHasher hashes with bcrypt. The salt and cost are embedded in the
// output, e.g. $2a$12$<22-char salt><31-char hash>.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a BcryptHasher with cost 12.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: defaultCost}
}

// NewBcryptHasherWithCost is for tests in other packages; cost 4 (the
// minimum) keeps them fast. Do not use low costs in production.
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

// Hash rejects passwords longer than 72 bytes, which bcrypt would silently truncate.
func (b *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

func (b *BcryptHasher) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// IsBcryptHash reports whether hash looks like bcrypt output.
func IsBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

// MultiHasher hashes with Primary and verifies either format.
type MultiHasher struct {
	Primary Hasher
	Legacy  SHA256Hasher
	Bcrypt  *BcryptHasher
}

// NewHasher picks the hasher named by PASSWORD_HASHER ("bcrypt" or "sha256").
// Anything else means sha256.
func NewHasher(name, secret string) *MultiHasher {
	m := &MultiHasher{
		Legacy: SHA256Hasher{Secret: secret},
		Bcrypt: NewBcryptHasher(),
	}
	if strings.EqualFold(name, "bcrypt") {
		m.Primary = m.Bcrypt
	} else {
		m.Primary = m.Legacy
	}
	return m
}

func (m *MultiHasher) Hash(plaintext string) (string, error) {
	return m.Primary.Hash(plaintext)
}

func (m *MultiHasher) Verify(hash, plaintext string) error {
	if hash == "" {
		return ErrInvalidPassword
	}
	if IsBcryptHash(hash) {
		return m.Bcrypt.Verify(hash, plaintext)
	}
	return m.Legacy.Verify(hash, plaintext)
}
