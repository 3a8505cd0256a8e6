package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DefaultTokenBytes is the entropy of a session token: 32 bytes, 64 hex chars.
const DefaultTokenBytes = 32

// GenerateToken returns n random bytes from crypto/rand, hex encoded.
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("auth: token length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: reading random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
