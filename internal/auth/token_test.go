package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_LengthAndEncoding(t *testing.T) {
	for _, n := range []int{1, 16, DefaultTokenBytes} {
		tok, err := GenerateToken(n)
		require.NoError(t, err)
		assert.Len(t, tok, 2*n)

		raw, err := hex.DecodeString(tok)
		require.NoError(t, err)
		assert.Len(t, raw, n)
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := GenerateToken(DefaultTokenBytes)
		require.NoError(t, err)
		assert.False(t, seen[tok], "duplicate token %s", tok)
		seen[tok] = true
	}
}

func TestGenerateToken_RejectsNonPositive(t *testing.T) {
	_, err := GenerateToken(0)
	assert.Error(t, err)
}
