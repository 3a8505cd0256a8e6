package auth

import (
	"errors"
	"strings"
	"testing"
)

// =========================================================================
// HashPassword TESTS
// =========================================================================

func TestHashPassword_KnownDigest(t *testing.T) {
	// sha256("admin123|") — the digest an install with no ADMIN_SALT seeds.
	want := "80d7b654b8201b14900415830cbef611d4560b589a8bdc83d94fbecf4864dcf2"
	if got := HashPassword("admin123", ""); got != want {
		t.Errorf("HashPassword() = %q, want %q", got, want)
	}

	want = "58c16185468791b7e62c9cc330b59f5bd7f43d1c360b8ee341f2b727e367e304"
	if got := HashPassword("secret", "pepper"); got != want {
		t.Errorf("HashPassword() = %q, want %q", got, want)
	}
}

func TestHashPassword_Deterministic(t *testing.T) {
	a := HashPassword("hunter2", "salt")
	b := HashPassword("hunter2", "salt")
	if a != b {
		t.Errorf("HashPassword() is not deterministic: %q != %q", a, b)
	}
}

func TestHashPassword_InputsChangeOutput(t *testing.T) {
	base := HashPassword("hunter2", "salt")

	cases := map[string]string{
		"password changed": HashPassword("hunter3", "salt"),
		"secret changed":   HashPassword("hunter2", "pepper"),
		"inputs swapped":   HashPassword("salt", "hunter2"),
		"empty secret":     HashPassword("hunter2", ""),
	}
	for name, got := range cases {
		t.Run(name, func(t *testing.T) {
			if got == base {
				t.Errorf("expected a different digest, got the same %q", got)
			}
		})
	}
}

func TestSHA256Hasher_Verify(t *testing.T) {
	h := SHA256Hasher{Secret: "pepper"}
	hash, _ := h.Hash("correct")

	if err := h.Verify(hash, "correct"); err != nil {
		t.Errorf("Verify() should accept the right password, got %v", err)
	}
	if err := h.Verify(hash, "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify() = %v, want ErrInvalidPassword", err)
	}
	if err := (SHA256Hasher{Secret: "other"}).Verify(hash, "correct"); err == nil {
		t.Error("Verify() with a different secret should fail")
	}
}

// =========================================================================
// BcryptHasher TESTS
// =========================================================================

// Cost 4 is the bcrypt minimum; it keeps these tests fast.
func newTestBcrypt() *BcryptHasher {
	return NewBcryptHasherWithCost(4)
}

func TestBcrypt_OutputLooksBcrypt(t *testing.T) {
	hash, err := newTestBcrypt().Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !IsBcryptHash(hash) {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestBcrypt_SamePasswordProducesDifferentHashes(t *testing.T) {
	b := newTestBcrypt()
	hash1, _ := b.Hash("same-password")
	hash2, _ := b.Hash("same-password")
	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestBcrypt_RejectsPasswordOver72Bytes(t *testing.T) {
	if _, err := newTestBcrypt().Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatal("Hash() should reject passwords longer than 72 bytes")
	}
	if _, err := newTestBcrypt().Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("Hash() should accept a 72-byte password, got %v", err)
	}
}

func TestBcrypt_Verify(t *testing.T) {
	b := newTestBcrypt()
	hash, _ := b.Hash("correct-horse-battery-staple")

	if err := b.Verify(hash, "correct-horse-battery-staple"); err != nil {
		t.Errorf("Verify() should return nil for a correct password, got: %v", err)
	}
	if err := b.Verify(hash, "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify() = %v, want ErrInvalidPassword", err)
	}
	if err := b.Verify("not-a-valid-bcrypt-hash", "password"); err == nil {
		t.Error("Verify() should fail for a garbage hash")
	}
}

// =========================================================================
// MultiHasher TESTS
// =========================================================================

func TestNewHasher_SelectsPrimary(t *testing.T) {
	if _, ok := NewHasher("sha256", "s").Primary.(SHA256Hasher); !ok {
		t.Error("sha256 should select SHA256Hasher")
	}
	if _, ok := NewHasher("", "s").Primary.(SHA256Hasher); !ok {
		t.Error("empty name should default to SHA256Hasher")
	}
	if _, ok := NewHasher("BCRYPT", "s").Primary.(*BcryptHasher); !ok {
		t.Error("bcrypt should select BcryptHasher")
	}
}

func TestMultiHasher_VerifiesBothFormats(t *testing.T) {
	m := NewHasher("sha256", "pepper")
	m.Bcrypt = newTestBcrypt()

	legacy := HashPassword("pw", "pepper")
	modern, err := m.Bcrypt.Hash("pw")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := m.Verify(legacy, "pw"); err != nil {
		t.Errorf("Verify(legacy) = %v", err)
	}
	if err := m.Verify(modern, "pw"); err != nil {
		t.Errorf("Verify(bcrypt) = %v", err)
	}
	if err := m.Verify("", "pw"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify(empty hash) = %v, want ErrInvalidPassword", err)
	}
}
