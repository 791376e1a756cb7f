package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGenerateSalt_LengthAndRandomness(t *testing.T) {
	svc := NewKeyService()

	s1, err := svc.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}
	s2, err := svc.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}

	if len(s1) != SaltLength {
		t.Fatalf("salt length = %d, want %d", len(s1), SaltLength)
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("expected salts to differ, but they are equal")
	}
}

func TestDeriveKey_DeterministicForSameInputs(t *testing.T) {
	svc := NewKeyService()

	password := "correct horse battery staple"
	salt := bytes.Repeat([]byte{0xAB}, SaltLength)

	k1, err := svc.DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	k2, err := svc.DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}

	if len(k1) != KeyLength {
		t.Fatalf("key length = %d, want %d", len(k1), KeyLength)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected keys to match for same password+salt")
	}
}

func TestDeriveKey_DifferentSaltProducesDifferentKey(t *testing.T) {
	svc := NewKeyService()

	password := "same password"
	salt1 := bytes.Repeat([]byte{0x01}, SaltLength)
	salt2 := bytes.Repeat([]byte{0x02}, SaltLength)

	k1, err := svc.DeriveKey(password, salt1)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	k2, err := svc.DeriveKey(password, salt2)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}

	if bytes.Equal(k1, k2) {
		t.Fatalf("expected different keys for different salts")
	}
}

func TestDeriveKey_RejectsBadInputBeforeDerivation(t *testing.T) {
	svc := NewKeyService()

	if _, err := svc.DeriveKey("", bytes.Repeat([]byte{0x01}, SaltLength)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty password: err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.DeriveKey("p", []byte{0x01, 0x02}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short salt: err = %v, want ErrInvalidInput", err)
	}
}

func TestHashPassword_EncodingAndVerify(t *testing.T) {
	svc := NewKeyService()

	encoded, err := svc.HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=") {
		t.Fatalf("encoded hash %q missing argon2id prefix", encoded)
	}

	ok, err := svc.VerifyPassword(encoded, "Secret123!")
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if !ok {
		t.Fatalf("expected correct password to verify")
	}

	ok, err = svc.VerifyPassword(encoded, "wrong password")
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	svc := NewKeyService()

	h1, err := svc.HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := svc.HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("expected salted hashes of the same password to differ")
	}
}

func TestVerifyPassword_MalformedEncoding(t *testing.T) {
	svc := NewKeyService()

	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
	} {
		if _, err := svc.VerifyPassword(encoded, "p"); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("encoded = %q: err = %v, want ErrInvalidInput", encoded, err)
		}
	}
}
