package crypto

import (
	"encoding/base64"
	"errors"
	"testing"
)

func newTestCodec() EnvelopeCodec {
	return NewEnvelopeCodec(NewKeyService())
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	codec := newTestCodec()

	for _, plaintext := range []string{"g-pass", "", "пароль", "a longer plaintext with spaces and symbols !@#$%"} {
		blob, err := codec.Encrypt(plaintext, "p1")
		if err != nil {
			t.Fatalf("Encrypt(%q) error: %v", plaintext, err)
		}

		got, err := codec.Decrypt(blob, "p1")
		if err != nil {
			t.Fatalf("Decrypt error: %v", err)
		}
		if got != plaintext {
			t.Fatalf("round trip = %q, want %q", got, plaintext)
		}
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	codec := newTestCodec()

	b1, err := codec.Encrypt("same plaintext", "same password")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	b2, err := codec.Encrypt("same plaintext", "same password")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if b1 == b2 {
		t.Fatalf("expected two encryptions of the same plaintext to differ")
	}
}

func TestDecrypt_WrongPasswordIsAuthenticationFailure(t *testing.T) {
	codec := newTestCodec()

	blob, err := codec.Encrypt("secret", "k1")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	_, err = codec.Decrypt(blob, "k2")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestDecrypt_TamperAnySingleByte(t *testing.T) {
	codec := newTestCodec()

	blob, err := codec.Encrypt("secret", "k1")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		t.Fatalf("decode blob: %v", err)
	}

	// Skip the version byte: flipping it is a format error, not a tag
	// failure, and is covered separately below.
	for i := 1; i < len(raw); i++ {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		_, err := codec.Decrypt(base64.StdEncoding.EncodeToString(tampered), "k1")
		if !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("byte %d: err = %v, want ErrAuthenticationFailed", i, err)
		}
	}
}

func TestDecrypt_MalformedBlobIsNotAuthError(t *testing.T) {
	codec := newTestCodec()

	valid, err := codec.Encrypt("secret", "k1")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(valid)
	raw[0] = 0x7F // unknown version

	cases := map[string]string{
		"bad base64":      "%%%not-base64%%%",
		"too short":       base64.StdEncoding.EncodeToString([]byte{0x01, 0x02}),
		"unknown version": base64.StdEncoding.EncodeToString(raw),
	}

	for name, blob := range cases {
		_, err := codec.Decrypt(blob, "k1")
		if !errors.Is(err, ErrInvalidBlob) {
			t.Fatalf("%s: err = %v, want ErrInvalidBlob", name, err)
		}
		if errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("%s: malformed blob must not look like an auth failure", name)
		}
	}
}

func TestValidate_ProbesWithoutError(t *testing.T) {
	codec := newTestCodec()

	blob, err := codec.Encrypt("secret", "k1")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if !codec.Validate(blob, "k1") {
		t.Fatalf("expected Validate to accept the correct password")
	}
	if codec.Validate(blob, "k2") {
		t.Fatalf("expected Validate to reject a wrong password")
	}
	if codec.Validate("garbage", "k1") {
		t.Fatalf("expected Validate to reject a malformed blob")
	}
}

func TestBatch_OrderLabelsAndPerItemFailure(t *testing.T) {
	codec := newTestCodec()

	items := []EntryPlain{
		{Label: "GitHub", Plaintext: "g-pass"},
		{Label: "Mail", Plaintext: "m-pass"},
		{Label: "Bank", Plaintext: "b-pass"},
	}

	sealed, err := codec.EncryptAll(items, "batch-pw")
	if err != nil {
		t.Fatalf("EncryptAll error: %v", err)
	}
	if len(sealed) != len(items) {
		t.Fatalf("sealed %d items, want %d", len(sealed), len(items))
	}

	// Corrupt the last byte of the middle item's blob.
	raw, _ := base64.StdEncoding.DecodeString(sealed[1].Blob)
	raw[len(raw)-1] ^= 0xFF
	sealed[1].Blob = base64.StdEncoding.EncodeToString(raw)

	results := codec.DecryptAll(sealed, "batch-pw")
	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}

	for i, want := range items {
		if results[i].Label != want.Label {
			t.Fatalf("result %d label = %q, want %q", i, results[i].Label, want.Label)
		}
	}

	if results[0].Err != nil || results[0].Plaintext != "g-pass" {
		t.Fatalf("item 0: plaintext=%q err=%v, want clean decrypt", results[0].Plaintext, results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrAuthenticationFailed) {
		t.Fatalf("item 1: err = %v, want ErrAuthenticationFailed", results[1].Err)
	}
	if results[2].Err != nil || results[2].Plaintext != "b-pass" {
		t.Fatalf("item 2: plaintext=%q err=%v, want clean decrypt", results[2].Plaintext, results[2].Err)
	}
}

func TestEncryptWithKey_ReusesDerivedKey(t *testing.T) {
	keys := NewKeyService()
	codec := NewEnvelopeCodec(keys)

	salt, err := keys.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}
	key, err := keys.DeriveKey("p1", salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}

	blob, err := codec.EncryptWithKey("cached", key, salt)
	if err != nil {
		t.Fatalf("EncryptWithKey error: %v", err)
	}

	got, err := codec.Decrypt(blob, "p1")
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if got != "cached" {
		t.Fatalf("round trip = %q, want %q", got, "cached")
	}
}

func TestKeyCache_WipeZeroesMaterial(t *testing.T) {
	cache := NewKeyCache()
	salt := make([]byte, SaltLength)
	key := []byte{1, 2, 3, 4}

	cache.put(salt, key)
	cache.Wipe()

	if got := cache.get(salt); got != nil {
		t.Fatalf("expected cache to be empty after Wipe")
	}
	for i, b := range key {
		if b != 0 {
			t.Fatalf("key byte %d not zeroed", i)
		}
	}
}
