package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"
)

func testKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := NewCredentialEncryptor(testKey(t))
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}

	token := "refresh-token-5Aep861Ogq9pXoTEST"
	ciphertext, err := enc.Encrypt(token)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if ciphertext == token {
		t.Fatal("ciphertext must differ from plaintext")
	}

	plaintext, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plaintext != token {
		t.Errorf("round trip mismatch: got %q", plaintext)
	}
}

func TestEncryptEmptyStringPassesThrough(t *testing.T) {
	enc, _ := NewCredentialEncryptor(testKey(t))

	out, err := enc.Encrypt("")
	if err != nil || out != "" {
		t.Errorf("expected empty passthrough, got %q, %v", out, err)
	}
	out, err = enc.Decrypt("")
	if err != nil || out != "" {
		t.Errorf("expected empty passthrough, got %q, %v", out, err)
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	enc1, _ := NewCredentialEncryptor(testKey(t))
	enc2, _ := NewCredentialEncryptor(testKey(t))

	ciphertext, err := enc1.Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := enc2.Decrypt(ciphertext); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptGarbageFails(t *testing.T) {
	enc, _ := NewCredentialEncryptor(testKey(t))

	if _, err := enc.Decrypt("not-base64!!"); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
	if _, err := enc.Decrypt(base64.StdEncoding.EncodeToString([]byte("short"))); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed for short ciphertext, got %v", err)
	}
}

func TestPassphraseKeyIsAccepted(t *testing.T) {
	enc, err := NewCredentialEncryptor("not-a-base64-key-just-a-passphrase")
	if err != nil {
		t.Fatalf("passphrase key rejected: %v", err)
	}

	ciphertext, err := enc.Encrypt("value")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	plaintext, err := enc.Decrypt(ciphertext)
	if err != nil || plaintext != "value" {
		t.Errorf("round trip failed: %q, %v", plaintext, err)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	if _, err := NewCredentialEncryptor(""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}
