package security_test

import (
	"os"
	"runtime"
	"testing"

	"DataPos/app/security"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())

	const token = "pos-api-token-1234"

	sealed, err := security.Encrypt(token)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if sealed == token {
		t.Fatal("ciphertext equals the plaintext")
	}

	keyPath, err := security.GetKeyPath()
	if err != nil {
		t.Fatalf("GetKeyPath: %v", err)
	}
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("key file was not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("key file mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := security.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != token {
		t.Errorf("Decrypt = %q, want %q", got, token)
	}

	// Encrypting the same value twice must give distinct ciphertexts
	// (fresh nonce), both decrypting to the original
	again, err := security.Encrypt(token)
	if err != nil {
		t.Fatalf("Encrypt again: %v", err)
	}
	if again == sealed {
		t.Error("two encryptions produced identical ciphertext")
	}

	// Migration helper leaves already-sealed values alone
	same, err := security.EncryptIfNeeded(sealed)
	if err != nil {
		t.Fatalf("EncryptIfNeeded: %v", err)
	}
	if same != sealed {
		t.Error("EncryptIfNeeded re-encrypted a sealed value")
	}
	migrated, err := security.EncryptIfNeeded("plaintext-secret")
	if err != nil {
		t.Fatalf("EncryptIfNeeded plaintext: %v", err)
	}
	if migrated == "plaintext-secret" {
		t.Error("EncryptIfNeeded left a plaintext secret unsealed")
	}

	if _, err := security.Decrypt("not base64, not sealed"); err == nil {
		t.Error("Decrypt accepted garbage input")
	}
}

func TestEncryptEmptyValue(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())

	sealed, err := security.Encrypt("")
	if err != nil || sealed != "" {
		t.Errorf("Encrypt(\"\") = (%q, %v), want empty passthrough", sealed, err)
	}
	plain, err := security.Decrypt("")
	if err != nil || plain != "" {
		t.Errorf("Decrypt(\"\") = (%q, %v), want empty passthrough", plain, err)
	}
}
