package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPEM_Inline(t *testing.T) {
	pemBytes, err := LoadPEM(TestPrivateKeyPEM)
	if err != nil {
		t.Fatalf("LoadPEM: %v", err)
	}
	if !strings.Contains(string(pemBytes), "-----BEGIN") {
		t.Error("LoadPEM did not return PEM content")
	}
}

func TestLoadPEM_FilePath(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.pem")
	if err := os.WriteFile(tmpFile, []byte(TestPublicKeyPEM), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	pemBytes, err := LoadPEM(tmpFile)
	if err != nil {
		t.Fatalf("LoadPEM: %v", err)
	}
	if string(pemBytes) != TestPublicKeyPEM {
		t.Error("LoadPEM from file returned unexpected content")
	}
}

func TestLoadPEM_Empty(t *testing.T) {
	if _, err := LoadPEM("   "); err != ErrInvalidKey {
		t.Errorf("LoadPEM empty: want ErrInvalidKey, got %v", err)
	}
}

func TestParseKeyPair(t *testing.T) {
	signer, pub, err := TestKeyPair()
	if err != nil {
		t.Fatalf("TestKeyPair: %v", err)
	}
	if signer == nil || pub == nil {
		t.Fatal("TestKeyPair returned nil key")
	}
	if alg := KeyAlg(pub); alg != "RS256" {
		t.Errorf("KeyAlg = %q, want RS256", alg)
	}
}

func TestParsePrivateKey_Garbage(t *testing.T) {
	if _, err := ParsePrivateKey("not a key"); err == nil {
		t.Fatal("ParsePrivateKey should reject non-PEM input")
	}
}

func TestKeyAlg_Unknown(t *testing.T) {
	if alg := KeyAlg(struct{}{}); alg != "" {
		t.Errorf("KeyAlg for unknown type = %q, want empty", alg)
	}
}
