package envelope

import (
	"crypto/rand"
	"testing"
)

// newTestEngine builds an engine with fast Argon2 parameters so the
// password-based tests stay quick. Production-strength parameters are
// exercised by the integration suite.
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng, err := New(append([]Option{WithKDFParams(1, 64, 1)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return eng
}

func generateTestKeyPair(t *testing.T, eng *Engine) *KeyPair {
	t.Helper()
	kp, err := eng.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}
	return kp
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatal(err)
	}
	return b
}

// plaintextCases covers the shapes every envelope type must round-trip:
// empty, single byte, unicode with multi-byte runes, binary, multi-KB.
func plaintextCases() []struct {
	name      string
	plaintext []byte
} {
	large := make([]byte, 5000)
	for i := range large {
		large[i] = byte(i)
	}
	return []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"single byte", []byte{0x42}},
		{"simple", []byte("hello world")},
		{"unicode", []byte("héllo wörld 日本語 \U0001f512")},
		{"binary", []byte{0x00, 0xff, 0x7f, 0x80, 0x00}},
		{"multi-kilobyte", large},
	}
}
