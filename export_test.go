package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
)

func TestExportMessage_ImportMessage_RoundTrip(t *testing.T) {
	eng := newTestEngine(t)
	kp := generateTestKeyPair(t, eng)

	env, err := eng.EncryptMessage([]byte("portable message"), kp.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	exported, err := eng.ExportMessage(env)
	if err != nil {
		t.Fatalf("ExportMessage() error = %v", err)
	}

	imported, err := eng.ImportMessage(exported)
	if err != nil {
		t.Fatalf("ImportMessage() error = %v", err)
	}
	if !bytes.Equal(imported.EncryptedData, env.EncryptedData) {
		t.Error("imported encryptedData does not match")
	}
	if !bytes.Equal(imported.KEMCiphertext, env.KEMCiphertext) {
		t.Error("imported kemCiphertext does not match")
	}

	plaintext, err := eng.DecryptMessage(imported, kp.PrivateKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(plaintext) != "portable message" {
		t.Errorf("plaintext = %q", plaintext)
	}
}

func TestImportMessage_Invalid(t *testing.T) {
	eng := newTestEngine(t)
	kp := generateTestKeyPair(t, eng)

	env, err := eng.EncryptMessage([]byte("x"), kp.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	valid, err := eng.ExportMessage(env)
	if err != nil {
		t.Fatal(err)
	}

	mutate := func(t *testing.T, fn func(m map[string]any)) []byte {
		t.Helper()
		var m map[string]any
		if err := json.Unmarshal(valid, &m); err != nil {
			t.Fatal(err)
		}
		fn(m)
		out, err := json.Marshal(m)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not json", []byte("not json"), ErrInvalidImportData},
		{"wrong version", mutate(t, func(m map[string]any) { m["version"] = 2 }), ErrInvalidImportData},
		{"unknown suite", mutate(t, func(m map[string]any) { m["suite"] = "ROT13" }), ErrInvalidImportData},
		{"short payload", mutate(t, func(m map[string]any) { m["encryptedData"] = "AAAA" }), ErrInvalidImportData},
		{"short kem ciphertext", mutate(t, func(m map[string]any) { m["kemCiphertext"] = "AAAA" }), ErrInvalidImportData},
		{"bad base64", mutate(t, func(m map[string]any) { m["kemCiphertext"] = "!!!" }), ErrInvalidImportData},
		{"suite mismatch", mutate(t, func(m map[string]any) { m["suite"] = string(SuiteChaCha20Poly1305) }), ErrCipherSuiteMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.ImportMessage(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExportKeyPair_ImportKeyPair_RoundTrip(t *testing.T) {
	eng := newTestEngine(t)
	kp := generateTestKeyPair(t, eng)

	exported, err := eng.ExportKeyPair(kp, "export password")
	if err != nil {
		t.Fatalf("ExportKeyPair() error = %v", err)
	}

	// The private key must not appear in the clear in the export.
	if bytes.Contains(exported, []byte(base64.RawURLEncoding.EncodeToString(kp.PrivateKey))) {
		t.Error("export contains the unencrypted private key")
	}

	restored, err := eng.ImportKeyPair(exported, "export password")
	if err != nil {
		t.Fatalf("ImportKeyPair() error = %v", err)
	}
	if !bytes.Equal(restored.PrivateKey, kp.PrivateKey) {
		t.Error("restored private key does not match")
	}
	if !bytes.Equal(restored.PublicKey, kp.PublicKey) {
		t.Error("restored public key does not match")
	}
}

func TestImportKeyPair_WrongPassword(t *testing.T) {
	eng := newTestEngine(t)
	kp := generateTestKeyPair(t, eng)

	exported, err := eng.ExportKeyPair(kp, "right")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.ImportKeyPair(exported, "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("error = %v, want ErrAuthenticationFailed", err)
	}
}

func TestImportKeyPair_PublicKeyMismatch(t *testing.T) {
	eng := newTestEngine(t)
	kp := generateTestKeyPair(t, eng)
	other := generateTestKeyPair(t, eng)

	exported, err := eng.ExportKeyPair(kp, "pw")
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(exported, &m); err != nil {
		t.Fatal(err)
	}
	m["publicKey"] = base64.RawURLEncoding.EncodeToString(other.PublicKey)
	swapped, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.ImportKeyPair(swapped, "pw"); !errors.Is(err, ErrInvalidImportData) {
		t.Errorf("error = %v, want ErrInvalidImportData", err)
	}
}

func TestBase64Bytes_JSON(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"single byte", 1},
		{"large", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := Base64Bytes(bytes.Repeat([]byte{0xA7}, tt.size))

			encoded, err := json.Marshal(original)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var decoded Base64Bytes
			if err := json.Unmarshal(encoded, &decoded); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !bytes.Equal(decoded, original) {
				t.Error("round trip did not recover original bytes")
			}
		})
	}

	t.Run("null", func(t *testing.T) {
		var decoded Base64Bytes
		if err := json.Unmarshal([]byte("null"), &decoded); err != nil {
			t.Fatal(err)
		}
		if decoded != nil {
			t.Error("null did not decode to nil")
		}
	})
}
