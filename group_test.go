package envelope

import (
	"bytes"
	"errors"
	"testing"
)

func generateGroup(t *testing.T, eng *Engine, n int) ([]*KeyPair, [][]byte) {
	t.Helper()
	pairs := make([]*KeyPair, n)
	publicKeys := make([][]byte, n)
	for i := range pairs {
		pairs[i] = generateTestKeyPair(t, eng)
		publicKeys[i] = pairs[i].PublicKey
	}
	return pairs, publicKeys
}

func TestEncryptForGroup_DecryptFromGroup_EveryRecipient(t *testing.T) {
	eng := newTestEngine(t)
	pairs, publicKeys := generateGroup(t, eng, 3)
	plaintext := []byte("message for the whole group")

	env, err := eng.EncryptForGroup(plaintext, publicKeys)
	if err != nil {
		t.Fatalf("EncryptForGroup() error = %v", err)
	}

	if len(env.WrappedKeys) != len(publicKeys) {
		t.Fatalf("wrapped keys = %d, want %d", len(env.WrappedKeys), len(publicKeys))
	}
	for i, wk := range env.WrappedKeys {
		if len(wk.KEMCiphertext) != KEMCiphertextSize {
			t.Errorf("recipient %d: kem ciphertext size = %d, want %d", i, len(wk.KEMCiphertext), KEMCiphertextSize)
		}
		if len(wk.WrappedSessionKey) != IVSize+SharedSecretSize+TagSize {
			t.Errorf("recipient %d: wrapped key size = %d, want %d", i, len(wk.WrappedSessionKey), IVSize+SharedSecretSize+TagSize)
		}
	}

	for i, kp := range pairs {
		got, err := eng.DecryptFromGroup(env, kp.PrivateKey, i)
		if err != nil {
			t.Fatalf("recipient %d: DecryptFromGroup() error = %v", i, err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Errorf("recipient %d: plaintext does not match", i)
		}
	}
}

func TestEncryptForGroup_RoundTrip_Payloads(t *testing.T) {
	eng := newTestEngine(t)
	pairs, publicKeys := generateGroup(t, eng, 1)

	for _, tt := range plaintextCases() {
		t.Run(tt.name, func(t *testing.T) {
			env, err := eng.EncryptForGroup(tt.plaintext, publicKeys)
			if err != nil {
				t.Fatalf("EncryptForGroup() error = %v", err)
			}
			got, err := eng.DecryptFromGroup(env, pairs[0].PrivateKey, 0)
			if err != nil {
				t.Fatalf("DecryptFromGroup() error = %v", err)
			}
			if !bytes.Equal(got, tt.plaintext) {
				t.Error("decrypted plaintext does not match original")
			}
		})
	}
}

func TestDecryptFromGroup_WrongIndex(t *testing.T) {
	eng := newTestEngine(t)
	pairs, publicKeys := generateGroup(t, eng, 3)

	env, err := eng.EncryptForGroup([]byte("positional addressing"), publicKeys)
	if err != nil {
		t.Fatal(err)
	}

	// Recipient 0's private key against recipient 1's slot: decapsulation
	// yields a different secret and the wrap fails to open.
	if _, err := eng.DecryptFromGroup(env, pairs[0].PrivateKey, 1); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("mismatched index: error = %v, want ErrAuthenticationFailed", err)
	}

	for _, index := range []int{-1, 3, 100} {
		if _, err := eng.DecryptFromGroup(env, pairs[0].PrivateKey, index); !errors.Is(err, ErrRecipientIndex) {
			t.Errorf("index %d: error = %v, want ErrRecipientIndex", index, err)
		}
	}
}

func TestDecryptFromGroup_OutsiderKey(t *testing.T) {
	eng := newTestEngine(t)
	pairs, publicKeys := generateGroup(t, eng, 2)
	outsider := generateTestKeyPair(t, eng)

	env, err := eng.EncryptForGroup([]byte("members only"), publicKeys)
	if err != nil {
		t.Fatal(err)
	}

	for i := range pairs {
		if _, err := eng.DecryptFromGroup(env, outsider.PrivateKey, i); !errors.Is(err, ErrAuthenticationFailed) {
			t.Errorf("slot %d: error = %v, want ErrAuthenticationFailed", i, err)
		}
	}
}

func TestEncryptForGroup_NoRecipients(t *testing.T) {
	eng := newTestEngine(t)

	if _, err := eng.EncryptForGroup([]byte("void"), nil); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("error = %v, want ErrNoRecipients", err)
	}
}

func TestEncryptForGroup_NonDeterministic(t *testing.T) {
	eng := newTestEngine(t)
	_, publicKeys := generateGroup(t, eng, 1)

	a, err := eng.EncryptForGroup([]byte("same message"), publicKeys)
	if err != nil {
		t.Fatal(err)
	}
	b, err := eng.EncryptForGroup([]byte("same message"), publicKeys)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(a.EncryptedData, b.EncryptedData) {
		t.Error("two encryptions produced identical payload bytes")
	}
	if bytes.Equal(a.WrappedKeys[0].WrappedSessionKey, b.WrappedKeys[0].WrappedSessionKey) {
		t.Error("two encryptions produced identical wrapped keys")
	}
}

func TestDecryptFromGroup_Tampering(t *testing.T) {
	eng := newTestEngine(t)
	pairs, publicKeys := generateGroup(t, eng, 2)

	env, err := eng.EncryptForGroup([]byte("tamper target"), publicKeys)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("payload", func(t *testing.T) {
		for i := range env.EncryptedData {
			tampered := &GroupEnvelope{
				EncryptedData: bytes.Clone(env.EncryptedData),
				WrappedKeys:   env.WrappedKeys,
			}
			tampered.EncryptedData[i] ^= 0x01
			if _, err := eng.DecryptFromGroup(tampered, pairs[0].PrivateKey, 0); !errors.Is(err, ErrAuthenticationFailed) {
				t.Fatalf("payload byte %d: error = %v, want ErrAuthenticationFailed", i, err)
			}
		}
	})

	t.Run("wrapped session key", func(t *testing.T) {
		for i := range env.WrappedKeys[0].WrappedSessionKey {
			tampered := &GroupEnvelope{
				EncryptedData: env.EncryptedData,
				WrappedKeys: []WrappedKey{
					{
						KEMCiphertext:     env.WrappedKeys[0].KEMCiphertext,
						WrappedSessionKey: bytes.Clone(env.WrappedKeys[0].WrappedSessionKey),
					},
					env.WrappedKeys[1],
				},
			}
			tampered.WrappedKeys[0].WrappedSessionKey[i] ^= 0x01
			if _, err := eng.DecryptFromGroup(tampered, pairs[0].PrivateKey, 0); !errors.Is(err, ErrAuthenticationFailed) {
				t.Fatalf("wrapped key byte %d: error = %v, want ErrAuthenticationFailed", i, err)
			}
		}
	})

	t.Run("kem ciphertext", func(t *testing.T) {
		for _, i := range []int{0, 700, KEMCiphertextSize - 1} {
			tampered := &GroupEnvelope{
				EncryptedData: env.EncryptedData,
				WrappedKeys: []WrappedKey{
					{
						KEMCiphertext:     bytes.Clone(env.WrappedKeys[0].KEMCiphertext),
						WrappedSessionKey: env.WrappedKeys[0].WrappedSessionKey,
					},
					env.WrappedKeys[1],
				},
			}
			tampered.WrappedKeys[0].KEMCiphertext[i] ^= 0x01
			if _, err := eng.DecryptFromGroup(tampered, pairs[0].PrivateKey, 0); !errors.Is(err, ErrAuthenticationFailed) {
				t.Fatalf("kem ciphertext byte %d: error = %v, want ErrAuthenticationFailed", i, err)
			}
		}
	})

	// A tampered slot must not affect the other recipient.
	t.Run("other recipient unaffected", func(t *testing.T) {
		tampered := &GroupEnvelope{
			EncryptedData: env.EncryptedData,
			WrappedKeys: []WrappedKey{
				{
					KEMCiphertext:     bytes.Clone(env.WrappedKeys[0].KEMCiphertext),
					WrappedSessionKey: env.WrappedKeys[0].WrappedSessionKey,
				},
				env.WrappedKeys[1],
			},
		}
		tampered.WrappedKeys[0].KEMCiphertext[0] ^= 0x01

		got, err := eng.DecryptFromGroup(tampered, pairs[1].PrivateKey, 1)
		if err != nil {
			t.Fatalf("recipient 1: error = %v", err)
		}
		if string(got) != "tamper target" {
			t.Errorf("recipient 1 plaintext = %q", got)
		}
	})
}

func TestDecryptFromGroup_Malformed(t *testing.T) {
	eng := newTestEngine(t)
	kp := generateTestKeyPair(t, eng)

	tests := []struct {
		name string
		env  *GroupEnvelope
		want error
	}{
		{"nil envelope", nil, ErrMalformedEnvelope},
		{"empty wrapped keys", &GroupEnvelope{EncryptedData: make([]byte, IVSize+TagSize)}, ErrRecipientIndex},
		{
			"short wrapped key",
			&GroupEnvelope{
				EncryptedData: make([]byte, IVSize+TagSize),
				WrappedKeys:   []WrappedKey{{KEMCiphertext: make([]byte, KEMCiphertextSize), WrappedSessionKey: make([]byte, IVSize-1)}},
			},
			ErrMalformedEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.DecryptFromGroup(tt.env, kp.PrivateKey, 0); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
