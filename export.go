package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/quantumvault/envelope-go/internal/codec"
)

// ExportVersion is the current export format version.
const ExportVersion = 1

// Base64Bytes marshals binary envelope fields as URL-safe base64 without
// padding in JSON exports.
type Base64Bytes []byte

// MarshalJSON implements json.Marshaler for Base64Bytes.
func (b Base64Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(codec.ToBase64URL(b))
}

// UnmarshalJSON implements json.Unmarshaler for Base64Bytes.
func (b *Base64Bytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := codec.FromBase64URL(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// ExportedMessage is the portable JSON form of a message envelope.
type ExportedMessage struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// Suite names the AEAD cipher suite the envelope was produced under.
	Suite CipherSuite `json:"suite"`
	// EncryptedData is the packed AEAD payload (base64url).
	EncryptedData Base64Bytes `json:"encryptedData"`
	// KEMCiphertext is the ML-KEM-1024 ciphertext (base64url, 1568 bytes decoded).
	KEMCiphertext Base64Bytes `json:"kemCiphertext"`
}

// Validate checks that the exported message is structurally sound.
func (m *ExportedMessage) Validate() error {
	if m.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidImportData, m.Version, ExportVersion)
	}
	if _, err := suiteID(m.Suite); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImportData, err)
	}
	if len(m.EncryptedData) < IVSize+TagSize {
		return fmt.Errorf("%w: encryptedData too short", ErrInvalidImportData)
	}
	if len(m.KEMCiphertext) != KEMCiphertextSize {
		return fmt.Errorf("%w: kemCiphertext size %d, expected %d", ErrInvalidImportData, len(m.KEMCiphertext), KEMCiphertextSize)
	}
	return nil
}

// ExportMessage serializes a message envelope to its JSON form.
func (e *Engine) ExportMessage(env *MessageEnvelope) ([]byte, error) {
	if env == nil {
		return nil, ErrMalformedEnvelope
	}
	return json.Marshal(&ExportedMessage{
		Version:       ExportVersion,
		Suite:         e.suite,
		EncryptedData: env.EncryptedData,
		KEMCiphertext: env.KEMCiphertext,
	})
}

// ImportMessage parses a JSON message export. The envelope must have been
// produced under the engine's cipher suite.
func (e *Engine) ImportMessage(data []byte) (*MessageEnvelope, error) {
	var exported ExportedMessage
	if err := json.Unmarshal(data, &exported); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportData, err)
	}
	if err := exported.Validate(); err != nil {
		return nil, err
	}
	if exported.Suite != e.suite {
		return nil, fmt.Errorf("%w: envelope uses %s, engine configured for %s", ErrCipherSuiteMismatch, exported.Suite, e.suite)
	}
	return &MessageEnvelope{
		EncryptedData: exported.EncryptedData,
		KEMCiphertext: exported.KEMCiphertext,
	}, nil
}

// ExportedKeyPair is the portable JSON form of a key pair. The private
// key is never exported in the clear: it is carried as a password-
// protected PrivateKeyEnvelope.
type ExportedKeyPair struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// PublicKey is the ML-KEM-1024 public key (base64url, 1568 bytes decoded).
	PublicKey Base64Bytes `json:"publicKey"`
	// EncryptedPrivateKey is the AEAD-protected private key (base64url).
	EncryptedPrivateKey Base64Bytes `json:"encryptedPrivateKey"`
	// Salt is the password KDF salt (base64url, 16 bytes decoded).
	Salt Base64Bytes `json:"salt"`
	// IV is the AEAD IV (base64url, 12 bytes decoded).
	IV Base64Bytes `json:"iv"`
}

// Validate checks that the exported key pair is structurally sound.
func (k *ExportedKeyPair) Validate() error {
	if k.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidImportData, k.Version, ExportVersion)
	}
	if len(k.PublicKey) != PublicKeySize {
		return fmt.Errorf("%w: publicKey size %d, expected %d", ErrInvalidImportData, len(k.PublicKey), PublicKeySize)
	}
	if len(k.EncryptedPrivateKey) != PrivateKeySize+TagSize {
		return fmt.Errorf("%w: encryptedPrivateKey size %d, expected %d", ErrInvalidImportData, len(k.EncryptedPrivateKey), PrivateKeySize+TagSize)
	}
	if len(k.Salt) != SaltSize {
		return fmt.Errorf("%w: salt size %d, expected %d", ErrInvalidImportData, len(k.Salt), SaltSize)
	}
	if len(k.IV) != IVSize {
		return fmt.Errorf("%w: iv size %d, expected %d", ErrInvalidImportData, len(k.IV), IVSize)
	}
	return nil
}

// ExportKeyPair serializes a key pair with the private key protected
// under the password.
func (e *Engine) ExportKeyPair(kp *KeyPair, password string) ([]byte, error) {
	if kp == nil || len(kp.PublicKey) != PublicKeySize {
		return nil, ErrInvalidPublicKeySize
	}

	protected, err := e.EncryptPrivateKey(kp.PrivateKey, password)
	if err != nil {
		return nil, err
	}

	return json.Marshal(&ExportedKeyPair{
		Version:             ExportVersion,
		PublicKey:           kp.PublicKey,
		EncryptedPrivateKey: protected.EncryptedPrivateKey,
		Salt:                protected.Salt,
		IV:                  protected.IV,
	})
}

// ImportKeyPair parses a JSON key pair export and recovers the private
// key with the password. The public key embedded in the recovered private
// key must match the exported public key.
func (e *Engine) ImportKeyPair(data []byte, password string) (*KeyPair, error) {
	var exported ExportedKeyPair
	if err := json.Unmarshal(data, &exported); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportData, err)
	}
	if err := exported.Validate(); err != nil {
		return nil, err
	}

	kp, err := e.DecryptPrivateKey(&PrivateKeyEnvelope{
		EncryptedPrivateKey: exported.EncryptedPrivateKey,
		Salt:                exported.Salt,
		IV:                  exported.IV,
	}, password)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(kp.PublicKey, exported.PublicKey) {
		zero(kp.PrivateKey)
		return nil, fmt.Errorf("%w: publicKey does not match recovered private key", ErrInvalidImportData)
	}
	return kp, nil
}
