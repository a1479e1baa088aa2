package envelope

import (
	"github.com/quantumvault/envelope-go/internal/aead"
	"github.com/quantumvault/envelope-go/internal/mlkem"
	"github.com/quantumvault/envelope-go/internal/pbkdf"
)

const (
	// PublicKeySize is the size of an ML-KEM-1024 public key in bytes.
	PublicKeySize = mlkem.PublicKeySize
	// PrivateKeySize is the size of an ML-KEM-1024 private key in bytes.
	PrivateKeySize = mlkem.PrivateKeySize
	// KEMCiphertextSize is the size of an ML-KEM-1024 ciphertext in bytes.
	KEMCiphertextSize = mlkem.CiphertextSize
	// SharedSecretSize is the size of a KEM shared secret and of every
	// AEAD key in bytes.
	SharedSecretSize = mlkem.SharedKeySize
	// IVSize is the AEAD IV size in bytes.
	IVSize = aead.IVSize
	// TagSize is the AEAD authentication tag size in bytes.
	TagSize = aead.TagSize
	// SaltSize is the password KDF salt size in bytes.
	SaltSize = pbkdf.SaltSize
)

// KeyPair is a recipient's asymmetric identity. The public key contains no
// secret material and may be shared freely; the private key must be kept
// secret, ideally at rest inside a PrivateKeyEnvelope.
type KeyPair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// GenerateKeyPair creates a new key pair using the engine's KEM.
func (e *Engine) GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := e.kem.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return &KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// KeyPairFromPrivateKey reconstructs a key pair from an ML-KEM-1024
// private key. The public key is embedded in the private key.
func KeyPairFromPrivateKey(privateKey []byte) (*KeyPair, error) {
	pub, err := mlkem.PublicKeyFromPrivate(privateKey)
	if err != nil {
		return nil, ErrInvalidPrivateKeySize
	}
	return &KeyPair{PublicKey: pub, PrivateKey: privateKey}, nil
}
