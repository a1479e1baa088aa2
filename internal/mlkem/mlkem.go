// Package mlkem wraps the ML-KEM-1024 key encapsulation mechanism
// (NIST FIPS 203) from cloudflare/circl behind byte-slice functions.
package mlkem

import (
	"errors"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
)

const (
	// PublicKeySize is the size of an ML-KEM-1024 public key in bytes.
	PublicKeySize = 1568
	// PrivateKeySize is the size of an ML-KEM-1024 private key in bytes.
	PrivateKeySize = 3168
	// CiphertextSize is the size of an ML-KEM-1024 ciphertext in bytes.
	CiphertextSize = 1568
	// SharedKeySize is the size of the shared secret from ML-KEM-1024 in bytes.
	SharedKeySize = 32

	// publicKeyOffset is the byte offset where the public key is embedded
	// within a packed ML-KEM-1024 private key.
	publicKeyOffset = 1536
)

var (
	// ErrInvalidPublicKeySize is returned when the public key size is invalid.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrInvalidPrivateKeySize is returned when the private key size is invalid.
	ErrInvalidPrivateKeySize = errors.New("invalid private key size")

	// ErrInvalidCiphertextSize is returned when the KEM ciphertext size is invalid.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")
)

// randReader is the random source used for key generation and encapsulation.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

// GenerateKeyPair creates a new ML-KEM-1024 key pair as raw bytes.
func GenerateKeyPair() (publicKey, privateKey []byte, err error) {
	pub, priv, err := mlkem1024.GenerateKeyPair(randReader)
	if err != nil {
		return nil, nil, err
	}

	// MarshalBinary never fails for valid keys from GenerateKeyPair
	pubBytes, _ := pub.MarshalBinary()
	privBytes, _ := priv.MarshalBinary()

	return pubBytes, privBytes, nil
}

// Encapsulate generates a fresh shared secret for the holder of publicKey
// and the KEM ciphertext that transports it.
func Encapsulate(publicKey []byte) (ciphertext, sharedSecret []byte, err error) {
	if len(publicKey) != PublicKeySize {
		return nil, nil, ErrInvalidPublicKeySize
	}

	// Unpack never fails for correctly-sized bytes
	var pub mlkem1024.PublicKey
	pub.Unpack(publicKey)

	ciphertext = make([]byte, CiphertextSize)
	sharedSecret = make([]byte, SharedKeySize)
	pub.EncapsulateTo(ciphertext, sharedSecret, nil)

	return ciphertext, sharedSecret, nil
}

// Decapsulate recovers the shared secret from a KEM ciphertext.
//
// Decapsulation under a mismatched private key does not fail: ML-KEM's
// implicit rejection yields a different, pseudorandom secret. Callers must
// rely on a downstream AEAD tag check to detect the mismatch.
func Decapsulate(ciphertext, privateKey []byte) ([]byte, error) {
	if len(ciphertext) != CiphertextSize {
		return nil, ErrInvalidCiphertextSize
	}
	if len(privateKey) != PrivateKeySize {
		return nil, ErrInvalidPrivateKeySize
	}

	var priv mlkem1024.PrivateKey
	if err := priv.Unpack(privateKey); err != nil {
		return nil, err
	}

	sharedSecret := make([]byte, SharedKeySize)
	priv.DecapsulateTo(sharedSecret, ciphertext)

	return sharedSecret, nil
}

// PublicKeyFromPrivate extracts the public key embedded in a packed
// ML-KEM-1024 private key at offset 1536.
func PublicKeyFromPrivate(privateKey []byte) ([]byte, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, ErrInvalidPrivateKeySize
	}

	publicKey := make([]byte, PublicKeySize)
	copy(publicKey, privateKey[publicKeyOffset:publicKeyOffset+PublicKeySize])
	return publicKey, nil
}
