// Package aead provides the authenticated cipher capability used by every
// envelope type: AES-256-GCM (the default suite) and ChaCha20-Poly1305.
// Both produce ciphertext followed by a 16-byte authentication tag.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the AEAD key size in bytes (AES-256 and ChaCha20 both use 32).
	KeySize = 32
	// IVSize is the nonce size in bytes for both supported ciphers.
	IVSize = 12
	// TagSize is the authentication tag size in bytes for both supported ciphers.
	TagSize = 16
)

var (
	// ErrInvalidKeySize is returned when the key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidIVSize is returned when the IV size is invalid.
	ErrInvalidIVSize = errors.New("invalid IV size")

	// ErrAuthentication is returned when the authentication tag does not
	// verify. No further detail is exposed: a wrong key and a tampered
	// ciphertext are indistinguishable.
	ErrAuthentication = errors.New("authentication failed")
)

// Cipher is an AEAD implementation. Seal returns ciphertext||tag; Open
// verifies the tag and returns the plaintext, or ErrAuthentication.
type Cipher interface {
	Seal(key, iv, plaintext, aad []byte) ([]byte, error)
	Open(key, iv, ciphertext, aad []byte) ([]byte, error)
}

// AESGCM implements Cipher using AES-256-GCM from the standard library.
type AESGCM struct{}

func (AESGCM) Seal(key, iv, plaintext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key, iv)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, iv, plaintext, aad), nil
}

func (AESGCM) Open(key, iv, ciphertext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key, iv)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, iv, ciphertext, aad)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func newGCM(key, iv []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), IVSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// ChaCha20Poly1305 implements Cipher using golang.org/x/crypto.
type ChaCha20Poly1305 struct{}

func (ChaCha20Poly1305) Seal(key, iv, plaintext, aad []byte) ([]byte, error) {
	c, err := newChaCha(key, iv)
	if err != nil {
		return nil, err
	}
	return c.Seal(nil, iv, plaintext, aad), nil
}

func (ChaCha20Poly1305) Open(key, iv, ciphertext, aad []byte) ([]byte, error) {
	c, err := newChaCha(key, iv)
	if err != nil {
		return nil, err
	}
	plaintext, err := c.Open(nil, iv, ciphertext, aad)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func newChaCha(key, iv []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), IVSize)
	}
	return chacha20poly1305.New(key)
}
