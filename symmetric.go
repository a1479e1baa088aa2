package envelope

import (
	"github.com/quantumvault/envelope-go/internal/codec"
	"github.com/quantumvault/envelope-go/internal/pbkdf"
)

// SymmetricEnvelope is one password-encrypted message or blob: the packed
// AEAD payload plus the KDF salt. The salt is not secret and is persisted
// alongside the ciphertext; anyone knowing the password can decrypt.
type SymmetricEnvelope struct {
	EncryptedData []byte
	Salt          []byte
}

// EncryptSymmetric encrypts plaintext under a password with a freshly
// generated 16-byte salt.
func (e *Engine) EncryptSymmetric(plaintext []byte, password string) (*SymmetricEnvelope, error) {
	salt, err := e.newSalt()
	if err != nil {
		return nil, err
	}
	return e.EncryptSymmetricWithSalt(plaintext, password, salt)
}

// EncryptSymmetricWithSalt encrypts plaintext under a password with a
// caller-supplied salt. The salt must be 16 bytes.
func (e *Engine) EncryptSymmetricWithSalt(plaintext []byte, password string, salt []byte) (*SymmetricEnvelope, error) {
	if len(salt) != pbkdf.SaltSize {
		return nil, ErrMalformedEnvelope
	}

	key, err := e.deriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	iv, err := e.newIV()
	if err != nil {
		return nil, err
	}

	sealed, err := e.aead.Seal(key, iv, plaintext, nil)
	if err != nil {
		return nil, err
	}

	return &SymmetricEnvelope{
		EncryptedData: codec.Pack(iv, sealed),
		Salt:          salt,
	}, nil
}

// DecryptSymmetric re-derives the key from the envelope's salt and the
// password and recovers the plaintext. A wrong password and a tampered
// envelope both surface as ErrAuthenticationFailed.
func (e *Engine) DecryptSymmetric(env *SymmetricEnvelope, password string) ([]byte, error) {
	if env == nil || len(env.Salt) != pbkdf.SaltSize {
		return nil, ErrMalformedEnvelope
	}

	iv, ciphertext, err := codec.Unpack(env.EncryptedData)
	if err != nil {
		return nil, ErrMalformedEnvelope
	}

	key, err := e.deriveKey(password, env.Salt)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	plaintext, err := e.aead.Open(key, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
