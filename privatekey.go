package envelope

import (
	"github.com/quantumvault/envelope-go/internal/pbkdf"
)

// PrivateKeyEnvelope protects a KEM private key at rest under a password.
// It follows the symmetric envelope pattern with the IV stored as its own
// field. Recovering the key requires the exact (password, salt, iv)
// triple; tampering with any field is rejected by the AEAD tag check.
type PrivateKeyEnvelope struct {
	EncryptedPrivateKey []byte
	Salt                []byte
	IV                  []byte
}

// EncryptPrivateKey wraps a private key under a password. The derived key
// is wiped before the call returns and is never logged or retained.
func (e *Engine) EncryptPrivateKey(privateKey []byte, password string) (*PrivateKeyEnvelope, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, ErrInvalidPrivateKeySize
	}

	salt, err := e.newSalt()
	if err != nil {
		return nil, err
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

	sealed, err := e.aead.Seal(key, iv, privateKey, nil)
	if err != nil {
		return nil, err
	}

	return &PrivateKeyEnvelope{
		EncryptedPrivateKey: sealed,
		Salt:                salt,
		IV:                  iv,
	}, nil
}

// DecryptPrivateKey recovers the protected key pair. The private key is
// decrypted exactly once; the embedded public key is extracted from the
// recovered bytes without a second decryption.
func (e *Engine) DecryptPrivateKey(env *PrivateKeyEnvelope, password string) (*KeyPair, error) {
	if env == nil || len(env.Salt) != pbkdf.SaltSize || len(env.IV) != IVSize {
		return nil, ErrMalformedEnvelope
	}

	key, err := e.deriveKey(password, env.Salt)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	privateKey, err := e.aead.Open(key, env.IV, env.EncryptedPrivateKey, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	kp, err := KeyPairFromPrivateKey(privateKey)
	if err != nil {
		zero(privateKey)
		return nil, ErrMalformedEnvelope
	}
	return kp, nil
}
