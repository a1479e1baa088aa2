package envelope

import (
	"github.com/quantumvault/envelope-go/internal/codec"
)

// MessageEnvelope is one encrypted message: the packed AEAD payload
// (IV||ciphertext||tag) alongside the KEM ciphertext that transports the
// key. The format is deliberately minimal for high-frequency small
// messages: the KEM shared secret keys the AEAD directly, with no
// intermediate wrapping layer.
type MessageEnvelope struct {
	EncryptedData []byte
	KEMCiphertext []byte
}

// EncryptMessage encrypts plaintext for the holder of recipientPublicKey.
// Every call performs a fresh KEM encapsulation and generates a fresh IV.
func (e *Engine) EncryptMessage(plaintext, recipientPublicKey []byte) (*MessageEnvelope, error) {
	kemCiphertext, sharedSecret, err := e.kem.Encapsulate(recipientPublicKey)
	if err != nil {
		return nil, err
	}
	defer zero(sharedSecret)

	iv, err := e.newIV()
	if err != nil {
		return nil, err
	}

	sealed, err := e.aead.Seal(sharedSecret, iv, plaintext, nil)
	if err != nil {
		return nil, err
	}

	return &MessageEnvelope{
		EncryptedData: codec.Pack(iv, sealed),
		KEMCiphertext: kemCiphertext,
	}, nil
}

// DecryptMessage recovers the plaintext from a message envelope.
//
// Decapsulation under the wrong private key yields a different shared
// secret rather than an error, so any mismatch or tampering (of the
// payload or of the KEM ciphertext) surfaces uniformly as
// ErrAuthenticationFailed.
func (e *Engine) DecryptMessage(env *MessageEnvelope, recipientPrivateKey []byte) ([]byte, error) {
	if env == nil {
		return nil, ErrMalformedEnvelope
	}

	iv, ciphertext, err := codec.Unpack(env.EncryptedData)
	if err != nil {
		return nil, ErrMalformedEnvelope
	}

	sharedSecret, err := e.kem.Decapsulate(env.KEMCiphertext, recipientPrivateKey)
	if err != nil {
		return nil, err
	}
	defer zero(sharedSecret)

	plaintext, err := e.aead.Open(sharedSecret, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
