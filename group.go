package envelope

import (
	"github.com/quantumvault/envelope-go/internal/codec"
)

// WrappedKey is one recipient's independently decryptable copy of a group
// session key: the recipient's KEM ciphertext plus the session key
// AEAD-wrapped under the encapsulated secret (packed as IV||ciphertext||tag).
type WrappedKey struct {
	KEMCiphertext     []byte
	WrappedSessionKey []byte
}

// GroupEnvelope is one message shared by N recipients. The payload is
// encrypted once under a random session key; each recipient holds a
// positional wrapped copy of that key.
//
// Recipient identity is purely positional: no recipient identifier is
// embedded, so the index passed to DecryptFromGroup and the private key
// must correspond to the same public key from the original recipient
// list, in the original order. Callers must keep that list stable between
// encryption and decryption; a reordered list fails safely but loses the
// message.
type GroupEnvelope struct {
	EncryptedData []byte
	WrappedKeys   []WrappedKey
}

// EncryptForGroup encrypts plaintext once and wraps the session key
// independently for each recipient, in the order supplied.
func (e *Engine) EncryptForGroup(plaintext []byte, recipientPublicKeys [][]byte) (*GroupEnvelope, error) {
	if len(recipientPublicKeys) == 0 {
		return nil, ErrNoRecipients
	}

	// The session key is random, not derived from any recipient's KEM
	// operation, so no recipient's material is privileged.
	sessionKey, err := e.newSessionKey()
	if err != nil {
		return nil, err
	}
	defer zero(sessionKey)

	iv, err := e.newIV()
	if err != nil {
		return nil, err
	}
	sealed, err := e.aead.Seal(sessionKey, iv, plaintext, nil)
	if err != nil {
		return nil, err
	}

	env := &GroupEnvelope{
		EncryptedData: codec.Pack(iv, sealed),
		WrappedKeys:   make([]WrappedKey, 0, len(recipientPublicKeys)),
	}

	for _, publicKey := range recipientPublicKeys {
		wrapped, err := e.wrapSessionKey(sessionKey, publicKey)
		if err != nil {
			return nil, err
		}
		env.WrappedKeys = append(env.WrappedKeys, *wrapped)
	}
	return env, nil
}

func (e *Engine) wrapSessionKey(sessionKey, recipientPublicKey []byte) (*WrappedKey, error) {
	kemCiphertext, sharedSecret, err := e.kem.Encapsulate(recipientPublicKey)
	if err != nil {
		return nil, err
	}
	defer zero(sharedSecret)

	iv, err := e.newIV()
	if err != nil {
		return nil, err
	}
	sealed, err := e.aead.Seal(sharedSecret, iv, sessionKey, nil)
	if err != nil {
		return nil, err
	}

	return &WrappedKey{
		KEMCiphertext:     kemCiphertext,
		WrappedSessionKey: codec.Pack(iv, sealed),
	}, nil
}

// DecryptFromGroup recovers the payload as the recipient at the given
// position in the original recipient list. An out-of-range index returns
// ErrRecipientIndex; an in-range index whose wrapped key does not match
// the private key surfaces as ErrAuthenticationFailed, indistinguishable
// from tampering.
func (e *Engine) DecryptFromGroup(env *GroupEnvelope, recipientPrivateKey []byte, index int) ([]byte, error) {
	if env == nil {
		return nil, ErrMalformedEnvelope
	}
	if index < 0 || index >= len(env.WrappedKeys) {
		return nil, ErrRecipientIndex
	}
	wrapped := env.WrappedKeys[index]

	wrapIV, wrapCiphertext, err := codec.Unpack(wrapped.WrappedSessionKey)
	if err != nil {
		return nil, ErrMalformedEnvelope
	}
	iv, ciphertext, err := codec.Unpack(env.EncryptedData)
	if err != nil {
		return nil, ErrMalformedEnvelope
	}

	sharedSecret, err := e.kem.Decapsulate(wrapped.KEMCiphertext, recipientPrivateKey)
	if err != nil {
		return nil, err
	}
	defer zero(sharedSecret)

	sessionKey, err := e.aead.Open(sharedSecret, wrapIV, wrapCiphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	defer zero(sessionKey)

	plaintext, err := e.aead.Open(sessionKey, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
