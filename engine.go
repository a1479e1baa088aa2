package envelope

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/quantumvault/envelope-go/internal/aead"
	"github.com/quantumvault/envelope-go/internal/mlkem"
	"github.com/quantumvault/envelope-go/internal/pbkdf"
)

// KEM is the key encapsulation capability consumed by the engine.
// The built-in implementation is ML-KEM-1024.
type KEM interface {
	// GenerateKeyPair creates a fresh key pair as raw bytes.
	GenerateKeyPair() (publicKey, privateKey []byte, err error)
	// Encapsulate produces a KEM ciphertext and a 32-byte shared secret
	// for the holder of publicKey.
	Encapsulate(publicKey []byte) (kemCiphertext, sharedSecret []byte, err error)
	// Decapsulate recovers the shared secret from a KEM ciphertext.
	// A mismatched private key yields a different secret rather than an
	// error; the AEAD tag is the sole mismatch detector.
	Decapsulate(kemCiphertext, privateKey []byte) (sharedSecret []byte, err error)
}

// AEAD is the authenticated cipher capability. Seal returns
// ciphertext||tag; Open verifies the tag before returning plaintext.
type AEAD interface {
	Seal(key, iv, plaintext, aad []byte) ([]byte, error)
	Open(key, iv, ciphertext, aad []byte) ([]byte, error)
}

// PasswordKDF is the memory-hard password derivation capability.
// Derive must be deterministic for identical (password, salt) inputs.
// It is computationally expensive by design; never call it on a hot
// per-message path without caching.
type PasswordKDF interface {
	Derive(password string, salt []byte) (key []byte, err error)
}

// Engine performs all envelope operations. Engines are stateless aside
// from configuration and are safe for concurrent use; every call owns its
// own IVs, salts, and session keys and discards them before returning.
type Engine struct {
	kem       KEM
	aead      AEAD
	kdf       PasswordKDF
	suite     CipherSuite
	chunkSize int
	rand      io.Reader
}

// New creates an engine. With no options it uses ML-KEM-1024, AES-256-GCM,
// Argon2id at interactive-login strength, 64 KiB file chunks, and
// crypto/rand.
func New(opts ...Option) (*Engine, error) {
	cfg := engineConfig{
		suite:     SuiteAES256GCM,
		chunkSize: DefaultChunkSize,
		kdfParams: pbkdf.DefaultParams,
		rand:      rand.Reader,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		kem:       cfg.kem,
		aead:      cfg.aead,
		kdf:       cfg.kdf,
		suite:     cfg.suite,
		chunkSize: cfg.chunkSize,
		rand:      cfg.rand,
	}
	if e.kem == nil {
		e.kem = mlkemKEM{}
	}
	if e.aead == nil {
		e.aead = suiteCipher(cfg.suite)
	}
	if e.kdf == nil {
		e.kdf = argon2KDF{params: cfg.kdfParams}
	}
	return e, nil
}

// Suite reports the engine's cipher suite.
func (e *Engine) Suite() CipherSuite {
	return e.suite
}

// randBytes fills a fresh buffer from the engine's random source.
func (e *Engine) randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(e.rand, b); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return b, nil
}

func (e *Engine) newIV() ([]byte, error)         { return e.randBytes(IVSize) }
func (e *Engine) newSalt() ([]byte, error)       { return e.randBytes(SaltSize) }
func (e *Engine) newSessionKey() ([]byte, error) { return e.randBytes(SharedSecretSize) }

// zero wipes secret material once the operation that owns it completes.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// suiteID maps a cipher suite to its one-byte header identifier.
func suiteID(suite CipherSuite) (byte, error) {
	switch suite {
	case SuiteAES256GCM:
		return 0x01, nil
	case SuiteChaCha20Poly1305:
		return 0x02, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCipherSuite, suite)
	}
}

func suiteFromID(id byte) (CipherSuite, error) {
	switch id {
	case 0x01:
		return SuiteAES256GCM, nil
	case 0x02:
		return SuiteChaCha20Poly1305, nil
	default:
		return "", fmt.Errorf("%w: identifier 0x%02x", ErrUnknownCipherSuite, id)
	}
}

func suiteCipher(suite CipherSuite) AEAD {
	if suite == SuiteChaCha20Poly1305 {
		return aeadCipher{aead.ChaCha20Poly1305{}}
	}
	return aeadCipher{aead.AESGCM{}}
}

// aeadCipher adapts an internal cipher to the AEAD capability, folding
// every Open failure into ErrAuthenticationFailed so callers cannot
// distinguish a wrong key from tampered ciphertext.
type aeadCipher struct {
	c aead.Cipher
}

func (a aeadCipher) Seal(key, iv, plaintext, aad []byte) ([]byte, error) {
	return a.c.Seal(key, iv, plaintext, aad)
}

func (a aeadCipher) Open(key, iv, ciphertext, aad []byte) ([]byte, error) {
	plaintext, err := a.c.Open(key, iv, ciphertext, aad)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// mlkemKEM adapts the internal ML-KEM-1024 wrapper to the KEM capability.
type mlkemKEM struct{}

func (mlkemKEM) GenerateKeyPair() ([]byte, []byte, error) {
	return mlkem.GenerateKeyPair()
}

func (mlkemKEM) Encapsulate(publicKey []byte) ([]byte, []byte, error) {
	ct, secret, err := mlkem.Encapsulate(publicKey)
	if err != nil {
		return nil, nil, translateKEMError(err)
	}
	return ct, secret, nil
}

func (mlkemKEM) Decapsulate(kemCiphertext, privateKey []byte) ([]byte, error) {
	secret, err := mlkem.Decapsulate(kemCiphertext, privateKey)
	if err != nil {
		return nil, translateKEMError(err)
	}
	return secret, nil
}

func translateKEMError(err error) error {
	switch {
	case errors.Is(err, mlkem.ErrInvalidPublicKeySize):
		return ErrInvalidPublicKeySize
	case errors.Is(err, mlkem.ErrInvalidPrivateKeySize):
		return ErrInvalidPrivateKeySize
	case errors.Is(err, mlkem.ErrInvalidCiphertextSize):
		return ErrInvalidKEMCiphertextSize
	default:
		return err
	}
}

// argon2KDF adapts Argon2id to the PasswordKDF capability.
type argon2KDF struct {
	params pbkdf.Params
}

func (k argon2KDF) Derive(password string, salt []byte) ([]byte, error) {
	key, err := pbkdf.Derive(password, salt, k.params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return key, nil
}

// deriveKey runs the engine's password KDF and folds capability errors
// into the public taxonomy.
func (e *Engine) deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := e.kdf.Derive(password, salt)
	if err != nil {
		if errors.Is(err, ErrKeyDerivation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return key, nil
}
