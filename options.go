package envelope

import (
	"fmt"
	"io"

	"github.com/quantumvault/envelope-go/internal/pbkdf"
)

// CipherSuite selects the AEAD cipher used by an engine.
type CipherSuite string

const (
	// SuiteAES256GCM is AES-256-GCM, the default suite.
	SuiteAES256GCM CipherSuite = "AES-256-GCM"
	// SuiteChaCha20Poly1305 is ChaCha20-Poly1305.
	SuiteChaCha20Poly1305 CipherSuite = "ChaCha20-Poly1305"
)

// DefaultChunkSize is the plaintext chunk size for file envelopes.
const DefaultChunkSize = 64 * 1024

// MaxChunkSize bounds the chunk size accepted in configuration and in
// parsed file headers, so a forged header cannot force a large
// allocation before any tag check.
const MaxChunkSize = 64 << 20

// engineConfig holds configuration for the engine.
type engineConfig struct {
	suite     CipherSuite
	chunkSize int
	kdfParams pbkdf.Params
	rand      io.Reader

	// capability overrides, nil means built-in
	kem  KEM
	aead AEAD
	kdf  PasswordKDF
}

// Option configures the engine.
type Option func(*engineConfig)

// WithCipherSuite selects the AEAD cipher suite.
func WithCipherSuite(suite CipherSuite) Option {
	return func(c *engineConfig) {
		c.suite = suite
	}
}

// WithChunkSize sets the plaintext chunk size for file envelopes.
func WithChunkSize(size int) Option {
	return func(c *engineConfig) {
		c.chunkSize = size
	}
}

// WithKDFParams sets the Argon2id cost parameters for password-based
// envelopes. Lower values are useful in tests; production callers should
// keep the defaults or raise them.
func WithKDFParams(time, memoryKiB uint32, threads uint8) Option {
	return func(c *engineConfig) {
		c.kdfParams = pbkdf.Params{Time: time, MemoryKiB: memoryKiB, Threads: threads}
	}
}

// WithRandom sets the random source for IVs, salts, and session keys.
// Intended for tests; production engines should keep crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(c *engineConfig) {
		c.rand = r
	}
}

// WithKEM substitutes the KEM capability, for example with a test double.
func WithKEM(kem KEM) Option {
	return func(c *engineConfig) {
		c.kem = kem
	}
}

// WithAEAD substitutes the AEAD capability.
func WithAEAD(aead AEAD) Option {
	return func(c *engineConfig) {
		c.aead = aead
	}
}

// WithPasswordKDF substitutes the password KDF capability.
func WithPasswordKDF(kdf PasswordKDF) Option {
	return func(c *engineConfig) {
		c.kdf = kdf
	}
}

func (c *engineConfig) validate() error {
	if _, err := suiteID(c.suite); err != nil {
		return err
	}
	if c.chunkSize <= 0 || c.chunkSize > MaxChunkSize {
		return fmt.Errorf("chunk size must be in (0, %d], got %d", MaxChunkSize, c.chunkSize)
	}
	if err := c.kdfParams.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return nil
}
