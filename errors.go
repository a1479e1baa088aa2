package envelope

import "errors"

// Sentinel errors for errors.Is() checks
var (
	// ErrAuthenticationFailed is returned when an AEAD tag check fails.
	// This covers a wrong key, a wrong password, a tampered ciphertext, a
	// tampered envelope field, and KEM decapsulation under the wrong
	// private key or recipient index. The cases are deliberately
	// indistinguishable.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrMalformedEnvelope is returned when a buffer is too short or
	// inconsistent with its declared IV, header, or chunk boundaries.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrKeyDerivation is returned when the password KDF fails, for
	// example on invalid parameters.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrRecipientIndex is returned when a group decrypt is given an index
	// outside the wrapped-key list. An in-range index that belongs to a
	// different recipient surfaces as ErrAuthenticationFailed instead.
	ErrRecipientIndex = errors.New("recipient index out of range")

	// ErrNoRecipients is returned when a group encrypt is given an empty
	// recipient list.
	ErrNoRecipients = errors.New("at least one recipient is required")

	// ErrInvalidPublicKeySize is returned when a public key is not 1568 bytes.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrInvalidPrivateKeySize is returned when a private key is not 3168 bytes.
	ErrInvalidPrivateKeySize = errors.New("invalid private key size")

	// ErrInvalidKEMCiphertextSize is returned when a KEM ciphertext is not
	// 1568 bytes.
	ErrInvalidKEMCiphertextSize = errors.New("invalid KEM ciphertext size")

	// ErrUnknownCipherSuite is returned when a cipher suite name or header
	// suite identifier is not recognized.
	ErrUnknownCipherSuite = errors.New("unknown cipher suite")

	// ErrCipherSuiteMismatch is returned when an envelope was produced
	// under a different cipher suite than the engine is configured for.
	ErrCipherSuiteMismatch = errors.New("cipher suite mismatch")

	// ErrInvalidImportData is returned when imported envelope or key data
	// is invalid.
	ErrInvalidImportData = errors.New("invalid import data")
)
