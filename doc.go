// Package envelope implements hybrid post-quantum envelope encryption:
// single-message encryption, password-only symmetric encryption, chunked
// large-object encryption, multi-recipient group encryption, and
// private-key-at-rest protection.
//
// # Algorithm Suite
//
// The package composes the following cryptographic algorithms:
//
//   - ML-KEM-1024 (NIST FIPS 203): Post-quantum key encapsulation
//     mechanism for establishing shared secrets. Public keys are 1568
//     bytes, private keys 3168 bytes.
//
//   - AES-256-GCM (default) or ChaCha20-Poly1305: Authenticated
//     encryption with associated data (AEAD) for all payloads, producing
//     ciphertext plus a 16-byte integrity tag.
//
//   - Argon2id (RFC 9106): Memory-hard password derivation for the
//     symmetric and private-key envelopes. Deliberately slow; cache
//     derived material at the call site rather than re-deriving per
//     message.
//
//   - HKDF-SHA-512 (RFC 5869): Session-key derivation for chunked file
//     envelopes with domain separation.
//
// # Envelope Family
//
// Every AEAD-protected payload shares one byte layout: a 12-byte IV
// followed by ciphertext and tag. On top of that:
//
//   - [Engine.EncryptMessage] keys the AEAD directly with a fresh KEM
//     shared secret, keeping the format minimal for small messages.
//   - [Engine.EncryptSymmetric] derives the key from a password and a
//     16-byte salt; no KEM is involved.
//   - [Engine.EncryptPrivateKey] applies the same pattern with a KEM
//     private key as the payload.
//   - [Engine.EncryptFile] splits large payloads into fixed-size chunks,
//     each independently authenticated under a counter-derived IV, behind
//     a self-describing header that is bound to every chunk as associated
//     data.
//   - [Engine.EncryptForGroup] encrypts a payload once under a random
//     session key and wraps that key independently for each recipient.
//
// # Security Model
//
// Decryption fails closed: either the full plaintext is recovered and
// authenticated, or an error is returned and nothing else. Failures never
// reveal more than their category; a wrong key, a wrong password, and a
// tampered ciphertext all surface as [ErrAuthenticationFailed].
//
// AEAD IVs MUST be unique per key. The engine generates a fresh random IV
// for every single-shot operation and derives per-chunk IVs from a random
// base for file envelopes; reuse of an IV under the same key breaks the
// cipher entirely.
//
// Shared secrets, session keys, and password-derived keys are transient:
// each call creates, uses, and wipes its own key material. They are never
// logged or persisted outside their wrapped form.
//
// # Basic Usage
//
//	eng, err := envelope.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	kp, err := eng.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	env, err := eng.EncryptMessage([]byte("hello"), kp.PublicKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plaintext, err := eng.DecryptMessage(env, kp.PrivateKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Engines are stateless and safe for concurrent use. The KEM, AEAD, and
// password-KDF capabilities can each be substituted through options for
// testing or algorithm migration.
package envelope
