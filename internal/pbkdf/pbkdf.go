// Package pbkdf derives AEAD keys from passwords using Argon2id
// (memory-hard, RFC 9106). Derivation is deterministic: the same
// (password, salt, params) triple always yields the same key.
package pbkdf

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize is the salt size in bytes.
	SaltSize = 16
	// KeySize is the derived key size in bytes (AEAD key length).
	KeySize = 32
)

var (
	// ErrInvalidSaltSize is returned when the salt size is invalid.
	ErrInvalidSaltSize = errors.New("invalid salt size")

	// ErrInvalidParams is returned when the Argon2 parameters are invalid.
	ErrInvalidParams = errors.New("invalid KDF parameters")
)

// Params holds the Argon2id cost parameters.
type Params struct {
	// Time is the number of passes over memory.
	Time uint32
	// MemoryKiB is the memory cost in KiB.
	MemoryKiB uint32
	// Threads is the parallelism degree.
	Threads uint8
}

// DefaultParams are interactive-login-strength parameters: roughly a few
// hundred milliseconds on commodity hardware. Never call Derive with these
// on a hot per-message path without caching the result.
var DefaultParams = Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}

// Validate checks that the parameters are usable by Argon2id.
func (p Params) Validate() error {
	if p.Time == 0 {
		return fmt.Errorf("%w: time must be at least 1", ErrInvalidParams)
	}
	if p.MemoryKiB < 8*uint32(p.Threads) {
		return fmt.Errorf("%w: memory must be at least 8 KiB per thread", ErrInvalidParams)
	}
	if p.Threads == 0 {
		return fmt.Errorf("%w: threads must be at least 1", ErrInvalidParams)
	}
	return nil
}

// Derive computes a 32-byte key from the password and a 16-byte salt.
func Derive(password string, salt []byte, p Params) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSaltSize, len(salt), SaltSize)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Threads, KeySize), nil
}
