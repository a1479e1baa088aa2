// Package codec implements the byte layout shared by every AEAD-protected
// payload: a fixed 12-byte IV prefix followed by ciphertext||tag. It also
// provides the base64url encoding used for exported envelope fields.
// The codec carries no cryptographic logic, only layout.
package codec

import (
	"encoding/base64"
	"errors"
)

// IVSize is the length of the IV prefix in bytes.
const IVSize = 12

// ErrShortBuffer is returned by Unpack when the input cannot contain an IV.
var ErrShortBuffer = errors.New("buffer shorter than IV prefix")

// Pack concatenates the IV and the ciphertext into one buffer.
// Pack and Unpack are inverses: Unpack(Pack(iv, ct)) returns iv and ct.
func Pack(iv, ciphertext []byte) []byte {
	packed := make([]byte, 0, len(iv)+len(ciphertext))
	packed = append(packed, iv...)
	packed = append(packed, ciphertext...)
	return packed
}

// Unpack splits a packed buffer into its IV prefix and ciphertext remainder.
// The returned slices alias the input.
func Unpack(packed []byte) (iv, ciphertext []byte, err error) {
	if len(packed) < IVSize {
		return nil, nil, ErrShortBuffer
	}
	return packed[:IVSize], packed[IVSize:], nil
}

// ToBase64URL encodes bytes to URL-safe base64 without padding.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromBase64URL decodes URL-safe base64 without padding.
func FromBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
