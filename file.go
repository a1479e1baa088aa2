package envelope

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/hkdf"

	"github.com/quantumvault/envelope-go/internal/aead"
)

// fileKDFContext is the HKDF info string for file session keys,
// for domain separation.
const fileKDFContext = "quantumvault:envelope:file:v1"

// fileVersion is the current file envelope format version.
const fileVersion = 1

var fileMagic = [4]byte{'Q', 'V', 'F', '1'}

// FileHeaderSize is the size of the file envelope header in bytes. The
// header is fixed-size so a reader can parse it before touching chunk
// data.
const FileHeaderSize = 4 + 1 + 1 + KEMCiphertextSize + IVSize + 4 + 4 + 8

// FileHeader describes a chunked file envelope: the KEM ciphertext that
// wraps the session key, the base IV the per-chunk IVs are derived from,
// and the chunk geometry. The serialized header is passed as associated
// data to every chunk's AEAD operation, so tampering with any header
// field (including ChunkCount and TotalSize) fails the tag check.
type FileHeader struct {
	Suite         CipherSuite
	KEMCiphertext []byte
	BaseIV        []byte
	ChunkSize     uint32
	ChunkCount    uint32
	TotalSize     uint64
}

// marshal serializes the header. The suite must be one of the known
// suites; the engine validates it at construction, before any header is
// built.
func (h *FileHeader) marshal() []byte {
	buf := make([]byte, 0, FileHeaderSize)
	buf = append(buf, fileMagic[:]...)
	buf = append(buf, fileVersion)
	id, _ := suiteID(h.Suite)
	buf = append(buf, id)
	buf = append(buf, h.KEMCiphertext...)
	buf = append(buf, h.BaseIV...)
	buf = binary.BigEndian.AppendUint32(buf, h.ChunkSize)
	buf = binary.BigEndian.AppendUint32(buf, h.ChunkCount)
	buf = binary.BigEndian.AppendUint64(buf, h.TotalSize)
	return buf
}

// ParseFileHeader parses and validates a file envelope header. The input
// must be at least FileHeaderSize bytes; extra bytes are ignored.
func ParseFileHeader(data []byte) (*FileHeader, error) {
	if len(data) < FileHeaderSize {
		return nil, fmt.Errorf("%w: header truncated", ErrMalformedEnvelope)
	}
	if !bytes.Equal(data[:4], fileMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedEnvelope)
	}
	if data[4] != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedEnvelope, data[4])
	}
	suite, err := suiteFromID(data[5])
	if err != nil {
		return nil, err
	}

	off := 6
	h := &FileHeader{
		Suite:         suite,
		KEMCiphertext: bytes.Clone(data[off : off+KEMCiphertextSize]),
	}
	off += KEMCiphertextSize
	h.BaseIV = bytes.Clone(data[off : off+IVSize])
	off += IVSize
	h.ChunkSize = binary.BigEndian.Uint32(data[off:])
	h.ChunkCount = binary.BigEndian.Uint32(data[off+4:])
	h.TotalSize = binary.BigEndian.Uint64(data[off+8:])

	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// validate checks that the chunk geometry is internally consistent:
// ChunkCount must equal ceil(TotalSize/ChunkSize).
func (h *FileHeader) validate() error {
	if h.ChunkSize == 0 || h.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk size %d out of range", ErrMalformedEnvelope, h.ChunkSize)
	}
	want := (h.TotalSize + uint64(h.ChunkSize) - 1) / uint64(h.ChunkSize)
	if uint64(h.ChunkCount) != want {
		return fmt.Errorf("%w: chunk count %d does not match total size", ErrMalformedEnvelope, h.ChunkCount)
	}
	return nil
}

// chunkPlaintextLen returns the plaintext length of chunk i.
func (h *FileHeader) chunkPlaintextLen(i uint32) int {
	if i == h.ChunkCount-1 {
		if rem := h.TotalSize % uint64(h.ChunkSize); rem != 0 {
			return int(rem)
		}
	}
	return int(h.ChunkSize)
}

// deriveFileKey derives the file session key from the KEM shared secret
// via HKDF-SHA-512, with the SHA-256 hash of the KEM ciphertext as salt.
// Unlike the message envelope, a file encrypts many blocks under one
// secret, so the secret is run through a KDF rather than used directly.
func deriveFileKey(sharedSecret, kemCiphertext []byte) ([]byte, error) {
	saltHash := sha256.Sum256(kemCiphertext)
	reader := hkdf.New(sha512.New, sharedSecret, saltHash[:], []byte(fileKDFContext))

	key := make([]byte, aead.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// chunkIV derives the IV for chunk index from the header's base IV by
// XOR-ing the big-endian counter into the trailing eight bytes. IVs are
// distinct for every chunk of a file and the session key is fresh per
// file, so no IV is ever reused under the same key.
func chunkIV(base []byte, index uint32) []byte {
	iv := bytes.Clone(base)
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], uint64(index))
	for i := range ctr {
		iv[IVSize-8+i] ^= ctr[i]
	}
	return iv
}

// EncryptFileTo encrypts size bytes from src into a chunked file envelope
// written to dst: a fixed header followed by the chunk stream. Memory use
// is bounded by the engine's chunk size. The plaintext size must be known
// up front because the header records the chunk geometry.
func (e *Engine) EncryptFileTo(dst io.Writer, src io.Reader, size int64, recipientPublicKey []byte) error {
	if size < 0 {
		return fmt.Errorf("negative size %d", size)
	}
	count := (size + int64(e.chunkSize) - 1) / int64(e.chunkSize)
	if count > math.MaxUint32 {
		return fmt.Errorf("payload of %d bytes exceeds chunk count limit at chunk size %d", size, e.chunkSize)
	}

	kemCiphertext, sharedSecret, err := e.kem.Encapsulate(recipientPublicKey)
	if err != nil {
		return err
	}
	defer zero(sharedSecret)

	sessionKey, err := deriveFileKey(sharedSecret, kemCiphertext)
	if err != nil {
		return err
	}
	defer zero(sessionKey)

	baseIV, err := e.newIV()
	if err != nil {
		return err
	}

	header := &FileHeader{
		Suite:         e.suite,
		KEMCiphertext: kemCiphertext,
		BaseIV:        baseIV,
		ChunkSize:     uint32(e.chunkSize),
		ChunkCount:    uint32(count),
		TotalSize:     uint64(size),
	}
	headerBytes := header.marshal()
	if _, err := dst.Write(headerBytes); err != nil {
		return err
	}

	buf := make([]byte, e.chunkSize)
	remaining := size
	for i := uint32(0); remaining > 0; i++ {
		n := int64(e.chunkSize)
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(src, buf[:n]); err != nil {
			return fmt.Errorf("read plaintext chunk %d: %w", i, err)
		}

		sealed, err := e.aead.Seal(sessionKey, chunkIV(baseIV, i), buf[:n], headerBytes)
		if err != nil {
			return err
		}
		if _, err := dst.Write(sealed); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

// DecryptFileFrom reads a chunked file envelope from src and writes the
// recovered plaintext to dst. Each chunk's tag is verified before its
// plaintext is written; the first failing chunk aborts the call with an
// error naming the chunk index. A truncated chunk stream is detected
// because the authenticated header records the chunk count and total
// plaintext size.
//
// On error, verified plaintext from earlier chunks may already have been
// written to dst. Callers that need all-or-nothing semantics should use
// DecryptFile or write to a temporary destination.
func (e *Engine) DecryptFileFrom(dst io.Writer, src io.Reader, recipientPrivateKey []byte) error {
	headerBytes := make([]byte, FileHeaderSize)
	if _, err := io.ReadFull(src, headerBytes); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: header truncated", ErrMalformedEnvelope)
		}
		return err
	}
	header, err := ParseFileHeader(headerBytes)
	if err != nil {
		return err
	}
	if header.Suite != e.suite {
		return fmt.Errorf("%w: envelope uses %s, engine configured for %s", ErrCipherSuiteMismatch, header.Suite, e.suite)
	}

	sharedSecret, err := e.kem.Decapsulate(header.KEMCiphertext, recipientPrivateKey)
	if err != nil {
		return err
	}
	defer zero(sharedSecret)

	sessionKey, err := deriveFileKey(sharedSecret, header.KEMCiphertext)
	if err != nil {
		return err
	}
	defer zero(sessionKey)

	buf := make([]byte, int(header.ChunkSize)+TagSize)
	for i := uint32(0); i < header.ChunkCount; i++ {
		sealed := buf[:header.chunkPlaintextLen(i)+TagSize]
		if _, err := io.ReadFull(src, sealed); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: chunk %d truncated", ErrMalformedEnvelope, i)
			}
			return err
		}

		plaintext, err := e.aead.Open(sessionKey, chunkIV(header.BaseIV, i), sealed, headerBytes)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, ErrAuthenticationFailed)
		}
		if _, err := dst.Write(plaintext); err != nil {
			return err
		}
	}
	return nil
}

// EncryptFile encrypts a byte slice into a chunked file envelope.
func (e *Engine) EncryptFile(plaintext, recipientPublicKey []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(FileHeaderSize + len(plaintext))
	err := e.EncryptFileTo(&out, bytes.NewReader(plaintext), int64(len(plaintext)), recipientPublicKey)
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecryptFile decrypts a chunked file envelope held in memory. Unlike the
// streaming form it is all-or-nothing: on any error no plaintext is
// returned. Trailing bytes after the final chunk are rejected.
func (e *Engine) DecryptFile(data, recipientPrivateKey []byte) ([]byte, error) {
	src := bytes.NewReader(data)
	var out bytes.Buffer
	if err := e.DecryptFileFrom(&out, src, recipientPrivateKey); err != nil {
		return nil, err
	}
	if src.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after final chunk", ErrMalformedEnvelope, src.Len())
	}
	return out.Bytes(), nil
}
