// Package fingerprint computes content digests for files.
//
// A digest is derived from the full byte content of a file and is
// independent of file metadata (name, timestamps, permissions). Equal
// bytes always produce equal digests, so digests serve as a proxy for
// content equality during deduplication and collision detection.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/arthur-debert/filesync/pkg/errors"
)

// Size is the digest length in bytes (256 bits).
const Size = 32

// Digest is a 32-byte BLAKE3 digest of a file's content.
type Digest [Size]byte

// Hex returns the lowercase hex encoding of the digest
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// String implements fmt.Stringer
func (d Digest) String() string {
	return d.Hex()
}

// FromHex parses a hex-encoded digest as produced by Hex
func FromHex(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest encoding: %w", err)
	}
	if len(raw) != Size {
		return d, fmt.Errorf("invalid digest length: got %d bytes, want %d", len(raw), Size)
	}
	copy(d[:], raw)
	return d, nil
}

// Sum computes the digest of a byte slice
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// File computes the content digest of the file at path by streaming
// its full content through the hash. If the file cannot be opened or
// read, it returns a HASH_FILE error carrying the path and the
// underlying cause; it never panics and callers must explicitly
// decide to skip.
func File(path string) (Digest, error) {
	var d Digest

	f, err := os.Open(path)
	if err != nil {
		return d, errors.Wrapf(err, errors.ErrHashFile, "cannot open %s", path).
			WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return d, errors.Wrapf(err, errors.ErrHashFile, "cannot read %s", path).
			WithDetail("path", path)
	}

	copy(d[:], h.Sum(nil))
	return d, nil
}
