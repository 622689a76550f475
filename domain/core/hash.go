package core

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a content digest of one or more columns
type Fingerprint uint64

// String returns the hex representation
func (f Fingerprint) String() string {
	return strconv.FormatUint(uint64(f), 16)
}

// MarshalText renders the fingerprint as hex so JSON clients keep every bit
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// IsZero checks if the fingerprint was never computed
func (f Fingerprint) IsZero() bool {
	return f == 0
}

// Hasher accumulates column cells into a Fingerprint
type Hasher struct {
	d *xxhash.Digest
}

// NewHasher creates a streaming fingerprint builder
func NewHasher() *Hasher {
	return &Hasher{d: xxhash.New()}
}

// WriteString adds a cell or header to the digest, separated from the next one
func (h *Hasher) WriteString(s string) {
	_, _ = h.d.WriteString(s)
	_, _ = h.d.Write([]byte{0x1f})
}

// Sum returns the accumulated fingerprint
func (h *Hasher) Sum() Fingerprint {
	return Fingerprint(h.d.Sum64())
}

// FingerprintOf hashes a single string
func FingerprintOf(s string) Fingerprint {
	return Fingerprint(xxhash.Sum64String(s))
}
