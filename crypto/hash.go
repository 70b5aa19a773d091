package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashSize is the byte length of a Hash.
const HashSize = sha256.Size

// Hash is a fixed 32-byte SHA-256 digest. It is a comparable value type:
// equality is byte equality and the zero value is the all-zero digest.
type Hash [HashSize]byte

// Sum returns the SHA-256 hash of data.
func Sum(data []byte) Hash {
	return sha256.Sum256(data)
}

// SumV returns the SHA-256 hash of the concatenation of vals.
func SumV(vals ...[]byte) Hash {
	h := sha256.New()
	for _, v := range vals {
		h.Write(v)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

// Bytes returns the digest as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String returns the lowercase hex encoding of the digest.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero digest.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// HashFromHex decodes a 64-char hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}
