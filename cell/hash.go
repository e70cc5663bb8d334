package cell

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/errs"
	"github.com/arloliu/tlb/section"
)

// HashSize is the size of a cell hash in bytes.
const HashSize = 32

// Hash is the representation hash of a cell.
type Hash [HashSize]byte

// String returns the lower-case hex form of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parses the 64-character hex form of a hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != HashSize {
		return h, fmt.Errorf("%w: invalid hash %q", errs.ErrInvalidValue, s)
	}
	copy(h[:], b)

	return h, nil
}

// HashAlgorithm selects the function used for cell identity. All cells of
// one graph must use the same algorithm.
type HashAlgorithm uint8

const (
	// SHA256 is the TON representation hash and the default.
	SHA256 HashAlgorithm = iota
	// BLAKE3 is a faster alternative for graphs that never leave this
	// module; its hashes are not TON compatible.
	BLAKE3
)

func (a HashAlgorithm) String() string {
	switch a {
	case SHA256:
		return "SHA256"
	case BLAKE3:
		return "BLAKE3"
	default:
		return fmt.Sprintf("HashAlgorithm(%d)", uint8(a))
	}
}

// Valid reports whether a is a known algorithm.
func (a HashAlgorithm) Valid() bool {
	return a == SHA256 || a == BLAKE3
}

func (a HashAlgorithm) sum(data []byte) Hash {
	if a == BLAKE3 {
		hasher := blake3.New()
		_, _ = hasher.Write(data)

		var h Hash
		copy(h[:], hasher.Sum(nil))

		return h
	}

	return sha256.Sum256(data)
}

// maxReprSize bounds the representation of a full cell: descriptor, data,
// and a depth plus hash per reference.
const maxReprSize = 2 + 128 + MaxRefs*(2+HashSize)

// reprHash computes the representation hash and depth of a cell with the
// given data and children.
func reprHash(algo HashAlgorithm, data bits.Vec, refs []*Cell) (Hash, int) {
	var buf [maxReprSize]byte
	repr := buf[:0]

	d := section.NewDescriptor(len(refs), false, 0, data.Len())
	repr = append(repr, d.D1, d.D2)
	repr = section.AppendPadded(repr, data)

	depth := 0
	for _, ref := range refs {
		repr = append(repr, byte(ref.depth>>8), byte(ref.depth))
		depth = max(depth, ref.depth+1)
	}
	for _, ref := range refs {
		repr = append(repr, ref.hash[:]...)
	}

	return algo.sum(repr), depth
}
