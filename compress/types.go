package compress

import (
	"fmt"
	"strings"

	"github.com/arloliu/tlb/errs"
)

// Type identifies a compression algorithm on the wire. The values are
// stored in the envelope header and must never change.
type Type uint8

const (
	None Type = 0x1 // None stores the payload as is.
	Zstd Type = 0x2 // Zstd represents Zstandard compression.
	S2   Type = 0x3 // S2 represents S2 compression.
	LZ4  Type = 0x4 // LZ4 represents LZ4 block compression.
)

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Zstd:
		return "Zstd"
	case S2:
		return "S2"
	case LZ4:
		return "LZ4"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// ParseType parses a case-insensitive algorithm name such as "zstd".
func ParseType(name string) (Type, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return None, nil
	case "zstd":
		return Zstd, nil
	case "s2":
		return S2, nil
	case "lz4":
		return LZ4, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression %q", errs.ErrInvalidOption, name)
	}
}
