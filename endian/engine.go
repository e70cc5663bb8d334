// Package endian provides the byte order helpers used by the BoC layout.
//
// BoC header fields, reference indices and index offsets are big-endian
// integers whose width (1 to 8 bytes) is chosen per file; the trailing
// CRC32C is little-endian. EndianEngine covers the fixed-width cases and the
// N-byte helpers cover the variable ones:
//
//	buf = endian.AppendUintN(buf, uint64(len(cells)), size)
//	buf = endian.GetLittleEndianEngine().AppendUint32(buf, crc)
//
// All functions in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/tlb/errs"
)

// MaxWidth is the widest variable-width integer, in bytes.
const MaxWidth = 8

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// MinBytes returns the number of bytes needed to store v, at least 1.
func MinBytes(v uint64) int {
	n := 1
	for v >>= 8; v != 0; v >>= 8 {
		n++
	}

	return n
}

// AppendUintN appends v as a width-byte big-endian integer. It panics if
// width is outside [1, MaxWidth] or v does not fit; callers size width with
// MinBytes.
func AppendUintN(buf []byte, v uint64, width int) []byte {
	if width < 1 || width > MaxWidth {
		panic(fmt.Sprintf("endian: width %d outside [1, %d]", width, MaxWidth))
	}
	if width < MaxWidth && v>>(8*width) != 0 {
		panic(fmt.Sprintf("endian: %d does not fit in %d bytes", v, width))
	}

	for i := width - 1; i >= 0; i-- {
		buf = append(buf, byte(v>>(8*i)))
	}

	return buf
}

// UintN decodes a big-endian integer of len(b) bytes.
func UintN(b []byte) (uint64, error) {
	if len(b) < 1 || len(b) > MaxWidth {
		return 0, fmt.Errorf("%w: integer width %d outside [1, %d]", errs.ErrCorrupted, len(b), MaxWidth)
	}

	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}

	return v, nil
}
