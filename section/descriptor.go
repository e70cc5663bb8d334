package section

import (
	"fmt"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/errs"
)

// Descriptor holds the two bytes that precede the data of a serialized cell.
type Descriptor struct {
	D1 byte
	D2 byte
}

// NewDescriptor computes the descriptor of a cell with refs references and
// bitLen data bits.
func NewDescriptor(refs int, exotic bool, level int, bitLen int) Descriptor {
	d1 := byte(refs) + byte(level)<<5
	if exotic {
		d1 += 8
	}

	return Descriptor{
		D1: d1,
		D2: byte(bitLen/8 + (bitLen+7)/8),
	}
}

// ParseDescriptor decodes and validates two descriptor bytes.
func ParseDescriptor(b []byte) (Descriptor, error) {
	if len(b) < DescriptorSize {
		return Descriptor{}, fmt.Errorf("%w: need %d descriptor bytes, have %d", errs.ErrExhausted, DescriptorSize, len(b))
	}

	d := Descriptor{D1: b[0], D2: b[1]}

	return d, d.Validate()
}

// RefCount returns the number of references.
func (d Descriptor) RefCount() int {
	return int(d.D1 & 0x07)
}

// IsExotic reports whether the exotic bit is set.
func (d Descriptor) IsExotic() bool {
	return d.D1&0x08 != 0
}

// HasStoredHashes reports whether hashes are stored inline after the
// descriptor.
func (d Descriptor) HasStoredHashes() bool {
	return d.D1&0x10 != 0
}

// Level returns the level mask.
func (d Descriptor) Level() int {
	return int(d.D1 >> 5)
}

// IsAbsent reports whether the descriptor marks an absent cell.
func (d Descriptor) IsAbsent() bool {
	return d.RefCount() == 7
}

// DataSize returns the padded data length in bytes.
func (d Descriptor) DataSize() int {
	return int(d.D2+1) / 2
}

// IsAligned reports whether the data fills whole bytes, i.e. carries no
// completion tag.
func (d Descriptor) IsAligned() bool {
	return d.D2%2 == 0
}

// Validate checks that d describes a cell this module can represent:
// an ordinary level-0 cell without stored hashes.
func (d Descriptor) Validate() error {
	switch {
	case d.IsAbsent():
		return fmt.Errorf("%w: absent cell", errs.ErrUnsupported)
	case d.IsExotic():
		return fmt.Errorf("%w: exotic cell", errs.ErrUnsupported)
	case d.Level() != 0:
		return fmt.Errorf("%w: cell level %d", errs.ErrUnsupported, d.Level())
	case d.HasStoredHashes():
		return fmt.Errorf("%w: stored cell hashes", errs.ErrUnsupported)
	case d.RefCount() > MaxCellRefs:
		return fmt.Errorf("%w: %d references", errs.ErrCorrupted, d.RefCount())
	case d.DataSize() > MaxCellDataSize:
		return fmt.Errorf("%w: %d data bytes", errs.ErrCorrupted, d.DataSize())
	}

	return nil
}

// Bytes returns d1 and d2.
func (d Descriptor) Bytes() [DescriptorSize]byte {
	return [DescriptorSize]byte{d.D1, d.D2}
}

// AppendPadded appends the cell data form of v: its bytes with a completion
// tag when the length is not a multiple of 8.
func AppendPadded(buf []byte, v bits.Vec) []byte {
	data := v.Bytes()
	if rem := v.Len() % 8; rem != 0 {
		data[len(data)-1] |= 0x80 >> rem
	}

	return append(buf, data...)
}

// ParsePadded reverses AppendPadded for data described by d.
func ParsePadded(d Descriptor, data []byte) (bits.Vec, error) {
	if len(data) != d.DataSize() {
		return bits.Vec{}, fmt.Errorf("%w: need %d data bytes, have %d", errs.ErrExhausted, d.DataSize(), len(data))
	}
	if d.IsAligned() {
		return bits.FromBytes(data), nil
	}

	last := data[len(data)-1]
	if last == 0 {
		return bits.Vec{}, fmt.Errorf("%w: missing completion tag", errs.ErrCorrupted)
	}

	trailing := 0
	for last&(1<<trailing) == 0 {
		trailing++
	}
	if trailing == 7 {
		return bits.Vec{}, fmt.Errorf("%w: completion tag fills a whole byte", errs.ErrCorrupted)
	}

	return bits.FromBytesN(data, len(data)*8-trailing-1)
}
