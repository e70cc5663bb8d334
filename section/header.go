package section

import (
	"fmt"

	"github.com/arloliu/tlb/endian"
	"github.com/arloliu/tlb/errs"
)

// ByteSource yields the next n bytes of an input. Implementations fail with
// errs.ErrExhausted when fewer than n bytes remain.
type ByteSource interface {
	Next(n int) ([]byte, error)
}

// Header is the fixed part of a serialized bag of cells.
type Header struct {
	// Magic is one of MagicGeneric, MagicIndexed or MagicIndexedCRC32C.
	Magic uint32
	// Flag carries the option bits and the index width. For the legacy magics
	// only the size bits are meaningful; HasIdx and HasCRC32C are derived
	// from the magic.
	Flag Flag
	// OffBytes is the byte width of tot_cells_size and index entries.
	OffBytes int
	// Cells is the number of serialized cells.
	Cells uint64
	// Roots is the number of root references.
	Roots uint64
	// Absent is the number of absent cells; always zero for bags produced
	// by this module.
	Absent uint64
	// TotCellsSize is the byte length of the cell data section.
	TotCellsSize uint64
}

// NewHeader returns a generic header for cells cells and roots roots whose
// cell data takes totCellsSize bytes. Index widths are the minimal ones.
//
// Parameters:
//   - cells: number of distinct cells, at least roots
//   - roots: number of root references
//   - totCellsSize: total size of the cell data section in bytes
//
// Returns:
//   - Header: header with Flag.Size and OffBytes set, options cleared
func NewHeader(cells, roots int, totCellsSize uint64) Header {
	return Header{
		Magic:        MagicGeneric,
		Flag:         NewFlag(endian.MinBytes(uint64(cells))),
		OffBytes:     endian.MinBytes(totCellsSize),
		Cells:        uint64(cells),
		Roots:        uint64(roots),
		TotCellsSize: totCellsSize,
	}
}

// IsLegacy reports whether the header uses one of the two legacy magics.
func (h Header) IsLegacy() bool {
	return h.Magic == MagicIndexed || h.Magic == MagicIndexedCRC32C
}

// HasIdx reports whether an offset index follows the root list.
func (h Header) HasIdx() bool {
	return h.IsLegacy() || h.Flag.HasIdx()
}

// HasCRC32C reports whether the bag ends with a CRC32C.
func (h Header) HasCRC32C() bool {
	if h.IsLegacy() {
		return h.Magic == MagicIndexedCRC32C
	}

	return h.Flag.HasCRC32C()
}

// HasCacheBits reports whether index entries carry a cache bit.
func (h Header) HasCacheBits() bool {
	return !h.IsLegacy() && h.Flag.HasCacheBits()
}

// HasRootList reports whether the root indices are stored explicitly.
func (h Header) HasRootList() bool {
	return !h.IsLegacy()
}

// RefSize returns the byte width of cell indices.
func (h Header) RefSize() int {
	return h.Flag.Size()
}

// Size returns the encoded length of the header in bytes.
func (h Header) Size() int {
	return MagicSize + 2 + 3*h.RefSize() + h.OffBytes
}

// BodySize returns the length of everything following the header, the
// CRC32C included.
func (h Header) BodySize() uint64 {
	size := h.TotCellsSize
	if h.HasRootList() {
		size += h.Roots * uint64(h.RefSize())
	}
	if h.HasIdx() {
		size += h.Cells * uint64(h.OffBytes)
	}
	if h.HasCRC32C() {
		size += CRC32CSize
	}

	return size
}

// AppendTo appends the encoded header to buf.
func (h Header) AppendTo(buf []byte) []byte {
	buf = endian.GetBigEndianEngine().AppendUint32(buf, h.Magic)
	buf = append(buf, byte(h.Flag), byte(h.OffBytes))

	size := h.RefSize()
	buf = endian.AppendUintN(buf, h.Cells, size)
	buf = endian.AppendUintN(buf, h.Roots, size)
	buf = endian.AppendUintN(buf, h.Absent, size)

	return endian.AppendUintN(buf, h.TotCellsSize, h.OffBytes)
}

// Bytes returns the encoded header.
func (h Header) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, h.Size()))
}

// Parse reads and validates a header from src.
func (h *Header) Parse(src ByteSource) error {
	b, err := src.Next(MagicSize + 2)
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}

	h.Magic = endian.GetBigEndianEngine().Uint32(b[:MagicSize])
	h.Flag = Flag(b[MagicSize])
	h.OffBytes = int(b[MagicSize+1])

	switch h.Magic {
	case MagicGeneric:
		if err := h.Flag.Validate(); err != nil {
			return err
		}
	case MagicIndexed, MagicIndexedCRC32C:
		h.Flag &= SizeMask
		if err := h.Flag.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %#08x", errs.ErrInvalidMagic, h.Magic)
	}

	if h.OffBytes < MinOffsetBytes || h.OffBytes > MaxOffsetBytes {
		return fmt.Errorf("%w: offset size %d outside [%d, %d]", errs.ErrCorrupted, h.OffBytes, MinOffsetBytes, MaxOffsetBytes)
	}

	size := h.RefSize()
	b, err = src.Next(3*size + h.OffBytes)
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}

	// widths are validated above, so UintN cannot fail here
	h.Cells, _ = endian.UintN(b[0:size])
	h.Roots, _ = endian.UintN(b[size : 2*size])
	h.Absent, _ = endian.UintN(b[2*size : 3*size])
	h.TotCellsSize, _ = endian.UintN(b[3*size:])

	return h.Validate()
}

// Validate checks the counts for consistency.
func (h Header) Validate() error {
	switch {
	case h.Roots > h.Cells:
		return fmt.Errorf("%w: %d roots for %d cells", errs.ErrCorrupted, h.Roots, h.Cells)
	case h.Absent > h.Cells:
		return fmt.Errorf("%w: %d absent cells for %d cells", errs.ErrCorrupted, h.Absent, h.Cells)
	case h.IsLegacy() && h.Roots != 1:
		return fmt.Errorf("%w: legacy bag with %d roots", errs.ErrCorrupted, h.Roots)
	case h.Cells*DescriptorSize > h.TotCellsSize:
		return fmt.Errorf("%w: %d cells cannot fit in %d bytes", errs.ErrCorrupted, h.Cells, h.TotCellsSize)
	case h.Cells > 0 && h.TotCellsSize > h.Cells*MaxCellSize:
		return fmt.Errorf("%w: %d bytes cannot hold only %d cells", errs.ErrCorrupted, h.TotCellsSize, h.Cells)
	}

	return nil
}

// ParseHeader parses a header from the start of data and returns it with
// its encoded size.
func ParseHeader(data []byte) (Header, int, error) {
	src := &sliceSource{data: data}

	var h Header
	if err := h.Parse(src); err != nil {
		return Header{}, 0, err
	}

	return h, src.pos, nil
}

type sliceSource struct {
	data []byte
	pos  int
}

func (s *sliceSource) Next(n int) ([]byte, error) {
	if left := len(s.data) - s.pos; n > left {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", errs.ErrExhausted, n, left)
	}

	b := s.data[s.pos : s.pos+n]
	s.pos += n

	return b, nil
}
