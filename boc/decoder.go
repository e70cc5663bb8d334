package boc

import (
	"fmt"
	"hash"
	"hash/crc32"

	"go.uber.org/zap"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/cell"
	"github.com/arloliu/tlb/endian"
	"github.com/arloliu/tlb/errs"
	"github.com/arloliu/tlb/internal/pool"
	"github.com/arloliu/tlb/section"
)

// Decoder parses bags with a fixed configuration.
//
// A Decoder holds no per-call state and is safe for concurrent use.
type Decoder struct {
	cfg Config
}

// NewDecoder creates a decoder from opts.
func NewDecoder(opts ...Option) (*Decoder, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Decoder{cfg: cfg}, nil
}

// Decode parses a bag that occupies all of data.
//
// When the flag byte announces a CRC32C, the last four bytes of data are
// checked before any other header field is interpreted, so a damaged byte
// anywhere after the magic is reported as ErrChecksumMismatch.
func (d *Decoder) Decode(data []byte) (*Bag, error) {
	checked, err := verifyTrailingCRC(data)
	if err != nil {
		// a valid bag followed by extra bytes
		if _, n, perr := d.decodeSlice(data, false); perr == nil && n < len(data) {
			return nil, fmt.Errorf("%w: %d bytes after bag of cells", errs.ErrTrailingData, len(data)-n)
		}

		return nil, d.reject(err)
	}

	bag, n, err := d.decodeSlice(data, checked)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d bytes after bag of cells", errs.ErrTrailingData, len(data)-n)
	}

	return bag, nil
}

// DecodePrefix parses a bag from the start of data and returns it with the
// number of bytes it occupied.
func (d *Decoder) DecodePrefix(data []byte) (*Bag, int, error) {
	return d.decodeSlice(data, false)
}

// decodeSlice parses a bag from the start of data. checked reports that the
// trailing checksum has already been verified over all of data.
func (d *Decoder) decodeSlice(data []byte, checked bool) (*Bag, int, error) {
	src := &sliceSource{data: data}
	precheck := src.verifyCRC
	if checked {
		precheck = func(section.Header) error { return nil }
	}

	bag, err := d.decode(src, precheck, func() uint32 {
		return crc32.Checksum(data[:src.pos], castagnoli)
	})
	if err != nil {
		return nil, 0, err
	}

	return bag, src.pos, nil
}

// DecodeBits parses a bag from a bit stream. Bits after the bag are left
// unread.
func (d *Decoder) DecodeBits(r bits.Reader) (*Bag, error) {
	sum := crc32.New(castagnoli)
	src := &bitSource{r: bits.NewTeeReader(r, newHashWriter(sum))}

	return d.decode(src, nil, sum.Sum32)
}

// rawCell is a parsed but not yet built cell.
type rawCell struct {
	data bits.Vec
	refs [section.MaxCellRefs]int
	n    int
}

var rawCellPool = pool.NewSlicePool[rawCell]()

// decode parses a bag from src. When the whole input is at hand, precheck
// verifies the checksum right after the header so that any damaged byte is
// reported as a checksum mismatch. Otherwise crc, the checksum of everything
// consumed so far, is compared at the end.
func (d *Decoder) decode(src section.ByteSource, precheck func(section.Header) error, crc func() uint32) (*Bag, error) {
	var h section.Header
	if err := h.Parse(src); err != nil {
		return nil, d.reject(err)
	}
	if h.Absent > 0 {
		return nil, d.reject(fmt.Errorf("%w: %d absent cells", errs.ErrUnsupported, h.Absent))
	}
	if h.Cells > uint64(d.cfg.maxCells) {
		return nil, d.reject(fmt.Errorf("%w: %d cells exceed the limit of %d", errs.ErrCapacityExceeded, h.Cells, d.cfg.maxCells))
	}
	if sized, ok := src.(interface{ Remaining() int }); ok && h.BodySize() > uint64(sized.Remaining()) {
		return nil, d.reject(fmt.Errorf("%w: body needs %d bytes, have %d", errs.ErrExhausted, h.BodySize(), sized.Remaining()))
	}

	if precheck != nil {
		if err := precheck(h); err != nil {
			return nil, d.reject(err)
		}
	}

	cells := int(h.Cells)
	refSize := h.RefSize()

	rootIdx := []int{0}
	if h.HasRootList() {
		b, err := src.Next(int(h.Roots) * refSize)
		if err != nil {
			return nil, d.reject(fmt.Errorf("root list: %w", err))
		}

		rootIdx = make([]int, h.Roots)
		for i := range rootIdx {
			idx, _ := endian.UintN(b[i*refSize : (i+1)*refSize])
			if idx >= h.Cells {
				return nil, d.reject(fmt.Errorf("%w: root %d points to cell %d of %d", errs.ErrCorrupted, i, idx, cells))
			}
			rootIdx[i] = int(idx)
		}
	}

	var index []byte
	if h.HasIdx() {
		b, err := src.Next(cells * h.OffBytes)
		if err != nil {
			return nil, d.reject(fmt.Errorf("index: %w", err))
		}
		index = b
	}

	body, err := src.Next(int(h.TotCellsSize))
	if err != nil {
		return nil, d.reject(fmt.Errorf("cell data: %w", err))
	}

	raws, cleanup := rawCellPool.Get(cells)
	defer cleanup()

	var offset int
	for i := range raws {
		n, err := parseCell(body[offset:], i, cells, refSize, &raws[i])
		if err != nil {
			return nil, d.reject(errs.Context(errs.Index(err, i), "cells"))
		}
		offset += n

		if index != nil {
			entry, _ := endian.UintN(index[i*h.OffBytes : (i+1)*h.OffBytes])
			if h.HasCacheBits() {
				entry >>= 1
			}
			if entry != uint64(offset) {
				return nil, d.reject(fmt.Errorf("%w: index entry %d is %d, cell ends at %d", errs.ErrCorrupted, i, entry, offset))
			}
		}
	}
	if uint64(offset) != h.TotCellsSize {
		return nil, d.reject(fmt.Errorf("%w: tot_cells_size is %d, cells take %d", errs.ErrCorrupted, h.TotCellsSize, offset))
	}

	if h.HasCRC32C() {
		var want uint32
		if precheck == nil {
			want = crc()
		}
		b, err := src.Next(section.CRC32CSize)
		if err != nil {
			return nil, d.reject(fmt.Errorf("crc32c: %w", err))
		}
		if precheck == nil {
			if err := checkCRC(endian.GetLittleEndianEngine().Uint32(b), want); err != nil {
				return nil, d.reject(err)
			}
		}
	}

	built := make([]*cell.Cell, cells)
	for i := cells - 1; i >= 0; i-- {
		c, err := d.build(&raws[i], built)
		if err != nil {
			return nil, d.reject(errs.Context(errs.Index(err, i), "cells"))
		}
		built[i] = c
	}

	bag := &Bag{roots: make([]*cell.Cell, len(rootIdx))}
	for i, idx := range rootIdx {
		bag.roots[i] = built[idx]
	}

	Logger().Debug("decoded bag of cells",
		zap.Int("cells", cells),
		zap.Int("roots", len(rootIdx)),
		zap.Uint64("cell_bytes", h.TotCellsSize),
		zap.Stringer("flag", h.Flag),
		zap.Bool("legacy", h.IsLegacy()),
	)

	return bag, nil
}

// parseCell parses the cell at the start of b into raw and returns its
// serialized size.
func parseCell(b []byte, self, cells, refSize int, raw *rawCell) (int, error) {
	if len(b) < section.DescriptorSize {
		return 0, fmt.Errorf("%w: descriptor truncated", errs.ErrCorrupted)
	}

	desc, err := section.ParseDescriptor(b)
	if err != nil {
		return 0, err
	}

	n := section.DescriptorSize + desc.DataSize() + desc.RefCount()*refSize
	if len(b) < n {
		return 0, fmt.Errorf("%w: cell needs %d bytes, %d left in cell data", errs.ErrCorrupted, n, len(b))
	}

	pos := section.DescriptorSize
	raw.data, err = section.ParsePadded(desc, b[pos:pos+desc.DataSize()])
	if err != nil {
		return 0, err
	}
	pos += desc.DataSize()

	raw.n = desc.RefCount()
	for i := range raw.n {
		idx, _ := endian.UintN(b[pos : pos+refSize])
		pos += refSize

		switch {
		case idx >= uint64(cells):
			return 0, fmt.Errorf("%w: reference %d points to cell %d of %d", errs.ErrCorrupted, i, idx, cells)
		case idx <= uint64(self):
			return 0, fmt.Errorf("%w: reference %d points back to cell %d", errs.ErrCycle, i, idx)
		}
		raw.refs[i] = int(idx)
	}

	return n, nil
}

func (d *Decoder) build(raw *rawCell, built []*cell.Cell) (*cell.Cell, error) {
	b := cell.NewBuilder(cell.WithHashAlgorithm(d.cfg.algo))
	if err := b.WriteBits(raw.data); err != nil {
		return nil, err
	}
	for _, idx := range raw.refs[:raw.n] {
		if err := b.StoreRef(built[idx]); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

func (d *Decoder) reject(err error) error {
	Logger().Debug("rejected bag of cells", zap.Error(err))
	return err
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

func (s *sliceSource) Remaining() int {
	return len(s.data) - s.pos
}

// verifyCRC checks the trailing checksum of the bag described by h, whose
// header has just been consumed.
func (s *sliceSource) verifyCRC(h section.Header) error {
	if !h.HasCRC32C() {
		return nil
	}

	end := uint64(s.pos) + h.BodySize()
	if end > uint64(len(s.data)) {
		return fmt.Errorf("%w: body needs %d bytes, have %d", errs.ErrExhausted, h.BodySize(), s.Remaining())
	}

	crcPos := int(end) - section.CRC32CSize
	stored := endian.GetLittleEndianEngine().Uint32(s.data[crcPos:end])

	return checkCRC(stored, crc32.Checksum(s.data[:crcPos], castagnoli))
}

// verifyTrailingCRC checks the checksum of a bag that occupies all of data,
// reading only its magic and flag byte. It reports false when the bag carries
// no checksum or the prefix is too short to tell.
func verifyTrailingCRC(data []byte) (bool, error) {
	if len(data) < section.MagicSize+1+section.CRC32CSize {
		return false, nil
	}

	h := section.Header{
		Magic: endian.GetBigEndianEngine().Uint32(data),
		Flag:  section.Flag(data[section.MagicSize]),
	}
	switch h.Magic {
	case section.MagicGeneric, section.MagicIndexed, section.MagicIndexedCRC32C:
	default:
		return false, nil
	}
	if !h.HasCRC32C() {
		return false, nil
	}

	crcPos := len(data) - section.CRC32CSize
	stored := endian.GetLittleEndianEngine().Uint32(data[crcPos:])

	return true, checkCRC(stored, crc32.Checksum(data[:crcPos], castagnoli))
}

func checkCRC(stored, computed uint32) error {
	if stored != computed {
		return fmt.Errorf("%w: %w: stored %08x, computed %08x", errs.ErrCorrupted, errs.ErrChecksumMismatch, stored, computed)
	}

	return nil
}

// bitSource reads whole bytes from a bit stream.
type bitSource struct {
	r bits.Reader
}

func (s *bitSource) Next(n int) ([]byte, error) {
	v, err := s.r.ReadBits(n * 8)
	if err != nil {
		return nil, err
	}

	return v.Bytes(), nil
}

// hashWriter feeds the whole bytes written to it into a hash.
type hashWriter struct {
	h       hash.Hash
	pending bits.Vec
}

var _ bits.Writer = (*hashWriter)(nil)

func newHashWriter(h hash.Hash) *hashWriter {
	return &hashWriter{h: h}
}

func (w *hashWriter) WriteBit(bit bool) error {
	_ = w.pending.WriteBit(bit)
	w.flush()

	return nil
}

func (w *hashWriter) WriteBits(v bits.Vec) error {
	_ = w.pending.WriteBits(v)
	w.flush()

	return nil
}

func (w *hashWriter) RepeatBit(n int, bit bool) error {
	if err := w.pending.RepeatBit(n, bit); err != nil {
		return err
	}
	w.flush()

	return nil
}

func (w *hashWriter) flush() {
	full := w.pending.Len() / 8 * 8
	if full == 0 {
		return
	}

	_, _ = w.h.Write(w.pending.Slice(0, full).Bytes())
	w.pending = w.pending.Slice(full, w.pending.Len())
}
