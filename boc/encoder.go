package boc

import (
	"fmt"
	"hash/crc32"
	"io"

	"go.uber.org/zap"

	"github.com/arloliu/tlb/cell"
	"github.com/arloliu/tlb/endian"
	"github.com/arloliu/tlb/errs"
	"github.com/arloliu/tlb/internal/dedup"
	"github.com/arloliu/tlb/internal/pool"
	"github.com/arloliu/tlb/section"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Encoder serializes bags with a fixed configuration.
//
// An Encoder holds no per-call state and is safe for concurrent use.
type Encoder struct {
	cfg Config
}

// NewEncoder creates an encoder from opts.
func NewEncoder(opts ...Option) (*Encoder, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// Encode serializes bag.
func (e *Encoder) Encode(bag *Bag) ([]byte, error) {
	buf := pool.GetBoCBuffer()
	defer pool.PutBoCBuffer(buf)

	if err := e.encodeTo(buf, bag); err != nil {
		return nil, err
	}

	return buf.Copy(), nil
}

// EncodeTo serializes bag into w and returns the number of bytes written.
// Nothing is written when encoding fails.
func (e *Encoder) EncodeTo(w io.Writer, bag *Bag) (int64, error) {
	buf := pool.GetBoCBuffer()
	defer pool.PutBoCBuffer(buf)

	if err := e.encodeTo(buf, bag); err != nil {
		return 0, err
	}

	return buf.WriteTo(w)
}

// layout is the numbered cell set of a bag.
type layout struct {
	cells   []*cell.Cell
	post    *dedup.Tracker[cell.Hash, *cell.Cell]
	parents []int
}

func (l *layout) index(c *cell.Cell) int {
	idx, _ := l.post.Index(c.Hash())
	return len(l.cells) - 1 - idx
}

// collect numbers every cell reachable from roots, see the package
// documentation for the order.
func collect(roots []*cell.Cell, withParents bool) (*layout, error) {
	if len(roots) == 0 {
		return &layout{post: dedup.NewTracker[cell.Hash, *cell.Cell](0)}, nil
	}

	algo := roots[0].HashAlgorithm()
	post := dedup.NewTracker[cell.Hash, *cell.Cell](len(roots))

	var visit func(c *cell.Cell)
	visit = func(c *cell.Cell) {
		if post.Contains(c.Hash()) {
			return
		}
		for i := c.RefCount() - 1; i >= 0; i-- {
			visit(c.Ref(i))
		}
		post.Add(c.Hash(), c)
	}

	for i := len(roots) - 1; i >= 0; i-- {
		if roots[i].HashAlgorithm() != algo {
			return nil, fmt.Errorf("%w: root %d hashed with %s, root 0 with %s", errs.ErrInvalidValue, i, roots[i].HashAlgorithm(), algo)
		}
		visit(roots[i])
	}

	items := post.Items()
	l := &layout{
		cells: make([]*cell.Cell, len(items)),
		post:  post,
	}
	for i, c := range items {
		l.cells[len(items)-1-i] = c
	}

	if withParents {
		l.parents = make([]int, len(l.cells))
		for _, c := range l.cells {
			for i := range c.RefCount() {
				l.parents[l.index(c.Ref(i))]++
			}
		}
	}

	return l, nil
}

func (e *Encoder) encodeTo(buf *pool.ByteBuffer, bag *Bag) error {
	if bag == nil {
		return fmt.Errorf("%w: nil bag", errs.ErrNilPointer)
	}
	for i, root := range bag.roots {
		if root == nil {
			return errs.Index(fmt.Errorf("%w: nil root", errs.ErrNilPointer), i)
		}
	}

	l, err := collect(bag.roots, e.cfg.cacheBits)
	if err != nil {
		return err
	}

	refSize := endian.MinBytes(uint64(len(l.cells)))

	var tot uint64
	for _, c := range l.cells {
		tot += cellSize(c, refSize)
	}

	h := section.NewHeader(len(l.cells), len(bag.roots), tot)
	h.Flag.SetHasIdx(e.cfg.index)
	h.Flag.SetHasCRC32C(e.cfg.crc32c)
	h.Flag.SetHasCacheBits(e.cfg.cacheBits)
	if e.cfg.cacheBits {
		h.OffBytes = endian.MinBytes(tot<<1 | 1)
	}

	size := uint64(h.Size()) + h.BodySize()
	buf.Grow(int(size))

	out := h.AppendTo(buf.Bytes())
	for _, root := range bag.roots {
		out = endian.AppendUintN(out, uint64(l.index(root)), refSize)
	}

	if h.HasIdx() {
		var offset uint64
		for i, c := range l.cells {
			offset += cellSize(c, refSize)
			entry := offset
			if h.HasCacheBits() {
				entry <<= 1
				if l.parents[i] > 1 {
					entry |= 1
				}
			}
			out = endian.AppendUintN(out, entry, h.OffBytes)
		}
	}

	for _, c := range l.cells {
		d := section.NewDescriptor(c.RefCount(), false, 0, c.BitLen())
		out = append(out, d.D1, d.D2)
		out = section.AppendPadded(out, c.Bits())
		for i := range c.RefCount() {
			out = endian.AppendUintN(out, uint64(l.index(c.Ref(i))), refSize)
		}
	}

	if h.HasCRC32C() {
		out = endian.GetLittleEndianEngine().AppendUint32(out, crc32.Checksum(out, castagnoli))
	}
	buf.B = out

	Logger().Debug("encoded bag of cells",
		zap.Int("cells", len(l.cells)),
		zap.Int("roots", len(bag.roots)),
		zap.Int("bytes", len(out)),
		zap.Stringer("flag", h.Flag),
	)

	return nil
}

func cellSize(c *cell.Cell, refSize int) uint64 {
	return uint64(section.DescriptorSize + (c.BitLen()+7)/8 + c.RefCount()*refSize)
}
