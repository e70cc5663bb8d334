package cell

import (
	"fmt"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/errs"
	"github.com/arloliu/tlb/internal/options"
)

// BuilderOption configures a Builder.
type BuilderOption = options.Option[*Builder]

// WithHashAlgorithm selects the hash algorithm of the built cell. References
// stored into the builder must use the same algorithm.
func WithHashAlgorithm(algo HashAlgorithm) BuilderOption {
	return options.New(func(b *Builder) error {
		if !algo.Valid() {
			return fmt.Errorf("%w: %s", errs.ErrInvalidOption, algo)
		}
		b.algo = algo

		return nil
	})
}

// Builder accumulates bits and references for a single cell.
//
// Every write checks the remaining capacity first: a write that does not fit
// fails with errs.ErrCapacityExceeded and leaves the builder unchanged.
// Store, Pack and StoreAs additionally roll back everything written by a
// failing value, so a builder never holds half of a value.
type Builder struct {
	data bits.Vec
	refs []*Cell
	algo HashAlgorithm
	err  error
}

var _ bits.Writer = (*Builder)(nil)

// NewBuilder creates an empty builder. An invalid option is reported by
// Build.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{data: *bits.NewVec(MaxBits)}
	if err := options.Apply(b, opts...); err != nil {
		b.err = err
	}

	return b
}

// WriteBit implements bits.Writer.
func (b *Builder) WriteBit(bit bool) error {
	if err := b.ensureBits(1); err != nil {
		return err
	}

	return b.data.WriteBit(bit)
}

// WriteBits implements bits.Writer.
func (b *Builder) WriteBits(v bits.Vec) error {
	if err := b.ensureBits(v.Len()); err != nil {
		return err
	}

	return b.data.WriteBits(v)
}

// RepeatBit implements bits.Writer.
func (b *Builder) RepeatBit(n int, bit bool) error {
	if err := b.ensureBits(n); err != nil {
		return err
	}

	return b.data.RepeatBit(n, bit)
}

// StoreRef appends a reference to c.
func (b *Builder) StoreRef(c *Cell) error {
	if c == nil {
		return fmt.Errorf("%w: nil reference", errs.ErrNilPointer)
	}
	if err := b.ensureRefs(1); err != nil {
		return err
	}
	if c.algo != b.algo {
		return fmt.Errorf("%w: reference hashed with %s, builder uses %s", errs.ErrInvalidValue, c.algo, b.algo)
	}

	b.refs = append(b.refs, c)

	return nil
}

// Append stores the bits and references of c directly into the builder.
func (b *Builder) Append(c *Cell) error {
	if c == nil {
		return fmt.Errorf("%w: nil cell", errs.ErrNilPointer)
	}
	if err := b.ensureBits(c.data.Len()); err != nil {
		return err
	}
	if err := b.ensureRefs(len(c.refs)); err != nil {
		return err
	}
	if len(c.refs) > 0 && c.algo != b.algo {
		return fmt.Errorf("%w: references hashed with %s, builder uses %s", errs.ErrInvalidValue, c.algo, b.algo)
	}

	_ = b.data.WriteBits(c.data)
	b.refs = append(b.refs, c.refs...)

	return nil
}

// Store writes s into the builder, rolling back on failure.
func (b *Builder) Store(s Serializer) error {
	return b.atomic(func() error { return s.StoreCell(b) })
}

// Pack writes the native bit encoding of p into the builder, rolling back on
// failure.
func (b *Builder) Pack(p bits.Packer) error {
	return b.atomic(func() error { return p.PackBits(b) })
}

// BitLen returns the number of bits written so far.
func (b *Builder) BitLen() int {
	return b.data.Len()
}

// RefCount returns the number of references stored so far.
func (b *Builder) RefCount() int {
	return len(b.refs)
}

// BitsLeft returns the remaining bit capacity.
func (b *Builder) BitsLeft() int {
	return MaxBits - b.data.Len()
}

// RefsLeft returns the remaining reference capacity.
func (b *Builder) RefsLeft() int {
	return MaxRefs - len(b.refs)
}

// HashAlgorithm returns the algorithm the built cell will use.
func (b *Builder) HashAlgorithm() HashAlgorithm {
	return b.algo
}

// Build finalizes the cell. The builder can keep being used afterwards; the
// cell does not share storage with it.
func (b *Builder) Build() (*Cell, error) {
	if b.err != nil {
		return nil, b.err
	}

	c := &Cell{
		data: b.data.Clone(),
		algo: b.algo,
	}
	if len(b.refs) > 0 {
		c.refs = make([]*Cell, len(b.refs))
		copy(c.refs, b.refs)
	}

	c.hash, c.depth = reprHash(c.algo, c.data, c.refs)
	if c.depth > MaxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", errs.ErrCapacityExceeded, c.depth, MaxDepth)
	}

	return c, nil
}

// Reset empties the builder and keeps its hash algorithm.
func (b *Builder) Reset() {
	b.data.Reset()
	clear(b.refs)
	b.refs = b.refs[:0]
}

func (b *Builder) atomic(fn func() error) error {
	bitLen, refCount := b.data.Len(), len(b.refs)
	if err := fn(); err != nil {
		b.rollback(bitLen, refCount)
		return err
	}

	return nil
}

func (b *Builder) rollback(bitLen, refCount int) {
	b.data.Truncate(bitLen)
	clear(b.refs[refCount:])
	b.refs = b.refs[:refCount]
}

func (b *Builder) ensureBits(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative bit count %d", errs.ErrInvalidValue, n)
	}
	if left := b.BitsLeft(); n > left {
		return fmt.Errorf("%w: need %d bits, have %d", errs.ErrCapacityExceeded, n, left)
	}

	return nil
}

func (b *Builder) ensureRefs(n int) error {
	if left := b.RefsLeft(); n > left {
		return fmt.Errorf("%w: need %d refs, have %d", errs.ErrCapacityExceeded, n, left)
	}

	return nil
}
