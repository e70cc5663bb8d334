package bits

import (
	"fmt"

	"github.com/arloliu/tlb/errs"
)

// BitReader is the minimal bit source: a single ReadBit operation.
type BitReader interface {
	ReadBit() (bool, error)
}

// Reader is a bit source with bulk operations. Reading past the end fails
// with errs.ErrExhausted; implementations never return a short result.
type Reader interface {
	BitReader
	// ReadBits reads exactly n bits.
	ReadBits(n int) (Vec, error)
	// SkipBits discards exactly n bits.
	SkipBits(n int) error
}

// Bounded is implemented by readers that know how many bits remain.
type Bounded interface {
	BitsLeft() int
}

// BitReaderFunc adapts a function to the BitReader interface.
type BitReaderFunc func() (bool, error)

// ReadBit calls f().
func (f BitReaderFunc) ReadBit() (bool, error) {
	return f()
}

type extendedReader struct {
	BitReader
}

func (e extendedReader) ReadBits(n int) (Vec, error) {
	if n < 0 {
		return Vec{}, fmt.Errorf("%w: negative bit count %d", errs.ErrInvalidValue, n)
	}

	out := NewVec(n)
	for range n {
		bit, err := e.ReadBit()
		if err != nil {
			return Vec{}, err
		}
		out.appendBit(bit)
	}

	return *out, nil
}

func (e extendedReader) SkipBits(n int) error {
	for range n {
		if _, err := e.ReadBit(); err != nil {
			return err
		}
	}

	return nil
}

// ExtendReader returns r as a Reader, deriving the bulk operations from
// ReadBit when r does not provide them.
func ExtendReader(r BitReader) Reader {
	if full, ok := r.(Reader); ok {
		return full
	}

	return extendedReader{BitReader: r}
}

// VecReader reads bits sequentially from a Vec.
type VecReader struct {
	v   Vec
	pos int
}

var (
	_ Reader  = (*VecReader)(nil)
	_ Bounded = (*VecReader)(nil)
)

// NewReader returns a reader positioned at the first bit of v.
func NewReader(v Vec) *VecReader {
	return &VecReader{v: v}
}

// NewBytesReader returns a reader over all bits of b. The bytes are not copied
// and must not be modified while the reader is in use.
func NewBytesReader(b []byte) *VecReader {
	return &VecReader{v: Vec{buf: b, n: len(b) * 8}}
}

// ReadBit implements Reader.
func (r *VecReader) ReadBit() (bool, error) {
	if r.pos >= r.v.n {
		return false, fmt.Errorf("%w: need 1 bit, have 0", errs.ErrExhausted)
	}

	bit := r.v.At(r.pos)
	r.pos++

	return bit, nil
}

// ReadBits implements Reader.
func (r *VecReader) ReadBits(n int) (Vec, error) {
	if err := r.ensure(n); err != nil {
		return Vec{}, err
	}

	out := r.v.Slice(r.pos, r.pos+n)
	r.pos += n

	return out, nil
}

// SkipBits implements Reader.
func (r *VecReader) SkipBits(n int) error {
	if err := r.ensure(n); err != nil {
		return err
	}
	r.pos += n

	return nil
}

// ReadUint reads n <= 64 bits as an unsigned integer without allocating.
func (r *VecReader) ReadUint(n int) (uint64, error) {
	if n > 64 {
		return 0, fmt.Errorf("%w: %d bits exceed 64", errs.ErrInvalidValue, n)
	}
	if err := r.ensure(n); err != nil {
		return 0, err
	}

	x := r.v.uintAt(r.pos, n)
	r.pos += n

	return x, nil
}

// BitsLeft returns the number of unread bits.
func (r *VecReader) BitsLeft() int {
	return r.v.n - r.pos
}

// Pos returns the number of bits consumed so far.
func (r *VecReader) Pos() int {
	return r.pos
}

// Remaining returns a copy of the unread bits without consuming them.
func (r *VecReader) Remaining() Vec {
	return r.v.Slice(r.pos, r.v.n)
}

func (r *VecReader) ensure(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative bit count %d", errs.ErrInvalidValue, n)
	}
	if left := r.v.n - r.pos; n > left {
		return fmt.Errorf("%w: need %d bits, have %d", errs.ErrExhausted, n, left)
	}

	return nil
}

// TeeReader copies every bit it reads from r into w. Skipped bits are
// copied as well.
type TeeReader struct {
	r Reader
	w Writer
}

var _ Reader = (*TeeReader)(nil)

// NewTeeReader returns a reader that records everything read from r into w.
func NewTeeReader(r Reader, w Writer) *TeeReader {
	return &TeeReader{r: r, w: w}
}

// ReadBit implements Reader.
func (t *TeeReader) ReadBit() (bool, error) {
	bit, err := t.r.ReadBit()
	if err != nil {
		return false, err
	}

	if err := t.w.WriteBit(bit); err != nil {
		return false, errs.Context(err, "tee")
	}

	return bit, nil
}

// ReadBits implements Reader.
func (t *TeeReader) ReadBits(n int) (Vec, error) {
	v, err := t.r.ReadBits(n)
	if err != nil {
		return Vec{}, err
	}
	if err := t.w.WriteBits(v); err != nil {
		return Vec{}, errs.Context(err, "tee")
	}

	return v, nil
}

// SkipBits implements Reader.
func (t *TeeReader) SkipBits(n int) error {
	_, err := t.ReadBits(n)
	return err
}

// BitsLeft forwards to the wrapped reader. It returns -1 when the wrapped
// reader is not Bounded.
func (t *TeeReader) BitsLeft() int {
	if b, ok := t.r.(Bounded); ok {
		return b.BitsLeft()
	}

	return -1
}
