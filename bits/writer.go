package bits

import (
	"fmt"

	"github.com/arloliu/tlb/errs"
)

// BitWriter is the minimal bit sink: a single WriteBit operation.
type BitWriter interface {
	WriteBit(bit bool) error
}

// Writer is a bit sink with bulk operations.
//
// Every implementation must either write all requested bits or return an
// error; callers treat any error as fatal for the current value.
type Writer interface {
	BitWriter
	// WriteBits appends all bits of v.
	WriteBits(v Vec) error
	// RepeatBit appends n copies of bit.
	RepeatBit(n int, bit bool) error
}

// BitWriterFunc adapts a function to the BitWriter interface.
type BitWriterFunc func(bit bool) error

// WriteBit calls f(bit).
func (f BitWriterFunc) WriteBit(bit bool) error {
	return f(bit)
}

type extendedWriter struct {
	BitWriter
}

func (e extendedWriter) WriteBits(v Vec) error {
	for i := range v.Len() {
		if err := e.WriteBit(v.At(i)); err != nil {
			return err
		}
	}

	return nil
}

func (e extendedWriter) RepeatBit(n int, bit bool) error {
	for range n {
		if err := e.WriteBit(bit); err != nil {
			return err
		}
	}

	return nil
}

// Extend returns w as a Writer. When w already implements Writer it is
// returned as is; otherwise the bulk operations are derived from WriteBit.
func Extend(w BitWriter) Writer {
	if full, ok := w.(Writer); ok {
		return full
	}

	return extendedWriter{BitWriter: w}
}

// Counter counts the bits successfully written through it.
type Counter struct {
	w Writer
	n int
}

var _ Writer = (*Counter)(nil)

// NewCounter wraps w. A nil w counts without writing anywhere.
func NewCounter(w Writer) *Counter {
	return &Counter{w: w}
}

// WriteBit implements Writer.
func (c *Counter) WriteBit(bit bool) error {
	if c.w != nil {
		if err := c.w.WriteBit(bit); err != nil {
			return err
		}
	}
	c.n++

	return nil
}

// WriteBits implements Writer.
func (c *Counter) WriteBits(v Vec) error {
	if c.w != nil {
		if err := c.w.WriteBits(v); err != nil {
			return err
		}
	}
	c.n += v.Len()

	return nil
}

// RepeatBit implements Writer.
func (c *Counter) RepeatBit(n int, bit bool) error {
	if c.w != nil {
		if err := c.w.RepeatBit(n, bit); err != nil {
			return err
		}
	}
	c.n += n

	return nil
}

// Count returns the number of bits written so far.
func (c *Counter) Count() int {
	return c.n
}

// Unwrap returns the wrapped writer.
func (c *Counter) Unwrap() Writer {
	return c.w
}

// Limiter rejects writes that would exceed a fixed bit budget.
//
// The budget is checked before the inner writer is touched, so a rejected
// write leaves both the inner writer and the count unchanged.
type Limiter struct {
	c     Counter
	limit int
}

var _ Writer = (*Limiter)(nil)

// NewLimiter wraps w with a budget of limit bits.
func NewLimiter(w Writer, limit int) *Limiter {
	return &Limiter{c: Counter{w: w}, limit: limit}
}

// WriteBit implements Writer.
func (l *Limiter) WriteBit(bit bool) error {
	if err := l.ensure(1); err != nil {
		return err
	}

	return l.c.WriteBit(bit)
}

// WriteBits implements Writer.
func (l *Limiter) WriteBits(v Vec) error {
	if err := l.ensure(v.Len()); err != nil {
		return err
	}

	return l.c.WriteBits(v)
}

// RepeatBit implements Writer.
func (l *Limiter) RepeatBit(n int, bit bool) error {
	if err := l.ensure(n); err != nil {
		return err
	}

	return l.c.RepeatBit(n, bit)
}

// Count returns the number of bits written so far.
func (l *Limiter) Count() int {
	return l.c.n
}

// Limit returns the budget.
func (l *Limiter) Limit() int {
	return l.limit
}

// BitsLeft returns the remaining budget.
func (l *Limiter) BitsLeft() int {
	return l.limit - l.c.n
}

// Unwrap returns the wrapped writer.
func (l *Limiter) Unwrap() Writer {
	return l.c.w
}

func (l *Limiter) ensure(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative bit count %d", errs.ErrInvalidValue, n)
	}
	if l.c.n+n > l.limit {
		return fmt.Errorf("%w: max bits limit reached: %d + %d > %d", errs.ErrCapacityExceeded, l.c.n, n, l.limit)
	}

	return nil
}

// Tee duplicates every write into a secondary writer.
//
// The primary write happens first; a secondary failure is returned under the
// "tee" path segment.
type Tee struct {
	w         Writer
	secondary Writer
}

var _ Writer = (*Tee)(nil)

// NewTee returns a writer forwarding to primary and then to secondary.
func NewTee(primary, secondary Writer) *Tee {
	return &Tee{w: primary, secondary: secondary}
}

// WriteBit implements Writer.
func (t *Tee) WriteBit(bit bool) error {
	if err := t.w.WriteBit(bit); err != nil {
		return err
	}

	return errs.Context(t.secondary.WriteBit(bit), "tee")
}

// WriteBits implements Writer.
func (t *Tee) WriteBits(v Vec) error {
	if err := t.w.WriteBits(v); err != nil {
		return err
	}

	return errs.Context(t.secondary.WriteBits(v), "tee")
}

// RepeatBit implements Writer.
func (t *Tee) RepeatBit(n int, bit bool) error {
	if err := t.w.RepeatBit(n, bit); err != nil {
		return err
	}

	return errs.Context(t.secondary.RepeatBit(n, bit), "tee")
}
