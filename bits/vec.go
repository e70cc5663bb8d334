package bits

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/arloliu/tlb/errs"
)

const hexDigits = "0123456789ABCDEF"

// Vec is a finite sequence of bits stored most-significant-bit first.
//
// Storage is byte aligned: buf holds exactly ceil(n/8) bytes and the bits
// past n in the last byte are always zero. The zero value is an empty Vec
// ready to be written through a pointer.
//
// Vec values returned by this package (Slice, Clone, Reader.ReadBits, ...)
// never share storage with their source, so a *Vec obtained from them can be
// written to freely.
type Vec struct {
	buf []byte
	n   int
}

var _ Writer = (*Vec)(nil)

// NewVec returns an empty Vec with room for capBits bits.
func NewVec(capBits int) *Vec {
	if capBits < 0 {
		capBits = 0
	}

	return &Vec{buf: make([]byte, 0, (capBits+7)/8)}
}

// FromBytes returns a Vec holding all bits of b. The bytes are copied.
func FromBytes(b []byte) Vec {
	buf := make([]byte, len(b))
	copy(buf, b)

	return Vec{buf: buf, n: len(b) * 8}
}

// FromBytesN returns a Vec holding the first n bits of b.
func FromBytesN(b []byte, n int) (Vec, error) {
	if n < 0 || n > len(b)*8 {
		return Vec{}, fmt.Errorf("%w: %d bits requested from %d bytes", errs.ErrInvalidValue, n, len(b))
	}

	size := (n + 7) / 8
	buf := make([]byte, size)
	copy(buf, b[:size])
	if rem := n % 8; rem != 0 {
		buf[size-1] &= ^byte(0xFF >> rem)
	}

	return Vec{buf: buf, n: n}, nil
}

// ParseBinary parses a string of '0' and '1' characters. Spaces and
// underscores are ignored so long literals can be grouped.
func ParseBinary(s string) (Vec, error) {
	v := NewVec(len(s))
	for i, c := range s {
		switch c {
		case '0':
			v.appendBit(false)
		case '1':
			v.appendBit(true)
		case ' ', '_':
		default:
			return Vec{}, fmt.Errorf("%w: invalid binary digit %q at %d", errs.ErrInvalidValue, c, i)
		}
	}

	return *v, nil
}

// MustParseBinary is like ParseBinary but panics on malformed input.
// It is intended for constants and tests.
func MustParseBinary(s string) Vec {
	v, err := ParseBinary(s)
	if err != nil {
		panic(err)
	}

	return v
}

// Len returns the number of bits.
func (v Vec) Len() int {
	return v.n
}

// IsEmpty reports whether v holds no bits.
func (v Vec) IsEmpty() bool {
	return v.n == 0
}

// At returns the bit at position i. It panics if i is out of range.
func (v Vec) At(i int) bool {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("bits: index %d out of range [0:%d]", i, v.n))
	}

	return v.buf[i/8]&(0x80>>(i%8)) != 0
}

// Bytes returns a copy of the underlying bytes. The last byte is zero padded
// when Len is not a multiple of 8.
func (v Vec) Bytes() []byte {
	out := make([]byte, len(v.buf))
	copy(out, v.buf)

	return out
}

// Clone returns an independent copy of v.
func (v Vec) Clone() Vec {
	return Vec{buf: v.Bytes(), n: v.n}
}

// Slice returns a copy of the bits in [from, to). It panics on invalid bounds.
func (v Vec) Slice(from, to int) Vec {
	if from < 0 || to < from || to > v.n {
		panic(fmt.Sprintf("bits: slice bounds [%d:%d] out of range [0:%d]", from, to, v.n))
	}

	out := NewVec(to - from)
	if from%8 == 0 {
		out.buf = append(out.buf, v.buf[from/8:(to+7)/8]...)
		out.n = to - from
		out.clearTail()

		return *out
	}

	for pos := from; pos < to; {
		take := min(64, to-pos)
		out.AppendUint(v.uintAt(pos, take), take)
		pos += take
	}

	return *out
}

// Equal reports whether v and o hold the same bit sequence.
func (v Vec) Equal(o Vec) bool {
	return v.n == o.n && bytes.Equal(v.buf, o.buf)
}

// String renders v as upper-case hex. When the length is not a multiple of
// four, a completion tag (a single 1 bit followed by zeros) is appended and
// the result is suffixed with '_', e.g. bits 1011 render as "B" and bits 101
// render as "B_".
func (v Vec) String() string {
	nibbles := (v.n + 3) / 4
	tagged := v.n%4 != 0

	src := v.buf
	if tagged {
		padded := v.Bytes()
		padded[v.n/8] |= 0x80 >> (v.n % 8)
		src = padded
	}

	var b strings.Builder
	b.Grow(nibbles + 1)
	for i := range nibbles {
		nib := src[i/2]
		if i%2 == 0 {
			nib >>= 4
		}
		b.WriteByte(hexDigits[nib&0x0F])
	}
	if tagged {
		b.WriteByte('_')
	}

	return b.String()
}

// BinaryString renders v as a string of '0' and '1' characters.
func (v Vec) BinaryString() string {
	var b strings.Builder
	b.Grow(v.n)
	for i := range v.n {
		if v.At(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}

	return b.String()
}

// WriteBit appends a single bit. It never fails.
func (v *Vec) WriteBit(bit bool) error {
	v.appendBit(bit)
	return nil
}

// WriteBits appends all bits of o. It never fails.
func (v *Vec) WriteBits(o Vec) error {
	v.appendVec(o)
	return nil
}

// RepeatBit appends n copies of bit. It never fails for n >= 0.
func (v *Vec) RepeatBit(n int, bit bool) error {
	if n < 0 {
		return fmt.Errorf("%w: negative repeat count %d", errs.ErrInvalidValue, n)
	}

	if !bit {
		newLen := v.n + n
		for len(v.buf) < (newLen+7)/8 {
			v.buf = append(v.buf, 0)
		}
		v.n = newLen

		return nil
	}

	for n > 0 {
		take := min(n, 64)
		v.AppendUint(^uint64(0)>>(64-take), take)
		n -= take
	}

	return nil
}

// AppendUint appends the lowest n bits of x, most significant first.
// n must be in [0, 64]; higher bits of x are ignored.
func (v *Vec) AppendUint(x uint64, n int) {
	for n > 0 {
		off := v.n % 8
		if off == 0 {
			v.buf = append(v.buf, 0)
		}

		free := 8 - off
		take := min(free, n)
		chunk := (x >> (n - take)) & (1<<take - 1)
		v.buf[len(v.buf)-1] |= byte(chunk << (free - take))

		v.n += take
		n -= take
	}
}

// Truncate shortens v to its first n bits. It is a no-op when n >= Len.
func (v *Vec) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= v.n {
		return
	}

	v.n = n
	v.buf = v.buf[:(n+7)/8]
	v.clearTail()
}

// Reset empties v while keeping its storage.
func (v *Vec) Reset() {
	v.buf = v.buf[:0]
	v.n = 0
}

func (v *Vec) appendBit(bit bool) {
	if v.n%8 == 0 {
		v.buf = append(v.buf, 0)
	}
	if bit {
		v.buf[v.n/8] |= 0x80 >> (v.n % 8)
	}
	v.n++
}

func (v *Vec) appendVec(o Vec) {
	if o.n == 0 {
		return
	}

	if v.n%8 == 0 {
		v.buf = append(v.buf, o.buf[:(o.n+7)/8]...)
		v.n += o.n

		return
	}

	full := o.n / 8
	for i := range full {
		v.AppendUint(uint64(o.buf[i]), 8)
	}
	if rem := o.n % 8; rem != 0 {
		v.AppendUint(uint64(o.buf[full]>>(8-rem)), rem)
	}
}

// uintAt reads n <= 64 bits starting at pos as a right-aligned integer.
// The caller guarantees pos+n <= v.n.
func (v Vec) uintAt(pos, n int) uint64 {
	var x uint64
	for n > 0 {
		off := pos % 8
		avail := 8 - off
		take := min(avail, n)

		chunk := (uint64(v.buf[pos/8]) >> (avail - take)) & (1<<take - 1)
		x = x<<take | chunk

		pos += take
		n -= take
	}

	return x
}

// clearTail zeroes the bits past n in the last byte.
func (v *Vec) clearTail() {
	if rem := v.n % 8; rem != 0 {
		v.buf[len(v.buf)-1] &= ^byte(0xFF >> rem)
	}
}
