package bits

import (
	"fmt"
	"math/big"

	"github.com/arloliu/tlb/errs"
)

// Unsigned is the set of unsigned integer types handled by Uint and VarUint.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Signed is the set of signed integer types handled by Int.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// BoolAs encodes a bool as a single bit.
type BoolAs struct{}

// Bool is the single-bit boolean strategy.
var Bool BoolAs

func (BoolAs) PackAs(w Writer, v bool) error {
	return w.WriteBit(v)
}

func (BoolAs) UnpackAs(r Reader) (bool, error) {
	return r.ReadBit()
}

// UintAs encodes an unsigned integer in exactly Bits bits.
type UintAs[T Unsigned] struct {
	Bits int
}

// Uint returns an n-bit unsigned integer strategy.
func Uint[T Unsigned](n int) UintAs[T] {
	return UintAs[T]{Bits: n}
}

func (s UintAs[T]) PackAs(w Writer, v T) error {
	return WriteUint(w, uint64(v), s.Bits)
}

func (s UintAs[T]) UnpackAs(r Reader) (T, error) {
	x, err := ReadUint(r, s.Bits)
	if err != nil {
		return 0, err
	}

	return narrowUint[T](x)
}

func narrowUint[T Unsigned](x uint64) (T, error) {
	v := T(x)
	if uint64(v) != x {
		return 0, fmt.Errorf("%w: %d overflows %T", errs.ErrInvalidValue, x, v)
	}

	return v, nil
}

// IntAs encodes a signed integer as Bits-bit two's complement.
type IntAs[T Signed] struct {
	Bits int
}

// Int returns an n-bit signed integer strategy.
func Int[T Signed](n int) IntAs[T] {
	return IntAs[T]{Bits: n}
}

func (s IntAs[T]) PackAs(w Writer, v T) error {
	return WriteInt(w, int64(v), s.Bits)
}

func (s IntAs[T]) UnpackAs(r Reader) (T, error) {
	x, err := ReadInt(r, s.Bits)
	if err != nil {
		return 0, err
	}

	v := T(x)
	if int64(v) != x {
		return 0, fmt.Errorf("%w: %d overflows %T", errs.ErrInvalidValue, x, v)
	}

	return v, nil
}

// BigUintAs encodes a non-negative *big.Int in exactly Bits bits.
type BigUintAs struct {
	Bits int
}

// BigUint returns an n-bit arbitrary precision unsigned strategy.
func BigUint(n int) BigUintAs {
	return BigUintAs{Bits: n}
}

func (s BigUintAs) PackAs(w Writer, v *big.Int) error {
	return WriteBigUint(w, v, s.Bits)
}

func (s BigUintAs) UnpackAs(r Reader) (*big.Int, error) {
	return ReadBigUint(r, s.Bits)
}

// VarUintAs encodes an unsigned integer as a LenBits-wide byte count followed
// by that many big-endian bytes (TON VarUInteger). Zero has length 0.
type VarUintAs[T Unsigned] struct {
	LenBits int
}

// VarUint returns a variable-length unsigned integer strategy.
func VarUint[T Unsigned](lenBits int) VarUintAs[T] {
	return VarUintAs[T]{LenBits: lenBits}
}

func (s VarUintAs[T]) PackAs(w Writer, v T) error {
	x := uint64(v)
	size := 0
	for rest := x; rest != 0; rest >>= 8 {
		size++
	}

	if err := WriteUint(w, uint64(size), s.LenBits); err != nil {
		return errs.Context(err, "len")
	}

	return errs.Context(WriteUint(w, x, size*8), "value")
}

func (s VarUintAs[T]) UnpackAs(r Reader) (T, error) {
	size, err := ReadUint(r, s.LenBits)
	if err != nil {
		return 0, errs.Context(err, "len")
	}
	if size > 8 {
		return 0, errs.Context(fmt.Errorf("%w: %d bytes exceed 64 bits", errs.ErrInvalidValue, size), "len")
	}

	x, err := ReadUint(r, int(size)*8)
	if err != nil {
		return 0, errs.Context(err, "value")
	}

	v, err := narrowUint[T](x)

	return v, errs.Context(err, "value")
}

// VarBigUintAs is VarUintAs for *big.Int values.
type VarBigUintAs struct {
	LenBits int
}

// VarBigUint returns a variable-length arbitrary precision strategy, e.g.
// VarBigUint(4) for TON coin amounts.
func VarBigUint(lenBits int) VarBigUintAs {
	return VarBigUintAs{LenBits: lenBits}
}

func (s VarBigUintAs) PackAs(w Writer, v *big.Int) error {
	if v == nil {
		return fmt.Errorf("%w: nil *big.Int", errs.ErrNilPointer)
	}

	size := (v.BitLen() + 7) / 8
	if err := WriteUint(w, uint64(size), s.LenBits); err != nil {
		return errs.Context(err, "len")
	}

	return errs.Context(WriteBigUint(w, v, size*8), "value")
}

func (s VarBigUintAs) UnpackAs(r Reader) (*big.Int, error) {
	size, err := ReadUint(r, s.LenBits)
	if err != nil {
		return nil, errs.Context(err, "len")
	}
	if size > 1<<16 {
		return nil, errs.Context(fmt.Errorf("%w: %d bytes", errs.ErrInvalidValue, size), "len")
	}

	v, err := ReadBigUint(r, int(size)*8)
	if err != nil {
		return nil, errs.Context(err, "value")
	}

	return v, nil
}

// FixedBytesAs encodes exactly N bytes with no length prefix.
type FixedBytesAs struct {
	N int
}

// FixedBytes returns a strategy for byte strings of length n.
func FixedBytes(n int) FixedBytesAs {
	return FixedBytesAs{N: n}
}

func (s FixedBytesAs) PackAs(w Writer, v []byte) error {
	if len(v) != s.N {
		return fmt.Errorf("%w: expected %d bytes, got %d", errs.ErrLengthMismatch, s.N, len(v))
	}

	return WriteBytes(w, v)
}

func (s FixedBytesAs) UnpackAs(r Reader) ([]byte, error) {
	return ReadBytes(r, s.N)
}

// PrefixedBytesAs encodes a LenBits-wide byte count followed by the bytes.
type PrefixedBytesAs struct {
	LenBits int
}

// PrefixedBytes returns a length-prefixed byte string strategy.
func PrefixedBytes(lenBits int) PrefixedBytesAs {
	return PrefixedBytesAs{LenBits: lenBits}
}

func (s PrefixedBytesAs) PackAs(w Writer, v []byte) error {
	if err := WriteUint(w, uint64(len(v)), s.LenBits); err != nil {
		return errs.Context(err, "len")
	}

	return errs.Context(WriteBytes(w, v), "value")
}

func (s PrefixedBytesAs) UnpackAs(r Reader) ([]byte, error) {
	n, err := ReadUint(r, s.LenBits)
	if err != nil {
		return nil, errs.Context(err, "len")
	}
	if left, ok := r.(Bounded); ok && left.BitsLeft() >= 0 && n > uint64(left.BitsLeft()/8) {
		return nil, errs.Context(fmt.Errorf("%w: need %d bytes, have %d bits", errs.ErrExhausted, n, left.BitsLeft()), "value")
	}

	v, err := ReadBytes(r, int(n))
	if err != nil {
		return nil, errs.Context(err, "value")
	}

	return v, nil
}

// FixedBitsAs encodes a Vec of exactly N bits.
type FixedBitsAs struct {
	N int
}

// FixedBits returns a strategy for bit strings of length n.
func FixedBits(n int) FixedBitsAs {
	return FixedBitsAs{N: n}
}

func (s FixedBitsAs) PackAs(w Writer, v Vec) error {
	if v.Len() != s.N {
		return fmt.Errorf("%w: expected %d bits, got %d", errs.ErrLengthMismatch, s.N, v.Len())
	}

	return w.WriteBits(v)
}

func (s FixedBitsAs) UnpackAs(r Reader) (Vec, error) {
	return r.ReadBits(s.N)
}

// RestAs writes a Vec as is and reads back everything the reader has left.
// Unpacking requires a Bounded reader.
type RestAs struct{}

// Rest is the remaining-bits strategy.
var Rest RestAs

func (RestAs) PackAs(w Writer, v Vec) error {
	return w.WriteBits(v)
}

func (RestAs) UnpackAs(r Reader) (Vec, error) {
	b, ok := r.(Bounded)
	if !ok || b.BitsLeft() < 0 {
		return Vec{}, fmt.Errorf("%w: reader of type %T does not report remaining bits", errs.ErrUnsupported, r)
	}

	return r.ReadBits(b.BitsLeft())
}
