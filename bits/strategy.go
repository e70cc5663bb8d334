package bits

import (
	"fmt"
	"math"

	"github.com/arloliu/tlb/errs"
)

// Strategy selects the wire encoding of a T independently of T itself.
//
// Strategies are plain values, usually zero sized, passed explicitly at the
// call site. The same Go type can be encoded in several ways by choosing a
// different strategy:
//
//	bits.EncodeAs(uint64(7), bits.Uint[uint64](32))
//	bits.EncodeAs(uint64(7), bits.VarUint[uint64](4))
type Strategy[T any] interface {
	PackAs(w Writer, v T) error
	UnpackAs(r Reader) (T, error)
}

// StrategyWith is a strategy that needs extra arguments on every call.
// Bind turns it into a plain Strategy.
type StrategyWith[T, A any] interface {
	PackAsWith(w Writer, v T, args A) error
	UnpackAsWith(r Reader, args A) (T, error)
}

type bound[T, A any] struct {
	s    StrategyWith[T, A]
	args A
}

// Bind fixes the arguments of s.
func Bind[T, A any](s StrategyWith[T, A], args A) Strategy[T] {
	return bound[T, A]{s: s, args: args}
}

func (b bound[T, A]) PackAs(w Writer, v T) error {
	return b.s.PackAsWith(w, v, b.args)
}

func (b bound[T, A]) UnpackAs(r Reader) (T, error) {
	return b.s.UnpackAsWith(r, b.args)
}

// Same encodes T with its own Packer/Unpacker implementation. Wrapping a
// strategy in Same changes nothing on the wire.
type Same[T any, P Codec[T]] struct{}

// AsSame returns the native strategy of T.
func AsSame[T any, P Codec[T]]() Same[T, P] {
	return Same[T, P]{}
}

func (Same[T, P]) PackAs(w Writer, v T) error {
	return P(&v).PackBits(w)
}

func (Same[T, P]) UnpackAs(r Reader) (T, error) {
	return Unpack[T, P](r)
}

// PtrAs lifts a strategy over T to *T. Packing a nil pointer fails with
// errs.ErrNilPointer; unpacking allocates.
type PtrAs[T any] struct {
	Inner Strategy[T]
}

// Ptr returns a strategy for *T encoded exactly like T.
func Ptr[T any](inner Strategy[T]) PtrAs[T] {
	return PtrAs[T]{Inner: inner}
}

func (s PtrAs[T]) PackAs(w Writer, v *T) error {
	if v == nil {
		return fmt.Errorf("%w: %T", errs.ErrNilPointer, v)
	}

	return s.Inner.PackAs(w, *v)
}

func (s PtrAs[T]) UnpackAs(r Reader) (*T, error) {
	v, err := s.Inner.UnpackAs(r)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// ArrayAs encodes exactly N elements with no length prefix.
type ArrayAs[T any] struct {
	Elem Strategy[T]
	N    int
}

// Array returns a fixed-length sequence strategy.
func Array[T any](elem Strategy[T], n int) ArrayAs[T] {
	return ArrayAs[T]{Elem: elem, N: n}
}

func (s ArrayAs[T]) PackAs(w Writer, vs []T) error {
	if len(vs) != s.N {
		return fmt.Errorf("%w: expected %d elements, got %d", errs.ErrLengthMismatch, s.N, len(vs))
	}

	return packSeq(w, vs, s.Elem)
}

func (s ArrayAs[T]) UnpackAs(r Reader) ([]T, error) {
	return unpackSeq(r, s.N, s.Elem)
}

// ListAs encodes a LenBits-wide element count followed by the elements.
// On a Bounded reader every element must take at least one bit.
type ListAs[T any] struct {
	Elem    Strategy[T]
	LenBits int
}

// List returns a length-prefixed sequence strategy.
func List[T any](elem Strategy[T], lenBits int) ListAs[T] {
	return ListAs[T]{Elem: elem, LenBits: lenBits}
}

func (s ListAs[T]) PackAs(w Writer, vs []T) error {
	if err := WriteUint(w, uint64(len(vs)), s.LenBits); err != nil {
		return errs.Context(err, "len")
	}

	return packSeq(w, vs, s.Elem)
}

func (s ListAs[T]) UnpackAs(r Reader) ([]T, error) {
	n, err := ReadUint(r, s.LenBits)
	if err != nil {
		return nil, errs.Context(err, "len")
	}
	if n > math.MaxInt {
		return nil, errs.Context(fmt.Errorf("%w: %d elements", errs.ErrInvalidValue, n), "len")
	}
	if left, ok := r.(Bounded); ok && left.BitsLeft() >= 0 && n > uint64(left.BitsLeft()) {
		return nil, errs.Context(fmt.Errorf("%w: %d elements, have %d bits", errs.ErrExhausted, n, left.BitsLeft()), "len")
	}

	return unpackSeq(r, int(n), s.Elem)
}

func packSeq[T any](w Writer, vs []T, elem Strategy[T]) error {
	for i, v := range vs {
		if err := elem.PackAs(w, v); err != nil {
			return errs.Index(err, i)
		}
	}

	return nil
}

// maxPrealloc caps the capacity reserved from an untrusted count.
const maxPrealloc = 1024

func unpackSeq[T any](r Reader, n int, elem Strategy[T]) ([]T, error) {
	out := make([]T, 0, max(0, min(n, maxPrealloc)))
	for i := range n {
		v, err := elem.UnpackAs(r)
		if err != nil {
			return nil, errs.Index(err, i)
		}
		out = append(out, v)
	}

	return out, nil
}

// Tuple2 is a pair of values encoded slot by slot.
type Tuple2[T0, T1 any] struct {
	V0 T0
	V1 T1
}

// Tuple3 is a triple of values encoded slot by slot.
type Tuple3[T0, T1, T2 any] struct {
	V0 T0
	V1 T1
	V2 T2
}

// Tuple2As encodes each slot of a Tuple2 with its own strategy.
type Tuple2As[T0, T1 any] struct {
	S0 Strategy[T0]
	S1 Strategy[T1]
}

// Pair returns a Tuple2 strategy.
func Pair[T0, T1 any](s0 Strategy[T0], s1 Strategy[T1]) Tuple2As[T0, T1] {
	return Tuple2As[T0, T1]{S0: s0, S1: s1}
}

func (s Tuple2As[T0, T1]) PackAs(w Writer, v Tuple2[T0, T1]) error {
	if err := s.S0.PackAs(w, v.V0); err != nil {
		return errs.Slot(err, 0)
	}

	return errs.Slot(s.S1.PackAs(w, v.V1), 1)
}

func (s Tuple2As[T0, T1]) UnpackAs(r Reader) (Tuple2[T0, T1], error) {
	var out Tuple2[T0, T1]
	var err error
	if out.V0, err = s.S0.UnpackAs(r); err != nil {
		return Tuple2[T0, T1]{}, errs.Slot(err, 0)
	}
	if out.V1, err = s.S1.UnpackAs(r); err != nil {
		return Tuple2[T0, T1]{}, errs.Slot(err, 1)
	}

	return out, nil
}

// Tuple3As encodes each slot of a Tuple3 with its own strategy.
type Tuple3As[T0, T1, T2 any] struct {
	S0 Strategy[T0]
	S1 Strategy[T1]
	S2 Strategy[T2]
}

// Triple returns a Tuple3 strategy.
func Triple[T0, T1, T2 any](s0 Strategy[T0], s1 Strategy[T1], s2 Strategy[T2]) Tuple3As[T0, T1, T2] {
	return Tuple3As[T0, T1, T2]{S0: s0, S1: s1, S2: s2}
}

func (s Tuple3As[T0, T1, T2]) PackAs(w Writer, v Tuple3[T0, T1, T2]) error {
	if err := s.S0.PackAs(w, v.V0); err != nil {
		return errs.Slot(err, 0)
	}
	if err := s.S1.PackAs(w, v.V1); err != nil {
		return errs.Slot(err, 1)
	}

	return errs.Slot(s.S2.PackAs(w, v.V2), 2)
}

func (s Tuple3As[T0, T1, T2]) UnpackAs(r Reader) (Tuple3[T0, T1, T2], error) {
	var out Tuple3[T0, T1, T2]
	var err error
	if out.V0, err = s.S0.UnpackAs(r); err != nil {
		return Tuple3[T0, T1, T2]{}, errs.Slot(err, 0)
	}
	if out.V1, err = s.S1.UnpackAs(r); err != nil {
		return Tuple3[T0, T1, T2]{}, errs.Slot(err, 1)
	}
	if out.V2, err = s.S2.UnpackAs(r); err != nil {
		return Tuple3[T0, T1, T2]{}, errs.Slot(err, 2)
	}

	return out, nil
}

// MaybeAs encodes an optional value: a 0 bit for nil, or a 1 bit followed by
// the inner encoding.
type MaybeAs[T any] struct {
	Inner Strategy[T]
}

// Maybe returns an optional-value strategy over *T.
func Maybe[T any](inner Strategy[T]) MaybeAs[T] {
	return MaybeAs[T]{Inner: inner}
}

func (s MaybeAs[T]) PackAs(w Writer, v *T) error {
	if err := w.WriteBit(v != nil); err != nil {
		return errs.Context(err, "tag")
	}
	if v == nil {
		return nil
	}

	return errs.Context(s.Inner.PackAs(w, *v), "value")
}

func (s MaybeAs[T]) UnpackAs(r Reader) (*T, error) {
	present, err := r.ReadBit()
	if err != nil {
		return nil, errs.Context(err, "tag")
	}
	if !present {
		return nil, nil
	}

	v, err := s.Inner.UnpackAs(r)
	if err != nil {
		return nil, errs.Context(err, "value")
	}

	return &v, nil
}

// Either holds one of two alternatives. IsRight selects which field is
// meaningful.
type Either[L, R any] struct {
	Left    L
	Right   R
	IsRight bool
}

// Left returns an Either holding the left alternative.
func Left[L, R any](v L) Either[L, R] {
	return Either[L, R]{Left: v}
}

// Right returns an Either holding the right alternative.
func Right[L, R any](v R) Either[L, R] {
	return Either[L, R]{Right: v, IsRight: true}
}

// EitherStrategy encodes a 0 bit and the left value, or a 1 bit and the
// right value.
type EitherStrategy[L, R any] struct {
	L Strategy[L]
	R Strategy[R]
}

// EitherAs returns an Either strategy with independent strategies per side.
func EitherAs[L, R any](l Strategy[L], r Strategy[R]) EitherStrategy[L, R] {
	return EitherStrategy[L, R]{L: l, R: r}
}

func (s EitherStrategy[L, R]) PackAs(w Writer, v Either[L, R]) error {
	if err := w.WriteBit(v.IsRight); err != nil {
		return errs.Context(err, "tag")
	}
	if v.IsRight {
		return errs.Context(s.R.PackAs(w, v.Right), "right")
	}

	return errs.Context(s.L.PackAs(w, v.Left), "left")
}

func (s EitherStrategy[L, R]) UnpackAs(r Reader) (Either[L, R], error) {
	isRight, err := r.ReadBit()
	if err != nil {
		return Either[L, R]{}, errs.Context(err, "tag")
	}

	if isRight {
		v, err := s.R.UnpackAs(r)
		if err != nil {
			return Either[L, R]{}, errs.Context(err, "right")
		}

		return Right[L](v), nil
	}

	v, err := s.L.UnpackAs(r)
	if err != nil {
		return Either[L, R]{}, errs.Context(err, "left")
	}

	return Left[L, R](v), nil
}

// DefaultOnNoneAs is Maybe without the pointer: values are always packed as
// present and an absent value unpacks to the zero T.
type DefaultOnNoneAs[T any] struct {
	Inner Strategy[T]
}

// DefaultOnNone returns a strategy that never reports absence.
func DefaultOnNone[T any](inner Strategy[T]) DefaultOnNoneAs[T] {
	return DefaultOnNoneAs[T]{Inner: inner}
}

func (s DefaultOnNoneAs[T]) PackAs(w Writer, v T) error {
	return Maybe(s.Inner).PackAs(w, &v)
}

func (s DefaultOnNoneAs[T]) UnpackAs(r Reader) (T, error) {
	v, err := Maybe(s.Inner).UnpackAs(r)
	if err != nil || v == nil {
		var zero T
		return zero, err
	}

	return *v, nil
}

// ConstAs writes a fixed bit pattern and checks it on the way back.
type ConstAs struct {
	Bits Vec
}

// Const returns a strategy for the fixed pattern v, typically a constructor
// tag.
func Const(v Vec) ConstAs {
	return ConstAs{Bits: v}
}

func (s ConstAs) PackAs(w Writer, _ struct{}) error {
	return w.WriteBits(s.Bits)
}

func (s ConstAs) UnpackAs(r Reader) (struct{}, error) {
	got, err := r.ReadBits(s.Bits.Len())
	if err != nil {
		return struct{}{}, err
	}
	if !got.Equal(s.Bits) {
		return struct{}{}, fmt.Errorf("%w: expected tag %s, got %s", errs.ErrInvalidValue, s.Bits, got)
	}

	return struct{}{}, nil
}
