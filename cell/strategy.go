package cell

import (
	"fmt"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/errs"
)

// Strategy selects how a T is laid out across a cell and its references.
// It is the cell-level counterpart of bits.Strategy and can reach
// references as well as bits.
type Strategy[T any] interface {
	StoreAs(b *Builder, v T) error
	ParseAs(p *Parser) (T, error)
}

// BitsAs lifts a bit-level strategy to a cell strategy that only touches
// the data bits.
type BitsAs[T any] struct {
	Inner bits.Strategy[T]
}

// FromBits lifts s.
func FromBits[T any](s bits.Strategy[T]) BitsAs[T] {
	return BitsAs[T]{Inner: s}
}

func (s BitsAs[T]) StoreAs(b *Builder, v T) error {
	return s.Inner.PackAs(b, v)
}

func (s BitsAs[T]) ParseAs(p *Parser) (T, error) {
	return s.Inner.UnpackAs(p)
}

// Same stores T with its own Serializer and Deserializer.
type Same[T any, P Codec[T]] struct{}

// AsSame returns the native cell strategy of T.
func AsSame[T any, P Codec[T]]() Same[T, P] {
	return Same[T, P]{}
}

func (Same[T, P]) StoreAs(b *Builder, v T) error {
	return P(&v).StoreCell(b)
}

func (Same[T, P]) ParseAs(p *Parser) (T, error) {
	return Load[T, P](p)
}

// RefAs stores the value in a new child cell referenced from the current
// one. The child must be consumed completely when parsing.
type RefAs[T any] struct {
	Inner Strategy[T]
}

// Ref returns a strategy that places the payload behind a reference.
func Ref[T any](inner Strategy[T]) RefAs[T] {
	return RefAs[T]{Inner: inner}
}

func (s RefAs[T]) StoreAs(b *Builder, v T) error {
	if b.RefsLeft() == 0 {
		return fmt.Errorf("%w: need 1 refs, have 0", errs.ErrCapacityExceeded)
	}

	child := NewBuilder(WithHashAlgorithm(b.algo))
	if err := s.Inner.StoreAs(child, v); err != nil {
		return errs.Context(err, "^")
	}

	c, err := child.Build()
	if err != nil {
		return errs.Context(err, "^")
	}

	return b.StoreRef(c)
}

func (s RefAs[T]) ParseAs(p *Parser) (T, error) {
	var zero T

	c, err := p.NextRef()
	if err != nil {
		return zero, err
	}

	child := c.Parser()
	v, err := s.Inner.ParseAs(child)
	if err != nil {
		return zero, errs.Context(err, "^")
	}
	if err := child.EnsureEmpty(); err != nil {
		return zero, errs.Context(err, "^")
	}

	return v, nil
}

// RefCellAs stores a *Cell as a reference.
type RefCellAs struct{}

// RefCell is the strategy for a child cell stored by reference.
var RefCell RefCellAs

func (RefCellAs) StoreAs(b *Builder, c *Cell) error {
	return b.StoreRef(c)
}

func (RefCellAs) ParseAs(p *Parser) (*Cell, error) {
	return p.NextRef()
}

// InlineAs stores the bits and references of a *Cell directly in the current
// cell. Parsing takes everything the parser has left.
type InlineAs struct{}

// Inline is the strategy for a cell whose contents are embedded.
var Inline InlineAs

func (InlineAs) StoreAs(b *Builder, c *Cell) error {
	return b.Append(c)
}

func (InlineAs) ParseAs(p *Parser) (*Cell, error) {
	return p.Rest()
}

// PtrAs lifts a strategy over T to *T.
type PtrAs[T any] struct {
	Inner Strategy[T]
}

// Ptr returns a strategy for *T stored exactly like T.
func Ptr[T any](inner Strategy[T]) PtrAs[T] {
	return PtrAs[T]{Inner: inner}
}

func (s PtrAs[T]) StoreAs(b *Builder, v *T) error {
	if v == nil {
		return fmt.Errorf("%w: %T", errs.ErrNilPointer, v)
	}

	return s.Inner.StoreAs(b, *v)
}

func (s PtrAs[T]) ParseAs(p *Parser) (*T, error) {
	v, err := s.Inner.ParseAs(p)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// MaybeAs stores a 0 bit for nil, or a 1 bit followed by the value.
type MaybeAs[T any] struct {
	Inner Strategy[T]
}

// Maybe returns an optional-value cell strategy.
func Maybe[T any](inner Strategy[T]) MaybeAs[T] {
	return MaybeAs[T]{Inner: inner}
}

func (s MaybeAs[T]) StoreAs(b *Builder, v *T) error {
	if err := b.WriteBit(v != nil); err != nil {
		return errs.Context(err, "tag")
	}
	if v == nil {
		return nil
	}

	return errs.Context(s.Inner.StoreAs(b, *v), "value")
}

func (s MaybeAs[T]) ParseAs(p *Parser) (*T, error) {
	present, err := p.ReadBit()
	if err != nil {
		return nil, errs.Context(err, "tag")
	}
	if !present {
		return nil, nil
	}

	v, err := s.Inner.ParseAs(p)
	if err != nil {
		return nil, errs.Context(err, "value")
	}

	return &v, nil
}

// DefaultOnNoneAs is Maybe without the pointer; absence parses as the zero T.
type DefaultOnNoneAs[T any] struct {
	Inner Strategy[T]
}

// DefaultOnNone returns a strategy that never reports absence.
func DefaultOnNone[T any](inner Strategy[T]) DefaultOnNoneAs[T] {
	return DefaultOnNoneAs[T]{Inner: inner}
}

func (s DefaultOnNoneAs[T]) StoreAs(b *Builder, v T) error {
	return Maybe(s.Inner).StoreAs(b, &v)
}

func (s DefaultOnNoneAs[T]) ParseAs(p *Parser) (T, error) {
	v, err := Maybe(s.Inner).ParseAs(p)
	if err != nil || v == nil {
		var zero T
		return zero, err
	}

	return *v, nil
}

// EitherStrategy stores a 0 bit and the left value, or a 1 bit and the right
// value.
type EitherStrategy[L, R any] struct {
	L Strategy[L]
	R Strategy[R]
}

// EitherAs returns an Either strategy with independent strategies per side.
func EitherAs[L, R any](l Strategy[L], r Strategy[R]) EitherStrategy[L, R] {
	return EitherStrategy[L, R]{L: l, R: r}
}

func (s EitherStrategy[L, R]) StoreAs(b *Builder, v bits.Either[L, R]) error {
	if err := b.WriteBit(v.IsRight); err != nil {
		return errs.Context(err, "tag")
	}
	if v.IsRight {
		return errs.Context(s.R.StoreAs(b, v.Right), "right")
	}

	return errs.Context(s.L.StoreAs(b, v.Left), "left")
}

func (s EitherStrategy[L, R]) ParseAs(p *Parser) (bits.Either[L, R], error) {
	isRight, err := p.ReadBit()
	if err != nil {
		return bits.Either[L, R]{}, errs.Context(err, "tag")
	}

	if isRight {
		v, err := s.R.ParseAs(p)
		if err != nil {
			return bits.Either[L, R]{}, errs.Context(err, "right")
		}

		return bits.Right[L](v), nil
	}

	v, err := s.L.ParseAs(p)
	if err != nil {
		return bits.Either[L, R]{}, errs.Context(err, "left")
	}

	return bits.Left[L, R](v), nil
}

// ArrayAs stores exactly N elements in order.
type ArrayAs[T any] struct {
	Elem Strategy[T]
	N    int
}

// Array returns a fixed-length sequence cell strategy.
func Array[T any](elem Strategy[T], n int) ArrayAs[T] {
	return ArrayAs[T]{Elem: elem, N: n}
}

func (s ArrayAs[T]) StoreAs(b *Builder, vs []T) error {
	if len(vs) != s.N {
		return fmt.Errorf("%w: expected %d elements, got %d", errs.ErrLengthMismatch, s.N, len(vs))
	}

	for i, v := range vs {
		if err := s.Elem.StoreAs(b, v); err != nil {
			return errs.Index(err, i)
		}
	}

	return nil
}

func (s ArrayAs[T]) ParseAs(p *Parser) ([]T, error) {
	out := make([]T, 0, s.N)
	for i := range s.N {
		v, err := s.Elem.ParseAs(p)
		if err != nil {
			return nil, errs.Index(err, i)
		}
		out = append(out, v)
	}

	return out, nil
}

// Tuple2As stores each slot of a bits.Tuple2 with its own cell strategy.
type Tuple2As[T0, T1 any] struct {
	S0 Strategy[T0]
	S1 Strategy[T1]
}

// Pair returns a Tuple2 cell strategy.
func Pair[T0, T1 any](s0 Strategy[T0], s1 Strategy[T1]) Tuple2As[T0, T1] {
	return Tuple2As[T0, T1]{S0: s0, S1: s1}
}

func (s Tuple2As[T0, T1]) StoreAs(b *Builder, v bits.Tuple2[T0, T1]) error {
	if err := s.S0.StoreAs(b, v.V0); err != nil {
		return errs.Slot(err, 0)
	}

	return errs.Slot(s.S1.StoreAs(b, v.V1), 1)
}

func (s Tuple2As[T0, T1]) ParseAs(p *Parser) (bits.Tuple2[T0, T1], error) {
	var out bits.Tuple2[T0, T1]
	var err error
	if out.V0, err = s.S0.ParseAs(p); err != nil {
		return bits.Tuple2[T0, T1]{}, errs.Slot(err, 0)
	}
	if out.V1, err = s.S1.ParseAs(p); err != nil {
		return bits.Tuple2[T0, T1]{}, errs.Slot(err, 1)
	}

	return out, nil
}

// InlineOrRefAs stores a value inline (tag 0) or in a referenced child cell
// (tag 1), the usual layout of TON message bodies. The payload is built into
// a cell first; InlineIf decides on that cell, and a payload that does not
// fit the current builder always goes by reference.
type InlineOrRefAs[T any] struct {
	Inner    Strategy[T]
	InlineIf func(payload *Cell) bool
}

// InlineOrRef stores empty payloads inline and everything else by reference.
func InlineOrRef[T any](inner Strategy[T]) InlineOrRefAs[T] {
	return InlineOrRefAs[T]{Inner: inner, InlineIf: (*Cell).IsEmpty}
}

// InlineOrRefIf is InlineOrRef with a custom inline predicate.
func InlineOrRefIf[T any](inner Strategy[T], inlineIf func(payload *Cell) bool) InlineOrRefAs[T] {
	return InlineOrRefAs[T]{Inner: inner, InlineIf: inlineIf}
}

func (s InlineOrRefAs[T]) StoreAs(b *Builder, v T) error {
	child := NewBuilder(WithHashAlgorithm(b.algo))
	if err := s.Inner.StoreAs(child, v); err != nil {
		return errs.Context(err, "value")
	}

	payload, err := child.Build()
	if err != nil {
		return errs.Context(err, "value")
	}

	inline := s.InlineIf != nil && s.InlineIf(payload) &&
		payload.BitLen() < b.BitsLeft() && payload.RefCount() <= b.RefsLeft()
	if inline {
		if err := b.WriteBit(false); err != nil {
			return errs.Context(err, "tag")
		}

		return errs.Context(b.Append(payload), "left")
	}

	if err := b.WriteBit(true); err != nil {
		return errs.Context(err, "tag")
	}

	return errs.Context(b.StoreRef(payload), "right")
}

func (s InlineOrRefAs[T]) ParseAs(p *Parser) (T, error) {
	v, err := EitherAs[T, T](s.Inner, Ref(s.Inner)).ParseAs(p)
	if err != nil {
		var zero T
		return zero, err
	}
	if v.IsRight {
		return v.Right, nil
	}

	return v.Left, nil
}
