package cell

import (
	"github.com/arloliu/tlb/bits"
)

// Serializer is implemented by types that know how to store themselves into
// a cell builder.
type Serializer interface {
	StoreCell(b *Builder) error
}

// Deserializer is implemented by pointer types that parse themselves from a
// cell parser.
type Deserializer interface {
	ParseCell(p *Parser) error
}

// Codec constrains P to be *T implementing both directions.
type Codec[T any] interface {
	*T
	Serializer
	Deserializer
}

// Build stores s into a fresh builder and returns the resulting cell.
func Build(s Serializer, opts ...BuilderOption) (*Cell, error) {
	b := NewBuilder(opts...)
	if err := b.Store(s); err != nil {
		return nil, err
	}

	return b.Build()
}

// BuildAs stores v with strategy s into a fresh builder and returns the
// resulting cell.
func BuildAs[T any](v T, s Strategy[T], opts ...BuilderOption) (*Cell, error) {
	b := NewBuilder(opts...)
	if err := StoreAs(b, v, s); err != nil {
		return nil, err
	}

	return b.Build()
}

// BuildBits stores v with a bit-level strategy into a fresh builder.
func BuildBits[T any](v T, s bits.Strategy[T], opts ...BuilderOption) (*Cell, error) {
	return BuildAs(v, FromBits(s), opts...)
}

// StoreAs writes v with strategy s, rolling b back on failure.
func StoreAs[T any](b *Builder, v T, s Strategy[T]) error {
	return b.atomic(func() error { return s.StoreAs(b, v) })
}

// Load parses a T from p with its own Deserializer.
func Load[T any, P Codec[T]](p *Parser) (T, error) {
	var v T
	if err := P(&v).ParseCell(p); err != nil {
		var zero T
		return zero, err
	}

	return v, nil
}

// LoadAs parses a T from p with strategy s.
func LoadAs[T any](p *Parser, s Strategy[T]) (T, error) {
	return s.ParseAs(p)
}

// Parse parses a T from the start of c. Unread bits and references are
// ignored.
func Parse[T any, P Codec[T]](c *Cell) (T, error) {
	return Load[T, P](c.Parser())
}

// ParseFully parses a T from c and fails with errs.ErrTrailingData when
// anything is left unread.
func ParseFully[T any, P Codec[T]](c *Cell) (T, error) {
	p := c.Parser()
	v, err := Load[T, P](p)
	if err != nil {
		return v, err
	}
	if err := p.EnsureEmpty(); err != nil {
		var zero T
		return zero, err
	}

	return v, nil
}

// ParseAs parses a T from the start of c with strategy s.
func ParseAs[T any](c *Cell, s Strategy[T]) (T, error) {
	return s.ParseAs(c.Parser())
}

// ParseFullyAs is ParseAs with an exact consumption check.
func ParseFullyAs[T any](c *Cell, s Strategy[T]) (T, error) {
	p := c.Parser()
	v, err := s.ParseAs(p)
	if err != nil {
		return v, err
	}
	if err := p.EnsureEmpty(); err != nil {
		var zero T
		return zero, err
	}

	return v, nil
}
