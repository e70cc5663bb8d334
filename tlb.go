// Package tlb serializes Go values into TON cells and Bag-of-Cells bytes.
//
// Values describe their layout either natively, by implementing
// cell.Serializer and cell.Deserializer (or bits.Packer and bits.Unpacker
// for pure bit layouts), or through a strategy chosen at the call site. A
// strategy decides the wire shape without touching the value's type, so the
// same uint64 can be stored as a 32-bit field, a VarUInteger or a reference:
//
//	type Transfer struct {
//	    QueryID uint64
//	    Amount  *big.Int
//	    Payload *cell.Cell
//	}
//
//	func (t Transfer) StoreCell(b *cell.Builder) error {
//	    if err := bits.WriteUint(b, t.QueryID, 64); err != nil {
//	        return errs.Context(err, "query_id")
//	    }
//	    if err := bits.PackAs(b, t.Amount, bits.VarBigUint(4)); err != nil {
//	        return errs.Context(err, "amount")
//	    }
//	    return errs.Context(cell.StoreAs(b, t.Payload, cell.InlineOrRef(cell.Inline)), "payload")
//	}
//
// Encoding a value to a base64 BoC and back:
//
//	s, err := tlb.MarshalBase64(transfer)
//	got, err := tlb.UnmarshalBase64[Transfer](s)
//
// # Package Structure
//
//   - bits: bit vectors, readers and writers, integer codecs and bit strategies
//   - cell: cells, builders, parsers and cell strategies
//   - boc: the Bag-of-Cells format, with an optional compressed envelope
//   - errs: error kinds and decoding paths
//
// This package wraps the most common single-root flows. Use the packages
// directly for multi-root bags, custom decoder limits or bit streams.
package tlb

import (
	"github.com/arloliu/tlb/boc"
	"github.com/arloliu/tlb/cell"
)

// defaultBoCOptions are applied before caller options, which may override
// them.
var defaultBoCOptions = []boc.Option{
	boc.WithCRC32C(true),
}

func withDefaults(opts []boc.Option) []boc.Option {
	all := make([]boc.Option, 0, len(defaultBoCOptions)+len(opts))
	all = append(all, defaultBoCOptions...)

	return append(all, opts...)
}

// ToCell builds the cell of a value with a native cell codec.
func ToCell(v cell.Serializer) (*cell.Cell, error) {
	return cell.Build(v)
}

// ToCellAs builds the cell of v laid out by strategy s.
func ToCellAs[T any](v T, s cell.Strategy[T]) (*cell.Cell, error) {
	return cell.BuildAs(v, s)
}

// EncodeBoC serializes a single root. A CRC32C is appended unless opts
// disable it.
//
// Example:
//
//	data, err := tlb.EncodeBoC(root, boc.WithIndex(true))
func EncodeBoC(root *cell.Cell, opts ...boc.Option) ([]byte, error) {
	return boc.Marshal(boc.NewBag(root), withDefaults(opts)...)
}

// EncodeBoCBase64 is EncodeBoC followed by standard base64.
func EncodeBoCBase64(root *cell.Cell, opts ...boc.Option) (string, error) {
	return boc.MarshalBase64(boc.NewBag(root), withDefaults(opts)...)
}

// DecodeBoC deserializes a bag that must hold exactly one root.
func DecodeBoC(data []byte, opts ...boc.Option) (*cell.Cell, error) {
	bag, err := boc.Unmarshal(data, opts...)
	if err != nil {
		return nil, err
	}

	return bag.SingleRoot()
}

// ParseBase64Root decodes a base64 bag that must hold exactly one root.
func ParseBase64Root(s string, opts ...boc.Option) (*cell.Cell, error) {
	bag, err := boc.UnmarshalBase64(s, opts...)
	if err != nil {
		return nil, err
	}

	return bag.SingleRoot()
}

// Marshal builds the cell of v and serializes it as a single-root bag.
func Marshal(v cell.Serializer, opts ...boc.Option) ([]byte, error) {
	c, err := cell.Build(v)
	if err != nil {
		return nil, err
	}

	return EncodeBoC(c, opts...)
}

// MarshalAs is Marshal with an explicit strategy.
func MarshalAs[T any](v T, s cell.Strategy[T], opts ...boc.Option) ([]byte, error) {
	c, err := cell.BuildAs(v, s)
	if err != nil {
		return nil, err
	}

	return EncodeBoC(c, opts...)
}

// MarshalBase64 is Marshal followed by standard base64.
func MarshalBase64(v cell.Serializer, opts ...boc.Option) (string, error) {
	c, err := cell.Build(v)
	if err != nil {
		return "", err
	}

	return EncodeBoCBase64(c, opts...)
}

// Unmarshal decodes a single-root bag and parses its root as T. The root
// must be consumed completely.
func Unmarshal[T any, P cell.Codec[T]](data []byte, opts ...boc.Option) (T, error) {
	root, err := DecodeBoC(data, opts...)
	if err != nil {
		var zero T
		return zero, err
	}

	return cell.ParseFully[T, P](root)
}

// UnmarshalAs is Unmarshal with an explicit strategy.
func UnmarshalAs[T any](data []byte, s cell.Strategy[T], opts ...boc.Option) (T, error) {
	root, err := DecodeBoC(data, opts...)
	if err != nil {
		var zero T
		return zero, err
	}

	return cell.ParseFullyAs(root, s)
}

// UnmarshalBase64 is Unmarshal for a base64 bag.
func UnmarshalBase64[T any, P cell.Codec[T]](s string, opts ...boc.Option) (T, error) {
	root, err := ParseBase64Root(s, opts...)
	if err != nil {
		var zero T
		return zero, err
	}

	return cell.ParseFully[T, P](root)
}
