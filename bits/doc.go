// Package bits provides the bit-level engine underneath cell building and
// parsing.
//
// # Core Types
//
//   - Vec: an owned, MSB-first bit sequence. *Vec is a Writer.
//   - Writer / Reader: bit sinks and sources with bulk operations. Extend and
//     ExtendReader derive the bulk operations for types that only implement
//     WriteBit or ReadBit.
//   - Counter, Limiter, Tee, TeeReader: composable decorators.
//
// # Strategies
//
// A Strategy[T] chooses how a T is laid out on the wire. Strategies are
// values passed at the call site, so one Go type can have many encodings:
//
//	v, _ := bits.EncodeAs(uint16(7), bits.Uint[uint16](12))
//	n, _ := bits.DecodeFullyAs(v, bits.Uint[uint16](12))
//
// Adapters compose strategies: Ptr, Array, List, Pair, Triple, Maybe,
// EitherAs, DefaultOnNone and Const. Errors raised inside a composed
// strategy carry a path (see errs.PathError) such as "value[2].0".
//
// Types that implement Packer and Unpacker can be used directly with Encode,
// Decode and Unpack, or wrapped with AsSame to take part in composition.
package bits
