// Package cell implements the TON cell: an immutable node of at most 1023
// data bits and four references, identified by its representation hash.
//
// Cells are produced by a Builder and read back with a Parser:
//
//	b := cell.NewBuilder()
//	_ = bits.WriteUint(b, 0xCAFE, 16)
//	_ = b.StoreRef(cell.Empty())
//	c, err := b.Build()
//
//	p := c.Parser()
//	tag, _ := bits.ReadUint(p, 16)
//	child, _ := p.NextRef()
//
// Values choose their layout with a Strategy passed at the call site. Cell
// strategies extend the bit-level strategies of package bits with
// references:
//
//	c, err := cell.BuildAs(payload, cell.Ref(cell.FromBits(bits.Uint[uint32](32))))
//
// The representation hash covers the two descriptor bytes, the padded data,
// the depth of every child and the hash of every child, in that order.
// SHA-256 gives TON-compatible hashes; BLAKE3 can be selected per builder
// with WithHashAlgorithm when compatibility is not needed.
package cell
