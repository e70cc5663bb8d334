package cell

import (
	"strings"

	"github.com/arloliu/tlb/bits"
)

// Limits of an ordinary cell.
const (
	MaxBits  = 1023
	MaxRefs  = 4
	MaxDepth = 1024
)

// Cell is an immutable node of up to MaxBits data bits and MaxRefs
// references to other cells.
//
// Cells are created by Builder.Build and never change afterwards, so they can
// be shared freely between goroutines and graphs. References only point to
// already built cells, which makes every cell graph acyclic.
type Cell struct {
	data  bits.Vec
	refs  []*Cell
	hash  Hash
	depth int
	algo  HashAlgorithm
}

var emptyCell = mustEmpty()

func mustEmpty() *Cell {
	c, err := NewBuilder().Build()
	if err != nil {
		panic(err)
	}

	return c
}

// Empty returns the shared empty SHA-256 cell.
func Empty() *Cell {
	return emptyCell
}

// Bits returns a copy of the data bits.
func (c *Cell) Bits() bits.Vec {
	return c.data.Clone()
}

// BitLen returns the number of data bits.
func (c *Cell) BitLen() int {
	return c.data.Len()
}

// Refs returns a copy of the reference list.
func (c *Cell) Refs() []*Cell {
	out := make([]*Cell, len(c.refs))
	copy(out, c.refs)

	return out
}

// RefCount returns the number of references.
func (c *Cell) RefCount() int {
	return len(c.refs)
}

// Ref returns the i-th reference, or nil when i is out of range.
func (c *Cell) Ref(i int) *Cell {
	if i < 0 || i >= len(c.refs) {
		return nil
	}

	return c.refs[i]
}

// Hash returns the representation hash.
func (c *Cell) Hash() Hash {
	return c.hash
}

// Depth returns 0 for a cell without references, otherwise one more than
// the deepest reference.
func (c *Cell) Depth() int {
	return c.depth
}

// HashAlgorithm returns the algorithm the cell was hashed with.
func (c *Cell) HashAlgorithm() HashAlgorithm {
	return c.algo
}

// IsEmpty reports whether the cell has neither data nor references.
func (c *Cell) IsEmpty() bool {
	return c.data.IsEmpty() && len(c.refs) == 0
}

// Equal reports whether c and o have the same representation.
func (c *Cell) Equal(o *Cell) bool {
	if c == nil || o == nil {
		return c == o
	}

	return c.algo == o.algo && c.hash == o.hash
}

// Parser returns a parser positioned at the start of the cell.
func (c *Cell) Parser() *Parser {
	return &Parser{
		r:    bits.NewReader(c.data),
		refs: c.refs,
		algo: c.algo,
	}
}

// String renders the cell tree in the usual TON form, one cell per line
// with children indented by one space:
//
//	x{C_}
//	 x{}
func (c *Cell) String() string {
	var b strings.Builder
	c.dump(&b, 0)

	return strings.TrimSuffix(b.String(), "\n")
}

func (c *Cell) dump(b *strings.Builder, indent int) {
	for range indent {
		b.WriteByte(' ')
	}
	b.WriteString("x{")
	b.WriteString(c.data.String())
	b.WriteString("}\n")

	for _, ref := range c.refs {
		ref.dump(b, indent+1)
	}
}
