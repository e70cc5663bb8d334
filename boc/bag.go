package boc

import (
	"fmt"

	"github.com/arloliu/tlb/cell"
	"github.com/arloliu/tlb/errs"
)

// Bag is an ordered list of root cells. The root order is part of the
// encoding and is never changed.
type Bag struct {
	roots []*cell.Cell
}

// NewBag creates a bag with the given roots.
func NewBag(roots ...*cell.Cell) *Bag {
	b := &Bag{roots: make([]*cell.Cell, 0, len(roots))}
	b.roots = append(b.roots, roots...)

	return b
}

// AddRoot appends c to the roots.
func (b *Bag) AddRoot(c *cell.Cell) {
	b.roots = append(b.roots, c)
}

// Roots returns a copy of the root list.
func (b *Bag) Roots() []*cell.Cell {
	out := make([]*cell.Cell, len(b.roots))
	copy(out, b.roots)

	return out
}

// Root returns the i-th root, or nil when i is out of range.
func (b *Bag) Root(i int) *cell.Cell {
	if i < 0 || i >= len(b.roots) {
		return nil
	}

	return b.roots[i]
}

// NumRoots returns the number of roots.
func (b *Bag) NumRoots() int {
	return len(b.roots)
}

// SingleRoot returns the only root and fails with errs.ErrSingleRoot when the
// bag holds any other number of roots.
func (b *Bag) SingleRoot() (*cell.Cell, error) {
	if len(b.roots) != 1 {
		return nil, fmt.Errorf("%w: have %d", errs.ErrSingleRoot, len(b.roots))
	}

	return b.roots[0], nil
}
