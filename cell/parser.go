package cell

import (
	"fmt"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/errs"
)

// Parser reads the bits and references of one cell in order.
//
// Reading past the data or the reference list fails with errs.ErrExhausted.
type Parser struct {
	r    *bits.VecReader
	refs []*Cell
	next int
	algo HashAlgorithm
}

var (
	_ bits.Reader  = (*Parser)(nil)
	_ bits.Bounded = (*Parser)(nil)
)

// ReadBit implements bits.Reader.
func (p *Parser) ReadBit() (bool, error) {
	return p.r.ReadBit()
}

// ReadBits implements bits.Reader.
func (p *Parser) ReadBits(n int) (bits.Vec, error) {
	return p.r.ReadBits(n)
}

// SkipBits implements bits.Reader.
func (p *Parser) SkipBits(n int) error {
	return p.r.SkipBits(n)
}

// ReadUint reads n <= 64 bits as an unsigned integer.
func (p *Parser) ReadUint(n int) (uint64, error) {
	return p.r.ReadUint(n)
}

// NextRef returns the next unread reference.
func (p *Parser) NextRef() (*Cell, error) {
	if p.next >= len(p.refs) {
		return nil, fmt.Errorf("%w: need 1 ref, have 0", errs.ErrExhausted)
	}

	c := p.refs[p.next]
	p.next++

	return c, nil
}

// BitsLeft returns the number of unread bits.
func (p *Parser) BitsLeft() int {
	return p.r.BitsLeft()
}

// RefsLeft returns the number of unread references.
func (p *Parser) RefsLeft() int {
	return len(p.refs) - p.next
}

// IsEmpty reports whether everything has been read.
func (p *Parser) IsEmpty() bool {
	return p.BitsLeft() == 0 && p.RefsLeft() == 0
}

// EnsureEmpty fails with errs.ErrTrailingData when bits or references are
// left unread.
func (p *Parser) EnsureEmpty() error {
	if p.IsEmpty() {
		return nil
	}

	return fmt.Errorf("%w: %d bits and %d refs", errs.ErrTrailingData, p.BitsLeft(), p.RefsLeft())
}

// Rest consumes everything left and returns it as a new cell.
func (p *Parser) Rest() (*Cell, error) {
	data, err := p.r.ReadBits(p.r.BitsLeft())
	if err != nil {
		return nil, err
	}

	b := NewBuilder(WithHashAlgorithm(p.algo))
	_ = b.WriteBits(data)
	for ; p.next < len(p.refs); p.next++ {
		if err := b.StoreRef(p.refs[p.next]); err != nil {
			return nil, err
		}
	}

	return b.Build()
}
