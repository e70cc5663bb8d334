package cell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/errs"
)

func sampleCell(t *testing.T) *Cell {
	t.Helper()

	b := NewBuilder()
	require.NoError(t, bits.WriteUint(b, 0xABC, 12))
	require.NoError(t, b.StoreRef(Empty()))

	return mustBuild(t, b)
}

// === Parser Tests ===

func TestParser_ReadsInOrder(t *testing.T) {
	p := sampleCell(t).Parser()
	require.Equal(t, 12, p.BitsLeft())
	require.Equal(t, 1, p.RefsLeft())

	hi, err := bits.ReadUint(p, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(0xA), hi)

	bit, err := p.ReadBit()
	require.NoError(t, err)
	require.True(t, bit)

	require.NoError(t, p.SkipBits(3))

	lo, err := p.ReadUint(4)
	require.NoError(t, err)
	require.Equal(t, uint64(0xC), lo)

	ref, err := p.NextRef()
	require.NoError(t, err)
	require.True(t, ref.Equal(Empty()))

	require.True(t, p.IsEmpty())
	require.NoError(t, p.EnsureEmpty())
}

func TestParser_Exhausted(t *testing.T) {
	t.Run("bits", func(t *testing.T) {
		p := sampleCell(t).Parser()

		_, err := p.ReadBits(13)
		require.ErrorIs(t, err, errs.ErrExhausted)
		require.Equal(t, 12, p.BitsLeft())
	})

	t.Run("refs", func(t *testing.T) {
		p := sampleCell(t).Parser()

		_, err := p.NextRef()
		require.NoError(t, err)

		_, err = p.NextRef()
		require.ErrorIs(t, err, errs.ErrExhausted)
	})

	t.Run("empty cell", func(t *testing.T) {
		_, err := Empty().Parser().ReadBit()
		require.ErrorIs(t, err, errs.ErrExhausted)
	})
}

func TestParser_EnsureEmpty(t *testing.T) {
	p := sampleCell(t).Parser()

	err := p.EnsureEmpty()
	require.ErrorIs(t, err, errs.ErrTrailingData)
	require.Contains(t, err.Error(), "12 bits and 1 refs")

	require.NoError(t, p.SkipBits(12))
	require.ErrorIs(t, p.EnsureEmpty(), errs.ErrTrailingData)
}

func TestParser_Rest(t *testing.T) {
	p := sampleCell(t).Parser()
	require.NoError(t, p.SkipBits(4))

	rest, err := p.Rest()
	require.NoError(t, err)
	require.True(t, p.IsEmpty())

	require.Equal(t, "10111100", rest.Bits().BinaryString())
	require.Equal(t, 1, rest.RefCount())
}

func TestParser_Independent(t *testing.T) {
	c := sampleCell(t)

	p1 := c.Parser()
	require.NoError(t, p1.SkipBits(12))

	p2 := c.Parser()
	require.Equal(t, 12, p2.BitsLeft())
}
