package boc

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/cell"
)

// newCell builds a cell from a binary string and references.
func newCell(t testing.TB, data string, refs ...*cell.Cell) *cell.Cell {
	t.Helper()

	b := cell.NewBuilder()
	require.NoError(t, b.WriteBits(bits.MustParseBinary(data)))
	for _, ref := range refs {
		require.NoError(t, b.StoreRef(ref))
	}

	c, err := b.Build()
	require.NoError(t, err)

	return c
}

func mustHex(t testing.TB, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

// sampleGraph returns a root with two children that share a grandchild,
// plus a few distinct leaves so that several index widths are exercised.
func sampleGraph(t testing.TB) *cell.Cell {
	t.Helper()

	shared := newCell(t, "1010_1010_1010_1")
	x := newCell(t, "1", shared)
	y := newCell(t, "0", shared, newCell(t, "1111_0000"))
	z := newCell(t, "", x, y)

	return newCell(t, "0000_0001_0010_0011", x, y, z, shared)
}

// wideGraph returns a root over n distinct leaves, arranged as a chain of
// four-way nodes.
func wideGraph(t testing.TB, n int) *cell.Cell {
	t.Helper()

	level := make([]*cell.Cell, 0, n)
	for i := range n {
		b := cell.NewBuilder()
		require.NoError(t, bits.WriteUint(b, uint64(i), 32))
		c, err := b.Build()
		require.NoError(t, err)
		level = append(level, c)
	}

	for len(level) > 1 {
		next := make([]*cell.Cell, 0, (len(level)+3)/4)
		for i := 0; i < len(level); i += 4 {
			end := min(i+4, len(level))
			next = append(next, newCell(t, "", level[i:end]...))
		}
		level = next
	}

	return level[0]
}
