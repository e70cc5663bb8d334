package cell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/errs"
)

// failingSerializer writes some bits and a reference before failing.
type failingSerializer struct{}

func (failingSerializer) StoreCell(b *Builder) error {
	if err := bits.WriteUint(b, 0xFF, 8); err != nil {
		return err
	}
	if err := b.StoreRef(Empty()); err != nil {
		return err
	}

	return errs.Context(b.RepeatBit(2000, true), "tail")
}

// === Capacity Tests ===

func TestBuilder_Capacity_Bits(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.RepeatBit(MaxBits-1, true))
	require.Equal(t, 1, b.BitsLeft())

	err := b.WriteBits(bits.MustParseBinary("10"))
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Equal(t, MaxBits-1, b.BitLen())

	require.ErrorIs(t, b.RepeatBit(2, false), errs.ErrCapacityExceeded)
	require.Equal(t, MaxBits-1, b.BitLen())

	require.NoError(t, b.WriteBit(false))
	require.Equal(t, 0, b.BitsLeft())
	require.ErrorIs(t, b.WriteBit(true), errs.ErrCapacityExceeded)

	c := mustBuild(t, b)
	require.Equal(t, MaxBits, c.BitLen())
}

func TestBuilder_Capacity_Refs(t *testing.T) {
	b := NewBuilder()
	for range MaxRefs {
		require.NoError(t, b.StoreRef(Empty()))
	}
	require.Equal(t, 0, b.RefsLeft())

	err := b.StoreRef(Empty())
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Equal(t, MaxRefs, b.RefCount())
}

func TestBuilder_StoreRef_Invalid(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		require.ErrorIs(t, NewBuilder().StoreRef(nil), errs.ErrNilPointer)
	})

	t.Run("algorithm mismatch", func(t *testing.T) {
		other := mustBuild(t, NewBuilder(WithHashAlgorithm(BLAKE3)))

		b := NewBuilder()
		require.ErrorIs(t, b.StoreRef(other), errs.ErrInvalidValue)
		require.Equal(t, 0, b.RefCount())
	})
}

func TestBuilder_InvalidOption(t *testing.T) {
	b := NewBuilder(WithHashAlgorithm(HashAlgorithm(7)))
	require.Equal(t, SHA256, b.HashAlgorithm())

	_, err := b.Build()
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

// === Atomic Store Tests ===

func TestBuilder_Store_RollsBack(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, bits.WriteUint(b, 0b11, 2))

	err := b.Store(failingSerializer{})
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Equal(t, "tail", errs.Path(err))

	require.Equal(t, 2, b.BitLen())
	require.Equal(t, 0, b.RefCount())

	c := mustBuild(t, b)
	require.Equal(t, "11", c.Bits().BinaryString())
}

func TestBuilder_Pack_RollsBack(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.RepeatBit(MaxBits-10, false))

	err := b.Pack(sample{A: 1, B: 2})
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Equal(t, MaxBits-10, b.BitLen())
}

func TestStoreAs_RollsBack(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StoreRef(Empty()))
	require.NoError(t, b.StoreRef(Empty()))
	require.NoError(t, b.StoreRef(Empty()))

	s := Pair[*Cell, *Cell](RefCell, RefCell)
	err := StoreAs(b, bits.Tuple2[*Cell, *Cell]{V0: Empty(), V1: Empty()}, s)
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Equal(t, ".1", errs.Path(err))
	require.Equal(t, 3, b.RefCount())
}

// === Misc Builder Tests ===

func TestBuilder_Append(t *testing.T) {
	src := NewBuilder()
	require.NoError(t, bits.WriteUint(src, 0xAB, 8))
	require.NoError(t, src.StoreRef(Empty()))
	inner := mustBuild(t, src)

	b := NewBuilder()
	require.NoError(t, b.WriteBit(true))
	require.NoError(t, b.Append(inner))
	c := mustBuild(t, b)

	require.Equal(t, 9, c.BitLen())
	require.Equal(t, 1, c.RefCount())
	require.Equal(t, "110101011", c.Bits().BinaryString())

	full := NewBuilder()
	require.NoError(t, full.RepeatBit(MaxBits-4, false))
	require.ErrorIs(t, full.Append(inner), errs.ErrCapacityExceeded)
	require.Equal(t, MaxBits-4, full.BitLen())
	require.Equal(t, 0, full.RefCount())
}

func TestBuilder_BuildDoesNotAlias(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, bits.WriteUint(b, 0xF, 4))
	first := mustBuild(t, b)

	require.NoError(t, bits.WriteUint(b, 0x0, 4))
	require.NoError(t, b.StoreRef(Empty()))
	second := mustBuild(t, b)

	require.Equal(t, 4, first.BitLen())
	require.Equal(t, 0, first.RefCount())
	require.Equal(t, 8, second.BitLen())
	require.False(t, first.Equal(second))
}

func TestBuilder_Reset(t *testing.T) {
	b := NewBuilder(WithHashAlgorithm(BLAKE3))
	require.NoError(t, b.RepeatBit(100, true))
	b.Reset()

	require.Equal(t, 0, b.BitLen())
	require.Equal(t, 0, b.RefCount())
	require.Equal(t, BLAKE3, b.HashAlgorithm())
}
