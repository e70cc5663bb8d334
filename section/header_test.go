package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tlb/errs"
)

func TestNewHeader(t *testing.T) {
	h := NewHeader(1, 1, 2)

	require.Equal(t, MagicGeneric, h.Magic)
	require.Equal(t, 1, h.RefSize())
	require.Equal(t, 1, h.OffBytes)
	require.False(t, h.HasIdx())
	require.False(t, h.HasCRC32C())
	require.True(t, h.HasRootList())
	require.Equal(t, 10, h.Size())

	// header of the single empty cell bag
	require.Equal(t, []byte{0xB5, 0xEE, 0x9C, 0x72, 0x01, 0x01, 0x01, 0x01, 0x00, 0x02}, h.Bytes())
}

func TestNewHeader_Widths(t *testing.T) {
	h := NewHeader(300, 2, 70000)
	require.Equal(t, 2, h.RefSize())
	require.Equal(t, 3, h.OffBytes)
	require.Equal(t, 4+2+3*2+3, h.Size())
	require.Len(t, h.Bytes(), h.Size())
}

func TestHeader_Parse(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		original := NewHeader(300, 2, 40000)
		original.Flag.SetHasIdx(true)
		original.Flag.SetHasCRC32C(true)
		original.Flag.SetHasCacheBits(true)

		data := append(original.Bytes(), 0xFF)
		parsed, n, err := ParseHeader(data)
		require.NoError(t, err)
		require.Equal(t, original, parsed)
		require.Equal(t, original.Size(), n)
		require.True(t, parsed.HasCacheBits())
	})

	t.Run("Legacy", func(t *testing.T) {
		for _, magic := range []uint32{MagicIndexed, MagicIndexedCRC32C} {
			h := NewHeader(2, 1, 8)
			h.Magic = magic

			parsed, _, err := ParseHeader(h.Bytes())
			require.NoError(t, err)
			require.True(t, parsed.IsLegacy())
			require.True(t, parsed.HasIdx())
			require.False(t, parsed.HasRootList())
			require.False(t, parsed.HasCacheBits())
			require.Equal(t, magic == MagicIndexedCRC32C, parsed.HasCRC32C())
		}
	})

	t.Run("LegacyRequiresSingleRoot", func(t *testing.T) {
		h := NewHeader(2, 2, 8)
		h.Magic = MagicIndexed

		_, _, err := ParseHeader(h.Bytes())
		require.ErrorIs(t, err, errs.ErrCorrupted)
	})

	t.Run("InvalidMagic", func(t *testing.T) {
		data := NewHeader(1, 1, 2).Bytes()
		data[0] = 0x00

		_, _, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("Truncated", func(t *testing.T) {
		data := NewHeader(1, 1, 2).Bytes()
		for n := range len(data) {
			_, _, err := ParseHeader(data[:n])
			require.ErrorIs(t, err, errs.ErrExhausted, "length %d", n)
		}
	})

	t.Run("InvalidFlags", func(t *testing.T) {
		tests := []struct {
			name string
			flag byte
			off  byte
		}{
			{"ReservedBits", 0x09, 1},
			{"ZeroSize", 0x00, 1},
			{"SizeTooLarge", 0x05, 1},
			{"CacheBitsWithoutIndex", 0x21, 1},
			{"ZeroOffBytes", 0x01, 0},
			{"OffBytesTooLarge", 0x01, 9},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				data := NewHeader(1, 1, 2).Bytes()
				data[4], data[5] = tt.flag, tt.off

				_, _, err := ParseHeader(append(data, make([]byte, 16)...))
				require.ErrorIs(t, err, errs.ErrCorrupted)
			})
		}
	})
}

func TestHeader_Validate(t *testing.T) {
	tests := []struct {
		name string
		h    Header
	}{
		{"MoreRootsThanCells", Header{Magic: MagicGeneric, Cells: 1, Roots: 2, TotCellsSize: 2}},
		{"MoreAbsentThanCells", Header{Magic: MagicGeneric, Cells: 1, Roots: 1, Absent: 2, TotCellsSize: 2}},
		{"CellsDoNotFit", Header{Magic: MagicGeneric, Cells: 10, Roots: 1, TotCellsSize: 19}},
		{"DataTooLarge", Header{Magic: MagicGeneric, Cells: 1, Roots: 1, TotCellsSize: MaxCellSize + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.h.Validate(), errs.ErrCorrupted)
		})
	}
}

func TestHeader_BodySize(t *testing.T) {
	h := NewHeader(3, 2, 40)
	require.Equal(t, uint64(40+2), h.BodySize())

	h.Flag.SetHasIdx(true)
	h.Flag.SetHasCRC32C(true)
	require.Equal(t, uint64(40+2+3+4), h.BodySize())
}

func TestFlag(t *testing.T) {
	f := NewFlag(2)
	require.Equal(t, 2, f.Size())
	require.NoError(t, f.Validate())

	f.SetHasIdx(true)
	f.SetHasCRC32C(true)
	require.Equal(t, Flag(0xC2), f)
	require.Contains(t, f.String(), "idx=true")

	f.SetHasIdx(false)
	require.Equal(t, Flag(0x42), f)
}
