package boc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tlb/cell"
	"github.com/arloliu/tlb/errs"
	"github.com/arloliu/tlb/section"
)

// === Encoding Vector Tests ===

func TestMarshal_EmptyCell(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantHex string
		want64  string
	}{
		{
			name:    "plain",
			wantHex: "b5ee9c72010101010002000000",
			want64:  "te6ccgEBAQEAAgAAAA==",
		},
		{
			name:    "with crc32c",
			opts:    []Option{WithCRC32C(true)},
			wantHex: "b5ee9c724101010100020000004cacb9cd",
			want64:  "te6cckEBAQEAAgAAAEysuc0=",
		},
		{
			name:    "with index",
			opts:    []Option{WithIndex(true)},
			wantHex: "b5ee9c7281010101000200020000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(NewBag(cell.Empty()), tt.opts...)
			require.NoError(t, err)
			require.Equal(t, mustHex(t, tt.wantHex), data)

			if tt.want64 != "" {
				s, err := MarshalBase64(NewBag(cell.Empty()), tt.opts...)
				require.NoError(t, err)
				require.Equal(t, tt.want64, s)
			}
		})
	}
}

func TestMarshal_Order(t *testing.T) {
	a := newCell(t, "1")
	b := newCell(t, "0")
	root := newCell(t, "", a, b)

	data, err := Marshal(NewBag(root))
	require.NoError(t, err)

	// root (d1=2 d2=0 refs 1 2), a (00 01 c0), b (00 01 40)
	require.Equal(t, mustHex(t, "b5ee9c72"+"0101"+"03"+"01"+"00"+"0a"+"00"+
		"02000102"+"0001c0"+"000140"), data)
}

func TestMarshal_Dedup(t *testing.T) {
	shared := newCell(t, "1100")
	root := newCell(t, "", shared, shared, newCell(t, "1", shared))

	data, err := Marshal(NewBag(root, shared, root))
	require.NoError(t, err)

	h, n, err := section.ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, uint64(3), h.Cells)
	require.Equal(t, uint64(3), h.Roots)

	// roots: root is cell 0, shared is the last cell
	require.Equal(t, []byte{0, 2, 0}, data[n:n+3])

	// the root references the shared cell twice through the same index
	require.Equal(t, []byte{0x03, 0x00, 0x02, 0x02, 0x01}, data[n+3:n+8])
}

func TestMarshal_RootReachableFromLaterRoot(t *testing.T) {
	shared := newCell(t, "1100")
	root := newCell(t, "", newCell(t, "1", shared))

	data, err := Marshal(NewBag(shared, root))
	require.NoError(t, err)

	h, n, err := section.ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, uint64(3), h.Cells)

	// shared is discovered below root, so it follows root and its child
	require.Equal(t, []byte{2, 0}, data[n:n+2])

	bag, err := Unmarshal(data)
	require.NoError(t, err)
	require.True(t, bag.Root(0).Equal(shared))
	require.True(t, bag.Root(1).Equal(root))
}

func TestMarshal_CacheBits(t *testing.T) {
	s := newCell(t, "")
	x := newCell(t, "1", s)
	y := newCell(t, "0", s)
	root := newCell(t, "", x, y)

	data, err := Marshal(NewBag(root), WithIndex(true), WithCacheBits(true))
	require.NoError(t, err)

	h, n, err := section.ParseHeader(data)
	require.NoError(t, err)
	require.True(t, h.HasCacheBits())
	require.Equal(t, uint64(14), h.TotCellsSize)
	require.Equal(t, 1, h.OffBytes)

	// root, x, y, s; only s has two parents
	index := data[n+1 : n+1+4]
	require.Equal(t, []byte{8, 16, 24, 29}, index)
}

func TestMarshal_Deterministic(t *testing.T) {
	root := sampleGraph(t)

	first, err := Marshal(NewBag(root), WithIndex(true), WithCRC32C(true))
	require.NoError(t, err)

	for range 5 {
		again, err := Marshal(NewBag(sampleGraph(t)), WithIndex(true), WithCRC32C(true))
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestMarshal_EmptyBag(t *testing.T) {
	data, err := Marshal(NewBag())
	require.NoError(t, err)
	require.Equal(t, mustHex(t, "b5ee9c72010100000000"), data)

	bag, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, 0, bag.NumRoots())
}

func TestEncoder_EncodeTo(t *testing.T) {
	enc, err := NewEncoder(WithCRC32C(true))
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := enc.EncodeTo(&out, NewBag(cell.Empty()))
	require.NoError(t, err)
	require.Equal(t, int64(17), n)
	require.Equal(t, mustHex(t, "b5ee9c724101010100020000004cacb9cd"), out.Bytes())

	out.Reset()
	n, err = enc.EncodeTo(&out, nil)
	require.ErrorIs(t, err, errs.ErrNilPointer)
	require.Zero(t, n)
	require.Zero(t, out.Len())
}

func TestMarshal_Errors(t *testing.T) {
	t.Run("nil bag", func(t *testing.T) {
		_, err := Marshal(nil)
		require.ErrorIs(t, err, errs.ErrNilPointer)
	})

	t.Run("nil root", func(t *testing.T) {
		_, err := Marshal(NewBag(cell.Empty(), nil))
		require.ErrorIs(t, err, errs.ErrNilPointer)
		require.Equal(t, "[1]", errs.Path(err))
	})

	t.Run("mixed hash algorithms", func(t *testing.T) {
		other, err := cell.NewBuilder(cell.WithHashAlgorithm(cell.BLAKE3)).Build()
		require.NoError(t, err)

		_, err = Marshal(NewBag(cell.Empty(), other))
		require.ErrorIs(t, err, errs.ErrInvalidValue)
	})

	t.Run("cache bits without index", func(t *testing.T) {
		_, err := Marshal(NewBag(cell.Empty()), WithCacheBits(true))
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	})
}
