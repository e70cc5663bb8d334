package cell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tlb/bits"
	"github.com/arloliu/tlb/errs"
)

// sample is a small value with both a bit-level and a cell-level codec; the
// cell codec keeps B in a referenced child.
type sample struct {
	A uint8
	B uint16
}

func (s sample) PackBits(w bits.Writer) error {
	if err := bits.WriteUint(w, uint64(s.A), 8); err != nil {
		return errs.Context(err, "a")
	}

	return errs.Context(bits.WriteUint(w, uint64(s.B), 16), "b")
}

func (s *sample) UnpackBits(r bits.Reader) error {
	a, err := bits.ReadUint(r, 8)
	if err != nil {
		return errs.Context(err, "a")
	}
	b, err := bits.ReadUint(r, 16)
	if err != nil {
		return errs.Context(err, "b")
	}
	s.A, s.B = uint8(a), uint16(b)

	return nil
}

var sampleB = Ref(FromBits(bits.Uint[uint16](16)))

func (s sample) StoreCell(b *Builder) error {
	if err := bits.WriteUint(b, uint64(s.A), 8); err != nil {
		return errs.Context(err, "a")
	}

	return errs.Context(sampleB.StoreAs(b, s.B), "b")
}

func (s *sample) ParseCell(p *Parser) error {
	a, err := bits.ReadUint(p, 8)
	if err != nil {
		return errs.Context(err, "a")
	}
	b, err := sampleB.ParseAs(p)
	if err != nil {
		return errs.Context(err, "b")
	}
	s.A, s.B = uint8(a), b

	return nil
}

// === Native Codec Tests ===

func TestBuild_Native(t *testing.T) {
	v := sample{A: 7, B: 0xBEEF}

	c, err := Build(v)
	require.NoError(t, err)
	require.Equal(t, 8, c.BitLen())
	require.Equal(t, 1, c.RefCount())
	require.Equal(t, 16, c.Ref(0).BitLen())

	got, err := ParseFully[sample](c)
	require.NoError(t, err)
	require.Equal(t, v, got)

	same, err := BuildAs(v, AsSame[sample]())
	require.NoError(t, err)
	require.True(t, c.Equal(same))
}

func TestParseFully_TrailingData(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Store(sample{A: 1, B: 2}))
	require.NoError(t, b.WriteBit(true))
	c := mustBuild(t, b)

	_, err := ParseFully[sample](c)
	require.ErrorIs(t, err, errs.ErrTrailingData)

	got, err := Parse[sample](c)
	require.NoError(t, err)
	require.Equal(t, sample{A: 1, B: 2}, got)
}

func TestBuildBits(t *testing.T) {
	c, err := BuildBits(sample{A: 1, B: 2}, bits.AsSame[sample]())
	require.NoError(t, err)
	require.Equal(t, 24, c.BitLen())
	require.Equal(t, 0, c.RefCount())

	got, err := ParseFullyAs(c, FromBits(bits.AsSame[sample]()))
	require.NoError(t, err)
	require.Equal(t, sample{A: 1, B: 2}, got)
}

// === Ref Tests ===

func TestRef_RoundTrip(t *testing.T) {
	s := Ref(FromBits(bits.Uint[uint32](32)))

	c, err := BuildAs(uint32(0xDEADBEEF), s)
	require.NoError(t, err)
	require.Equal(t, 0, c.BitLen())
	require.Equal(t, 1, c.RefCount())

	got, err := ParseFullyAs(c, s)
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), got)
}

func TestRef_ChildMustBeConsumed(t *testing.T) {
	child := NewBuilder()
	require.NoError(t, bits.WriteUint(child, 0xFFFF, 16))
	require.NoError(t, child.WriteBit(true))

	b := NewBuilder()
	require.NoError(t, b.StoreRef(mustBuild(t, child)))
	c := mustBuild(t, b)

	_, err := ParseAs(c, Ref(FromBits(bits.Uint[uint16](16))))
	require.ErrorIs(t, err, errs.ErrTrailingData)
	require.Equal(t, "^", errs.Path(err))
}

func TestRef_Errors(t *testing.T) {
	t.Run("no refs left", func(t *testing.T) {
		b := NewBuilder()
		for range MaxRefs {
			require.NoError(t, b.StoreRef(Empty()))
		}

		err := StoreAs(b, uint8(1), Ref(FromBits(bits.Uint[uint8](8))))
		require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	})

	t.Run("missing ref", func(t *testing.T) {
		_, err := ParseAs(Empty(), Ref(FromBits(bits.Bool)))
		require.ErrorIs(t, err, errs.ErrExhausted)
	})

	t.Run("annotated child failure", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.StoreRef(Empty()))
		c := mustBuild(t, b)

		_, err := ParseAs(c, Ref(Maybe(FromBits(bits.Bool))))
		require.ErrorIs(t, err, errs.ErrExhausted)
		require.Equal(t, "^.tag", errs.Path(err))
	})

	t.Run("inherits hash algorithm", func(t *testing.T) {
		c, err := BuildAs(true, Ref(FromBits(bits.Bool)), WithHashAlgorithm(BLAKE3))
		require.NoError(t, err)
		require.Equal(t, BLAKE3, c.Ref(0).HashAlgorithm())
	})
}

// === RefCell and Inline Tests ===

func TestRefCell_Inline(t *testing.T) {
	payload := sampleCell(t)

	t.Run("ref", func(t *testing.T) {
		c, err := BuildAs(payload, RefCell)
		require.NoError(t, err)

		got, err := ParseFullyAs(c, RefCell)
		require.NoError(t, err)
		require.True(t, got.Equal(payload))
	})

	t.Run("inline", func(t *testing.T) {
		c, err := BuildAs(payload, Inline)
		require.NoError(t, err)
		require.True(t, c.Equal(payload))

		got, err := ParseFullyAs(c, Inline)
		require.NoError(t, err)
		require.True(t, got.Equal(payload))
	})
}

// === Composite Adapter Tests ===

func TestPtr(t *testing.T) {
	s := Ptr(FromBits(bits.Uint[uint8](8)))
	v := uint8(9)

	c, err := BuildAs(&v, s)
	require.NoError(t, err)

	got, err := ParseFullyAs(c, s)
	require.NoError(t, err)
	require.Equal(t, v, *got)

	_, err = BuildAs((*uint8)(nil), s)
	require.ErrorIs(t, err, errs.ErrNilPointer)
}

func TestMaybe_Shape(t *testing.T) {
	s := Maybe(Ref(FromBits(bits.Uint[uint8](8))))

	none, err := BuildAs((*uint8)(nil), s)
	require.NoError(t, err)
	require.Equal(t, "0", none.Bits().BinaryString())
	require.Equal(t, 0, none.RefCount())

	v := uint8(5)
	some, err := BuildAs(&v, s)
	require.NoError(t, err)
	require.Equal(t, "1", some.Bits().BinaryString())
	require.Equal(t, 1, some.RefCount())

	got, err := ParseFullyAs(some, s)
	require.NoError(t, err)
	require.Equal(t, v, *got)

	got, err = ParseFullyAs(none, s)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDefaultOnNone(t *testing.T) {
	s := DefaultOnNone(FromBits(bits.Uint[uint16](16)))

	c, err := BuildAs(uint16(0), s)
	require.NoError(t, err)
	require.Equal(t, 17, c.BitLen())

	absent := mustBuild(t, func() *Builder {
		b := NewBuilder()
		require.NoError(t, b.WriteBit(false))
		return b
	}())

	got, err := ParseFullyAs(absent, s)
	require.NoError(t, err)
	require.Equal(t, uint16(0), got)

	got, err = ParseFullyAs(c, s)
	require.NoError(t, err)
	require.Equal(t, uint16(0), got)
}

func TestEitherAs(t *testing.T) {
	s := EitherAs[uint8, *Cell](FromBits(bits.Uint[uint8](8)), RefCell)

	left, err := BuildAs(bits.Left[uint8, *Cell](3), s)
	require.NoError(t, err)
	require.Equal(t, "000000011", left.Bits().BinaryString())

	right, err := BuildAs(bits.Right[uint8](sampleCell(t)), s)
	require.NoError(t, err)
	require.Equal(t, "1", right.Bits().BinaryString())
	require.Equal(t, 1, right.RefCount())

	got, err := ParseFullyAs(left, s)
	require.NoError(t, err)
	require.False(t, got.IsRight)
	require.Equal(t, uint8(3), got.Left)

	got, err = ParseFullyAs(right, s)
	require.NoError(t, err)
	require.True(t, got.IsRight)
	require.True(t, got.Right.Equal(sampleCell(t)))

	_, err = ParseAs(mustBuild(t, NewBuilder()), s)
	require.Equal(t, "tag", errs.Path(err))
}

func TestArray(t *testing.T) {
	s := Array(Ref(FromBits(bits.Uint[uint8](8))), 3)

	c, err := BuildAs([]uint8{1, 2, 3}, s)
	require.NoError(t, err)
	require.Equal(t, 3, c.RefCount())

	got, err := ParseFullyAs(c, s)
	require.NoError(t, err)
	require.Equal(t, []uint8{1, 2, 3}, got)

	_, err = BuildAs([]uint8{1}, s)
	require.ErrorIs(t, err, errs.ErrLengthMismatch)

	_, err = BuildAs([]uint8{1, 2, 3, 4, 5}, Array(Ref(FromBits(bits.Uint[uint8](8))), 5))
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Equal(t, "[4]", errs.Path(err))
}

func TestPair(t *testing.T) {
	s := Pair(FromBits(bits.Bool), Ref(FromBits(bits.Uint[uint8](8))))
	v := bits.Tuple2[bool, uint8]{V0: true, V1: 42}

	c, err := BuildAs(v, s)
	require.NoError(t, err)

	got, err := ParseFullyAs(c, s)
	require.NoError(t, err)
	require.Equal(t, v, got)

	_, err = ParseAs(mustBuild(t, func() *Builder {
		b := NewBuilder()
		require.NoError(t, b.WriteBit(true))
		return b
	}()), s)
	require.ErrorIs(t, err, errs.ErrExhausted)
	require.Equal(t, ".1", errs.Path(err))
}

// === InlineOrRef Tests ===

func TestInlineOrRef(t *testing.T) {
	s := InlineOrRef(Inline)

	t.Run("empty payload inline", func(t *testing.T) {
		c, err := BuildAs(Empty(), s)
		require.NoError(t, err)
		require.Equal(t, "0", c.Bits().BinaryString())
		require.Equal(t, 0, c.RefCount())

		got, err := ParseFullyAs(c, s)
		require.NoError(t, err)
		require.True(t, got.IsEmpty())
	})

	t.Run("non-empty payload by ref", func(t *testing.T) {
		payload := sampleCell(t)

		c, err := BuildAs(payload, s)
		require.NoError(t, err)
		require.Equal(t, "1", c.Bits().BinaryString())
		require.Equal(t, 1, c.RefCount())
		require.True(t, c.Ref(0).Equal(payload))

		got, err := ParseFullyAs(c, s)
		require.NoError(t, err)
		require.True(t, got.Equal(payload))
	})

	t.Run("custom predicate", func(t *testing.T) {
		always := InlineOrRefIf(FromBits(bits.Uint[uint16](16)), func(*Cell) bool { return true })

		c, err := BuildAs(uint16(0xABCD), always)
		require.NoError(t, err)
		require.Equal(t, 17, c.BitLen())
		require.Equal(t, 0, c.RefCount())

		got, err := ParseFullyAs(c, always)
		require.NoError(t, err)
		require.Equal(t, uint16(0xABCD), got)
	})

	t.Run("falls back to ref when full", func(t *testing.T) {
		always := InlineOrRefIf(FromBits(bits.Uint[uint16](16)), func(*Cell) bool { return true })

		b := NewBuilder()
		require.NoError(t, b.RepeatBit(MaxBits-10, false))
		require.NoError(t, StoreAs(b, uint16(7), always))
		require.Equal(t, 1, b.RefCount())
		require.Equal(t, MaxBits-9, b.BitLen())
	})
}
