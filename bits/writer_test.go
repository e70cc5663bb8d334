package bits

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tlb/errs"
)

var errSink = errors.New("sink failure")

// failAfter accepts n bits and fails on every write after that.
func failAfter(n int) BitWriterFunc {
	return func(bool) error {
		if n == 0 {
			return errSink
		}
		n--

		return nil
	}
}

// === Extend Tests ===

func TestExtend(t *testing.T) {
	t.Run("ReturnsFullWriterAsIs", func(t *testing.T) {
		v := &Vec{}
		require.Same(t, v, Extend(v))
	})

	t.Run("DerivesBulkOperations", func(t *testing.T) {
		var got []bool
		w := Extend(BitWriterFunc(func(bit bool) error {
			got = append(got, bit)
			return nil
		}))

		require.NoError(t, w.WriteBits(MustParseBinary("101")))
		require.NoError(t, w.RepeatBit(2, false))
		require.Equal(t, []bool{true, false, true, false, false}, got)
	})

	t.Run("StopsOnFirstError", func(t *testing.T) {
		w := Extend(failAfter(2))
		require.ErrorIs(t, w.WriteBits(MustParseBinary("1111")), errSink)
	})
}

// === Counter Tests ===

func TestCounter(t *testing.T) {
	var v Vec
	c := NewCounter(&v)

	require.NoError(t, c.WriteBit(true))
	require.NoError(t, c.WriteBits(MustParseBinary("0101")))
	require.NoError(t, c.RepeatBit(7, true))

	require.Equal(t, 12, c.Count())
	require.Equal(t, 12, v.Len())
	require.Same(t, Writer(&v), c.Unwrap())
}

func TestCounter_NilWriterOnlyCounts(t *testing.T) {
	c := NewCounter(nil)
	require.NoError(t, c.RepeatBit(1023, false))
	require.Equal(t, 1023, c.Count())
}

func TestCounter_CountsOnlySuccessfulWrites(t *testing.T) {
	c := NewCounter(Extend(failAfter(3)))

	require.NoError(t, c.WriteBits(MustParseBinary("11")))
	require.ErrorIs(t, c.WriteBits(MustParseBinary("11")), errSink)
	require.Equal(t, 2, c.Count())
}

// === Limiter Tests ===

func TestLimiter_ExactBudget(t *testing.T) {
	for _, limit := range []int{0, 1, 7, 64, 1023} {
		var v Vec
		l := NewLimiter(&v, limit)

		require.NoError(t, l.RepeatBit(limit, true))
		require.Equal(t, 0, l.BitsLeft())

		err := l.WriteBit(true)
		require.ErrorIs(t, err, errs.ErrCapacityExceeded)
		require.Contains(t, err.Error(), "max bits limit reached")
		require.Equal(t, limit, v.Len(), "inner writer must not be touched")
		require.Equal(t, limit, l.Count())
	}
}

func TestLimiter_RejectsBeforeWriting(t *testing.T) {
	var v Vec
	l := NewLimiter(&v, 10)
	require.NoError(t, l.WriteBits(MustParseBinary("111111")))

	require.ErrorIs(t, l.WriteBits(MustParseBinary("00000")), errs.ErrCapacityExceeded)
	require.ErrorIs(t, l.RepeatBit(5, true), errs.ErrCapacityExceeded)
	require.Equal(t, 6, v.Len())
	require.Equal(t, 6, l.Count())

	require.NoError(t, l.RepeatBit(4, false))
	require.Equal(t, 10, l.Limit())
	require.Equal(t, "1111110000", v.BinaryString())
}

// === Tee Tests ===

func TestTee(t *testing.T) {
	var primary, secondary Vec
	tee := NewTee(&primary, &secondary)

	require.NoError(t, tee.WriteBit(true))
	require.NoError(t, tee.WriteBits(MustParseBinary("010")))
	require.NoError(t, tee.RepeatBit(3, true))

	require.Equal(t, "1010111", primary.BinaryString())
	require.True(t, primary.Equal(secondary))
}

func TestTee_SecondaryFailureIsAnnotated(t *testing.T) {
	var primary Vec
	tee := NewTee(&primary, NewLimiter(&Vec{}, 2))

	require.NoError(t, tee.WriteBits(MustParseBinary("11")))

	err := tee.WriteBit(false)
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Equal(t, "tee", errs.Path(err))
}

func TestTee_PrimaryFailureIsNotAnnotated(t *testing.T) {
	var secondary Vec
	tee := NewTee(NewLimiter(&Vec{}, 0), &secondary)

	err := tee.WriteBit(true)
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Empty(t, errs.Path(err))
	require.True(t, secondary.IsEmpty())
}
