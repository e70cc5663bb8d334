package bits

import (
	"fmt"
	"math/big"

	"github.com/arloliu/tlb/errs"
)

// uintReader is implemented by readers with an allocation-free integer path,
// such as *VecReader and cell.Parser.
type uintReader interface {
	ReadUint(n int) (uint64, error)
}

// WriteUint writes the lowest n bits of x, most significant first.
// It fails with errs.ErrInvalidValue when n is outside [0, 64] or x does not
// fit in n bits.
func WriteUint(w Writer, x uint64, n int) error {
	if n < 0 || n > 64 {
		return fmt.Errorf("%w: unsigned width %d outside [0, 64]", errs.ErrInvalidValue, n)
	}
	if n < 64 && x>>n != 0 {
		return fmt.Errorf("%w: %d does not fit in %d bits", errs.ErrInvalidValue, x, n)
	}

	var tmp Vec
	tmp.AppendUint(x, n)

	return w.WriteBits(tmp)
}

// ReadUint reads n bits as an unsigned integer, n in [0, 64].
func ReadUint(r Reader, n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("%w: unsigned width %d outside [0, 64]", errs.ErrInvalidValue, n)
	}
	if ur, ok := r.(uintReader); ok {
		return ur.ReadUint(n)
	}

	v, err := r.ReadBits(n)
	if err != nil {
		return 0, err
	}

	return v.uintAt(0, n), nil
}

// WriteInt writes x as an n-bit two's complement integer, n in [1, 64].
func WriteInt(w Writer, x int64, n int) error {
	if n < 1 || n > 64 {
		return fmt.Errorf("%w: signed width %d outside [1, 64]", errs.ErrInvalidValue, n)
	}
	if n < 64 {
		lo, hi := -(int64(1) << (n - 1)), int64(1)<<(n-1)-1
		if x < lo || x > hi {
			return fmt.Errorf("%w: %d does not fit in %d signed bits", errs.ErrInvalidValue, x, n)
		}
	}

	var tmp Vec
	tmp.AppendUint(uint64(x), n)

	return w.WriteBits(tmp)
}

// ReadInt reads an n-bit two's complement integer, n in [1, 64].
func ReadInt(r Reader, n int) (int64, error) {
	if n < 1 || n > 64 {
		return 0, fmt.Errorf("%w: signed width %d outside [1, 64]", errs.ErrInvalidValue, n)
	}

	u, err := ReadUint(r, n)
	if err != nil {
		return 0, err
	}
	if n < 64 && u&(1<<(n-1)) != 0 {
		u |= ^uint64(0) << n
	}

	return int64(u), nil
}

// WriteBigUint writes a non-negative x as an n-bit unsigned integer.
func WriteBigUint(w Writer, x *big.Int, n int) error {
	if x == nil {
		return fmt.Errorf("%w: nil *big.Int", errs.ErrNilPointer)
	}
	if n < 0 {
		return fmt.Errorf("%w: negative width %d", errs.ErrInvalidValue, n)
	}
	if x.Sign() < 0 {
		return fmt.Errorf("%w: negative value %s", errs.ErrInvalidValue, x)
	}
	if x.BitLen() > n {
		return fmt.Errorf("%w: %s does not fit in %d bits", errs.ErrInvalidValue, x, n)
	}

	size := (n + 7) / 8
	v := FromBytes(x.FillBytes(make([]byte, size)))

	return w.WriteBits(v.Slice(size*8-n, size*8))
}

// ReadBigUint reads an n-bit unsigned integer of arbitrary width.
func ReadBigUint(r Reader, n int) (*big.Int, error) {
	v, err := r.ReadBits(n)
	if err != nil {
		return nil, err
	}

	aligned := NewVec(n + 7)
	aligned.AppendUint(0, (8-n%8)%8)
	aligned.appendVec(v)

	return new(big.Int).SetBytes(aligned.buf), nil
}

// WriteBytes writes all bytes of b, 8 bits each.
func WriteBytes(w Writer, b []byte) error {
	return w.WriteBits(FromBytes(b))
}

// ReadBytes reads n whole bytes.
func ReadBytes(r Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative byte count %d", errs.ErrInvalidValue, n)
	}

	v, err := r.ReadBits(n * 8)
	if err != nil {
		return nil, err
	}

	return v.buf, nil
}
