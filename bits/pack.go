package bits

import (
	"fmt"

	"github.com/arloliu/tlb/errs"
)

// Packer is implemented by types with a native bit encoding.
type Packer interface {
	PackBits(w Writer) error
}

// Unpacker is implemented by pointer types that decode themselves in place.
type Unpacker interface {
	UnpackBits(r Reader) error
}

// Codec constrains P to be *T with both a native encoder and decoder. It lets
// generic helpers allocate a T and decode into it:
//
//	v, err := bits.Unpack[Header](r)
type Codec[T any] interface {
	*T
	Packer
	Unpacker
}

// Pack writes p using its native encoding.
func Pack(w Writer, p Packer) error {
	return p.PackBits(w)
}

// Unpack decodes a T from r using its native decoding.
func Unpack[T any, P Codec[T]](r Reader) (T, error) {
	var v T
	if err := P(&v).UnpackBits(r); err != nil {
		var zero T
		return zero, err
	}

	return v, nil
}

// Encode packs p into a new Vec.
func Encode(p Packer) (Vec, error) {
	var v Vec
	if err := p.PackBits(&v); err != nil {
		return Vec{}, err
	}

	return v, nil
}

// Decode unpacks a T from the start of v. Bits left over are ignored.
func Decode[T any, P Codec[T]](v Vec) (T, error) {
	return Unpack[T, P](NewReader(v))
}

// DecodeFully unpacks a T from v and fails with errs.ErrTrailingData when
// bits remain afterwards.
func DecodeFully[T any, P Codec[T]](v Vec) (T, error) {
	r := NewReader(v)
	out, err := Unpack[T, P](r)
	if err != nil {
		return out, err
	}
	if err := ensureConsumed(r); err != nil {
		var zero T
		return zero, err
	}

	return out, nil
}

// PackAs writes v using strategy s.
func PackAs[T any](w Writer, v T, s Strategy[T]) error {
	return s.PackAs(w, v)
}

// UnpackAs reads a T from r using strategy s.
func UnpackAs[T any](r Reader, s Strategy[T]) (T, error) {
	return s.UnpackAs(r)
}

// EncodeAs packs v into a new Vec using strategy s.
func EncodeAs[T any](v T, s Strategy[T]) (Vec, error) {
	var out Vec
	if err := s.PackAs(&out, v); err != nil {
		return Vec{}, err
	}

	return out, nil
}

// DecodeAs unpacks a T from the start of v using strategy s.
func DecodeAs[T any](v Vec, s Strategy[T]) (T, error) {
	return s.UnpackAs(NewReader(v))
}

// DecodeFullyAs is DecodeAs with an exact consumption check.
func DecodeFullyAs[T any](v Vec, s Strategy[T]) (T, error) {
	r := NewReader(v)
	out, err := s.UnpackAs(r)
	if err != nil {
		return out, err
	}
	if err := ensureConsumed(r); err != nil {
		var zero T
		return zero, err
	}

	return out, nil
}

func ensureConsumed(r *VecReader) error {
	if left := r.BitsLeft(); left > 0 {
		return fmt.Errorf("%w: %d bits", errs.ErrTrailingData, left)
	}

	return nil
}
