package section

import (
	"fmt"

	"github.com/arloliu/tlb/errs"
)

// Flag is the byte following the generic magic.
type Flag uint8

// NewFlag creates a flag for cell indices of size bytes.
func NewFlag(size int) Flag {
	return Flag(size & SizeMask)
}

// HasIdx reports whether the offset index is present.
func (f Flag) HasIdx() bool {
	return f&HasIdxMask != 0
}

// HasCRC32C reports whether a trailing CRC32C is present.
func (f Flag) HasCRC32C() bool {
	return f&HasCRC32CMask != 0
}

// HasCacheBits reports whether index entries carry a cache bit.
func (f Flag) HasCacheBits() bool {
	return f&HasCacheBitsMask != 0
}

// Size returns the byte width of cell indices.
func (f Flag) Size() int {
	return int(f & SizeMask)
}

// SetHasIdx enables or disables the offset index.
func (f *Flag) SetHasIdx(enabled bool) {
	f.set(HasIdxMask, enabled)
}

// SetHasCRC32C enables or disables the trailing checksum.
func (f *Flag) SetHasCRC32C(enabled bool) {
	f.set(HasCRC32CMask, enabled)
}

// SetHasCacheBits enables or disables index cache bits.
func (f *Flag) SetHasCacheBits(enabled bool) {
	f.set(HasCacheBitsMask, enabled)
}

func (f *Flag) set(mask Flag, enabled bool) {
	if enabled {
		*f |= mask
	} else {
		*f &^= mask
	}
}

// Validate checks the reserved bits, the index width and the flag
// combination.
func (f Flag) Validate() error {
	if f&ReservedFlagsMask != 0 {
		return fmt.Errorf("%w: reserved flag bits set in %#02x", errs.ErrCorrupted, uint8(f))
	}
	if size := f.Size(); size < MinRefSize || size > MaxRefSize {
		return fmt.Errorf("%w: cell index size %d outside [%d, %d]", errs.ErrCorrupted, size, MinRefSize, MaxRefSize)
	}
	if f.HasCacheBits() && !f.HasIdx() {
		return fmt.Errorf("%w: cache bits without index", errs.ErrCorrupted)
	}

	return nil
}

func (f Flag) String() string {
	return fmt.Sprintf("Flag{idx=%t crc32c=%t cache_bits=%t size=%d}", f.HasIdx(), f.HasCRC32C(), f.HasCacheBits(), f.Size())
}
