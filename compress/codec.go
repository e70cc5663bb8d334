package compress

import (
	"fmt"

	"github.com/arloliu/tlb/errs"
)

// Compressor compresses a complete payload.
//
// The returned slice is owned by the caller. The input is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// SizedDecompressor is implemented by decompressors that can use a known
// uncompressed size to allocate the output exactly once.
type SizedDecompressor interface {
	DecompressSized(data []byte, size int) ([]byte, error)
}

// Codec combines both directions of one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[Type]Codec{
	None: NewNoOpCompressor(),
	Zstd: NewZstdCompressor(),
	S2:   NewS2Compressor(),
	LZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in codec for t.
func GetCodec(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: compression type %s", errs.ErrUnsupported, t)
}

// DecompressSized decompresses data whose uncompressed size is known. It uses
// SizedDecompressor when c provides it and checks the resulting length
// otherwise.
func DecompressSized(c Decompressor, data []byte, size int) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if sd, ok := c.(SizedDecompressor); ok {
		out, err = sd.DecompressSized(data, size)
	} else {
		out, err = c.Decompress(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorrupted, err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d", errs.ErrCorrupted, len(out), size)
	}

	return out, nil
}
