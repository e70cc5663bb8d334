package boc

import (
	"bytes"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/arloliu/tlb/compress"
	"github.com/arloliu/tlb/endian"
	"github.com/arloliu/tlb/errs"
	"github.com/arloliu/tlb/internal/hash"
	"github.com/arloliu/tlb/internal/pool"
)

// EnvelopeMagic starts every compressed envelope.
var EnvelopeMagic = [4]byte{'B', 'O', 'C', 'Z'}

// EnvelopeHeaderSize is the size of the envelope header preceding the
// compressed payload.
const EnvelopeHeaderSize = 4 + 1 + 4 + 8

// MarshalCompressed encodes bag with opts and wraps it in a compressed
// envelope using algorithm typ.
func MarshalCompressed(bag *Bag, typ compress.Type, opts ...Option) ([]byte, error) {
	codec, err := compress.GetCodec(typ)
	if err != nil {
		return nil, err
	}

	raw, err := Marshal(bag, opts...)
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d byte bag does not fit an envelope", errs.ErrCapacityExceeded, len(raw))
	}

	payload, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress %s: %w", typ, err)
	}

	buf := pool.GetEnvelopeBuffer()
	defer pool.PutEnvelopeBuffer(buf)

	be := endian.GetBigEndianEngine()
	buf.Grow(EnvelopeHeaderSize + len(payload))
	buf.MustWrite(EnvelopeMagic[:])
	_ = buf.WriteByte(byte(typ))
	buf.B = be.AppendUint32(buf.B, uint32(len(raw)))
	buf.B = be.AppendUint64(buf.B, hash.Checksum64(raw))
	buf.MustWrite(payload)

	Logger().Debug("compressed bag of cells",
		zap.Stringer("compression", typ),
		zap.Int("raw_bytes", len(raw)),
		zap.Int("bytes", buf.Len()),
	)

	return buf.Copy(), nil
}

// UnmarshalCompressed reverses MarshalCompressed. The decompressed bag must
// match the stored length and XXH64 checksum before it is decoded with opts.
func UnmarshalCompressed(data []byte, opts ...Option) (*Bag, error) {
	dec, err := NewDecoder(opts...)
	if err != nil {
		return nil, err
	}

	if len(data) < EnvelopeHeaderSize {
		return nil, fmt.Errorf("%w: envelope needs %d bytes, have %d", errs.ErrExhausted, EnvelopeHeaderSize, len(data))
	}
	if !bytes.Equal(data[:4], EnvelopeMagic[:]) {
		return nil, fmt.Errorf("%w: envelope starts with %x", errs.ErrInvalidMagic, data[:4])
	}

	typ := compress.Type(data[4])
	codec, err := compress.GetCodec(typ)
	if err != nil {
		return nil, err
	}

	be := endian.GetBigEndianEngine()
	size := uint64(be.Uint32(data[5:9]))
	sum := be.Uint64(data[9:17])
	if size > dec.cfg.maxBagSize() {
		return nil, fmt.Errorf("%w: %d byte bag exceeds the cell limit", errs.ErrCapacityExceeded, size)
	}

	raw, err := compress.DecompressSized(codec, data[EnvelopeHeaderSize:], int(size))
	if err != nil {
		return nil, err
	}
	if !hash.Verify(raw, sum) {
		return nil, fmt.Errorf("%w: %w: envelope xxh64 %016x", errs.ErrCorrupted, errs.ErrChecksumMismatch, sum)
	}

	return dec.Decode(raw)
}
