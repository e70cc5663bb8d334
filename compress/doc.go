// Package compress provides the compression codecs available to the
// compressed BoC envelope (see boc.MarshalCompressed).
//
// A BoC is already compact: cells are deduplicated and bit packed. Payloads
// that repeat byte patterns across cells (code, dictionaries, padded data)
// still shrink well under a general purpose compressor:
//   - None: identity, useful to wrap a BoC in the checksummed envelope only
//   - Zstd: best ratio
//   - S2: balanced speed and ratio
//   - LZ4: fastest decompression
//
// Codecs are stateless values and safe for concurrent use; encoders and
// decoders with internal state are pooled.
package compress
