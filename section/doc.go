// Package section defines the byte-level structures of the Bag-of-Cells
// format: the file header with its flag byte, and the two descriptor bytes
// that precede every serialized cell.
//
// # BoC Structure
//
//	┌──────────────────────────────────────────────────────────┐
//	│ magic (4 bytes)  b5ee9c72                                │
//	│ flag (1 byte)    has_idx | has_crc32c | has_cache_bits | │
//	│                  reserved(2) | size(3)                   │
//	│ off_bytes (1 byte)                                       │
//	│ cells, roots, absent (size bytes each)                   │
//	│ tot_cells_size (off_bytes bytes)                         │
//	├──────────────────────────────────────────────────────────┤
//	│ root list (roots × size bytes)                           │
//	│ index (cells × off_bytes bytes, when has_idx)            │
//	├──────────────────────────────────────────────────────────┤
//	│ cell data: d1 d2 data refs(× size bytes), per cell       │
//	├──────────────────────────────────────────────────────────┤
//	│ CRC32C (4 bytes little-endian, when has_crc32c)          │
//	└──────────────────────────────────────────────────────────┘
//
// Integers are big-endian. The two legacy magics 68ff65f3 and acc3a728
// carry the same header without the flag bits and without a root list; the
// single root is cell 0.
//
// # Cell Descriptor
//
// d1 = refs + 8·exotic + 32·level and d2 = floor(bits/8) + ceil(bits/8).
// When bits is not a multiple of 8 the data is completed with a single 1 bit
// followed by zeros up to the byte boundary; an odd d2 signals the tag.
package section
