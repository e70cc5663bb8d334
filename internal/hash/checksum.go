// Package hash provides the non-cryptographic checksums used for payload
// integrity outside the cell graph.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum64 computes the xxHash64 of data.
func Checksum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Verify reports whether data hashes to want.
func Verify(data []byte, want uint64) bool {
	return xxhash.Sum64(data) == want
}
