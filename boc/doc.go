// Package boc serializes cell graphs in the Bag-of-Cells format.
//
// A Bag holds an ordered list of root cells. Encoding stores every cell
// reachable from the roots exactly once, deduplicated by representation
// hash, in an order where each cell precedes the cells it references:
//
//	data, err := boc.Marshal(boc.NewBag(root), boc.WithCRC32C(true))
//
//	bag, err := boc.Unmarshal(data)
//	root, err := bag.SingleRoot()
//
// Decoding never trusts the stored sizes: tot_cells_size, the optional
// offset index and the optional CRC32C are all recomputed and compared, and
// every reference must point forward to a cell with a higher index.
// WithMaxCells bounds the number of cells a decoder will allocate for.
//
// # Cell Order
//
// Cells are numbered by a depth-first traversal: roots are visited in
// reverse root order and the references of each cell in reverse reference
// order, and the reverse of the resulting post-order is the stored order.
// Roots are numbered in discovery order: a root that is also reachable from
// a later root is placed below that root. Sibling subtrees follow in
// reference order. The order depends only on the graph, so encoding the
// same bag twice yields identical bytes.
//
// # Compressed Envelope
//
// MarshalCompressed wraps an encoded bag in a small envelope for storage:
//
//	┌────────────┬──────────┬────────────────────┬─────────────────────┬─────────┐
//	│ "BOCZ" (4) │ type (1) │ raw length (4, BE) │ XXH64 of raw (8, BE)│ payload │
//	└────────────┴──────────┴────────────────────┴─────────────────────┴─────────┘
//
// The payload is the bag compressed with the selected compress.Type.
package boc
