// Package errs defines the error kinds shared by the bits, cell and boc packages.
//
// Every failure surfaced by the codec wraps exactly one of the sentinels below,
// so callers classify errors with errors.Is:
//
//	_, err := boc.Unmarshal(data)
//	if errors.Is(err, errs.ErrChecksumMismatch) {
//	    // corrupted transfer
//	}
//
// Errors produced inside composed strategies additionally carry a PathError
// describing where decoding diverged, e.g. "body.value[2].0: not enough bits".
package errs

import "errors"

var (
	// ErrCapacityExceeded is returned when a write would exceed a fixed budget:
	// the 1023 data bits or 4 references of a cell builder, the maximum cell
	// depth, or the bit budget of a size-limited writer.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrExhausted is returned when a reader or cell parser is asked for more
	// bits or references than remain.
	ErrExhausted = errors.New("not enough data")

	// ErrTrailingData is returned by exact-consumption decoders when bits,
	// references or bytes remain after the value was decoded.
	ErrTrailingData = errors.New("more data left")

	// ErrCorrupted marks structurally invalid serialized data: out-of-range
	// indices, truncated buffers, inconsistent sizes or index tables.
	ErrCorrupted = errors.New("corrupted data")

	// ErrChecksumMismatch is returned when a stored checksum does not match the
	// recomputed one. Errors carrying it also match ErrCorrupted.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrCycle is returned when a reference would make the cell graph cyclic or
	// break the required topological order.
	ErrCycle = errors.New("cell graph is not a DAG")

	// ErrInvalidMagic is returned when a serialized bag does not start with a
	// known magic number.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrUnsupported is returned for valid but unimplemented format features,
	// such as exotic cells or absent cells.
	ErrUnsupported = errors.New("unsupported feature")

	// ErrInvalidValue is returned when a value cannot be represented by the
	// selected strategy, e.g. an integer wider than its bit width.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNilPointer is returned when a nil pointer is packed by a strategy that
	// requires a value.
	ErrNilPointer = errors.New("nil pointer")

	// ErrLengthMismatch is returned when a fixed-size sequence is packed with a
	// different number of elements.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrSingleRoot is returned by single-root accessors when the bag does not
	// hold exactly one root.
	ErrSingleRoot = errors.New("bag must have exactly one root")

	// ErrInvalidOption is returned when a functional option receives an invalid
	// argument.
	ErrInvalidOption = errors.New("invalid option")
)
