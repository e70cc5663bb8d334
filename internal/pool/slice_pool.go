package pool

import "sync"

// SlicePool reuses slices of T across serialization calls.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty pool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// Get retrieves a slice of length size from the pool.
//
// The contents of the returned slice are unspecified. The caller must call the
// returned cleanup function, typically with defer, once the slice is no longer
// used.
//
// Example:
//
//	offsets, cleanup := offsetPool.Get(len(cells))
//	defer cleanup()
func (sp *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := sp.pool.Get().(*[]T)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]T, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() {
		clear(*ptr)
		sp.pool.Put(ptr)
	}
}
