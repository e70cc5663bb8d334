// Package dedup assigns stable indices to values identified by a key.
package dedup

// Tracker records the first value seen for each key and the order in which
// keys were first added. The BoC encoder uses it with cell hashes as keys so
// that a cell reachable along several paths is stored only once.
type Tracker[K comparable, V any] struct {
	index map[K]int
	items []V
}

// NewTracker creates a tracker sized for about n distinct keys.
func NewTracker[K comparable, V any](n int) *Tracker[K, V] {
	return &Tracker[K, V]{
		index: make(map[K]int, n),
		items: make([]V, 0, n),
	}
}

// Add tracks v under key and returns its index. When key was already tracked
// the existing index is returned, v is discarded and added is false.
func (t *Tracker[K, V]) Add(key K, v V) (idx int, added bool) {
	if idx, ok := t.index[key]; ok {
		return idx, false
	}

	idx = len(t.items)
	t.index[key] = idx
	t.items = append(t.items, v)

	return idx, true
}

// Index returns the index of key.
func (t *Tracker[K, V]) Index(key K) (int, bool) {
	idx, ok := t.index[key]
	return idx, ok
}

// Contains reports whether key is tracked.
func (t *Tracker[K, V]) Contains(key K) bool {
	_, ok := t.index[key]
	return ok
}

// Items returns the tracked values in insertion order. The slice is owned by
// the tracker.
func (t *Tracker[K, V]) Items() []V {
	return t.items
}

// Count returns the number of tracked keys.
func (t *Tracker[K, V]) Count() int {
	return len(t.items)
}

// Reset clears the tracker while keeping its allocations.
func (t *Tracker[K, V]) Reset() {
	clear(t.index)
	clear(t.items)
	t.items = t.items[:0]
}
