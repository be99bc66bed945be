package slotmap

// SparseCursor is a forward-only, lazy walk over a SparseSlotMap's live
// entries. Unlike DenseSlotMap's Cursor, it walks the dense side directly
// (0..lastDenseIndex), so its cost is O(live) regardless of how many
// Tombstones exist on the sparse side.
//
// A SparseCursor snapshots the engine's mutation version at construction.
// Any mutation between construction and a Next call invalidates it.
type SparseCursor[V any] struct {
	snapshot uint64
	m        *SparseSlotMap[V]

	next int // next dense index to visit

	started bool
	done    bool
	invalid bool

	curKey Key
	curVal V
}

// Cursor returns a new SparseCursor over m's current live entries.
func (m *SparseSlotMap[V]) Cursor() *SparseCursor[V] {
	return &SparseCursor[V]{m: m, snapshot: m.mutVersion}
}

// Next advances the cursor and reports whether a new entry is available.
func (c *SparseCursor[V]) Next() bool {
	if c.done || c.invalid {
		return false
	}

	if c.m.mutVersion != c.snapshot {
		c.invalid = true
		return false
	}

	if c.next > c.m.lastDenseIndex {
		c.done = true
		return false
	}

	d := uint32(c.next)
	sparseIndex, value := c.m.denseSlot(d)

	addr := fromLinearIndex(uint64(*sparseIndex), c.m.opts.PageSize)
	meta, _ := c.m.sparseSlot(addr)

	c.curKey = NewKey(*sparseIndex, meta.Version())
	c.curVal = *value
	c.next++
	c.started = true

	return true
}

// Current returns the entry at the cursor's current position.
func (c *SparseCursor[V]) Current() (Key, V, error) {
	if c.invalid {
		var zero V
		return InvalidKey, zero, ErrEnumerationInvalidated
	}

	if !c.started || c.done {
		var zero V
		return InvalidKey, zero, ErrEnumerationMisuse
	}

	return c.curKey, c.curVal, nil
}

// Err reports the reason iteration stopped early, or nil.
func (c *SparseCursor[V]) Err() error {
	if c.invalid {
		return ErrEnumerationInvalidated
	}

	return nil
}

// Reset restarts the walk from the beginning, but only if the engine's
// mutation version still matches the snapshot taken at construction (or at
// the last successful Reset). If the engine was mutated in the meantime,
// Reset leaves the cursor invalidated and returns ErrEnumerationInvalidated;
// the next Next/Current call reports the same.
func (c *SparseCursor[V]) Reset() error {
	if c.m.mutVersion != c.snapshot {
		c.invalid = true
		return ErrEnumerationInvalidated
	}

	c.next = 0
	c.started = false
	c.done = false
	c.invalid = false

	return nil
}

// All returns a Seq over m's current live entries, walking the dense side
// in order.
func (m *SparseSlotMap[V]) All() Seq[V] {
	return func(yield func(Entry[V]) bool) {
		cur := m.Cursor()

		for cur.Next() {
			key, val, err := cur.Current()
			if err != nil {
				return
			}

			if !yield(Entry[V]{Key: key, Value: val}) {
				return
			}
		}
	}
}
