package slotmap

// Entry is a single (Key, Value) pair produced during iteration.
type Entry[V any] struct {
	Key   Key
	Value V
}

// Seq matches the shape of iter.Seq[T] so callers can use slices.Collect
// without this package depending on iter directly:
//
//	slices.Collect(iter.Seq[slotmap.Entry[V]](seq))
type Seq[V any] func(yield func(Entry[V]) bool)

// Cursor is a forward-only, lazy walk over an engine's live entries.
//
// A Cursor snapshots the engine's mutation version at construction. Any
// mutation of the engine between construction and a Next call invalidates
// it: the next Next returns false and Err reports ErrEnumerationInvalidated.
// Current before the first successful Next, or after exhaustion, reports
// ErrEnumerationMisuse.
type Cursor[V any] struct {
	snapshot uint64
	m        *DenseSlotMap[V]

	page   int
	offset int

	started bool
	done    bool
	invalid bool

	curKey Key
	curVal V
}

// Cursor returns a new Cursor over m's current live entries.
func (m *DenseSlotMap[V]) Cursor() *Cursor[V] {
	return &Cursor[V]{m: m, snapshot: m.mutVersion}
}

// Next advances the cursor and reports whether a new entry is available.
// It returns false both at end of iteration and on invalidation; callers
// must consult Err to distinguish the two.
func (c *Cursor[V]) Next() bool {
	if c.done || c.invalid {
		return false
	}

	if c.m.mutVersion != c.snapshot {
		c.invalid = true
		return false
	}

	for c.page < len(c.m.pages) {
		page := &c.m.pages[c.page]

		for c.offset < len(page.meta) {
			meta := page.meta[c.offset]
			if meta.State() == StateOccupied {
				index := uint32(toLinearIndex(PagedAddress{Page: uint32(c.page), Offset: uint32(c.offset)}, c.m.opts.PageSize))
				c.curKey = NewKey(index, meta.Version())
				c.curVal = page.values[c.offset]
				c.offset++
				c.started = true

				return true
			}

			c.offset++
		}

		c.page++
		c.offset = 0
	}

	c.done = true

	return false
}

// Current returns the entry at the cursor's current position.
func (c *Cursor[V]) Current() (Key, V, error) {
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

// Err reports the reason iteration stopped early, or nil if it ran to
// completion (or has not been exhausted yet).
func (c *Cursor[V]) Err() error {
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
func (c *Cursor[V]) Reset() error {
	if c.m.mutVersion != c.snapshot {
		c.invalid = true
		return ErrEnumerationInvalidated
	}

	c.page = 0
	c.offset = 0
	c.started = false
	c.done = false
	c.invalid = false

	return nil
}

// All returns a Seq over m's current live entries, for range-over-func
// usage. The returned Seq shares the same invalidation rule as Cursor: a
// mutation mid-range stops iteration without panicking; check Err on the
// Cursor directly if the distinction between exhaustion and invalidation
// matters.
func (m *DenseSlotMap[V]) All() Seq[V] {
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
