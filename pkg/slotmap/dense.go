package slotmap

import "errors"

// densePage is one page of a DenseSlotMap: parallel Meta and Value arrays of
// equal, fixed length. Single indirection — the value lives beside its Meta.
type densePage[V any] struct {
	meta   []Meta
	values []V
}

func newDensePage[V any](pageSize uint32) densePage[V] {
	return densePage[V]{
		meta:   make([]Meta, pageSize),
		values: make([]V, pageSize),
	}
}

// DenseSlotMap is the single-indirection Slot Map engine: each slot holds
// its Meta and value together in one paged array. Lookups, replacements,
// and removals are a single address computation plus an in-place write.
//
// A DenseSlotMap must be obtained via [NewDenseSlotMap]; the zero value is
// not usable. DenseSlotMap is not safe for concurrent use; callers must
// serialize access externally.
type DenseSlotMap[V any] struct {
	pages []densePage[V]
	free  freeQueue
	opts  Options

	slotCount      int
	tombstoneCount int
	mutVersion     uint64
	highWater      uint64

	constructionAdvisory string
}

// NewDenseSlotMap constructs a DenseSlotMap with the given Options. Passing
// the zero Options is equivalent to passing [DefaultOptions]. Returns an
// error only if PageSize is set to something other than zero or a power of
// two in [1, 2^30].
func NewDenseSlotMap[V any](opts Options) (*DenseSlotMap[V], error) {
	normalized, note, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	m := &DenseSlotMap[V]{
		opts: normalized,
		free: newFreeQueue(normalized.FreeIndicesLimit),
	}
	m.pages = append(m.pages, newDensePage[V](normalized.PageSize))

	if note != nil {
		m.constructionAdvisory = note.String()
	}

	return m, nil
}

// ConstructionAdvisory returns a non-fatal note recorded during
// construction, e.g. that FreeIndicesLimit was clamped to PageSize. It is
// empty when Options required no adjustment.
func (m *DenseSlotMap[V]) ConstructionAdvisory() string { return m.constructionAdvisory }

// PageSize returns the configured slots-per-page.
func (m *DenseSlotMap[V]) PageSize() uint32 { return m.opts.PageSize }

// PageCount returns the number of pages currently allocated.
func (m *DenseSlotMap[V]) PageCount() int { return len(m.pages) }

// SlotCount returns the number of live values.
func (m *DenseSlotMap[V]) SlotCount() int { return m.slotCount }

// TombstoneCount returns the number of slots permanently retired.
func (m *DenseSlotMap[V]) TombstoneCount() int { return m.tombstoneCount }

// FreeIndicesLimit returns the configured recycling threshold.
func (m *DenseSlotMap[V]) FreeIndicesLimit() uint32 { return m.opts.FreeIndicesLimit }

// Len is an alias for SlotCount, satisfying [Reader].
func (m *DenseSlotMap[V]) Len() int { return m.slotCount }

// Cap returns the total number of slots currently allocated across all pages.
func (m *DenseSlotMap[V]) Cap() int { return len(m.pages) * int(m.opts.PageSize) }

func (m *DenseSlotMap[V]) slot(addr PagedAddress) (*Meta, *V) {
	page := &m.pages[addr.Page]
	return &page.meta[addr.Offset], &page.values[addr.Offset]
}

// Add inserts value into a recycled or freshly allocated slot and returns
// its Key. Fails with ErrCapacityExhausted if no further page can be
// appended.
func (m *DenseSlotMap[V]) Add(value V) (Key, error) {
	key, ok := m.tryAdd(value)
	if !ok {
		return InvalidKey, fatalf("Add", InvalidKey, ErrCapacityExhausted)
	}

	return key, nil
}

// TryAdd is the non-strict form of Add.
func (m *DenseSlotMap[V]) TryAdd(value V) (Key, bool) {
	return m.tryAdd(value)
}

func (m *DenseSlotMap[V]) tryAdd(value V) (Key, bool) {
	if m.free.ready() {
		index := m.free.pop()

		addr := fromLinearIndex(uint64(index), m.opts.PageSize)
		meta, slotValue := m.slot(addr)

		newVersion := meta.Version() + 1
		*meta = newMeta(newVersion, StateOccupied)
		*slotValue = value

		m.slotCount++
		m.mutVersion++

		return NewKey(index, newVersion), true
	}

	addr, ok := m.appendSlot()
	if !ok {
		return InvalidKey, false
	}

	meta, slotValue := m.slot(addr)
	*meta = newMeta(1, StateOccupied)
	*slotValue = value

	index := uint32(toLinearIndex(addr, m.opts.PageSize))

	m.slotCount++
	m.mutVersion++

	return NewKey(index, 1), true
}

// appendSlot returns the address of the next never-used slot, growing the
// page list by one page if the current high-water mark has filled the last
// page. The high-water mark advances monotonically and is never rewound,
// so this is O(1) regardless of how many slots have ever been retired.
func (m *DenseSlotMap[V]) appendSlot() (PagedAddress, bool) {
	if m.highWater == uint64(len(m.pages))*uint64(m.opts.PageSize) {
		if uint64(len(m.pages)) >= maxPageCount(m.opts.PageSize) {
			return PagedAddress{}, false
		}

		m.pages = append(m.pages, newDensePage[V](m.opts.PageSize))
	}

	addr := fromLinearIndex(m.highWater, m.opts.PageSize)
	m.highWater++

	return addr, true
}

func (m *DenseSlotMap[V]) locate(key Key) (PagedAddress, error) {
	return findPagedAddress(uint64(len(m.pages)), m.opts.PageSize, key)
}

// Get returns the value stored at key.
func (m *DenseSlotMap[V]) Get(key Key) (V, error) {
	addr, err := m.locate(key)
	if err != nil {
		var zero V
		return zero, fatalf("Get", key, err)
	}

	meta, value := m.slot(addr)

	if err := checkSlot(key, *meta); err != nil {
		var zero V
		return zero, fatalf("Get", key, err)
	}

	return *value, nil
}

// TryGet is the non-strict form of Get.
func (m *DenseSlotMap[V]) TryGet(key Key) (V, bool) {
	addr, err := m.locate(key)
	if err != nil {
		var zero V
		return zero, false
	}

	meta, value := m.slot(addr)

	if classify(key, *meta) != nil {
		var zero V
		return zero, false
	}

	return *value, true
}

// GetRef returns a pointer into the live value at key. The pointer is valid
// until the next Replace or Remove on that key, or a page-growing Add; it
// must not be retained across either.
func (m *DenseSlotMap[V]) GetRef(key Key) (*V, error) {
	addr, err := m.locate(key)
	if err != nil {
		return nil, fatalf("GetRef", key, err)
	}

	meta, value := m.slot(addr)

	if err := checkSlot(key, *meta); err != nil {
		return nil, fatalf("GetRef", key, err)
	}

	return value, nil
}

// TryGetRef is the non-strict form of GetRef.
func (m *DenseSlotMap[V]) TryGetRef(key Key) (*V, bool) {
	addr, err := m.locate(key)
	if err != nil {
		return nil, false
	}

	meta, value := m.slot(addr)

	if classify(key, *meta) != nil {
		return nil, false
	}

	return value, true
}

// Contains reports whether key currently addresses a live value.
func (m *DenseSlotMap[V]) Contains(key Key) bool {
	addr, err := m.locate(key)
	if err != nil {
		return false
	}

	meta, _ := m.slot(addr)

	return meta.State() == StateOccupied && meta.Version() == key.Version()
}

// Replace overwrites the value at key, incrementing its slot's version, and
// returns the refreshed Key. The key passed in becomes stale; any operation
// against it thereafter fails with ErrStaleKey.
func (m *DenseSlotMap[V]) Replace(key Key, value V) (Key, error) {
	newKey, _, err := m.doReplace(key, value)
	if err != nil {
		return InvalidKey, fatalf("Replace", key, err)
	}

	return newKey, nil
}

// TryReplace is the non-strict form of Replace. It returns the previous
// value on success.
func (m *DenseSlotMap[V]) TryReplace(key Key, value V) (V, bool) {
	_, prev, err := m.doReplace(key, value)
	if err != nil {
		var zero V
		return zero, false
	}

	return prev, true
}

func (m *DenseSlotMap[V]) doReplace(key Key, value V) (Key, V, error) {
	var zero V

	addr, err := m.locate(key)
	if err != nil {
		return InvalidKey, zero, err
	}

	meta, slotValue := m.slot(addr)

	if err := classify(key, *meta); err != nil {
		return InvalidKey, zero, err
	}

	if meta.Version() == versionMax {
		return InvalidKey, zero, ErrVersionExhausted
	}

	prev := *slotValue
	newVersion := meta.Version() + 1
	*meta = newMeta(newVersion, StateOccupied)
	*slotValue = value

	m.mutVersion++

	return key.WithVersion(newVersion), prev, nil
}

// Remove retires key's slot and returns the value that was stored there. If
// the slot's version was already at the terminal value, it becomes a
// Tombstone instead of being recycled. Removing an already-Tombstone slot
// is idempotent under TryRemove; strict Remove reports ErrDeadSlot.
func (m *DenseSlotMap[V]) Remove(key Key) (V, error) {
	value, err := m.doRemove(key)
	if err != nil {
		var zero V
		return zero, fatalf("Remove", key, err)
	}

	return value, nil
}

// TryRemove is the non-strict form of Remove. Removing an already-dead slot
// returns (zero, true): dead-slot remove is treated as idempotent.
func (m *DenseSlotMap[V]) TryRemove(key Key) (V, bool) {
	value, err := m.doRemove(key)
	if err != nil {
		if errors.Is(err, ErrDeadSlot) {
			var zero V
			return zero, true
		}

		var zero V
		return zero, false
	}

	return value, true
}

func (m *DenseSlotMap[V]) doRemove(key Key) (V, error) {
	var zero V

	addr, err := m.locate(key)
	if err != nil {
		return zero, err
	}

	meta, slotValue := m.slot(addr)

	if err := classify(key, *meta); err != nil {
		return zero, err
	}

	prev := *slotValue
	*slotValue = zero

	if meta.Version() == versionMax {
		*meta = newMeta(versionMax, StateTombstone)
		m.tombstoneCount++
	} else {
		*meta = newMeta(meta.Version(), StateEmpty)
		m.free.push(key.Index())
	}

	m.slotCount--
	m.mutVersion++

	return prev, nil
}

// UpdateVersion refreshes a stale Key to the slot's current Meta.Version,
// but only if the slot is Occupied. It never refreshes into an Empty or
// Tombstone slot.
func (m *DenseSlotMap[V]) UpdateVersion(key Key) (Key, error) {
	addr, err := m.locate(key)
	if err != nil {
		return InvalidKey, fatalf("UpdateVersion", key, err)
	}

	meta, _ := m.slot(addr)

	if meta.State() != StateOccupied {
		return InvalidKey, fatalf("UpdateVersion", key, classify(key, *meta))
	}

	return key.WithVersion(meta.Version()), nil
}

// TryUpdateVersion is the non-strict form of UpdateVersion.
func (m *DenseSlotMap[V]) TryUpdateVersion(key Key) (Key, bool) {
	addr, err := m.locate(key)
	if err != nil {
		return InvalidKey, false
	}

	meta, _ := m.slot(addr)

	if meta.State() != StateOccupied {
		return InvalidKey, false
	}

	return key.WithVersion(meta.Version()), true
}

// Reset empties the map: the first page's slots are zeroed and retained,
// all other pages are dropped, the free queue is emptied, and counters are
// reset to zero.
func (m *DenseSlotMap[V]) Reset() {
	first := newDensePage[V](m.opts.PageSize)
	m.pages = []densePage[V]{first}
	m.free.reset()
	m.slotCount = 0
	m.tombstoneCount = 0
	m.highWater = 0
	m.mutVersion++
}

// DebugPages returns a read-only view of each page's Meta sequence, for
// inspection and tests. The returned slices alias internal storage and must
// not be mutated.
func (m *DenseSlotMap[V]) DebugPages() []DensePageView[V] {
	views := make([]DensePageView[V], len(m.pages))
	for i := range m.pages {
		views[i] = DensePageView[V]{Meta: m.pages[i].meta, Values: m.pages[i].values}
	}

	return views
}

// DensePageView is a read-only inspection view of a single DenseSlotMap page.
type DensePageView[V any] struct {
	Meta   []Meta
	Values []V
}
