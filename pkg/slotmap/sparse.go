package slotmap

import "errors"

// sparsePage holds, for each logical index in the page, a Meta and the
// dense index that slot's value currently lives at.
type sparsePage struct {
	meta       []Meta
	denseIndex []uint32
}

func newSparsePage(pageSize uint32) sparsePage {
	return sparsePage{
		meta:       make([]Meta, pageSize),
		denseIndex: make([]uint32, pageSize),
	}
}

// densePage2 holds the packed dense side of a SparseSlotMap: a value and
// the sparse linear index it was inserted through, used to fix up the
// sparse side's denseIndex on swap-remove.
type densePage2[V any] struct {
	sparseIndex []uint32
	values      []V
}

func newDensePage2[V any](pageSize uint32) densePage2[V] {
	return densePage2[V]{
		sparseIndex: make([]uint32, pageSize),
		values:      make([]V, pageSize),
	}
}

// SparseSlotMap is the double-indirection Slot Map engine: a sparse paged
// array of {Meta, denseIndex} keyed by logical index, plus a packed dense
// paged array of {sparseIndex, Value} that stays contiguous across
// removals via swap-remove. Iteration walks the dense side, so its cost is
// O(live) regardless of deletion history.
//
// A SparseSlotMap must be obtained via [NewSparseSlotMap]; the zero value
// is not usable. SparseSlotMap is not safe for concurrent use; callers must
// serialize access externally.
type SparseSlotMap[V any] struct {
	sparse []sparsePage
	dense  []densePage2[V]
	free   freeQueue
	opts   Options

	slotCount      int
	tombstoneCount int
	lastDenseIndex int // -1 when empty
	mutVersion     uint64
	highWater      uint64

	constructionAdvisory string
}

// NewSparseSlotMap constructs a SparseSlotMap with the given Options.
// Passing the zero Options is equivalent to passing [DefaultOptions].
func NewSparseSlotMap[V any](opts Options) (*SparseSlotMap[V], error) {
	normalized, note, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	m := &SparseSlotMap[V]{
		opts:           normalized,
		free:           newFreeQueue(normalized.FreeIndicesLimit),
		lastDenseIndex: -1,
	}
	m.sparse = append(m.sparse, newSparsePage(normalized.PageSize))
	m.dense = append(m.dense, newDensePage2[V](normalized.PageSize))

	if note != nil {
		m.constructionAdvisory = note.String()
	}

	return m, nil
}

// ConstructionAdvisory returns a non-fatal note recorded during
// construction, e.g. that FreeIndicesLimit was clamped to PageSize.
func (m *SparseSlotMap[V]) ConstructionAdvisory() string { return m.constructionAdvisory }

// PageSize returns the configured slots-per-page.
func (m *SparseSlotMap[V]) PageSize() uint32 { return m.opts.PageSize }

// PageCount returns the number of page pairs currently allocated.
func (m *SparseSlotMap[V]) PageCount() int { return len(m.sparse) }

// SlotCount returns the number of live values.
func (m *SparseSlotMap[V]) SlotCount() int { return m.slotCount }

// TombstoneCount returns the number of slots permanently retired.
func (m *SparseSlotMap[V]) TombstoneCount() int { return m.tombstoneCount }

// FreeIndicesLimit returns the configured recycling threshold.
func (m *SparseSlotMap[V]) FreeIndicesLimit() uint32 { return m.opts.FreeIndicesLimit }

// Len is an alias for SlotCount, satisfying [Reader].
func (m *SparseSlotMap[V]) Len() int { return m.slotCount }

// Cap returns the total number of sparse slots currently allocated.
func (m *SparseSlotMap[V]) Cap() int { return len(m.sparse) * int(m.opts.PageSize) }

func (m *SparseSlotMap[V]) sparseSlot(addr PagedAddress) (*Meta, *uint32) {
	page := &m.sparse[addr.Page]
	return &page.meta[addr.Offset], &page.denseIndex[addr.Offset]
}

func (m *SparseSlotMap[V]) denseSlot(d uint32) (*uint32, *V) {
	addr := fromLinearIndex(uint64(d), m.opts.PageSize)
	page := &m.dense[addr.Page]

	return &page.sparseIndex[addr.Offset], &page.values[addr.Offset]
}

func (m *SparseSlotMap[V]) locate(key Key) (PagedAddress, error) {
	return findPagedAddress(uint64(len(m.sparse)), m.opts.PageSize, key)
}

// appendSparseSlot returns the linear index of the next never-used sparse
// slot, growing both page arrays together by one page if the last page is
// full. O(1): advances a monotonic high-water mark, never rescans.
func (m *SparseSlotMap[V]) appendSparseSlot() (uint32, bool) {
	if m.highWater == uint64(len(m.sparse))*uint64(m.opts.PageSize) {
		if uint64(len(m.sparse)) >= maxPageCount(m.opts.PageSize) {
			return 0, false
		}

		m.sparse = append(m.sparse, newSparsePage(m.opts.PageSize))
		m.dense = append(m.dense, newDensePage2[V](m.opts.PageSize))
	}

	index := uint32(m.highWater)
	m.highWater++

	return index, true
}

// Add inserts value into a recycled or freshly allocated sparse slot,
// appending its value to the end of the packed dense side. Fails with
// ErrCapacityExhausted if no further page can be appended.
func (m *SparseSlotMap[V]) Add(value V) (Key, error) {
	key, ok := m.tryAdd(value)
	if !ok {
		return InvalidKey, fatalf("Add", InvalidKey, ErrCapacityExhausted)
	}

	return key, nil
}

// TryAdd is the non-strict form of Add.
func (m *SparseSlotMap[V]) TryAdd(value V) (Key, bool) {
	return m.tryAdd(value)
}

func (m *SparseSlotMap[V]) tryAdd(value V) (Key, bool) {
	var (
		sparseIndex uint32
		newVersion  Version
	)

	if m.free.ready() {
		sparseIndex = m.free.pop()

		addr := fromLinearIndex(uint64(sparseIndex), m.opts.PageSize)
		meta, _ := m.sparseSlot(addr)
		newVersion = meta.Version() + 1
	} else {
		index, ok := m.appendSparseSlot()
		if !ok {
			return InvalidKey, false
		}

		sparseIndex = index
		newVersion = 1
	}

	denseIndex := uint32(m.lastDenseIndex + 1)

	addr := fromLinearIndex(uint64(sparseIndex), m.opts.PageSize)
	meta, slotDenseIndex := m.sparseSlot(addr)
	*meta = newMeta(newVersion, StateOccupied)
	*slotDenseIndex = denseIndex

	backRef, slotValue := m.denseSlot(denseIndex)
	*backRef = sparseIndex
	*slotValue = value

	m.lastDenseIndex++
	m.slotCount++
	m.mutVersion++

	return NewKey(sparseIndex, newVersion), true
}

// Get returns the value stored at key.
func (m *SparseSlotMap[V]) Get(key Key) (V, error) {
	addr, err := m.locate(key)
	if err != nil {
		var zero V
		return zero, fatalf("Get", key, err)
	}

	meta, denseIndex := m.sparseSlot(addr)

	if err := checkSlot(key, *meta); err != nil {
		var zero V
		return zero, fatalf("Get", key, err)
	}

	_, value := m.denseSlot(*denseIndex)

	return *value, nil
}

// TryGet is the non-strict form of Get.
func (m *SparseSlotMap[V]) TryGet(key Key) (V, bool) {
	addr, err := m.locate(key)
	if err != nil {
		var zero V
		return zero, false
	}

	meta, denseIndex := m.sparseSlot(addr)

	if classify(key, *meta) != nil {
		var zero V
		return zero, false
	}

	_, value := m.denseSlot(*denseIndex)

	return *value, true
}

// GetRef returns a pointer into the live value at key. The pointer is valid
// until the next mutation of the map; it must not be retained across one.
func (m *SparseSlotMap[V]) GetRef(key Key) (*V, error) {
	addr, err := m.locate(key)
	if err != nil {
		return nil, fatalf("GetRef", key, err)
	}

	meta, denseIndex := m.sparseSlot(addr)

	if err := checkSlot(key, *meta); err != nil {
		return nil, fatalf("GetRef", key, err)
	}

	_, value := m.denseSlot(*denseIndex)

	return value, nil
}

// TryGetRef is the non-strict form of GetRef.
func (m *SparseSlotMap[V]) TryGetRef(key Key) (*V, bool) {
	addr, err := m.locate(key)
	if err != nil {
		return nil, false
	}

	meta, denseIndex := m.sparseSlot(addr)

	if classify(key, *meta) != nil {
		return nil, false
	}

	_, value := m.denseSlot(*denseIndex)

	return value, true
}

// Contains reports whether key currently addresses a live value.
func (m *SparseSlotMap[V]) Contains(key Key) bool {
	addr, err := m.locate(key)
	if err != nil {
		return false
	}

	meta, _ := m.sparseSlot(addr)

	return meta.State() == StateOccupied && meta.Version() == key.Version()
}

// Replace overwrites the value at key in place on the dense side,
// incrementing the sparse slot's version, and returns the refreshed Key.
// The dense back-reference is unchanged.
func (m *SparseSlotMap[V]) Replace(key Key, value V) (Key, error) {
	newKey, _, err := m.doReplace(key, value)
	if err != nil {
		return InvalidKey, fatalf("Replace", key, err)
	}

	return newKey, nil
}

// TryReplace is the non-strict form of Replace. It returns the previous
// value on success.
func (m *SparseSlotMap[V]) TryReplace(key Key, value V) (V, bool) {
	_, prev, err := m.doReplace(key, value)
	if err != nil {
		var zero V
		return zero, false
	}

	return prev, true
}

func (m *SparseSlotMap[V]) doReplace(key Key, value V) (Key, V, error) {
	var zero V

	addr, err := m.locate(key)
	if err != nil {
		return InvalidKey, zero, err
	}

	meta, denseIndex := m.sparseSlot(addr)

	if err := classify(key, *meta); err != nil {
		return InvalidKey, zero, err
	}

	if meta.Version() == versionMax {
		return InvalidKey, zero, ErrVersionExhausted
	}

	_, slotValue := m.denseSlot(*denseIndex)
	prev := *slotValue
	*slotValue = value

	newVersion := meta.Version() + 1
	*meta = newMeta(newVersion, StateOccupied)

	m.mutVersion++

	return key.WithVersion(newVersion), prev, nil
}

// Remove performs the swap-remove algorithm: it vacates key's dense slot,
// moves the last packed dense element into the vacated position if they
// differ, fixes up that element's sparse back-reference, and retires key's
// sparse slot (recycling it, or tombstoning it at the terminal version).
func (m *SparseSlotMap[V]) Remove(key Key) (V, error) {
	value, err := m.doRemove(key)
	if err != nil {
		var zero V
		return zero, fatalf("Remove", key, err)
	}

	return value, nil
}

// TryRemove is the non-strict form of Remove. Removing an already-dead slot
// returns (zero, true): dead-slot remove is treated as idempotent.
//
// ErrCorruptedInternalInvariant is the one exception to try-form's
// report-via-bool contract: a sparse/dense desync is always fatal, so
// TryRemove panics rather than silently returning false.
func (m *SparseSlotMap[V]) TryRemove(key Key) (V, bool) {
	value, err := m.doRemove(key)
	if err != nil {
		if errors.Is(err, ErrCorruptedInternalInvariant) {
			panic(fatalf("TryRemove", key, err))
		}

		if errors.Is(err, ErrDeadSlot) {
			var zero V
			return zero, true
		}

		var zero V
		return zero, false
	}

	return value, true
}

func (m *SparseSlotMap[V]) doRemove(key Key) (V, error) {
	var zero V

	addr, err := m.locate(key)
	if err != nil {
		return zero, err
	}

	sMeta, sDenseIndex := m.sparseSlot(addr)

	if err := classify(key, *sMeta); err != nil {
		return zero, err
	}

	// Step 1/2: S is the sparse slot at addr; d is the dense slot to
	// vacate, L is the last packed dense slot.
	d := *sDenseIndex
	l := uint32(m.lastDenseIndex)

	_, dValue := m.denseSlot(d)
	removed := *dValue

	// Step 3: if d != L, move the last packed element into d's place and
	// fix up its owning sparse slot's denseIndex to point at d. Before
	// touching anything, verify the moved element's sparse-side back
	// reference still agrees that it lives at L: the two sides are
	// supposed to be kept in lockstep by every prior mutation, so if this
	// disagrees, something bypassed the engine and wrote directly into
	// one side's paged storage (e.g. through a DebugPages() view).
	if d != l {
		lSparseIndex, lValue := m.denseSlot(l)
		movedSparseIndex := *lSparseIndex
		movedValue := *lValue

		movedAddr := fromLinearIndex(uint64(movedSparseIndex), m.opts.PageSize)
		_, movedDenseIndex := m.sparseSlot(movedAddr)
		if *movedDenseIndex != l {
			return zero, ErrCorruptedInternalInvariant
		}

		dBackRef, dValueSlot := m.denseSlot(d)
		*dBackRef = movedSparseIndex
		*dValueSlot = movedValue

		*movedDenseIndex = d
	}

	// Step 4: clear the now-unused last dense slot.
	_, lValueSlot := m.denseSlot(l)
	*lValueSlot = zero

	// Step 5: retire S.
	if sMeta.Version() == versionMax {
		*sMeta = newMeta(versionMax, StateTombstone)
		m.tombstoneCount++
	} else {
		*sMeta = newMeta(sMeta.Version(), StateEmpty)
		m.free.push(key.Index())
	}

	// Step 6.
	m.lastDenseIndex--
	m.slotCount--
	m.mutVersion++

	return removed, nil
}

// UpdateVersion refreshes a stale Key to the slot's current Meta.Version,
// but only if the slot is Occupied.
func (m *SparseSlotMap[V]) UpdateVersion(key Key) (Key, error) {
	addr, err := m.locate(key)
	if err != nil {
		return InvalidKey, fatalf("UpdateVersion", key, err)
	}

	meta, _ := m.sparseSlot(addr)

	if meta.State() != StateOccupied {
		return InvalidKey, fatalf("UpdateVersion", key, classify(key, *meta))
	}

	return key.WithVersion(meta.Version()), nil
}

// TryUpdateVersion is the non-strict form of UpdateVersion.
func (m *SparseSlotMap[V]) TryUpdateVersion(key Key) (Key, bool) {
	addr, err := m.locate(key)
	if err != nil {
		return InvalidKey, false
	}

	meta, _ := m.sparseSlot(addr)

	if meta.State() != StateOccupied {
		return InvalidKey, false
	}

	return key.WithVersion(meta.Version()), true
}

// Reset empties the map: the first page pair is zeroed and retained, all
// other pages are dropped, the free queue is emptied, and counters reset.
func (m *SparseSlotMap[V]) Reset() {
	m.sparse = []sparsePage{newSparsePage(m.opts.PageSize)}
	m.dense = []densePage2[V]{newDensePage2[V](m.opts.PageSize)}
	m.free.reset()
	m.slotCount = 0
	m.tombstoneCount = 0
	m.lastDenseIndex = -1
	m.highWater = 0
	m.mutVersion++
}

// DebugPages returns a read-only view of each sparse page's Meta sequence
// and each dense page's sparseIndex back-reference sequence, for inspection
// and tests. The returned slices alias internal storage and must not be
// mutated.
func (m *SparseSlotMap[V]) DebugPages() []SparsePageView[V] {
	views := make([]SparsePageView[V], len(m.sparse))
	for i := range m.sparse {
		views[i] = SparsePageView[V]{
			Meta:             m.sparse[i].meta,
			SparseDenseIndex: m.sparse[i].denseIndex,
			DenseSparseIndex: m.dense[i].sparseIndex,
			DenseValues:      m.dense[i].values,
		}
	}

	return views
}

// SparsePageView is a read-only inspection view of one (sparse page, dense
// page) pair of a SparseSlotMap.
type SparsePageView[V any] struct {
	Meta             []Meta
	SparseDenseIndex []uint32
	DenseSparseIndex []uint32
	DenseValues      []V
}
