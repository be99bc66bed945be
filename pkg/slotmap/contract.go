package slotmap

// Reader is the read-only surface shared by DenseSlotMap and SparseSlotMap.
type Reader[V any] interface {
	// Get returns the value stored at key, or an error if key is invalid,
	// out of range, stale, or addresses an empty or dead slot.
	Get(key Key) (V, error)
	// TryGet is the non-strict form of Get: ok is false for any condition
	// that would make Get return an error.
	TryGet(key Key) (V, bool)
	// Contains reports whether key currently addresses a live value.
	Contains(key Key) bool
	// Len reports the number of live values.
	Len() int
	// Cap reports the number of slots currently allocated across all pages.
	Cap() int
}

// Mutator is the write surface shared by DenseSlotMap and SparseSlotMap.
type Mutator[V any] interface {
	Reader[V]

	// Add inserts value into a recycled or fresh slot and returns its Key.
	Add(value V) (Key, error)
	// Replace overwrites the value at key in place, bumping its slot's
	// version, and returns the refreshed Key. The key passed in becomes stale.
	Replace(key Key, value V) (Key, error)
	// TryReplace is the non-strict form of Replace. It returns the previous
	// value on success rather than the refreshed key, since callers that
	// can't tolerate an error usually can't act on the new key either.
	TryReplace(key Key, value V) (V, bool)
	// Remove retires key's slot and returns the value that was stored there.
	Remove(key Key) (V, error)
	// TryRemove is the non-strict form of Remove.
	TryRemove(key Key) (V, bool)
	// Reset empties the map, keeping a single zeroed page and dropping the rest.
	Reset()
}

var (
	_ Reader[int]  = (*DenseSlotMap[int])(nil)
	_ Mutator[int] = (*DenseSlotMap[int])(nil)
	_ Reader[int]  = (*SparseSlotMap[int])(nil)
	_ Mutator[int] = (*SparseSlotMap[int])(nil)
)
