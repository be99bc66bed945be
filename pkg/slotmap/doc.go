// Package slotmap provides generation-checked slot maps.
//
// A slot map stores values of a caller-supplied type and hands back opaque,
// stable Keys that remain valid for the lifetime of the stored value, even
// as unrelated values are inserted or removed elsewhere in the map. Keys are
// a single packed 64-bit word and never alias across live entries; stale use
// is detected through a per-slot version counter rather than a hash table.
//
// Two engines are provided:
//
//   - [DenseSlotMap] stores the value beside its metadata in one paged
//     array (single indirection). Best when per-slot memory overhead
//     matters more than iteration order after deletions.
//   - [SparseSlotMap] separates metadata from values: a sparse paged array
//     holds {metadata, dense index} and a packed dense paged array holds
//     {sparse index, value}. Removal is a swap-remove that keeps the dense
//     side contiguous, so iteration costs O(live) regardless of deletion
//     history.
//
// # Basic usage
//
//	m, err := slotmap.NewDenseSlotMap[string](slotmap.Options{PageSize: 1024, FreeIndicesLimit: 32})
//	k, err := m.Add("hello")
//	v, err := m.Get(k)
//	k2, err := m.Replace(k, "world") // k is now stale
//	v, err = m.Remove(k2)
//
// # Strict vs try forms
//
// Every mutating/reading operation that can fail on a caller-supplied Key
// exists in two forms: a strict form (Add, Get, Replace, Remove, ...) that
// returns a non-nil error classified by one of the sentinels in errors.go,
// and a try form (TryAdd, TryGet, TryReplace, TryRemove, ...) that reports
// failure only through a boolean/zero-value and never returns an error.
// Building with the slotmap_nostrict tag compiles out the slot State/Version
// check of the strict lookups (Get, GetRef), which then trust that the key
// is live; invalid and out-of-range keys are still rejected. Replace,
// Remove and the try forms always check regardless of build tags.
//
// # Concurrency
//
// Engines are not safe for concurrent use. All mutation and reads must be
// serialized by the caller; there is no internal locking.
package slotmap
