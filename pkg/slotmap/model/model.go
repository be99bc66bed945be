// Package model provides a deliberately simple, in-memory reference model
// of a Slot Map's publicly observable behavior.
//
// The model favors clarity over performance: it stores live values in a
// plain map keyed by index and tracks each index's current version and
// state directly, with no paging and no dense-side packing. Comparing a
// real engine's (Key, Value) pairs against Model's after the same sequence
// of operations is how fuzz tests in this package catch divergence.
package model

import "github.com/nearcore/slotmap/pkg/slotmap"

// slotRecord is the model's per-index bookkeeping.
type slotRecord struct {
	state   slotmap.State
	version slotmap.Version
}

// Model is a naive reference implementation of the Slot Map contract.
type Model[V any] struct {
	slots            map[uint32]*slotRecord
	values           map[uint32]V
	freeQueue        []uint32
	freeIndicesLimit uint32
	nextIndex        uint32
}

// New returns an empty Model with the given recycling threshold.
func New[V any](freeIndicesLimit uint32) *Model[V] {
	return &Model[V]{
		slots:            make(map[uint32]*slotRecord),
		values:           make(map[uint32]V),
		freeIndicesLimit: freeIndicesLimit,
	}
}

// Add mirrors DenseSlotMap/SparseSlotMap.Add.
func (m *Model[V]) Add(value V) slotmap.Key {
	var index uint32

	if len(m.freeQueue) > int(m.freeIndicesLimit) {
		index = m.freeQueue[0]
		m.freeQueue = m.freeQueue[1:]
	} else {
		index = m.nextIndex
		m.nextIndex++
	}

	rec, exists := m.slots[index]
	if !exists {
		rec = &slotRecord{}
		m.slots[index] = rec
	}

	rec.version++
	rec.state = slotmap.StateOccupied
	m.values[index] = value

	return slotmap.NewKey(index, rec.version)
}

// Get mirrors DenseSlotMap/SparseSlotMap.Get.
func (m *Model[V]) Get(key slotmap.Key) (V, bool) {
	rec, ok := m.slots[key.Index()]
	if !ok || rec.state != slotmap.StateOccupied || rec.version != key.Version() {
		var zero V
		return zero, false
	}

	return m.values[key.Index()], true
}

// Contains mirrors DenseSlotMap/SparseSlotMap.Contains.
func (m *Model[V]) Contains(key slotmap.Key) bool {
	_, ok := m.Get(key)
	return ok
}

// Replace mirrors DenseSlotMap/SparseSlotMap.Replace.
func (m *Model[V]) Replace(key slotmap.Key, value V) (slotmap.Key, bool) {
	rec, ok := m.slots[key.Index()]
	if !ok || rec.state != slotmap.StateOccupied || rec.version != key.Version() {
		return slotmap.InvalidKey, false
	}

	if rec.version == slotmap.VersionMax() {
		return slotmap.InvalidKey, false
	}

	rec.version++
	m.values[key.Index()] = value

	return slotmap.NewKey(key.Index(), rec.version), true
}

// Remove mirrors DenseSlotMap/SparseSlotMap.Remove.
func (m *Model[V]) Remove(key slotmap.Key) (V, bool) {
	rec, ok := m.slots[key.Index()]
	if !ok || rec.state != slotmap.StateOccupied || rec.version != key.Version() {
		var zero V
		return zero, false
	}

	value := m.values[key.Index()]

	var zero V

	m.values[key.Index()] = zero

	if rec.version == slotmap.VersionMax() {
		rec.state = slotmap.StateTombstone
	} else {
		rec.state = slotmap.StateEmpty
		m.freeQueue = append(m.freeQueue, key.Index())
	}

	return value, true
}

// Len reports the number of live values.
func (m *Model[V]) Len() int {
	count := 0

	for _, rec := range m.slots {
		if rec.state == slotmap.StateOccupied {
			count++
		}
	}

	return count
}

// Live returns every (Key, Value) pair currently live, in unspecified order.
// Tests that compare iteration order against a real engine must sort both
// sides by Key first.
func (m *Model[V]) Live() map[slotmap.Key]V {
	out := make(map[slotmap.Key]V, len(m.values))

	for index, rec := range m.slots {
		if rec.state == slotmap.StateOccupied {
			out[slotmap.NewKey(index, rec.version)] = m.values[index]
		}
	}

	return out
}
