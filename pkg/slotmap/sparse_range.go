package slotmap

// AddRange inserts every value in values, in order, and returns their Keys.
// It aborts on the first failure (capacity exhausted); values already
// added remain added.
func (m *SparseSlotMap[V]) AddRange(values []V) ([]Key, error) {
	keys := make([]Key, len(values))

	for i, v := range values {
		k, ok := m.tryAdd(v)
		if !ok {
			return keys[:i], fatalf("AddRange", InvalidKey, ErrCapacityExhausted)
		}

		keys[i] = k
	}

	return keys, nil
}

// TryAddRange is the non-strict form of AddRange. out[i] is InvalidKey at
// any index whose insertion failed. n is the number of successful
// insertions.
func (m *SparseSlotMap[V]) TryAddRange(values []V, out []Key) (n int, ok bool) {
	if len(out) < len(values) {
		return 0, false
	}

	for i, v := range values {
		k, added := m.tryAdd(v)
		if added {
			out[i] = k
			n++
		} else {
			out[i] = InvalidKey
		}
	}

	return n, true
}

// GetRange looks up every key in keys, in order, writing results into out.
// Strict form: aborts on the first invalid/stale/dead key.
func (m *SparseSlotMap[V]) GetRange(keys []Key, out []V) error {
	if len(out) < len(keys) {
		return fatalf("GetRange", InvalidKey, ErrInvalidOutputBuffer)
	}

	for i, k := range keys {
		v, err := m.Get(k)
		if err != nil {
			return err
		}

		out[i] = v
	}

	return nil
}

// TryGetRange is the non-strict form of GetRange. found[i] reports whether
// keys[i] resolved.
func (m *SparseSlotMap[V]) TryGetRange(keys []Key, out []V, found []bool) bool {
	if len(out) < len(keys) || len(found) < len(keys) {
		return false
	}

	for i, k := range keys {
		v, ok := m.TryGet(k)
		out[i] = v
		found[i] = ok
	}

	return true
}

// RemoveRange retires every key in keys, in order, writing the removed
// values into out. Strict form: aborts on the first precondition violation.
func (m *SparseSlotMap[V]) RemoveRange(keys []Key, out []V) error {
	if len(out) < len(keys) {
		return fatalf("RemoveRange", InvalidKey, ErrInvalidOutputBuffer)
	}

	for i, k := range keys {
		v, err := m.Remove(k)
		if err != nil {
			return err
		}

		out[i] = v
	}

	return nil
}

// TryReplaceRange overwrites values at the given keys, in order. ok[i]
// reports whether keys[i]/values[i] succeeded.
func (m *SparseSlotMap[V]) TryReplaceRange(keys []Key, values []V, ok []bool) bool {
	if len(keys) != len(values) || len(ok) < len(keys) {
		return false
	}

	for i, k := range keys {
		_, replaced := m.TryReplace(k, values[i])
		ok[i] = replaced
	}

	return true
}
