package slotmap

// AddRange inserts every value in values, in order, and returns their Keys.
// It aborts on the first failure (capacity exhausted) and returns the keys
// added so far (their count is the index that failed) with the error; no
// further insertions are attempted, but values already added remain added.
func (m *DenseSlotMap[V]) AddRange(values []V) ([]Key, error) {
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

// TryAddRange is the non-strict form of AddRange. It never stops early: out
// holds InvalidKey at any index whose insertion failed. n is the number of
// successful insertions.
func (m *DenseSlotMap[V]) TryAddRange(values []V, out []Key) (n int, ok bool) {
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
func (m *DenseSlotMap[V]) GetRange(keys []Key, out []V) error {
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
// keys[i] resolved; out[i] holds the zero value otherwise. Returns false
// only if out or found is undersized.
func (m *DenseSlotMap[V]) TryGetRange(keys []Key, out []V, found []bool) bool {
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
func (m *DenseSlotMap[V]) RemoveRange(keys []Key, out []V) error {
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
// reports whether keys[i]/values[i] succeeded. Returns false only if keys
// and values differ in length or ok is undersized.
func (m *DenseSlotMap[V]) TryReplaceRange(keys []Key, values []V, ok []bool) bool {
	if len(keys) != len(values) || len(ok) < len(keys) {
		return false
	}

	for i, k := range keys {
		_, replaced := m.TryReplace(k, values[i])
		ok[i] = replaced
	}

	return true
}
