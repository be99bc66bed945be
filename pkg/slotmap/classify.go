package slotmap

// classify compares a Key against the Meta of the slot it addresses and
// returns the precondition violation it represents, or nil if the key is
// live against that Meta. It is never gated by the slotmap_nostrict build
// tag: try-forms call it directly so they stay safe even in builds that
// compile strict-form checking out (see checkSlot in checks.go/
// checks_nostrict.go).
func classify(key Key, meta Meta) error {
	if !key.IsValid() {
		return ErrInvalidKey
	}

	switch meta.State() {
	case StateEmpty:
		return ErrEmptySlot
	case StateTombstone:
		return ErrDeadSlot
	case StateOccupied:
		if meta.Version() != key.Version() {
			return ErrStaleKey
		}

		return nil
	default:
		// State is a 2-bit field; only StateEmpty/StateOccupied/
		// StateTombstone are ever written by this package. Reaching this
		// branch means a Meta word was corrupted out of band (see the
		// sparse/dense back-reference check in SparseSlotMap.doRemove for
		// the other, actually-exercised path to this same sentinel).
		return ErrCorruptedInternalInvariant
	}
}
