package slotmap

// Version is a 30-bit monotonic per-slot counter. 0 is the distinguished
// invalid version; [versionMax] is the terminal version — once reached and
// the occupying value removed, the slot becomes a Tombstone and is never
// reused.
type Version uint32

const (
	// VersionInvalid marks a Key/Meta that has never been assigned a live
	// version.
	VersionInvalid Version = 0

	// versionBits is the width of the version field packed into a Meta/Key
	// word; the remaining 2 bits (in a Meta) carry the State.
	versionBits = 30

	// versionMax is the terminal version: 2^30 - 1. A slot at this version
	// that is removed transitions to Tombstone instead of Empty, because
	// incrementing further would overflow into the State bits.
	versionMax Version = (1 << versionBits) - 1
)

// VersionMax reports the terminal version value.
func VersionMax() Version { return versionMax }

// State is the 2-bit per-slot lifecycle tag.
type State uint8

const (
	// StateEmpty is the initial state, and the state a slot returns to after
	// Remove when its version has not yet reached VersionMax.
	StateEmpty State = iota
	// StateOccupied is the state of a slot holding a live value.
	StateOccupied
	// StateTombstone is the terminal state: reached from StateOccupied when
	// Remove is called on a slot whose version equals VersionMax. No further
	// transitions are possible.
	StateTombstone
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateOccupied:
		return "Occupied"
	case StateTombstone:
		return "Tombstone"
	default:
		return "Unknown"
	}
}

// Meta fuses a slot's Version and State into one 32-bit word: the top 2
// bits hold State, the low 30 bits hold Version. Meta is defined by its bit
// pattern, not by any memory-overlay trick, so it is endianness-independent.
type Meta uint32

const metaVersionMask Meta = (1 << versionBits) - 1

// newMeta packs a Version and State into a Meta.
func newMeta(v Version, s State) Meta {
	return Meta(uint32(s)<<versionBits) | Meta(v)&metaVersionMask
}

// Version extracts the version field.
func (m Meta) Version() Version {
	return Version(m & metaVersionMask)
}

// State extracts the state field.
func (m Meta) State() State {
	return State(m >> versionBits)
}

// WithVersion returns a copy of m with its version replaced, preserving State.
func (m Meta) WithVersion(v Version) Meta {
	return newMeta(v, m.State())
}

// WithState returns a copy of m with its state replaced, preserving Version.
func (m Meta) WithState(s State) Meta {
	return newMeta(m.Version(), s)
}

func (m Meta) String() string {
	return m.State().String() + "/v" + itoa(uint32(m.Version()))
}

// itoa avoids pulling in strconv/fmt for a hot String() path used mostly in
// tests and debug dumps.
func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}

	var buf [10]byte

	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}

	return string(buf[i:])
}
