package slotmap

import "fmt"

// Key identifies a slot and the version it was live at. It is a single
// 64-bit word: the top 32 bits are a logical index, the bottom 32 bits are
// a version field shaped like a [Meta] but with its State bits always zero
// (state belongs to a slot, not to a reference to it).
//
// A Key with Version() == VersionInvalid is the distinguished invalid Key
// ([InvalidKey]). Keys are cheap, copyable values; holding one does not pin
// a slot and does not keep a removed value alive.
type Key uint64

// InvalidKey is the distinguished invalid Key: index 0, version 0.
const InvalidKey Key = 0

// NewKey packs an index and version into a Key.
func NewKey(index uint32, v Version) Key {
	return Key(uint64(index)<<32 | uint64(v)&uint64(metaVersionMask))
}

// Index returns the logical slot index this Key addresses.
func (k Key) Index() uint32 {
	return uint32(k >> 32)
}

// Version returns the version this Key was live at.
func (k Key) Version() Version {
	return Version(uint32(k) & uint32(metaVersionMask))
}

// IsValid reports whether the Key is not the distinguished invalid value.
// It does not check liveness against any engine — use Contains for that.
func (k Key) IsValid() bool {
	return k.Version() != VersionInvalid
}

// WithVersion returns a Key at the same index with a different version.
func (k Key) WithVersion(v Version) Key {
	return NewKey(k.Index(), v)
}

func (k Key) String() string {
	return fmt.Sprintf("Key{index=%d, version=%d}", k.Index(), k.Version())
}
