package slotmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearcore/slotmap/pkg/slotmap"
)

func Test_InvalidKey_IsValid_Returns_False(t *testing.T) {
	t.Parallel()

	assert.False(t, slotmap.InvalidKey.IsValid())
	assert.Equal(t, slotmap.VersionInvalid, slotmap.InvalidKey.Version())
}

func Test_NewKey_Roundtrips_Index_And_Version(t *testing.T) {
	t.Parallel()

	k := slotmap.NewKey(42, 7)

	assert.Equal(t, uint32(42), k.Index())
	assert.Equal(t, slotmap.Version(7), k.Version())
	assert.True(t, k.IsValid())
}

func Test_Key_WithVersion_Preserves_Index(t *testing.T) {
	t.Parallel()

	k := slotmap.NewKey(5, 1)
	k2 := k.WithVersion(2)

	require.Equal(t, k.Index(), k2.Index())
	assert.Equal(t, slotmap.Version(2), k2.Version())
	assert.NotEqual(t, k, k2)
}

func Test_Key_Equality_Compares_Full_Word(t *testing.T) {
	t.Parallel()

	a := slotmap.NewKey(1, 1)
	b := slotmap.NewKey(1, 1)
	c := slotmap.NewKey(1, 2)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
