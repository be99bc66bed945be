package slotmap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearcore/slotmap/pkg/slotmap"
)

func Test_NewDenseSlotMap_Rejects_Non_Power_Of_Two_PageSize(t *testing.T) {
	t.Parallel()

	_, err := slotmap.NewDenseSlotMap[int](slotmap.Options{PageSize: 3})
	require.Error(t, err)
}

func Test_NewDenseSlotMap_Rejects_PageSize_Above_Maximum(t *testing.T) {
	t.Parallel()

	_, err := slotmap.NewDenseSlotMap[int](slotmap.Options{PageSize: 1 << 31})
	require.Error(t, err)
}

func Test_NewDenseSlotMap_Applies_Defaults_On_Zero_Options(t *testing.T) {
	t.Parallel()

	m, err := slotmap.NewDenseSlotMap[int](slotmap.Options{})
	require.NoError(t, err)

	assert.Equal(t, slotmap.DefaultPageSize, m.PageSize())
	assert.Equal(t, slotmap.DefaultFreeIndicesLimit, m.FreeIndicesLimit())
}

func Test_NewDenseSlotMap_Clamps_FreeIndicesLimit_Above_PageSize(t *testing.T) {
	t.Parallel()

	m, err := slotmap.NewDenseSlotMap[int](slotmap.Options{PageSize: 4, FreeIndicesLimit: 100})
	require.NoError(t, err)

	assert.Equal(t, uint32(4), m.FreeIndicesLimit())
	assert.NotEmpty(t, m.ConstructionAdvisory())
}

func Test_LoadOptions_Parses_JSONC_With_Comments(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "options.jsonc")
	content := []byte(`{
		// page size for the engine
		"page_size": 256,
		"free_indices_limit": 16,
	}`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	opts, err := slotmap.LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(256), opts.PageSize)
	assert.Equal(t, uint32(16), opts.FreeIndicesLimit)
}

func Test_LoadOptions_Defaults_Missing_Fields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "options.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	opts, err := slotmap.LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, slotmap.DefaultOptions(), opts)
}

func Test_LoadOptions_Returns_Error_On_Missing_File(t *testing.T) {
	t.Parallel()

	_, err := slotmap.LoadOptions(filepath.Join(t.TempDir(), "does-not-exist.jsonc"))
	require.Error(t, err)
}
