package model_test

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/nearcore/slotmap/pkg/slotmap"
	"github.com/nearcore/slotmap/pkg/slotmap/model"
)

func Test_Model_New_Starts_Empty(t *testing.T) {
	t.Parallel()

	m := model.New[int](0)
	require.Equal(t, 0, m.Len())
	require.Empty(t, m.Live())
}

func Test_Model_Replace_Fails_On_Stale_Key(t *testing.T) {
	t.Parallel()

	m := model.New[int](0)

	k := m.Add(1)
	_, ok := m.Remove(k)
	require.True(t, ok)

	_, ok = m.Replace(k, 2)
	require.False(t, ok)
}

type engine[V any] interface {
	Add(value V) (slotmap.Key, error)
	Get(key slotmap.Key) (V, error)
	Replace(key slotmap.Key, value V) (slotmap.Key, error)
	Remove(key slotmap.Key) (V, error)
	Contains(key slotmap.Key) bool
	Len() int
	All() slotmap.Seq[V]
}

func Test_Dense_Matches_Model_When_Seeded_Random_Ops_Applied(t *testing.T) {
	t.Parallel()

	m, err := slotmap.NewDenseSlotMap[int](slotmap.Options{PageSize: 4, FreeIndicesLimit: 2})
	require.NoError(t, err)

	runSeededFuzz(t, m)
}

func Test_Sparse_Matches_Model_When_Seeded_Random_Ops_Applied(t *testing.T) {
	t.Parallel()

	m, err := slotmap.NewSparseSlotMap[int](slotmap.Options{PageSize: 4, FreeIndicesLimit: 2})
	require.NoError(t, err)

	runSeededFuzz(t, m)
}

func runSeededFuzz(t *testing.T, real engine[int]) {
	t.Helper()

	seeds := 20
	if testing.Short() {
		seeds = 5
	}

	opsPerSeed := 300

	for seedIndex := 0; seedIndex < seeds; seedIndex++ {
		seed := uint64(seedIndex + 1)

		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewPCG(seed, seed))
			ref := model.New[int](2)

			var liveKeys []slotmap.Key

			for op := 0; op < opsPerSeed; op++ {
				switch {
				case len(liveKeys) == 0 || rng.IntN(3) == 0:
					value := rng.IntN(1_000_000)

					wantKey := ref.Add(value)

					gotKey, err := real.Add(value)
					require.NoError(t, err)
					require.Equal(t, wantKey, gotKey, "op=%d Add", op)

					liveKeys = append(liveKeys, gotKey)

				case rng.IntN(3) == 1:
					idx := rng.IntN(len(liveKeys))
					key := liveKeys[idx]

					wantValue, wantOK := ref.Remove(key)
					gotValue, gotErr := real.Get(key)

					if wantOK {
						require.NoError(t, gotErr, "op=%d Remove target key should have existed", op)
						require.Equal(t, wantValue, gotValue)
					}

					_, removeErr := real.Remove(key)
					if wantOK {
						require.NoError(t, removeErr, "op=%d Remove", op)
					}

					liveKeys = append(liveKeys[:idx], liveKeys[idx+1:]...)

				default:
					idx := rng.IntN(len(liveKeys))
					key := liveKeys[idx]
					value := rng.IntN(1_000_000)

					wantKey, wantOK := ref.Replace(key, value)

					gotKey, gotErr := real.Replace(key, value)
					if wantOK {
						require.NoError(t, gotErr, "op=%d Replace", op)
						require.Equal(t, wantKey, gotKey)
						liveKeys[idx] = gotKey
					}
				}
			}

			assertSameLiveSet(t, ref, real)
		})
	}
}

func assertSameLiveSet(t *testing.T, ref *model.Model[int], real engine[int]) {
	t.Helper()

	want := ref.Live()

	got := make(map[slotmap.Key]int)
	for entry := range real.All() {
		got[entry.Key] = entry.Value
	}

	require.Equal(t, len(want), real.Len())

	if diff := cmp.Diff(sortedKeys(want), sortedKeys(got)); diff != "" {
		t.Fatalf("live key set diverged from model (-want +got):\n%s", diff)
	}

	for k, v := range want {
		require.Equal(t, v, got[k], "key=%s", k)
	}
}

func sortedKeys[V any](m map[slotmap.Key]V) []slotmap.Key {
	keys := make([]slotmap.Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}
