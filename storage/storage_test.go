package storage_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/storage"
)

func backends(t *testing.T) map[string]storage.Backend {
	disk, err := storage.NewDiskBackend(t.TempDir())
	require.NoError(t, err)

	return map[string]storage.Backend{
		"dense":  storage.NewDenseBackend(),
		"sparse": storage.NewSparseBackend(),
		"disk":   disk,
	}
}

func TestBackend_DefaultsAndRoundTrip(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Init(4, 4, 1))

			idx := storage.Index(1, 2, 0, 4, 4)
			assert.True(t, math.IsInf(b.GWDT(idx), 1))
			assert.True(t, math.IsInf(b.Distance(idx), 1))
			assert.Equal(t, int64(-1), b.Parent(idx))
			assert.Equal(t, storage.Far, b.State(idx))

			b.SetGWDT(idx, 3.5)
			b.SetDistance(idx, 1.25)
			b.SetParent(idx, 7)
			b.SetState(idx, storage.Alive)

			assert.Equal(t, 3.5, b.GWDT(idx))
			assert.Equal(t, 1.25, b.Distance(idx))
			assert.Equal(t, int64(7), b.Parent(idx))
			assert.Equal(t, storage.Alive, b.State(idx))

			alive, ok := b.AliveIndices()
			require.True(t, ok)
			assert.Contains(t, alive, idx)

			require.NoError(t, b.Dispose())
		})
	}
}

// TestDiskBackend_ZeroValueSurvivesCacheEviction writes a legitimate 0.0 to
// GWDT and Distance for enough indices to force the disk cache to flush,
// then re-reads past the flush: a 0.0 must never be confused with an
// unwritten record once it's no longer held in the in-memory cache.
func TestDiskBackend_ZeroValueSurvivesCacheEviction(t *testing.T) {
	b, err := storage.NewDiskBackend(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, b.Init(10000, 1, 1))

	const zeroIdx = 0
	b.SetGWDT(zeroIdx, 0)
	b.SetDistance(zeroIdx, 0)

	for i := int64(1); i < 5000; i++ {
		b.SetGWDT(i, float64(i))
		b.SetDistance(i, float64(i))
	}

	assert.Equal(t, 0.0, b.GWDT(zeroIdx))
	assert.Equal(t, 0.0, b.Distance(zeroIdx))

	require.NoError(t, b.Dispose())
}

func TestBackend_AliveIndicesTracksTransitions(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Init(2, 2, 1))

			b.SetState(0, storage.Alive)
			b.SetState(1, storage.Alive)
			alive, _ := b.AliveIndices()
			assert.Len(t, alive, 2)

			b.SetState(0, storage.Trial)
			alive, _ = b.AliveIndices()
			assert.Len(t, alive, 1)
			assert.Equal(t, int64(1), alive[0])

			require.NoError(t, b.Dispose())
		})
	}
}
