// internal/matching/vectorindex/memory_test.go
package vectorindex

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_QueryOrdersByCosine(t *testing.T) {
	idx := NewMemory(2)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "east", []float32{1, 0}))
	require.NoError(t, idx.Upsert(ctx, "north", []float32{0, 1}))
	require.NoError(t, idx.Upsert(ctx, "north-east", []float32{1, 1}))
	require.NoError(t, idx.Upsert(ctx, "west", []float32{-1, 0}))

	hits, err := idx.Query(ctx, []float32{1, 0.1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "east", hits[0].ID)
	assert.Equal(t, "north-east", hits[1].ID)
	assert.Equal(t, "north", hits[2].ID)
}

func TestMemory_TiesBreakByID(t *testing.T) {
	idx := NewMemory(0)
	ctx := context.Background()
	for i := 3; i >= 0; i-- {
		require.NoError(t, idx.Upsert(ctx, fmt.Sprintf("id-%d", i), []float32{1, 1}))
	}

	hits, err := idx.Query(ctx, []float32{2, 2}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	for i, h := range hits {
		assert.Equal(t, fmt.Sprintf("id-%d", i), h.ID)
	}
}

func TestMemory_UpsertReplacesAndCopies(t *testing.T) {
	idx := NewMemory(2)
	ctx := context.Background()

	vec := []float32{1, 0}
	require.NoError(t, idx.Upsert(ctx, "a", vec))
	vec[0], vec[1] = 0, 1

	hits, err := idx.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)

	require.NoError(t, idx.Upsert(ctx, "a", []float32{0, 1}))
	assert.Equal(t, 1, idx.Len())
}

func TestMemory_Errors(t *testing.T) {
	idx := NewMemory(3)
	ctx := context.Background()

	assert.ErrorIs(t, idx.Upsert(ctx, "a", []float32{1}), ErrDimensionMismatch)
	assert.ErrorIs(t, idx.Upsert(ctx, "", []float32{1, 2, 3}), ErrEmptyID)

	hits, err := idx.Query(ctx, []float32{1, 2, 3}, 0)
	assert.NoError(t, err)
	assert.Empty(t, hits)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = idx.Query(cancelled, []float32{1, 2, 3}, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemory_Delete(t *testing.T) {
	idx := NewMemory(1)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, "a", []float32{1}))
	require.NoError(t, idx.Delete(ctx, "a"))
	require.NoError(t, idx.Delete(ctx, "never-there"))
	assert.Equal(t, 0, idx.Len())
}
