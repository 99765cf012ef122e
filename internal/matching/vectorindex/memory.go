// internal/matching/vectorindex/memory.go
package vectorindex

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"freelance-matcher/internal/matching/matcher"
	"freelance-matcher/internal/models"
)

// Memory is an exact cosine index held in process. Used in development and tests.
type Memory struct {
	mu      sync.RWMutex
	dims    int
	vectors map[string][]float32
}

// NewMemory returns an empty index. dims <= 0 accepts any length.
func NewMemory(dims int) *Memory {
	return &Memory{dims: dims, vectors: make(map[string][]float32)}
}

func (m *Memory) Upsert(_ context.Context, id string, vec []float32) error {
	if id == "" {
		return ErrEmptyID
	}
	if m.dims > 0 && len(vec) != m.dims {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), m.dims)
	}
	cp := make([]float32, len(vec))
	copy(cp, vec)

	m.mu.Lock()
	m.vectors[id] = cp
	m.mu.Unlock()
	return nil
}

// Query returns up to topN ids by descending cosine similarity, ties by id.
func (m *Memory) Query(ctx context.Context, vec []float32, topN int) ([]models.VectorHit, error) {
	if topN <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	hits := make([]models.VectorHit, 0, len(m.vectors))
	for id, v := range m.vectors {
		hits = append(hits, models.VectorHit{ID: id, Score: matcher.CosineSimilarity(vec, v)})
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topN {
		hits = hits[:topN]
	}
	return hits, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.vectors, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}
