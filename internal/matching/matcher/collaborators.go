// internal/matching/matcher/collaborators.go
package matcher

import (
	"context"
	"time"

	"freelance-matcher/internal/matching/scorer"
	"freelance-matcher/internal/models"
)

// Store is the primary data source. Lookups of a missing id return
// models.ErrNotFound; the *ByIDs calls silently omit missing ids.
type Store interface {
	GetFreelancer(ctx context.Context, id string) (*models.FreelancerProfile, error)
	GetProject(ctx context.Context, id string) (*models.ProjectRequirements, error)
	ListFreelancers(ctx context.Context, filter models.FreelancerFilter) ([]*models.FreelancerProfile, error)
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]*models.ProjectRequirements, error)
	FreelancersByIDs(ctx context.Context, ids []string) ([]*models.FreelancerProfile, error)
	ProjectsByIDs(ctx context.Context, ids []string) ([]*models.ProjectRequirements, error)
}

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex holds embeddings of one record kind. Query returns hits best first.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32) error
	Query(ctx context.Context, vector []float32, topN int) ([]models.VectorHit, error)
	Delete(ctx context.Context, id string) error
}

// TextGenerator is re-exported so callers wire one interface.
type TextGenerator = scorer.TextGenerator

// Recorder receives one observation per finished ranking.
type Recorder interface {
	RecordRanking(ctx context.Context, direction, mode string, duration time.Duration)
}
