// internal/matching/indexer/indexer.go
package indexer

import (
	"context"
	"errors"
	"fmt"

	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/matching/embedding"
	"freelance-matcher/internal/matching/matcher"
	"freelance-matcher/internal/models"
)

const (
	KindFreelancer = "freelancer"
	KindProject    = "project"
)

var (
	ErrUnknownKind = errors.New("unknown record kind")
	ErrEmbed       = errors.New("embedding failed")
	ErrIndex       = errors.New("vector index write failed")
)

// Invalidator drops cached copies of a record after it changes.
type Invalidator interface {
	Invalidate(ctx context.Context, kind, id string) error
}

// Indexer keeps the vector indexes in step with the record store.
type Indexer struct {
	embedder        matcher.Embedder
	freelancerIndex matcher.VectorIndex
	projectIndex    matcher.VectorIndex
	invalidator     Invalidator
	logger          logger.Logger
}

type Options struct {
	Embedder        matcher.Embedder
	FreelancerIndex matcher.VectorIndex
	ProjectIndex    matcher.VectorIndex
	Invalidator     Invalidator
	Logger          logger.Logger
}

func New(opts Options) *Indexer {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Indexer{
		embedder:        opts.Embedder,
		freelancerIndex: opts.FreelancerIndex,
		projectIndex:    opts.ProjectIndex,
		invalidator:     opts.Invalidator,
		logger:          log.WithFields(map[string]interface{}{"component": "indexer"}),
	}
}

// IndexFreelancer embeds the profile text and upserts it. It returns the vector length.
func (x *Indexer) IndexFreelancer(ctx context.Context, f *models.FreelancerProfile) (int, error) {
	return x.upsert(ctx, KindFreelancer, f.ID, embedding.ProfileText(f))
}

func (x *Indexer) IndexProject(ctx context.Context, p *models.ProjectRequirements) (int, error) {
	return x.upsert(ctx, KindProject, p.ID, embedding.ProjectText(p))
}

// Remove deletes the vector for a record that no longer exists.
func (x *Indexer) Remove(ctx context.Context, kind, id string) error {
	idx, err := x.index(kind)
	if err != nil {
		return err
	}
	if err := idx.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrIndex, err)
	}
	x.invalidate(ctx, kind, id)
	return nil
}

func (x *Indexer) upsert(ctx context.Context, kind, id, text string) (int, error) {
	idx, err := x.index(kind)
	if err != nil {
		return 0, err
	}
	if x.embedder == nil {
		return 0, fmt.Errorf("%w: no embedder configured", ErrEmbed)
	}

	vec, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEmbed, err)
	}
	if err := idx.Upsert(ctx, id, vec); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIndex, err)
	}
	x.invalidate(ctx, kind, id)

	x.logger.Debug("vector upserted", map[string]interface{}{
		"kind": kind,
		"id":   id,
		"dims": len(vec),
	})
	return len(vec), nil
}

func (x *Indexer) index(kind string) (matcher.VectorIndex, error) {
	var idx matcher.VectorIndex
	switch kind {
	case KindFreelancer:
		idx = x.freelancerIndex
	case KindProject:
		idx = x.projectIndex
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if idx == nil {
		return nil, fmt.Errorf("%w: no %s index configured", ErrIndex, kind)
	}
	return idx, nil
}

func (x *Indexer) invalidate(ctx context.Context, kind, id string) {
	if x.invalidator == nil {
		return
	}
	if err := x.invalidator.Invalidate(ctx, kind, id); err != nil {
		x.logger.Warn("cache invalidation failed", map[string]interface{}{
			"kind":  kind,
			"id":    id,
			"error": err,
		})
	}
}

// Summary reports a bulk reindex.
type Summary struct {
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

// ReindexFreelancers embeds every profile the filter returns. Per-record
// failures are logged and counted; only a store failure aborts the run.
func (x *Indexer) ReindexFreelancers(ctx context.Context, store matcher.Store, filter models.FreelancerFilter) (Summary, error) {
	recs, err := store.ListFreelancers(ctx, filter)
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	for _, f := range recs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if _, err := x.IndexFreelancer(ctx, f); err != nil {
			sum.Failed++
			x.logger.Warn("reindex failed", map[string]interface{}{"kind": KindFreelancer, "id": f.ID, "error": err})
			continue
		}
		sum.Indexed++
	}
	return sum, nil
}

func (x *Indexer) ReindexProjects(ctx context.Context, store matcher.Store, filter models.ProjectFilter) (Summary, error) {
	recs, err := store.ListProjects(ctx, filter)
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	for _, p := range recs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if _, err := x.IndexProject(ctx, p); err != nil {
			sum.Failed++
			x.logger.Warn("reindex failed", map[string]interface{}{"kind": KindProject, "id": p.ID, "error": err})
			continue
		}
		sum.Indexed++
	}
	return sum, nil
}
