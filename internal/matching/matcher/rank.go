// internal/matching/matcher/rank.go
package matcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"freelance-matcher/internal/common/metrics"
	"freelance-matcher/internal/models"

	"golang.org/x/sync/errgroup"
)

// rankSpec binds the direction-specific pieces of one ranking to the shared pipeline.
type rankSpec[T any] struct {
	direction string
	targetID  string
	index     VectorIndex
	queryText func() string
	lookup    func(ctx context.Context, ids []string) ([]T, error)
	id        func(T) string
	valid     func(T) error
	score     func(T) models.MatchScore
	explain   func(ctx context.Context, item T, s models.MatchScore) string

	// eligible is set when pool is a truncated prefix of a larger filtered
	// store set; retrieval then admits any stored record it accepts.
	eligible func(T) bool
}

type scored[T any] struct {
	item  T
	score models.MatchScore
}

func rank[T any](ctx context.Context, m *Matcher, spec rankSpec[T], pool []T, limit int) (matches []models.MatchScore, mode string, err error) {
	mode = models.ModeExhaustive
	if limit <= 0 || len(pool) == 0 {
		return []models.MatchScore{}, mode, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, mode, cancelled(ctxErr)
	}

	start := time.Now()
	ctx, span := m.startSpan(ctx, "matcher.rank", spec.direction, len(pool), limit)
	defer func() {
		endSpan(span, mode, err)
		m.observe(ctx, spec.direction, mode, start, err)
	}()

	candidates := validPool(m, spec, pool)

	truncated := spec.eligible != nil
	if m.retrievalEnabled(spec.index, len(candidates), truncated) {
		narrowed, ok, rerr := retrieve(ctx, m, spec, candidates, limit)
		if rerr != nil {
			return nil, mode, rerr
		}
		if ok {
			candidates = narrowed
			mode = models.ModeRetrieval
		}
	}
	if truncated && mode == models.ModeExhaustive {
		m.logger.Warn("candidate pool truncated, ranking the first pool_size records", map[string]interface{}{
			"direction": spec.direction,
			"targetId":  spec.targetID,
			"poolSize":  len(pool),
		})
	}

	ranked, err := scoreAll(ctx, m.cfg.Concurrency, candidates, spec.score)
	if err != nil {
		return nil, mode, cancelled(err)
	}
	metrics.CandidatesScored.WithLabelValues(spec.direction).Add(float64(len(candidates)))

	top := topK(ranked, limit)
	explainAll(ctx, m.cfg.ExplainConcurrency, top, spec.explain)

	matches = make([]models.MatchScore, len(top))
	for i := range top {
		matches[i] = top[i].score
	}

	m.logger.Debug("ranking complete", map[string]interface{}{
		"direction":  spec.direction,
		"targetId":   spec.targetID,
		"mode":       mode,
		"candidates": len(candidates),
		"returned":   len(matches),
	})
	return matches, mode, nil
}

func validPool[T any](m *Matcher, spec rankSpec[T], pool []T) []T {
	out := make([]T, 0, len(pool))
	for _, c := range pool {
		if err := spec.valid(c); err != nil {
			m.logger.Warn("skipping invalid candidate", map[string]interface{}{
				"direction": spec.direction,
				"targetId":  spec.targetID,
				"error":     err,
			})
			continue
		}
		out = append(out, c)
	}
	return out
}

func (m *Matcher) retrievalEnabled(index VectorIndex, poolSize int, truncated bool) bool {
	if m.embedder == nil || index == nil || m.store == nil {
		return false
	}
	return truncated || poolSize >= m.cfg.RetrievalThreshold
}

// scoreAll scores every item on a bounded pool. Results keep input order so a
// stable sort breaks ties by pool position. Cancellation stops new tasks.
func scoreAll[T any](ctx context.Context, workers int, items []T, score func(T) models.MatchScore) ([]scored[T], error) {
	out := make([]scored[T], len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = scored[T]{item: item, score: score(item)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func topK[T any](ranked []scored[T], k int) []scored[T] {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score.OverallScore > ranked[j].score.OverallScore
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// explainAll fills Explanation for each entry. Explain never fails, so
// neither does this.
func explainAll[T any](ctx context.Context, workers int, top []scored[T], explain func(context.Context, T, models.MatchScore) string) {
	var g errgroup.Group
	g.SetLimit(workers)

	for i := range top {
		g.Go(func() error {
			top[i].score.Explanation = explain(ctx, top[i].item, top[i].score)
			return nil
		})
	}
	_ = g.Wait()
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrRankingCancelled, err)
}
