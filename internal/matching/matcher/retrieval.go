// internal/matching/matcher/retrieval.go
package matcher

import (
	"context"
	"fmt"

	"freelance-matcher/internal/common/metrics"
	"freelance-matcher/internal/models"
)

// OverFetch is how many neighbours retrieval asks the index for.
func OverFetch(limit, factor, minimum int) int {
	return max(limit*factor, minimum)
}

// retrieve narrows candidates to the records the vector index ranks nearest
// to the target. ok=false means fall back to exhaustive scoring; a non-nil
// error is fatal (store failure or cancellation).
//
// With spec.eligible unset, hits are intersected with the caller's pool. With
// it set, candidates is only a capped prefix of the store, so resolved hits
// stand on their own once they pass the filter.
func retrieve[T any](ctx context.Context, m *Matcher, spec rankSpec[T], candidates []T, limit int) (narrowed []T, ok bool, err error) {
	n := OverFetch(limit, m.cfg.OverFetchFactor, m.cfg.MinOverFetch)

	rctx, cancel := context.WithTimeout(ctx, m.cfg.RetrievalTimeout)
	defer cancel()

	text := spec.queryText()
	vec, err := bounded(rctx, func(c context.Context) ([]float32, error) {
		return m.embedder.Embed(c, text)
	})
	if err != nil {
		return degrade[T](ctx, m, spec.direction, "embed_error", err)
	}

	hits, err := bounded(rctx, func(c context.Context) ([]models.VectorHit, error) {
		return spec.index.Query(c, vec, n)
	})
	if err != nil {
		return degrade[T](ctx, m, spec.direction, "index_error", err)
	}
	if len(hits) == 0 {
		return degrade[T](ctx, m, spec.direction, "no_hits", nil)
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}

	found, err := spec.lookup(ctx, ids)
	if err != nil {
		return nil, false, m.storeError(ctx, "resolve vector hits", err)
	}

	if spec.eligible != nil {
		narrowed = eligibleHits(m, spec, ids, found)
	} else {
		narrowed = poolHits(spec, candidates, found)
	}
	if len(narrowed) == 0 {
		return degrade[T](ctx, m, spec.direction, "no_hits", nil)
	}

	if want := min(limit, len(candidates)); len(narrowed) < want {
		if spec.eligible == nil {
			return degrade[T](ctx, m, spec.direction, "short_hits", nil)
		}
		metrics.RetrievalFallbacks.WithLabelValues("short_hits").Inc()
		m.logger.Warn("retrieval short, topping up from pool", map[string]interface{}{
			"direction": spec.direction,
			"resolved":  len(narrowed),
			"wanted":    want,
		})
		narrowed = topUp(spec, narrowed, candidates)
	}

	m.logger.Debug("retrieval narrowed pool", map[string]interface{}{
		"direction": spec.direction,
		"requested": n,
		"hits":      len(hits),
		"resolved":  len(found),
		"kept":      len(narrowed),
	})
	return narrowed, true, nil
}

// poolHits keeps pool members that resolved, in pool order.
func poolHits[T any](spec rankSpec[T], candidates, found []T) []T {
	alive := make(map[string]struct{}, len(found))
	for _, r := range found {
		alive[spec.id(r)] = struct{}{}
	}
	out := make([]T, 0, len(alive))
	for _, c := range candidates {
		if _, ok := alive[spec.id(c)]; ok {
			out = append(out, c)
		}
	}
	return out
}

// eligibleHits keeps resolved records that pass the filter, in hit order.
func eligibleHits[T any](m *Matcher, spec rankSpec[T], ids []string, found []T) []T {
	byID := make(map[string]T, len(found))
	for _, r := range found {
		byID[spec.id(r)] = r
	}
	out := make([]T, 0, len(found))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok || !spec.eligible(r) {
			continue
		}
		delete(byID, id)
		if err := spec.valid(r); err != nil {
			m.logger.Warn("skipping invalid candidate", map[string]interface{}{
				"direction": spec.direction,
				"targetId":  spec.targetID,
				"error":     err,
			})
			continue
		}
		out = append(out, r)
	}
	return out
}

// topUp appends pool members not already in narrowed.
func topUp[T any](spec rankSpec[T], narrowed, pool []T) []T {
	seen := make(map[string]struct{}, len(narrowed))
	for _, r := range narrowed {
		seen[spec.id(r)] = struct{}{}
	}
	for _, c := range pool {
		if _, ok := seen[spec.id(c)]; !ok {
			narrowed = append(narrowed, c)
		}
	}
	return narrowed
}

// bounded returns when call does or when ctx ends, whichever is first. A
// collaborator that ignores ctx is left running and its result dropped.
func bounded[R any](ctx context.Context, call func(context.Context) (R, error)) (R, error) {
	type result struct {
		val R
		err error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("retrieval panic: %v", r)}
			}
		}()
		val, err := call(ctx)
		ch <- result{val: val, err: err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

func degrade[T any](ctx context.Context, m *Matcher, direction, reason string, cause error) ([]T, bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, cancelled(ctxErr)
	}

	metrics.RetrievalFallbacks.WithLabelValues(reason).Inc()
	fields := map[string]interface{}{
		"direction": direction,
		"reason":    reason,
	}
	if cause != nil {
		fields["error"] = cause
	}
	m.logger.Warn("retrieval unavailable, scoring exhaustively", fields)
	return nil, false, nil
}
