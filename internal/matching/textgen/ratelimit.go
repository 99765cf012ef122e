// internal/matching/textgen/ratelimit.go
package textgen

import (
	"context"
	"fmt"

	"freelance-matcher/internal/matching/scorer"

	"golang.org/x/time/rate"
)

// RateLimited holds callers until the provider budget allows another request.
// Waiting honours ctx, so an explanation deadline still falls back on time.
type RateLimited struct {
	next    scorer.TextGenerator
	limiter *rate.Limiter
}

func NewRateLimited(next scorer.TextGenerator, perSecond float64, burst int) *RateLimited {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (r *RateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return r.next.Generate(ctx, prompt)
}
