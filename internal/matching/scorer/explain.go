// internal/matching/scorer/explain.go
package scorer

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/common/metrics"
	"freelance-matcher/internal/models"
)

// TextGenerator turns a prompt into prose. Implementations may fail.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Explainer renders a MatchScore as a sentence or two for humans.
type Explainer struct {
	gen     TextGenerator
	timeout time.Duration
	logger  logger.Logger
}

// NewExplainer returns an explainer bounded by timeout per call. gen may be
// nil, in which case every explanation is the fallback sentence.
func NewExplainer(gen TextGenerator, timeout time.Duration, log logger.Logger) *Explainer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Explainer{
		gen:     gen,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "explainer"}),
	}
}

// Fallback is the deterministic explanation used whenever generation is unavailable.
func Fallback(overall float64) string {
	return fmt.Sprintf(
		"Strong match based on %d%% compatibility across skills, experience, and project requirements.",
		int(math.Round(overall*100)),
	)
}

// Explain never returns an error and never touches the numeric fields of score.
func (e *Explainer) Explain(ctx context.Context, f *models.FreelancerProfile, p *models.ProjectRequirements, score models.MatchScore) string {
	if e == nil || e.gen == nil {
		return Fallback(score.OverallScore)
	}

	prompt, err := BuildPrompt(f, p, score)
	if err != nil {
		return e.fallback(score, "prompt", err)
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	text, err := e.generate(callCtx, prompt)
	if err != nil {
		return e.fallback(score, "generate", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return e.fallback(score, "empty", nil)
	}
	return text
}

// generate shields the caller from a provider that panics or ignores its context.
func (e *Explainer) generate(ctx context.Context, prompt string) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("text generator panic: %v", r)}
			}
		}()
		text, err := e.gen.Generate(ctx, prompt)
		ch <- result{text: text, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (e *Explainer) fallback(score models.MatchScore, reason string, err error) string {
	metrics.ExplanationFallbacks.Inc()
	fields := map[string]interface{}{
		"freelancerId": score.FreelancerID,
		"projectId":    score.ProjectID,
		"reason":       reason,
	}
	if err != nil {
		fields["error"] = err
	}
	e.logger.Warn("explanation fell back to template", fields)
	return Fallback(score.OverallScore)
}
