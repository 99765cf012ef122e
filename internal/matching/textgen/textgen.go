// internal/matching/textgen/textgen.go
package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"freelance-matcher/internal/common/config"
	"freelance-matcher/internal/matching/scorer"
)

var (
	ErrEmptyPrompt   = errors.New("prompt must not be empty")
	ErrEmptyResponse = errors.New("model returned no text")
	ErrRateLimited   = errors.New("text generation rate limited")
	ErrUnknownVendor = errors.New("unknown ai provider")
)

// New builds the configured provider, rate limited when cfg.RatePerSecond > 0.
// Provider "none" (or empty) returns nil, which makes every explanation the template.
func New(ctx context.Context, cfg config.AIConfig, httpClient *http.Client) (scorer.TextGenerator, error) {
	var (
		gen scorer.TextGenerator
		err error
	)

	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "gemini":
		gen, err = NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, httpClient)
	case "anthropic":
		gen, err = NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, httpClient)
	case "openai":
		gen, err = NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, httpClient)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVendor, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RatePerSecond > 0 {
		gen = NewRateLimited(gen, cfg.RatePerSecond, cfg.Burst)
	}
	return gen, nil
}
