// internal/matching/embedding/gemini.go
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultEmbeddingModel = "text-embedding-004"

var (
	ErrEmptyText      = errors.New("text to embed must not be empty")
	ErrEmptyEmbedding = errors.New("embedding api returned no values")
)

// embedder is the slice of *genai.Models this package calls.
type embedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Gemini embeds text with the Gemini embedding API.
type Gemini struct {
	models embedder
	model  string
	dims   int
}

// NewGemini creates a client for the Gemini API backend. dims > 0 asks the
// model to truncate its output to that many dimensions.
func NewGemini(ctx context.Context, apiKey, model string, dims int, httpClient *http.Client) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(client.Models, model, dims), nil
}

func newGemini(models embedder, model string, dims int) *Gemini {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}
	return &Gemini{models: models, model: model, dims: dims}
}

func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	cfg := &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"}
	if g.dims > 0 {
		d := int32(g.dims)
		cfg.OutputDimensionality = &d
	}

	resp, err := g.models.EmbedContent(ctx, g.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return resp.Embeddings[0].Values, nil
}

// Model identifies the embedding space; vectors from different models are not comparable.
func (g *Gemini) Model() string {
	return g.model
}
