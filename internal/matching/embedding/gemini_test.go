// internal/matching/embedding/gemini_test.go
package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp   *genai.EmbedContentResponse
	err    error
	model  string
	text   string
	config *genai.EmbedContentConfig
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.text = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func TestGemini_Embed(t *testing.T) {
	fake := &fakeModels{resp: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2, 0.3}}},
	}}
	g := newGemini(fake, "", 3)

	vec, err := g.Embed(context.Background(), "  Skills: Go  ")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, defaultEmbeddingModel, fake.model)
	assert.Equal(t, "Skills: Go", fake.text)
	require.NotNil(t, fake.config.OutputDimensionality)
	assert.EqualValues(t, 3, *fake.config.OutputDimensionality)
}

func TestGemini_EmbedErrors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeModels
		text string
		want error
	}{
		{"empty text", &fakeModels{}, "   ", ErrEmptyText},
		{"no embeddings", &fakeModels{resp: &genai.EmbedContentResponse{}}, "go", ErrEmptyEmbedding},
		{"nil response", &fakeModels{}, "go", ErrEmptyEmbedding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newGemini(tt.fake, "m", 0).Embed(context.Background(), tt.text)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	apiErr := errors.New("quota exceeded")
	_, err := newGemini(&fakeModels{err: apiErr}, "m", 0).Embed(context.Background(), "go")
	assert.ErrorIs(t, err, apiErr)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), " ", "", 0, nil)
	assert.Error(t, err)
}
