// internal/workers/matching/sync-match-embedding/handler_test.go
package syncembedding

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "freelance-matcher/internal/common/errors"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/matching/indexer"
	"freelance-matcher/internal/matching/matcher"
	"freelance-matcher/internal/matching/store"
	"freelance-matcher/internal/matching/vectorindex"
	"freelance-matcher/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEmbedder struct {
	err error
}

func (e fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.6, 0.8, 0}, nil
}

type brokenStore struct{ matcher.Store }

func (brokenStore) GetProject(context.Context, string) (*models.ProjectRequirements, error) {
	return nil, errors.New("connection refused")
}

type testEnv struct {
	handler     *Handler
	freelancers *vectorindex.Memory
	projects    *vectorindex.Memory
}

func setupTest(t *testing.T, st matcher.Store, emb matcher.Embedder) testEnv {
	t.Helper()
	fi, pi := vectorindex.NewMemory(3), vectorindex.NewMemory(3)
	idx := indexer.New(indexer.Options{
		Embedder:        emb,
		FreelancerIndex: fi,
		ProjectIndex:    pi,
		Logger:          logger.NewTestLogger(t),
	})
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{MaxJobsActive: 1, Timeout: time.Second},
		Store:        st,
		Indexer:      idx,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return testEnv{handler: h, freelancers: fi, projects: pi}
}

func testStore() *store.Memory {
	return store.NewMemory(store.Fixtures{
		Freelancers: []*models.FreelancerProfile{{ID: "f-1", Skills: []string{"Go"}}},
		Projects:    []*models.ProjectRequirements{{ID: "p-1", Title: "API", RequiredSkills: []string{"Go"}}},
	})
}

func TestExecute_Upsert(t *testing.T) {
	env := setupTest(t, testStore(), fixedEmbedder{})

	out, err := env.handler.Execute(context.Background(), &Input{Kind: "freelancer", ID: "f-1"})
	require.NoError(t, err)
	assert.Equal(t, &Output{Synced: true, Dimensions: 3, Action: ActionUpsert}, out)
	assert.Equal(t, 1, env.freelancers.Len())

	out, err = env.handler.Execute(context.Background(), &Input{Kind: "project", ID: "p-1", Action: ActionUpsert})
	require.NoError(t, err)
	assert.True(t, out.Synced)
	assert.Equal(t, 1, env.projects.Len())

	hits, err := env.projects.Query(context.Background(), []float32{0.6, 0.8, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p-1", hits[0].ID)
}

func TestExecute_Delete(t *testing.T) {
	env := setupTest(t, testStore(), fixedEmbedder{})
	ctx := context.Background()

	_, err := env.handler.Execute(ctx, &Input{Kind: "freelancer", ID: "f-1"})
	require.NoError(t, err)

	out, err := env.handler.Execute(ctx, &Input{Kind: "freelancer", ID: "f-1", Action: ActionDelete})
	require.NoError(t, err)
	assert.Equal(t, &Output{Synced: true, Action: ActionDelete}, out)
	assert.Equal(t, 0, env.freelancers.Len())
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		store    matcher.Store
		embedder matcher.Embedder
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{"missing record", testStore(), fixedEmbedder{}, &Input{Kind: "freelancer", ID: "nope"}, apperrors.ErrCodeResourceNotFound},
		{"store failure", brokenStore{testStore()}, fixedEmbedder{}, &Input{Kind: "project", ID: "p-1"}, apperrors.ErrCodeDataSourceUnavailable},
		{"embedding failure", testStore(), fixedEmbedder{err: errors.New("quota")}, &Input{Kind: "project", ID: "p-1"}, apperrors.ErrCodeEmbeddingFailed},
		{"unknown kind", testStore(), fixedEmbedder{}, &Input{Kind: "invoice", ID: "i-1"}, apperrors.ErrCodeInvalidMatchInput},
		{"unknown kind on delete", testStore(), fixedEmbedder{}, &Input{Kind: "invoice", ID: "i-1", Action: ActionDelete}, apperrors.ErrCodeInvalidMatchInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTest(t, tt.store, tt.embedder)
			_, err := env.handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			std := apperrors.AsStandardError(err)
			assert.Equal(t, tt.wantCode, std.Code)
		})
	}
}

func TestExecute_IndexFailure(t *testing.T) {
	idx := indexer.New(indexer.Options{
		Embedder:        fixedEmbedder{},
		FreelancerIndex: vectorindex.NewMemory(8),
	})
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{MaxJobsActive: 1, Timeout: time.Second},
		Store:        testStore(),
		Indexer:      idx,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), &Input{Kind: "freelancer", ID: "f-1"})
	std := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeVectorIndexFailed, std.Code)
	assert.True(t, std.Retryable)
}

func TestDecode(t *testing.T) {
	env := setupTest(t, testStore(), fixedEmbedder{})

	var in Input
	require.NoError(t, env.handler.runner.Decode(`{"kind":"project","id":"p-1"}`, &in))
	assert.Equal(t, "", in.Action)

	err := env.handler.runner.Decode(`{"kind":"invoice","id":"x"}`, &in)
	assert.Error(t, err)
	err = env.handler.runner.Decode(`{"kind":"project","id":"p-1","action":"merge"}`, &in)
	assert.Error(t, err)
}

func TestNewHandler_RequiresDependencies(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig()})
	assert.Error(t, err)
}
