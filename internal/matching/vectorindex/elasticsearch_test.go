// internal/matching/vectorindex/elasticsearch_test.go
package vectorindex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

type fakeES struct {
	mu       sync.Mutex
	requests []recordedRequest
	handle   func(w http.ResponseWriter, r *http.Request)
}

func newFakeES(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*fakeES, *elasticsearch.Client) {
	f := &fakeES{handle: handle}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		f.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		f.handle(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return f, client
}

func (f *fakeES) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func TestElasticsearch_EnsureIndexCreatesMapping(t *testing.T) {
	fake, client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})

	idx := NewElasticsearch(client, "freelancer-embeddings", 3, nil)
	require.NoError(t, idx.EnsureIndex(context.Background()))

	create := fake.last()
	assert.Equal(t, http.MethodPut, create.Method)
	assert.Equal(t, "/freelancer-embeddings", create.Path)

	props := create.Body["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
	vec := props["embedding"].(map[string]interface{})
	assert.Equal(t, "dense_vector", vec["type"])
	assert.Equal(t, "cosine", vec["similarity"])
	assert.EqualValues(t, 3, vec["dims"])
}

func TestElasticsearch_EnsureIndexExisting(t *testing.T) {
	fake, client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, NewElasticsearch(client, "idx", 3, nil).EnsureIndex(context.Background()))
	assert.Len(t, fake.requests, 1)
}

func TestElasticsearch_Upsert(t *testing.T) {
	fake, client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	idx := NewElasticsearch(client, "idx", 3, nil)

	require.NoError(t, idx.Upsert(context.Background(), "f-1", []float32{0.1, 0.2, 0.3}))
	req := fake.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/idx/_doc/f-1", req.Path)
	assert.Equal(t, "f-1", req.Body["id"])
	assert.Len(t, req.Body["embedding"], 3)

	err := idx.Upsert(context.Background(), "f-2", []float32{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.ErrorIs(t, idx.Upsert(context.Background(), "", []float32{1, 2, 3}), ErrEmptyID)
}

func TestElasticsearch_Query(t *testing.T) {
	fake, client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_id":"f-9","_score":0.97},
			{"_id":"f-2","_score":0.81}
		]}}`))
	})
	idx := NewElasticsearch(client, "idx", 3, nil)

	hits, err := idx.Query(context.Background(), []float32{1, 0, 0}, 50)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "f-9", hits[0].ID)
	assert.InDelta(t, 0.97, hits[0].Score, 1e-9)

	req := fake.last()
	assert.Equal(t, "/idx/_search", req.Path)
	knn := req.Body["knn"].(map[string]interface{})
	assert.Equal(t, "embedding", knn["field"])
	assert.EqualValues(t, 50, knn["k"])
	assert.EqualValues(t, 100, knn["num_candidates"])
}

func TestElasticsearch_QueryError(t *testing.T) {
	_, client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"illegal_argument_exception"}}`))
	})

	_, err := NewElasticsearch(client, "idx", 3, nil).Query(context.Background(), []float32{1, 0, 0}, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knn search idx")
}

func TestElasticsearch_DeleteMissingIsNotAnError(t *testing.T) {
	_, client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	assert.NoError(t, NewElasticsearch(client, "idx", 3, nil).Delete(context.Background(), "gone"))
}
