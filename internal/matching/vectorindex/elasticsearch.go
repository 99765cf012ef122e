// internal/matching/vectorindex/elasticsearch.go
package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const vectorField = "embedding"

// Elasticsearch stores one dense_vector document per record, keyed by record id.
type Elasticsearch struct {
	client *elasticsearch.Client
	index  string
	dims   int
	logger logger.Logger
}

func NewElasticsearch(client *elasticsearch.Client, index string, dims int, log logger.Logger) *Elasticsearch {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Elasticsearch{
		client: client,
		index:  index,
		dims:   dims,
		logger: log.WithFields(map[string]interface{}{"component": "vectorindex", "index": index}),
	}
}

// EnsureIndex creates the index with a cosine dense_vector mapping if it does not exist.
func (e *Elasticsearch) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{e.index}}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", e.index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{"type": "keyword"},
				vectorField: map[string]interface{}{
					"type":       "dense_vector",
					"dims":       e.dims,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	res, err := esapi.IndicesCreateRequest{Index: e.index, Body: bytes.NewReader(body)}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", e.index, res.String())
	}

	e.logger.Info("vector index created", map[string]interface{}{"dims": e.dims})
	return nil
}

func (e *Elasticsearch) Upsert(ctx context.Context, id string, vec []float32) error {
	if id == "" {
		return ErrEmptyID
	}
	if e.dims > 0 && len(vec) != e.dims {
		return fmt.Errorf("%w: got %d, index %s expects %d", ErrDimensionMismatch, len(vec), e.index, e.dims)
	}

	body, err := json.Marshal(map[string]interface{}{"id": id, vectorField: vec})
	if err != nil {
		return err
	}
	res, err := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("index vector %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index vector %s: %s", id, res.String())
	}
	return nil
}

type knnResponse struct {
	Hits struct {
		Hits []struct {
			ID    string  `json:"_id"`
			Score float64 `json:"_score"`
		} `json:"hits"`
	} `json:"hits"`
}

// Query runs an approximate kNN search. Scores are Elasticsearch's
// normalised cosine, (1 + cos) / 2.
func (e *Elasticsearch) Query(ctx context.Context, vec []float32, topN int) ([]models.VectorHit, error) {
	if topN <= 0 {
		return nil, nil
	}

	query := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          vectorField,
			"query_vector":   vec,
			"k":              topN,
			"num_candidates": max(topN*2, 100),
		},
		"_source": false,
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
		Size:  &topN,
	}.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("knn search %s: %w", e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("knn search %s: %s", e.index, res.String())
	}

	var parsed knnResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode knn response: %w", err)
	}

	hits := make([]models.VectorHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, models.VectorHit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// Delete removes the vector for id. Deleting a missing id is not an error.
func (e *Elasticsearch) Delete(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: e.index, DocumentID: id}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("delete vector %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete vector %s: %s", id, res.String())
	}
	return nil
}
