// internal/matching/stack/stack.go
package stack

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"freelance-matcher/internal/common/config"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/matching/embedding"
	"freelance-matcher/internal/matching/indexer"
	"freelance-matcher/internal/matching/matcher"
	"freelance-matcher/internal/matching/scorer"
	"freelance-matcher/internal/matching/store"
	"freelance-matcher/internal/matching/textgen"
	"freelance-matcher/internal/matching/vectorindex"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
)

// Deps are the opened connections a Stack is built on. Any of them may be
// nil; Store overrides DB when set.
type Deps struct {
	DB         *sql.DB
	Redis      *redis.Client
	ES         *elasticsearch.Client
	Store      matcher.Store
	HTTPClient *http.Client
	Recorder   matcher.Recorder
	Logger     logger.Logger
}

// Stack is the assembled matching engine.
type Stack struct {
	Store           matcher.Store
	Embedder        matcher.Embedder
	FreelancerIndex matcher.VectorIndex
	ProjectIndex    matcher.VectorIndex
	Matcher         *matcher.Matcher
	Indexer         *indexer.Indexer
}

// Build wires store, caches, embedder, vector indexes, text generator and
// matcher from cfg. Retrieval stays off unless both an embedder and an index
// backend are configured.
func Build(ctx context.Context, cfg *config.Config, deps Deps) (*Stack, error) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Stack{}

	var invalidator indexer.Invalidator
	switch {
	case deps.Store != nil:
		s.Store = deps.Store
	case deps.DB != nil:
		pg := store.NewPostgres(deps.DB, log)
		if deps.Redis != nil {
			cached := store.NewCached(pg, deps.Redis, config.GetDuration(cfg.Matching.CacheTTL), log)
			s.Store, invalidator = cached, cached
		} else {
			s.Store = pg
		}
	default:
		return nil, fmt.Errorf("stack: no record store configured")
	}

	if key := cfg.AI.Gemini.APIKey; key != "" {
		model := cfg.AI.Gemini.EmbeddingModel
		g, err := embedding.NewGemini(ctx, key, model, cfg.Vector.Dimensions, deps.HTTPClient)
		if err != nil {
			return nil, fmt.Errorf("embedding client: %w", err)
		}
		s.Embedder = g
		if deps.Redis != nil {
			s.Embedder = embedding.NewCached(g, deps.Redis, model, config.GetDuration(cfg.Matching.EmbeddingCacheTTL), log)
		}
	}

	if err := s.buildIndexes(ctx, cfg, deps.ES, log); err != nil {
		return nil, err
	}

	gen, err := textgen.New(ctx, cfg.AI, deps.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("text generator: %w", err)
	}
	explainer := scorer.NewExplainer(gen, config.GetDuration(cfg.Matching.ExplainTimeout), log)

	s.Matcher = matcher.New(matcher.ConfigFrom(cfg.Matching), matcher.Options{
		Scorer:          scorer.New(explainer),
		Store:           s.Store,
		Embedder:        s.Embedder,
		FreelancerIndex: s.FreelancerIndex,
		ProjectIndex:    s.ProjectIndex,
		Recorder:        deps.Recorder,
		Logger:          log,
	})
	s.Indexer = indexer.New(indexer.Options{
		Embedder:        s.Embedder,
		FreelancerIndex: s.FreelancerIndex,
		ProjectIndex:    s.ProjectIndex,
		Invalidator:     invalidator,
		Logger:          log,
	})

	log.Info("matching stack ready", map[string]interface{}{
		"vectorBackend": cfg.Vector.Backend,
		"embeddings":    s.Embedder != nil,
		"explanations":  cfg.AI.Provider,
	})
	return s, nil
}

func (s *Stack) buildIndexes(ctx context.Context, cfg *config.Config, es *elasticsearch.Client, log logger.Logger) error {
	dims := cfg.Vector.Dimensions
	switch cfg.Vector.Backend {
	case "elasticsearch":
		if es == nil {
			return fmt.Errorf("stack: elasticsearch backend without a client")
		}
		fi := vectorindex.NewElasticsearch(es, cfg.Vector.FreelancerIndex, dims, log)
		pi := vectorindex.NewElasticsearch(es, cfg.Vector.ProjectIndex, dims, log)
		for _, idx := range []*vectorindex.Elasticsearch{fi, pi} {
			if err := idx.EnsureIndex(ctx); err != nil {
				return fmt.Errorf("ensure vector index: %w", err)
			}
		}
		s.FreelancerIndex, s.ProjectIndex = fi, pi
	case "memory":
		s.FreelancerIndex, s.ProjectIndex = vectorindex.NewMemory(dims), vectorindex.NewMemory(dims)
	case "none", "":
	default:
		return fmt.Errorf("stack: unknown vector backend %q", cfg.Vector.Backend)
	}
	return nil
}
