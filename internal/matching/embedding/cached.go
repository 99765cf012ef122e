// internal/matching/embedding/cached.go
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// Embedder is satisfied by Gemini and by Cached itself.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cached memoises embeddings in Redis keyed by model and a hash of the text.
// Cache failures are logged and never fail the call.
type Cached struct {
	next   Embedder
	redis  *redis.Client
	model  string
	ttl    time.Duration
	logger logger.Logger
}

func NewCached(next Embedder, rdb *redis.Client, model string, ttl time.Duration, log logger.Logger) *Cached {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Cached{
		next:   next,
		redis:  rdb,
		model:  model,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "embedding.cache"}),
	}
}

func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "match:embedding:" + model + ":" + hex.EncodeToString(sum[:])
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.model, text)

	val, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if jerr := json.Unmarshal(val, &vec); jerr == nil && len(vec) > 0 {
			metrics.EmbeddingCacheHits.Inc()
			return vec, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("embedding cache read failed", map[string]interface{}{"error": err})
	}
	metrics.EmbeddingCacheMisses.Inc()

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(vec)
	if err == nil {
		if serr := c.redis.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.logger.Warn("embedding cache write failed", map[string]interface{}{"error": serr})
		}
	}
	return vec, nil
}
