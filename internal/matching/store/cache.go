// internal/matching/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/common/metrics"
	"freelance-matcher/internal/matching/matcher"
	"freelance-matcher/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	freelancerKeyPrefix = "match:freelancer:"
	projectKeyPrefix    = "match:project:"
)

// Cached is a read-through Redis cache for single-record lookups. Bulk and
// by-id reads go straight to the backing store so pools are never stale.
// A Redis failure is logged and treated as a miss.
type Cached struct {
	next   matcher.Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCached(next matcher.Store, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cached {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Cached{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "store.cache"}),
	}
}

func (c *Cached) GetFreelancer(ctx context.Context, id string) (*models.FreelancerProfile, error) {
	var f models.FreelancerProfile
	if c.lookup(ctx, "freelancer", freelancerKeyPrefix+id, &f) {
		return &f, nil
	}
	rec, err := c.next.GetFreelancer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, freelancerKeyPrefix+id, rec)
	return rec, nil
}

func (c *Cached) GetProject(ctx context.Context, id string) (*models.ProjectRequirements, error) {
	var p models.ProjectRequirements
	if c.lookup(ctx, "project", projectKeyPrefix+id, &p) {
		return &p, nil
	}
	rec, err := c.next.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, projectKeyPrefix+id, rec)
	return rec, nil
}

func (c *Cached) ListFreelancers(ctx context.Context, filter models.FreelancerFilter) ([]*models.FreelancerProfile, error) {
	return c.next.ListFreelancers(ctx, filter)
}

func (c *Cached) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]*models.ProjectRequirements, error) {
	return c.next.ListProjects(ctx, filter)
}

func (c *Cached) FreelancersByIDs(ctx context.Context, ids []string) ([]*models.FreelancerProfile, error) {
	return c.next.FreelancersByIDs(ctx, ids)
}

func (c *Cached) ProjectsByIDs(ctx context.Context, ids []string) ([]*models.ProjectRequirements, error) {
	return c.next.ProjectsByIDs(ctx, ids)
}

// Invalidate drops the cached copy of a record. kind is "freelancer" or "project".
func (c *Cached) Invalidate(ctx context.Context, kind, id string) error {
	key := projectKeyPrefix + id
	if kind == "freelancer" {
		key = freelancerKeyPrefix + id
	}
	return c.redis.Del(ctx, key).Err()
}

func (c *Cached) lookup(ctx context.Context, kind, key string, dst interface{}) bool {
	val, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	case err != nil:
		metrics.RecordCacheLookups.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("record cache read failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return false
	}

	if err := json.Unmarshal(val, dst); err != nil {
		metrics.RecordCacheLookups.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("discarding corrupt cache entry", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return false
	}
	metrics.RecordCacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

func (c *Cached) store(ctx context.Context, key string, rec interface{}) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("record cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}
