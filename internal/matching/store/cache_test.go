// internal/matching/store/cache_test.go
package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"freelance-matcher/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	freelancers map[string]*models.FreelancerProfile
	projects    map[string]*models.ProjectRequirements
	gets        int
	lists       int
}

func (s *countingStore) GetFreelancer(_ context.Context, id string) (*models.FreelancerProfile, error) {
	s.gets++
	if f, ok := s.freelancers[id]; ok {
		return f, nil
	}
	return nil, models.ErrNotFound
}

func (s *countingStore) GetProject(_ context.Context, id string) (*models.ProjectRequirements, error) {
	s.gets++
	if p, ok := s.projects[id]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}

func (s *countingStore) ListFreelancers(context.Context, models.FreelancerFilter) ([]*models.FreelancerProfile, error) {
	s.lists++
	return nil, nil
}

func (s *countingStore) ListProjects(context.Context, models.ProjectFilter) ([]*models.ProjectRequirements, error) {
	s.lists++
	return nil, nil
}

func (s *countingStore) FreelancersByIDs(context.Context, []string) ([]*models.FreelancerProfile, error) {
	s.lists++
	return nil, nil
}

func (s *countingStore) ProjectsByIDs(context.Context, []string) ([]*models.ProjectRequirements, error) {
	s.lists++
	return nil, nil
}

func setupCache(t *testing.T) (*Cached, *countingStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	inner := &countingStore{
		freelancers: map[string]*models.FreelancerProfile{
			"f-1": {ID: "f-1", Skills: []string{"Go"}, Rating: 4.5},
		},
		projects: map[string]*models.ProjectRequirements{
			"p-1": {ID: "p-1", Title: "API", Budget: models.Budget{Min: 10, Max: 20}},
		},
	}
	return NewCached(inner, rdb, time.Minute, nil), inner, mr
}

func TestCached_ReadThrough(t *testing.T) {
	c, inner, mr := setupCache(t)
	ctx := context.Background()

	first, err := c.GetFreelancer(ctx, "f-1")
	require.NoError(t, err)
	second, err := c.GetFreelancer(ctx, "f-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.gets)
	assert.True(t, mr.Exists("match:freelancer:f-1"))
	assert.Equal(t, time.Minute, mr.TTL("match:freelancer:f-1"))

	p, err := c.GetProject(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "API", p.Title)
	_, _ = c.GetProject(ctx, "p-1")
	assert.Equal(t, 2, inner.gets)
}

func TestCached_NotFoundIsNotCached(t *testing.T) {
	c, inner, mr := setupCache(t)

	_, err := c.GetProject(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = c.GetProject(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, 2, inner.gets)
	assert.False(t, mr.Exists("match:project:nope"))
}

func TestCached_CorruptEntryFallsThrough(t *testing.T) {
	c, inner, mr := setupCache(t)
	require.NoError(t, mr.Set("match:freelancer:f-1", "{not json"))

	f, err := c.GetFreelancer(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "f-1", f.ID)
	assert.Equal(t, 1, inner.gets)

	raw, err := mr.Get("match:freelancer:f-1")
	require.NoError(t, err)
	var cached models.FreelancerProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "f-1", cached.ID)
}

func TestCached_RedisDownFallsThrough(t *testing.T) {
	inner := &countingStore{freelancers: map[string]*models.FreelancerProfile{"f-1": {ID: "f-1"}}}
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	c := NewCached(inner, rdb, time.Minute, nil)

	f, err := c.GetFreelancer(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "f-1", f.ID)
	assert.Equal(t, 1, inner.gets)
}

func TestCached_BulkReadsBypassCache(t *testing.T) {
	c, inner, _ := setupCache(t)
	ctx := context.Background()

	_, _ = c.ListFreelancers(ctx, models.FreelancerFilter{})
	_, _ = c.ListProjects(ctx, models.ProjectFilter{})
	_, _ = c.FreelancersByIDs(ctx, []string{"f-1"})
	_, _ = c.ProjectsByIDs(ctx, []string{"p-1"})
	assert.Equal(t, 4, inner.lists)
}

func TestCached_Invalidate(t *testing.T) {
	c, inner, mr := setupCache(t)
	ctx := context.Background()

	_, _ = c.GetFreelancer(ctx, "f-1")
	require.True(t, mr.Exists("match:freelancer:f-1"))

	require.NoError(t, c.Invalidate(ctx, "freelancer", "f-1"))
	assert.False(t, mr.Exists("match:freelancer:f-1"))

	_, _ = c.GetFreelancer(ctx, "f-1")
	assert.Equal(t, 2, inner.gets)
}
