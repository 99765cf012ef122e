// internal/matching/embedding/cached_test.go
package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (c *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	c.calls++
	return c.vec, c.err
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("text-embedding-004", "Skills: Go")
	assert.Equal(t, a, CacheKey("text-embedding-004", "Skills: Go"))
	assert.NotEqual(t, a, CacheKey("other-model", "Skills: Go"))
	assert.NotEqual(t, a, CacheKey("text-embedding-004", "Skills: Rust"))
	assert.Contains(t, a, "match:embedding:text-embedding-004:")
}

func TestCached_MissThenStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &countingEmbedder{vec: []float32{1, 2}}
	c := NewCached(inner, rdb, "m", time.Hour, nil)

	key := CacheKey("m", "hello")
	data, _ := json.Marshal([]float32{1, 2})
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, data, time.Hour).SetVal("OK")

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCached_Hit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &countingEmbedder{}
	c := NewCached(inner, rdb, "m", time.Hour, nil)

	mock.ExpectGet(CacheKey("m", "hello")).SetVal("[0.5,0.25]")

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
	assert.Equal(t, 0, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCached_RedisErrorsDoNotFailEmbedding(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &countingEmbedder{vec: []float32{3}}
	c := NewCached(inner, rdb, "m", time.Hour, nil)

	key := CacheKey("m", "hello")
	data, _ := json.Marshal([]float32{3})
	mock.ExpectGet(key).SetErr(errors.New("READONLY"))
	mock.ExpectSet(key, data, time.Hour).SetErr(errors.New("READONLY"))

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, vec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCached_EmbedErrorNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &countingEmbedder{err: errors.New("quota")}
	c := NewCached(inner, rdb, "m", time.Hour, nil)

	mock.ExpectGet(CacheKey("m", "hello")).RedisNil()

	_, err := c.Embed(context.Background(), "hello")
	assert.EqualError(t, err, "quota")
	assert.NoError(t, mock.ExpectationsWereMet())
}
