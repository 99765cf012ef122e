// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"freelance-matcher/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"broken pipe", true},
		{"NOT_FOUND: job 42 not found", false},
		{"invalid argument", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.err)), tt.err)
	}
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code errors.ErrorCode
	}{
		{"deadline exceeded", errors.ErrCodeTimeout},
		{"job not found", errors.ErrCodeResourceNotFound},
		{"process already exists", errors.ErrCodeBusinessRule},
		{"connection refused", errors.ErrCodeExternalService},
		{"permission denied", errors.ErrCodeExternalService},
	}
	for _, tt := range tests {
		err := mapZeebeError(stderrors.New(tt.msg), "complete-job", 1)
		var stdErr *errors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, tt.code, stdErr.Code, tt.msg)
	}
}

func TestExecuteWithRetry_RetriesTransient(t *testing.T) {
	c := testClient()
	calls := 0

	res, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, stderrors.New("unavailable")
		}
		return "ok", nil
	}, "publish")

	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_StopsOnPermanent(t *testing.T) {
	c := testClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("job not found")
	}, "complete")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	c := testClient()
	c.config.RetryConfig.BaseDelay = time.Second
	c.config.RetryConfig.MaxDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		return nil, stderrors.New("timeout")
	}, "activate")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeploy_RejectsMissingResources(t *testing.T) {
	c := testClient()

	_, err := c.Deploy(context.Background())
	assert.Error(t, err)

	_, err = c.Deploy(context.Background(), filepath.Join(t.TempDir(), "missing.bpmn"))
	assert.ErrorContains(t, err, "read resource")
}
