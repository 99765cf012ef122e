package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"freelance-matcher/internal/matching/matcher"
	"freelance-matcher/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataSourceUnavailableError_HidesCause(t *testing.T) {
	err := NewDataSourceUnavailableError(stderrors.New("pq: connection refused"))

	assert.Equal(t, "ranking unavailable: data source error", err.Message)
	assert.Equal(t, "pq: connection refused", err.Details)
	assert.NotContains(t, err.Error(), "pq:")
	assert.True(t, err.Retryable)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:        "data source errors retry",
			err:         NewDataSourceUnavailableError(stderrors.New("down")),
			wantCode:    "RANKING_UNAVAILABLE",
			wantRetries: 3,
		},
		{
			name:        "invalid input is thrown",
			err:         NewInvalidMatchInputError("budget min exceeds max"),
			wantCode:    "INVALID_MATCH_INPUT",
			wantRetries: 0,
		},
		{
			name:        "unmapped code falls back to itself",
			err:         NewBusinessRuleError("limit too large", "limit=1000"),
			wantCode:    "BUSINESS_RULE_VIOLATION",
			wantRetries: 0,
		},
		{
			name:        "timeouts retry twice",
			err:         NewTimeoutError("gemini", stderrors.New("deadline")),
			wantCode:    "TIMEOUT_ERROR",
			wantRetries: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestAsStandardError(t *testing.T) {
	t.Run("unwraps wrapped standard errors", func(t *testing.T) {
		inner := NewResourceNotFoundError("store", "project p-1")
		got := AsStandardError(fmt.Errorf("execute: %w", inner))
		require.NotNil(t, got)
		assert.Equal(t, ErrCodeResourceNotFound, got.Code)
	})

	t.Run("deadline exceeded becomes timeout", func(t *testing.T) {
		got := AsStandardError(fmt.Errorf("rank: %w", context.DeadlineExceeded))
		assert.Equal(t, ErrCodeTimeout, got.Code)
	})

	t.Run("anything else is internal", func(t *testing.T) {
		got := AsStandardError(stderrors.New("nil pointer"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.False(t, got.Retryable)
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATA", GetErrorCategory(ErrCodeDataSourceUnavailable))
	assert.Equal(t, "DATA", GetErrorCategory(ErrCodeResourceNotFound))
	assert.Equal(t, "RETRIEVAL", GetErrorCategory(ErrCodeVectorIndexFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidMatchInput))
	assert.Equal(t, "TIMEOUT", GetErrorCategory(ErrCodeRankingCancelled))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeEmbeddingFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidMatchInput))
}

func TestFromMatchingError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  ErrorCode
		retryable bool
	}{
		{"data source", matcher.ErrDataSourceUnavailable, ErrCodeDataSourceUnavailable, true},
		{"invalid input", fmt.Errorf("%w: %w", matcher.ErrInvalidInput, models.ErrInvalidRecord), ErrCodeInvalidMatchInput, false},
		{"invalid record", fmt.Errorf("%w: freelancer id is required", models.ErrInvalidRecord), ErrCodeInvalidMatchInput, false},
		{"not found", models.ErrNotFound, ErrCodeResourceNotFound, false},
		{"cancelled", fmt.Errorf("%w: %w", matcher.ErrRankingCancelled, context.Canceled), ErrCodeRankingCancelled, true},
		{"deadline", context.DeadlineExceeded, ErrCodeRankingCancelled, true},
		{"unknown", stderrors.New("boom"), ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromMatchingError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.retryable, got.Retryable)
		})
	}

	assert.Nil(t, FromMatchingError(nil))

	existing := NewEmbeddingFailedError(stderrors.New("quota"))
	assert.Same(t, existing, FromMatchingError(fmt.Errorf("wrapped: %w", existing)))
}

func TestFromMatchingError_DataSourceHidesDetails(t *testing.T) {
	got := FromMatchingError(matcher.ErrDataSourceUnavailable)
	assert.Equal(t, "ranking unavailable: data source error", got.Message)
	assert.Empty(t, got.Details)
}
