// internal/workers/matching/jobs/jobs_test.go
package jobs

import (
	"testing"
	"time"

	"freelance-matcher/internal/common/errors"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rankInput struct {
	ProjectID string                      `json:"projectId"`
	Project   *models.ProjectRequirements `json:"project"`
	Limit     *int                        `json:"limit"`
	Filter    models.FreelancerFilter     `json:"filter"`
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := NewRunner("rank-freelancers-for-project", nil, time.Second, logger.NewTestLogger(t))
	require.NoError(t, err)
	return r
}

func TestNewRunner_UnknownTaskType(t *testing.T) {
	_, err := NewRunner("does-not-exist", nil, 0, nil)
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	r := newRunner(t)
	assert.Equal(t, "rank-freelancers-for-project", r.TaskType())

	var in rankInput
	require.NoError(t, r.Decode(`{"projectId":"p-1","limit":5,"filter":{"skills":["go"],"minRating":4}}`, &in))
	assert.Equal(t, "p-1", in.ProjectID)
	require.NotNil(t, in.Limit)
	assert.Equal(t, 5, *in.Limit)
	assert.Equal(t, []string{"go"}, in.Filter.Skills)
	assert.Equal(t, 4.0, in.Filter.MinRating)
}

func TestDecode_Invalid(t *testing.T) {
	r := newRunner(t)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty variables", ""},
		{"no target", `{"limit":3}`},
		{"negative limit", `{"projectId":"p-1","limit":-1}`},
		{"rating out of range", `{"projectId":"p-1","filter":{"minRating":7}}`},
		{"not json", `{"projectId":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in rankInput
			err := r.Decode(tt.raw, &in)
			require.Error(t, err)
			std := errors.AsStandardError(err)
			assert.Equal(t, errors.ErrCodeInvalidMatchInput, std.Code)
			assert.False(t, std.Retryable)
		})
	}
}

func TestResolveLimit(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name      string
		requested *int
		want      int
	}{
		{"omitted uses default", nil, 10},
		{"explicit", intPtr(3), 3},
		{"zero", intPtr(0), 0},
		{"negative", intPtr(-4), 0},
		{"capped", intPtr(500), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLimit(tt.requested, 10, 100))
		})
	}

	assert.Equal(t, 500, ResolveLimit(intPtr(500), 10, 0), "no cap when max is unset")
}
