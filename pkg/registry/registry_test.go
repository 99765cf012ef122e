// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 5)
	assert.Empty(t, reg.Validate())

	for _, taskType := range []string{
		"calculate-match-score",
		"rank-freelancers-for-project",
		"rank-projects-for-freelancer",
		"sync-match-embedding",
		"notify-match-digest",
	} {
		a, ok := reg.Get(taskType)
		require.True(t, ok, taskType)
		assert.NotEmpty(t, a.ErrorCodes)
	}
}

func TestInputSchema_RankFreelancers(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	s, err := reg.InputSchema("rank-freelancers-for-project")
	require.NoError(t, err)

	ok, err := s.ValidateJSON(`{"projectId":"p-1","limit":5}`)
	require.NoError(t, err)
	assert.True(t, ok.Valid)

	bad, err := s.ValidateJSON(`{"limit":5}`)
	require.NoError(t, err)
	assert.False(t, bad.Valid)

	_, err = reg.InputSchema("unknown-task")
	assert.Error(t, err)
}

func TestValidate_ReportsProblems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
	  "version": "0.1.0",
	  "activities": [
	    {"taskType": "Bad_Name", "inputSchema": {"type": "object"}},
	    {"taskType": "dup", "inputSchema": {"type": "object"}, "timeout": "soon"},
	    {"taskType": "dup", "inputSchema": {"type": 7}},
	    {"taskType": "shipped-task", "inputSchema": {"type": "object"}, "implementationStatus": "shipped"}
	  ]
	}`), 0o600))

	reg, err := LoadFile(path)
	require.NoError(t, err)

	problems := reg.Validate()
	assert.Len(t, problems, 5)
}

func TestActivity_Contract(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	a, ok := reg.Get("sync-match-embedding")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "kind"}, a.RequiredInputs())

	d, err := a.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, d)

	rank, ok := reg.Get("rank-freelancers-for-project")
	require.True(t, ok)
	assert.Empty(t, rank.RequiredInputs())

	d, err = (&Activity{}).TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestStatuses(t *testing.T) {
	assert.Equal(t, StatusPlanned, Statuses()[0])
	assert.True(t, ValidStatus(StatusVerified))
	assert.False(t, ValidStatus("shipped"))
	assert.Empty(t, RequiredProperties(map[string]interface{}{"type": "object"}))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
