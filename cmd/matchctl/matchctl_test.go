// cmd/matchctl/matchctl_test.go
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-matcher/internal/models"
	"freelance-matcher/pkg/registry"
)

const fixtures = "testdata/fixtures.json"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func decodeRanking(t *testing.T, out string) models.Ranking {
	t.Helper()
	var r models.Ranking
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	return r
}

func matchIDs(r models.Ranking, freelancers bool) []string {
	ids := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		if freelancers {
			ids = append(ids, m.FreelancerID)
		} else {
			ids = append(ids, m.ProjectID)
		}
	}
	return ids
}

// ==========================
// rank
// ==========================

func TestRankFreelancers(t *testing.T) {
	out, _, err := run(t, "--data", fixtures, "rank", "freelancers", "--project", "p-api")
	require.NoError(t, err)

	r := decodeRanking(t, out)
	assert.Equal(t, models.DirectionFreelancersForProject, r.Direction)
	assert.Equal(t, models.ModeExhaustive, r.Mode)
	assert.Equal(t, "p-api", r.TargetID)
	assert.NotEmpty(t, r.RankingID)
	require.Len(t, r.Matches, 3)
	assert.Equal(t, "f-ana", r.Matches[0].FreelancerID)
	for i := 1; i < len(r.Matches); i++ {
		assert.GreaterOrEqual(t, r.Matches[i-1].OverallScore, r.Matches[i].OverallScore)
	}
}

func TestRankFreelancers_LimitAndFilter(t *testing.T) {
	out, _, err := run(t, "--data", fixtures, "rank", "freelancers",
		"--project", "p-api", "--limit", "1", "--skills", "Go")
	require.NoError(t, err)
	assert.Equal(t, []string{"f-ana"}, matchIDs(decodeRanking(t, out), true))

	out, _, err = run(t, "--data", fixtures, "rank", "freelancers",
		"--project", "p-api", "--availability", "contract")
	require.NoError(t, err)
	assert.Equal(t, []string{"f-chen"}, matchIDs(decodeRanking(t, out), true))
}

func TestRankFreelancers_ZeroLimit(t *testing.T) {
	out, _, err := run(t, "--data", fixtures, "rank", "freelancers", "--project", "p-api", "--limit", "0")
	require.NoError(t, err)
	assert.Contains(t, out, `"matches": []`)
}

func TestRankProjects(t *testing.T) {
	out, _, err := run(t, "--data", fixtures, "rank", "projects", "--freelancer", "f-ben")
	require.NoError(t, err)

	r := decodeRanking(t, out)
	assert.Equal(t, models.DirectionProjectsForFreelancer, r.Direction)
	assert.Equal(t, []string{"p-ui", "p-api"}, matchIDs(r, false))

	out, _, err = run(t, "--data", fixtures, "rank", "projects", "--freelancer", "f-ben", "--remote-only")
	require.NoError(t, err)
	assert.Equal(t, []string{"p-ui"}, matchIDs(decodeRanking(t, out), false))
}

func TestRank_Errors(t *testing.T) {
	_, _, err := run(t, "--data", fixtures, "rank", "freelancers", "--project", "p-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, _, err = run(t, "--data", fixtures, "rank", "projects")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "freelancer")

	_, _, err = run(t, "--data", "testdata/missing.json", "rank", "projects", "--freelancer", "f-ana")
	require.Error(t, err)
}

// ==========================
// reindex
// ==========================

func TestReindex_NeedsRetrieval(t *testing.T) {
	_, _, err := run(t, "--data", fixtures, "reindex", "freelancers")
	assert.ErrorIs(t, err, errNoRetrieval)

	_, _, err = run(t, "--data", fixtures, "reindex", "everything")
	require.Error(t, err)
}

// ==========================
// registry
// ==========================

func TestRegistryValidate(t *testing.T) {
	out, _, err := run(t, "registry", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "registry OK: 5 activities")
}

func TestRegistryValidate_ReportsProblems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	bad := `{"activities":[{"taskType":"Bad_Name","inputSchema":{"type":"object"}},{"taskType":"Bad_Name","timeout":"soon","inputSchema":{"type":"object"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, stderr, err := run(t, "registry", "validate", "--path", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "registered twice")
	assert.Contains(t, stderr, "invalid timeout")
}

func TestRegistryList(t *testing.T) {
	out, _, err := run(t, "registry", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "TASK TYPE"))
	assert.Contains(t, out, "rank-freelancers-for-project")
	assert.Contains(t, out, "notify-match-digest")
}

func TestRegistrySetStatus(t *testing.T) {
	reg, err := registry.Load()
	require.NoError(t, err)
	data, err := json.Marshal(reg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, _, err := run(t, "registry", "set-status", "--path", path, "notify-match-digest", "verified")
	require.NoError(t, err)
	assert.Equal(t, "notify-match-digest: verified\n", out)

	updated, err := registry.LoadFile(path)
	require.NoError(t, err)
	a, ok := updated.Get("notify-match-digest")
	require.True(t, ok)
	assert.Equal(t, "verified", a.ImplementationStatus)

	_, _, err = run(t, "registry", "set-status", "--path", path, "notify-match-digest", "shipped")
	assert.Error(t, err)
	_, _, err = run(t, "registry", "set-status", "notify-match-digest", "verified")
	assert.Error(t, err)
	_, _, err = run(t, "registry", "set-status", "--path", path, "unknown-task", "verified")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestRegistryScaffold(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, "registry", "scaffold", "sync-match-embedding", "--out", dir)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "wrote "))

	models, err := os.ReadFile(filepath.Join(dir, "sync-match-embedding", "models.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "package syncmatchembedding")
	assert.Regexp(t, "Kind\\s+string\\s+`json:\"kind\"`", string(models))
	assert.Regexp(t, "Action\\s+string\\s+`json:\"action,omitempty\"`", string(models))
	assert.Regexp(t, "Dimensions\\s+int\\s+`json:\"dimensions,omitempty\"`", string(models))

	handler, err := os.ReadFile(filepath.Join(dir, "sync-match-embedding", "handler.go"))
	require.NoError(t, err)
	assert.Contains(t, string(handler), `const TaskType = "sync-match-embedding"`)

	cfg, err := os.ReadFile(filepath.Join(dir, "sync-match-embedding", "config.go"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "20000 * time.Millisecond")

	_, _, err = run(t, "registry", "scaffold", "sync-match-embedding", "--out", dir)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, "registry", "scaffold", "sync-match-embedding", "--out", dir, "--force")
	assert.NoError(t, err)

	_, _, err = run(t, "registry", "scaffold", "unknown-task", "--out", dir)
	assert.Error(t, err)
}

func TestSchemaHelpers(t *testing.T) {
	assert.Equal(t, "rankfreelancersforproject", packageName("rank-freelancers-for-project"))
	assert.Equal(t, "ProjectID", exportedName("projectId"))
	assert.Equal(t, "Limit", exportedName("limit"))
	assert.Equal(t, "[]string", goType(map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}}))
	assert.Equal(t, "[]interface{}", goType(map[string]interface{}{"type": "array"}))
	assert.Equal(t, "interface{}", goType(nil))
}

func TestBPMNFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bpmn"), []byte("<x/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.BPMN"), []byte("<x/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("-"), 0o644))

	paths, err := bpmnFiles([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.bpmn"), filepath.Join(dir, "B.BPMN")}, paths)

	_, err = bpmnFiles([]string{t.TempDir()})
	assert.ErrorContains(t, err, "no .bpmn files")

	_, err = bpmnFiles([]string{filepath.Join(dir, "missing.bpmn")})
	assert.Error(t, err)
}
