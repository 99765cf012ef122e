// internal/matching/store/memory.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"freelance-matcher/internal/models"
)

// Fixtures is the on-disk shape read by LoadFixtures.
type Fixtures struct {
	Freelancers []*models.FreelancerProfile   `json:"freelancers"`
	Projects    []*models.ProjectRequirements `json:"projects"`
}

// Memory is a Store over in-process maps with the same filter semantics as
// Postgres. Results are ordered by id.
type Memory struct {
	mu          sync.RWMutex
	freelancers map[string]*models.FreelancerProfile
	projects    map[string]*models.ProjectRequirements
}

func NewMemory(fx Fixtures) *Memory {
	m := &Memory{
		freelancers: make(map[string]*models.FreelancerProfile, len(fx.Freelancers)),
		projects:    make(map[string]*models.ProjectRequirements, len(fx.Projects)),
	}
	for _, f := range fx.Freelancers {
		m.PutFreelancer(f)
	}
	for _, p := range fx.Projects {
		m.PutProject(p)
	}
	return m
}

// LoadFixtures reads a JSON fixture file into a Memory store.
func LoadFixtures(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return NewMemory(fx), nil
}

func (m *Memory) PutFreelancer(f *models.FreelancerProfile) {
	if f == nil {
		return
	}
	m.mu.Lock()
	m.freelancers[f.ID] = f
	m.mu.Unlock()
}

func (m *Memory) PutProject(p *models.ProjectRequirements) {
	if p == nil {
		return
	}
	m.mu.Lock()
	m.projects[p.ID] = p
	m.mu.Unlock()
}

func (m *Memory) GetFreelancer(_ context.Context, id string) (*models.FreelancerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.freelancers[id]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: freelancer %s", models.ErrNotFound, id)
}

func (m *Memory) GetProject(_ context.Context, id string) (*models.ProjectRequirements, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: project %s", models.ErrNotFound, id)
}

func (m *Memory) ListFreelancers(ctx context.Context, filter models.FreelancerFilter) ([]*models.FreelancerProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.FreelancerProfile
	for _, id := range sortedKeys(m.freelancers) {
		f := m.freelancers[id]
		if !filter.Matches(f) {
			continue
		}
		out = append(out, f)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]*models.ProjectRequirements, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.ProjectRequirements
	for _, id := range sortedKeys(m.projects) {
		p := m.projects[id]
		if !filter.Matches(p) {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// FreelancersByIDs skips unknown ids.
func (m *Memory) FreelancersByIDs(_ context.Context, ids []string) ([]*models.FreelancerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.FreelancerProfile
	for _, id := range ids {
		if f, ok := m.freelancers[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *Memory) ProjectsByIDs(_ context.Context, ids []string) ([]*models.ProjectRequirements, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.ProjectRequirements
	for _, id := range ids {
		if p, ok := m.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
