// internal/workers/matching/rank-freelancers-for-project/models.go
package rankfreelancers

import "freelance-matcher/internal/models"

// Input targets a stored project by id or an inline project. Limit is
// optional; zero asks for an empty ranking.
type Input struct {
	ProjectID string                      `json:"projectId,omitempty"`
	Project   *models.ProjectRequirements `json:"project,omitempty"`
	Limit     *int                        `json:"limit,omitempty"`
	Filter    models.FreelancerFilter     `json:"filter"`
}

type Output struct {
	Ranking *models.Ranking `json:"ranking"`
}
