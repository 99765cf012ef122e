// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "freelance-matcher/internal/models"

// Input names each side either by id or inline. An inline record wins over its id.
type Input struct {
	FreelancerID string                      `json:"freelancerId,omitempty"`
	ProjectID    string                      `json:"projectId,omitempty"`
	Freelancer   *models.FreelancerProfile   `json:"freelancer,omitempty"`
	Project      *models.ProjectRequirements `json:"project,omitempty"`
}

type Output struct {
	MatchScore models.MatchScore `json:"matchScore"`
}
