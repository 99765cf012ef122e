// internal/workers/matching/rank-projects-for-freelancer/models.go
package rankprojects

import "freelance-matcher/internal/models"

type Input struct {
	FreelancerID string                    `json:"freelancerId,omitempty"`
	Freelancer   *models.FreelancerProfile `json:"freelancer,omitempty"`
	Limit        *int                      `json:"limit,omitempty"`
	Filter       models.ProjectFilter      `json:"filter"`
}

type Output struct {
	Ranking *models.Ranking `json:"ranking"`
}
