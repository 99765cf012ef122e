// internal/models/match.go
package models

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid record")
)

const (
	DirectionFreelancersForProject = "freelancers_for_project"
	DirectionProjectsForFreelancer = "projects_for_freelancer"

	ModeExhaustive = "exhaustive"
	ModeRetrieval  = "retrieval"
)

// MatchScore is derived per scoring call and never persisted by the engine.
type MatchScore struct {
	FreelancerID      string  `json:"freelancerId"`
	ProjectID         string  `json:"projectId"`
	OverallScore      float64 `json:"overallScore"`
	SkillsMatch       float64 `json:"skillsMatch"`
	ExperienceMatch   float64 `json:"experienceMatch"`
	BudgetMatch       float64 `json:"budgetMatch"`
	AvailabilityMatch float64 `json:"availabilityMatch"`
	LocationMatch     float64 `json:"locationMatch"`
	RatingScore       float64 `json:"ratingScore"`
	Explanation       string  `json:"explanation"`
}

// VectorHit is one nearest-neighbour result from a vector index, best first.
type VectorHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type Ranking struct {
	RankingID string       `json:"rankingId"`
	Direction string       `json:"direction"`
	Mode      string       `json:"mode"`
	TargetID  string       `json:"targetId"`
	Matches   []MatchScore `json:"matches"`
}
