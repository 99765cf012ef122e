// internal/models/project.go
package models

import (
	"fmt"
	"strings"
)

const (
	ComplexityBeginner     = "beginner"
	ComplexityIntermediate = "intermediate"
	ComplexityExpert       = "expert"
)

type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ProjectRequirements struct {
	ID             string   `json:"id"`
	OwnerID        string   `json:"ownerId,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"requiredSkills"`
	Budget         Budget   `json:"budget"`
	Duration       string   `json:"duration"`
	Complexity     string   `json:"complexity"`
	Category       string   `json:"category"`
	Location       string   `json:"location,omitempty"`
	Remote         bool     `json:"remote"`
}

// Validate rejects records the scorer must never see, most notably budgets with min > max.
func (p *ProjectRequirements) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: project is nil", ErrInvalidRecord)
	}

	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("%w: project id is required", ErrInvalidRecord)
	case p.Budget.Min < 0 || p.Budget.Max < 0:
		return fmt.Errorf("%w: project %s has a negative budget", ErrInvalidRecord, p.ID)
	case p.Budget.Min > p.Budget.Max:
		return fmt.Errorf("%w: project %s budget min %.2f exceeds max %.2f", ErrInvalidRecord, p.ID, p.Budget.Min, p.Budget.Max)
	}
	return nil
}

type ProjectFilter struct {
	Category   string   `json:"category,omitempty"`
	Complexity string   `json:"complexity,omitempty"`
	RemoteOnly bool     `json:"remoteOnly,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// Matches applies the filter to one project. Limit is ignored.
func (pf ProjectFilter) Matches(p *ProjectRequirements) bool {
	switch {
	case p == nil:
		return false
	case pf.Category != "" && p.Category != pf.Category:
		return false
	case pf.Complexity != "" && p.Complexity != pf.Complexity:
		return false
	case pf.RemoteOnly && !p.Remote:
		return false
	case len(pf.Skills) > 0 && !SharesSkill(p.RequiredSkills, pf.Skills):
		return false
	}
	return true
}
