// internal/models/freelancer.go
package models

import (
	"fmt"
	"strings"
)

const (
	AvailabilityFullTime = "full-time"
	AvailabilityPartTime = "part-time"
	AvailabilityContract = "contract"
)

type FreelancerProfile struct {
	ID                string   `json:"id"`
	Name              string   `json:"name,omitempty"`
	Title             string   `json:"title,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	Skills            []string `json:"skills"`
	Experience        float64  `json:"experience"`
	HourlyRate        float64  `json:"hourlyRate"`
	Rating            float64  `json:"rating"`
	CompletedProjects int      `json:"completedProjects"`
	Availability      string   `json:"availability"`
	Location          string   `json:"location"`
	Languages         []string `json:"languages"`
}

// Validate enforces the data-model invariants of a profile snapshot.
func (f *FreelancerProfile) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: freelancer is nil", ErrInvalidRecord)
	}

	switch {
	case strings.TrimSpace(f.ID) == "":
		return fmt.Errorf("%w: freelancer id is required", ErrInvalidRecord)
	case f.Experience < 0:
		return fmt.Errorf("%w: freelancer %s has negative experience", ErrInvalidRecord, f.ID)
	case f.HourlyRate < 0:
		return fmt.Errorf("%w: freelancer %s has negative hourly rate", ErrInvalidRecord, f.ID)
	case f.Rating < 0 || f.Rating > 5:
		return fmt.Errorf("%w: freelancer %s rating %.2f outside 0-5", ErrInvalidRecord, f.ID, f.Rating)
	case f.CompletedProjects < 0:
		return fmt.Errorf("%w: freelancer %s has negative completed projects", ErrInvalidRecord, f.ID)
	}
	return nil
}

// FreelancerFilter narrows a bulk fetch of freelancer profiles. Zero values mean "any".
type FreelancerFilter struct {
	Availability  string   `json:"availability,omitempty"`
	Skills        []string `json:"skills,omitempty"`
	MaxHourlyRate float64  `json:"maxHourlyRate,omitempty"`
	MinRating     float64  `json:"minRating,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// Matches applies the filter to one profile. Limit is ignored.
func (ff FreelancerFilter) Matches(f *FreelancerProfile) bool {
	switch {
	case f == nil:
		return false
	case ff.Availability != "" && f.Availability != ff.Availability:
		return false
	case len(ff.Skills) > 0 && !SharesSkill(f.Skills, ff.Skills):
		return false
	case ff.MaxHourlyRate > 0 && f.HourlyRate > ff.MaxHourlyRate:
		return false
	case ff.MinRating > 0 && f.Rating < ff.MinRating:
		return false
	}
	return true
}

// SharesSkill reports whether have and want name a common skill, compared
// case-insensitively as whole names. It is stricter than the scorer's
// substring containment: "Go" does not share a skill with "Django".
func SharesSkill(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}
