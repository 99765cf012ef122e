// internal/matching/scorer/scorer.go
package scorer

import (
	"context"
	"math"
	"strings"

	"freelance-matcher/internal/models"
)

// Fixed weights of the overall score. They sum to 1.
const (
	WeightSkills       = 0.35
	WeightExperience   = 0.25
	WeightBudget       = 0.15
	WeightRating       = 0.10
	WeightLocation     = 0.10
	WeightAvailability = 0.05
)

// Floors applied on the penalising branches.
const (
	experienceFloor      = 0.3
	budgetUnderFloor     = 0.5
	budgetOverFloor      = 0.3
	locationUnsetScore   = 0.8
	locationMissScore    = 0.3
	availabilityNonFull  = 0.8
	maxRating            = 5.0
	defaultYearsRequired = 1.0
)

var yearsRequired = map[string]float64{
	models.ComplexityBeginner:     1,
	models.ComplexityIntermediate: 3,
	models.ComplexityExpert:       5,
}

// Compute returns the numeric part of a MatchScore. It performs no I/O and
// assumes both records passed Validate; Explanation is left empty.
func Compute(f *models.FreelancerProfile, p *models.ProjectRequirements) models.MatchScore {
	s := models.MatchScore{
		FreelancerID:      f.ID,
		ProjectID:         p.ID,
		SkillsMatch:       SkillsMatch(f.Skills, p.RequiredSkills),
		ExperienceMatch:   ExperienceMatch(f.Experience, p.Complexity),
		BudgetMatch:       BudgetMatch(f.HourlyRate, p.Budget),
		LocationMatch:     LocationMatch(f.Location, p.Location, p.Remote),
		RatingScore:       RatingScore(f.Rating),
		AvailabilityMatch: AvailabilityMatch(f.Availability),
	}
	s.OverallScore = Overall(s)
	return s
}

// Overall is the weighted sum of the six sub-scores of s.
func Overall(s models.MatchScore) float64 {
	return s.SkillsMatch*WeightSkills +
		s.ExperienceMatch*WeightExperience +
		s.BudgetMatch*WeightBudget +
		s.RatingScore*WeightRating +
		s.LocationMatch*WeightLocation +
		s.AvailabilityMatch*WeightAvailability
}

// SkillsMatch counts required skills that contain, or are contained in, any
// freelancer skill (case-insensitive). No requirements is a perfect match.
//
// Containment is loose: "Go" matches "Django", and an empty freelancer skill
// matches every requirement.
func SkillsMatch(skills, required []string) float64 {
	if len(required) == 0 {
		return 1
	}

	have := lowerAll(skills)
	matched := 0
	for _, req := range required {
		r := strings.ToLower(req)
		for _, h := range have {
			if containsEither(r, h) {
				matched++
				break
			}
		}
	}

	return math.Min(float64(matched)/float64(len(required)), 1)
}

func ExperienceMatch(years float64, complexity string) float64 {
	threshold, ok := yearsRequired[complexity]
	if !ok {
		threshold = defaultYearsRequired
	}
	if years >= threshold {
		return 1
	}
	return math.Max(years/threshold, experienceFloor)
}

// BudgetMatch penalises rates above the budget harder than rates below it.
func BudgetMatch(rate float64, b models.Budget) float64 {
	switch {
	case rate >= b.Min && rate <= b.Max:
		return 1
	case rate < b.Min:
		return math.Max(rate/b.Min, budgetUnderFloor)
	default:
		return math.Max(b.Max/rate, budgetOverFloor)
	}
}

func LocationMatch(freelancerLoc, projectLoc string, remote bool) float64 {
	if remote {
		return 1
	}
	if projectLoc == "" {
		return locationUnsetScore
	}
	if containsEither(strings.ToLower(freelancerLoc), strings.ToLower(projectLoc)) {
		return 1
	}
	return locationMissScore
}

func RatingScore(rating float64) float64 {
	return clamp01(rating / maxRating)
}

func AvailabilityMatch(availability string) float64 {
	if availability == models.AvailabilityFullTime {
		return 1
	}
	return availabilityNonFull
}

// Scorer produces complete MatchScores: numbers from Compute, text from the Explainer.
type Scorer struct {
	explainer *Explainer
}

func New(explainer *Explainer) *Scorer {
	return &Scorer{explainer: explainer}
}

// Score never fails; a nil or failing explainer yields the fallback sentence.
func (s *Scorer) Score(ctx context.Context, f *models.FreelancerProfile, p *models.ProjectRequirements) models.MatchScore {
	score := Compute(f, p)
	score.Explanation = s.explainer.Explain(ctx, f, p, score)
	return score
}

// Explainer returns the scorer's explainer, possibly nil.
func (s *Scorer) Explainer() *Explainer {
	return s.explainer
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.ToLower(v)
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
