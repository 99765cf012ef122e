// internal/matching/scorer/prompt.go
package scorer

import (
	"bytes"
	"strings"
	"text/template"

	"freelance-matcher/internal/models"
)

var promptTemplate = template.Must(template.New("explain").Funcs(template.FuncMap{
	"join": strings.Join,
	"pct":  func(v float64) int { return int(v*100 + 0.5) },
}).Parse(`You are an assistant for a freelance marketplace. In two sentences, explain to the project owner why this freelancer is or is not a good fit. Mention the strongest and weakest factors. Do not invent facts.

Freelancer:
- Title: {{.F.Title}}
- Skills: {{join .F.Skills ", "}}
- Experience: {{.F.Experience}} years
- Hourly rate: {{.F.HourlyRate}}
- Rating: {{.F.Rating}}/5 over {{.F.CompletedProjects}} completed projects
- Availability: {{.F.Availability}}
- Location: {{if .F.Location}}{{.F.Location}}{{else}}unspecified{{end}}

Project:
- Title: {{.P.Title}}
- Required skills: {{join .P.RequiredSkills ", "}}
- Complexity: {{.P.Complexity}}
- Budget: {{.P.Budget.Min}}-{{.P.Budget.Max}} per hour
- Duration: {{.P.Duration}}
- Location: {{if .P.Remote}}remote{{else if .P.Location}}{{.P.Location}}{{else}}unspecified{{end}}

Scores (0-100):
- Overall: {{pct .S.OverallScore}}
- Skills: {{pct .S.SkillsMatch}}
- Experience: {{pct .S.ExperienceMatch}}
- Budget: {{pct .S.BudgetMatch}}
- Rating: {{pct .S.RatingScore}}
- Location: {{pct .S.LocationMatch}}
- Availability: {{pct .S.AvailabilityMatch}}
`))

// BuildPrompt renders the explanation prompt for one scored pair.
func BuildPrompt(f *models.FreelancerProfile, p *models.ProjectRequirements, s models.MatchScore) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, struct {
		F *models.FreelancerProfile
		P *models.ProjectRequirements
		S models.MatchScore
	}{f, p, s})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
