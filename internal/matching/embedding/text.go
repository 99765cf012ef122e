// internal/matching/embedding/text.go
package embedding

import (
	"strings"

	"freelance-matcher/internal/models"
)

// ProfileText is the text embedded for a freelancer. Project descriptions and
// freelancer bios share one vector space, so both texts lead with skills.
func ProfileText(f *models.FreelancerProfile) string {
	var b strings.Builder
	writeLine(&b, "Skills", strings.Join(f.Skills, ", "))
	writeLine(&b, "Title", f.Title)
	writeLine(&b, "Bio", f.Bio)
	writeLine(&b, "Availability", f.Availability)
	writeLine(&b, "Location", f.Location)
	writeLine(&b, "Languages", strings.Join(f.Languages, ", "))
	return strings.TrimSpace(b.String())
}

// ProjectText is the text embedded for a project.
func ProjectText(p *models.ProjectRequirements) string {
	var b strings.Builder
	writeLine(&b, "Skills", strings.Join(p.RequiredSkills, ", "))
	writeLine(&b, "Title", p.Title)
	writeLine(&b, "Description", p.Description)
	writeLine(&b, "Category", p.Category)
	writeLine(&b, "Complexity", p.Complexity)
	if p.Remote {
		writeLine(&b, "Location", "remote")
	} else {
		writeLine(&b, "Location", p.Location)
	}
	return strings.TrimSpace(b.String())
}

func writeLine(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}
