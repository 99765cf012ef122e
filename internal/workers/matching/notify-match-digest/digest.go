// internal/workers/matching/notify-match-digest/digest.go
package notifydigest

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"math"
	"text/template"

	"freelance-matcher/internal/models"
)

var funcs = map[string]interface{}{
	"pct": func(v float64) int { return int(math.Round(v * 100)) },
	"inc": func(i int) int { return i + 1 },
}

var textDigest = template.Must(template.New("digest.txt").Funcs(funcs).Parse(
	`Top matches for {{.Title}}
{{range $i, $m := .Matches}}
{{inc $i}}. {{$m.FreelancerID}} - {{pct $m.OverallScore}}% match
   {{$m.Explanation}}
{{else}}
No freelancers matched this project yet.
{{end}}`))

var htmlDigest = htmltemplate.Must(htmltemplate.New("digest.html").Funcs(funcs).Parse(
	`<h2>Top matches for {{.Title}}</h2>
{{if .Matches}}<ol>
{{range .Matches}}  <li><strong>{{.FreelancerID}}</strong> ({{pct .OverallScore}}% match)<br>{{.Explanation}}</li>
{{end}}</ol>{{else}}<p>No freelancers matched this project yet.</p>{{end}}
`))

type digest struct {
	Subject string
	Text    string
	HTML    string
}

type digestData struct {
	Title   string
	Matches []models.MatchScore
}

// renderDigest lists at most maxItems matches in the order given.
func renderDigest(input *Input, maxItems int) (digest, error) {
	title := input.ProjectTitle
	if title == "" {
		title = "project " + input.ProjectID
	}
	data := digestData{Title: title, Matches: topMatches(input.Matches, maxItems)}

	var text, html bytes.Buffer
	if err := textDigest.Execute(&text, data); err != nil {
		return digest{}, fmt.Errorf("render text digest: %w", err)
	}
	if err := htmlDigest.Execute(&html, data); err != nil {
		return digest{}, fmt.Errorf("render html digest: %w", err)
	}

	return digest{
		Subject: fmt.Sprintf("%d new matches for %s", len(data.Matches), title),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func topMatches(matches []models.MatchScore, n int) []models.MatchScore {
	if n > 0 && len(matches) > n {
		return matches[:n]
	}
	return matches
}
