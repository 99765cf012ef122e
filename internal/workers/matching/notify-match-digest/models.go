// internal/workers/matching/notify-match-digest/models.go
package notifydigest

import "freelance-matcher/internal/models"

const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"

	EventType = "match.digest"
)

type Input struct {
	ProjectID    string              `json:"projectId"`
	ProjectTitle string              `json:"projectTitle,omitempty"`
	OwnerEmail   string              `json:"ownerEmail,omitempty"`
	Matches      []models.MatchScore `json:"matches"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	EmailMessageID string `json:"emailMessageId,omitempty"`
	EventID        string `json:"eventId,omitempty"`
	SentAt         string `json:"sentAt"`
}

// DigestEvent is the SNS payload published for each digest.
type DigestEvent struct {
	NotificationID string       `json:"notificationId"`
	ProjectID      string       `json:"projectId"`
	MatchCount     int          `json:"matchCount"`
	TopMatches     []EventMatch `json:"topMatches"`
	SentAt         string       `json:"sentAt"`
}

type EventMatch struct {
	FreelancerID string  `json:"freelancerId"`
	OverallScore float64 `json:"overallScore"`
}
