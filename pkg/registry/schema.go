// pkg/registry/schema.go
package registry

import (
	"sort"
	"time"
)

// Implementation statuses, in the order an activity moves through them.
const (
	StatusPlanned     = "planned"
	StatusInProgress  = "in-progress"
	StatusImplemented = "implemented"
	StatusCompleted   = "completed"
	StatusVerified    = "verified"
)

var statuses = []string{StatusPlanned, StatusInProgress, StatusImplemented, StatusCompleted, StatusVerified}

// Statuses returns the known implementation statuses in lifecycle order.
func Statuses() []string {
	return append([]string(nil), statuses...)
}

func ValidStatus(s string) bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ActivityRegistry lists the matching task types a worker-manager can serve.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity is the contract of one Zeebe task type: the job variables it
// accepts, what it completes the job with and the BPMN errors it may throw.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Tags                 []string               `json:"tags"`
}

// TimeoutDuration parses Timeout. An empty value is zero.
func (a *Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(a.Timeout)
}

// RequiredInputs lists the job variables the input schema requires.
func (a *Activity) RequiredInputs() []string {
	return RequiredProperties(a.InputSchema)
}

// RequiredProperties returns the sorted "required" names of a JSON schema object.
func RequiredProperties(schema map[string]interface{}) []string {
	req, _ := schema["required"].([]interface{})
	out := make([]string, 0, len(req))
	for _, r := range req {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
