// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"freelance-matcher/internal/common/validation"
)

//go:embed activities.json
var embeddedActivities []byte

// Load returns the registry compiled into the binary.
func Load() (*ActivityRegistry, error) {
	return parse(embeddedActivities)
}

// LoadFile reads a registry from disk, for operators testing edits.
func LoadFile(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Get returns the activity registered for taskType.
func (r *ActivityRegistry) Get(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// InputSchema compiles the input schema of taskType.
func (r *ActivityRegistry) InputSchema(taskType string) (*validation.Schema, error) {
	a, ok := r.Get(taskType)
	if !ok {
		return nil, fmt.Errorf("activity %q not registered", taskType)
	}
	return validation.Compile(a.InputSchema)
}

// Validate checks naming, uniqueness, timeouts, statuses and that every schema compiles.
// It returns one error per problem found.
func (r *ActivityRegistry) Validate() []error {
	var problems []error
	seen := make(map[string]bool)

	for _, a := range r.Activities {
		if err := validation.ValidateTaskTypeNaming(a.TaskType); err != nil {
			problems = append(problems, err)
		}
		if seen[a.TaskType] {
			problems = append(problems, fmt.Errorf("task type %q registered twice", a.TaskType))
		}
		seen[a.TaskType] = true

		if _, err := a.TimeoutDuration(); err != nil {
			problems = append(problems, fmt.Errorf("%s: invalid timeout %q", a.TaskType, a.Timeout))
		}
		if a.ImplementationStatus != "" && !ValidStatus(a.ImplementationStatus) {
			problems = append(problems, fmt.Errorf("%s: unknown status %q", a.TaskType, a.ImplementationStatus))
		}
		if _, err := validation.Compile(a.InputSchema); err != nil {
			problems = append(problems, fmt.Errorf("%s: input schema: %w", a.TaskType, err))
		}
		if a.OutputSchema != nil {
			if _, err := validation.Compile(a.OutputSchema); err != nil {
				problems = append(problems, fmt.Errorf("%s: output schema: %w", a.TaskType, err))
			}
		}
	}
	return problems
}
