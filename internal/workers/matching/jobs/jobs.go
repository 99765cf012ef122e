// internal/workers/matching/jobs/jobs.go
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"freelance-matcher/internal/common/errors"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/common/validation"
	"freelance-matcher/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Runner carries the per-task plumbing shared by the matching workers:
// input schema, job timeout and the BPMN error handler.
type Runner struct {
	taskType string
	schema   *validation.Schema
	errors   *errors.ErrorHandler
	logger   logger.Logger
	timeout  time.Duration
}

// NewRunner compiles the registry input schema of taskType. A nil registry
// means the one embedded in the binary.
func NewRunner(taskType string, reg *registry.ActivityRegistry, timeout time.Duration, log logger.Logger) (*Runner, error) {
	if reg == nil {
		var err error
		if reg, err = registry.Load(); err != nil {
			return nil, err
		}
	}
	schema, err := reg.InputSchema(taskType)
	if err != nil {
		return nil, fmt.Errorf("input schema for %s: %w", taskType, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"worker": taskType})

	return &Runner{
		taskType: taskType,
		schema:   schema,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
		timeout:  timeout,
	}, nil
}

func (r *Runner) TaskType() string { return r.taskType }

func (r *Runner) Logger() logger.Logger { return r.logger }

// Decode validates raw job variables against the input schema and unmarshals them into dst.
func (r *Runner) Decode(raw string, dst interface{}) error {
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	result, err := r.schema.ValidateJSON(raw)
	if err != nil {
		return errors.NewInvalidMatchInputError(err.Error())
	}
	if !result.Valid {
		return errors.NewInvalidMatchInputError(result.Error())
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return errors.NewInvalidMatchInputError(fmt.Sprintf("decode variables: %v", err))
	}
	return nil
}

// Run decodes the job into In, executes exec under the job timeout, and
// completes the job with Out or fails it with a classified error.
func Run[In, Out any](r *Runner, client worker.JobClient, job entities.Job, exec func(context.Context, *In) (*Out, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.logger.Info("Processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	var in In
	if err := r.Decode(job.GetVariables(), &in); err != nil {
		return r.fail(ctx, client, job, err)
	}

	out, err := exec(ctx, &in)
	if err != nil {
		return r.fail(ctx, client, job, err)
	}
	return r.complete(ctx, client, job, out)
}

func (r *Runner) complete(ctx context.Context, client worker.JobClient, job entities.Job, out interface{}) error {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(out)
	if err != nil {
		return r.fail(ctx, client, job, fmt.Errorf("encode output: %w", err))
	}
	if _, err := request.Send(ctx); err != nil {
		r.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
		return errors.NewExternalServiceError("zeebe", err)
	}

	r.logger.Info("Job completed", map[string]interface{}{"jobKey": job.GetKey()})
	return nil
}

func (r *Runner) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) error {
	return r.errors.HandleJobError(ctx, client, job, errors.FromMatchingError(err))
}

// ResolveLimit applies the configured default when the job omits a limit and caps it at max.
func ResolveLimit(requested *int, def, max int) int {
	limit := def
	if requested != nil {
		limit = *requested
	}
	if limit <= 0 {
		return 0
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}
