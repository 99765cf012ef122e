// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

import (
	"context"
	"fmt"

	"freelance-matcher/internal/common/config"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/matching/matcher"
	"freelance-matcher/internal/models"
	"freelance-matcher/internal/workers/matching/jobs"
	"freelance-matcher/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "calculate-match-score"

type Handler struct {
	config  *Config
	matcher *matcher.Matcher
	runner  *jobs.Runner
	logger  logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Matcher      *matcher.Matcher
	Registry     *registry.ActivityRegistry
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := opts.CustomConfig
	if workerConfig == nil {
		workerConfig = ConfigFrom(opts.AppConfig)
	}
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Matcher == nil {
		return nil, fmt.Errorf("%s: matcher is required", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}

	runner, err := jobs.NewRunner(TaskType, opts.Registry, workerConfig.Timeout, loggerInstance)
	if err != nil {
		return nil, err
	}

	return &Handler{
		config:  workerConfig,
		matcher: opts.Matcher,
		runner:  runner,
		logger:  runner.Logger(),
	}, nil
}

func (h *Handler) Config() *Config { return h.config }

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	return jobs.Run(h.runner, client, job, h.Execute)
}

// Execute resolves both records and scores the pair.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	freelancer, err := h.resolveFreelancer(ctx, input)
	if err != nil {
		return nil, err
	}
	project, err := h.resolveProject(ctx, input)
	if err != nil {
		return nil, err
	}

	score, err := h.matcher.ScorePair(ctx, freelancer, project)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Match score calculated", map[string]interface{}{
		"freelancerId": score.FreelancerID,
		"projectId":    score.ProjectID,
		"overallScore": score.OverallScore,
	})
	return &Output{MatchScore: score}, nil
}

func (h *Handler) resolveFreelancer(ctx context.Context, input *Input) (*models.FreelancerProfile, error) {
	if input.Freelancer != nil {
		return input.Freelancer, nil
	}
	return h.matcher.LoadFreelancer(ctx, input.FreelancerID)
}

func (h *Handler) resolveProject(ctx context.Context, input *Input) (*models.ProjectRequirements, error) {
	if input.Project != nil {
		return input.Project, nil
	}
	return h.matcher.LoadProject(ctx, input.ProjectID)
}
