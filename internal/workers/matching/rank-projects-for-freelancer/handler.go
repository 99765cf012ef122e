// internal/workers/matching/rank-projects-for-freelancer/handler.go
package rankprojects

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

const TaskType = "rank-projects-for-freelancer"

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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	limit := jobs.ResolveLimit(input.Limit, h.config.DefaultLimit, h.config.MaxLimit)

	var (
		ranking *models.Ranking
		err     error
	)
	if input.Freelancer != nil {
		ranking, err = h.matcher.RankProjectsFromStore(ctx, input.Freelancer, input.Filter, limit)
	} else {
		ranking, err = h.matcher.RankProjectsForFreelancerID(ctx, input.FreelancerID, input.Filter, limit)
	}
	if err != nil {
		return nil, err
	}

	h.logger.Info("Projects ranked", map[string]interface{}{
		"freelancerId": ranking.TargetID,
		"rankingId":    ranking.RankingID,
		"mode":         ranking.Mode,
		"matches":      len(ranking.Matches),
	})
	return &Output{Ranking: ranking}, nil
}
