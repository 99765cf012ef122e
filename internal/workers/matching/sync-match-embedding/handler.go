// internal/workers/matching/sync-match-embedding/handler.go
package syncembedding

import (
	"context"
	stderrors "errors"
	"fmt"

	"freelance-matcher/internal/common/config"
	"freelance-matcher/internal/common/errors"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/matching/indexer"
	"freelance-matcher/internal/matching/matcher"
	"freelance-matcher/internal/models"
	"freelance-matcher/internal/workers/matching/jobs"
	"freelance-matcher/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "sync-match-embedding"

type Handler struct {
	config  *Config
	store   matcher.Store
	indexer *indexer.Indexer
	runner  *jobs.Runner
	logger  logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Store        matcher.Store
	Indexer      *indexer.Indexer
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
	if opts.Store == nil || opts.Indexer == nil {
		return nil, fmt.Errorf("%s: store and indexer are required", TaskType)
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
		store:   opts.Store,
		indexer: opts.Indexer,
		runner:  runner,
		logger:  runner.Logger(),
	}, nil
}

func (h *Handler) Config() *Config { return h.config }

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	return jobs.Run(h.runner, client, job, h.Execute)
}

// Execute re-embeds a stored record, or removes its vector on delete.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	action := input.Action
	if action == "" {
		action = ActionUpsert
	}

	if action == ActionDelete {
		if err := h.indexer.Remove(ctx, input.Kind, input.ID); err != nil {
			return nil, classify("delete", err)
		}
		h.logger.Info("Embedding removed", map[string]interface{}{"kind": input.Kind, "id": input.ID})
		return &Output{Synced: true, Action: action}, nil
	}

	dims, err := h.upsert(ctx, input.Kind, input.ID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Embedding synced", map[string]interface{}{
		"kind":       input.Kind,
		"id":         input.ID,
		"dimensions": dims,
	})
	return &Output{Synced: true, Dimensions: dims, Action: action}, nil
}

func (h *Handler) upsert(ctx context.Context, kind, id string) (int, error) {
	switch kind {
	case indexer.KindFreelancer:
		f, err := h.store.GetFreelancer(ctx, id)
		if err != nil {
			return 0, loadError(err)
		}
		dims, err := h.indexer.IndexFreelancer(ctx, f)
		if err != nil {
			return 0, classify("upsert", err)
		}
		return dims, nil
	case indexer.KindProject:
		p, err := h.store.GetProject(ctx, id)
		if err != nil {
			return 0, loadError(err)
		}
		dims, err := h.indexer.IndexProject(ctx, p)
		if err != nil {
			return 0, classify("upsert", err)
		}
		return dims, nil
	default:
		return 0, errors.NewInvalidMatchInputError(fmt.Sprintf("unknown kind %q", kind))
	}
}

func loadError(err error) error {
	if stderrors.Is(err, models.ErrNotFound) {
		return errors.NewResourceNotFoundError("store", err.Error())
	}
	return errors.NewDataSourceUnavailableError(err)
}

func classify(op string, err error) error {
	switch {
	case stderrors.Is(err, indexer.ErrUnknownKind):
		return errors.NewInvalidMatchInputError(err.Error())
	case stderrors.Is(err, indexer.ErrEmbed):
		return errors.NewEmbeddingFailedError(err)
	case stderrors.Is(err, indexer.ErrIndex):
		return errors.NewVectorIndexFailedError(op, err)
	default:
		return err
	}
}
