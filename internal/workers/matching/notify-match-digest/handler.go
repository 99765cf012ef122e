// internal/workers/matching/notify-match-digest/handler.go
package notifydigest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"freelance-matcher/internal/common/config"
	"freelance-matcher/internal/common/errors"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/workers/matching/jobs"
	"freelance-matcher/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "notify-match-digest"

// Mailer is satisfied by aws.Mailer.
type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) (string, error)
}

// Publisher is satisfied by aws.Publisher.
type Publisher interface {
	Publish(ctx context.Context, eventType, subject, message string) (string, error)
}

type Handler struct {
	config    *Config
	mailer    Mailer
	publisher Publisher
	runner    *jobs.Runner
	logger    logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Mailer       Mailer
	Publisher    Publisher
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
	if workerConfig.EmailEnabled && opts.Mailer == nil {
		return nil, fmt.Errorf("%s: email enabled without a mailer", TaskType)
	}
	if workerConfig.SNSEnabled && opts.Publisher == nil {
		return nil, fmt.Errorf("%s: sns enabled without a publisher", TaskType)
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
		config:    workerConfig,
		mailer:    opts.Mailer,
		publisher: opts.Publisher,
		runner:    runner,
		logger:    runner.Logger(),
	}, nil
}

func (h *Handler) Config() *Config { return h.config }

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	return jobs.Run(h.runner, client, job, h.Execute)
}

// Execute emails the digest to the owner and publishes the digest event.
// Disabled channels, and email without an owner address, are skipped.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	d, err := renderDigest(input, h.config.MaxItems)
	if err != nil {
		return nil, err
	}

	out := &Output{
		NotificationID: uuid.NewString(),
		Status:         StatusSkipped,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	if h.config.EmailEnabled && input.OwnerEmail != "" {
		messageID, err := h.mailer.Send(ctx, input.OwnerEmail, d.Subject, d.Text, d.HTML)
		if err != nil {
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
		out.EmailMessageID = messageID
		out.Status = StatusSent
	}

	if h.config.SNSEnabled {
		payload, err := json.Marshal(newDigestEvent(out, input, h.config.MaxItems))
		if err != nil {
			return nil, errors.NewNotificationSendFailedError("sns", err)
		}
		eventID, err := h.publisher.Publish(ctx, EventType, d.Subject, string(payload))
		if err != nil {
			return nil, errors.NewNotificationSendFailedError("sns", err)
		}
		out.EventID = eventID
		out.Status = StatusSent
	}

	h.logger.Info("Match digest processed", map[string]interface{}{
		"projectId":      input.ProjectID,
		"notificationId": out.NotificationID,
		"status":         out.Status,
		"matches":        len(input.Matches),
	})
	return out, nil
}

func newDigestEvent(out *Output, input *Input, maxItems int) DigestEvent {
	top := topMatches(input.Matches, maxItems)
	event := DigestEvent{
		NotificationID: out.NotificationID,
		ProjectID:      input.ProjectID,
		MatchCount:     len(input.Matches),
		TopMatches:     make([]EventMatch, 0, len(top)),
		SentAt:         out.SentAt,
	}
	for _, m := range top {
		event.TopMatches = append(event.TopMatches, EventMatch{FreelancerID: m.FreelancerID, OverallScore: m.OverallScore})
	}
	return event
}
