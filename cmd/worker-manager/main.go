// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"freelance-matcher/internal/common/aws"
	"freelance-matcher/internal/common/camunda"
	"freelance-matcher/internal/common/config"
	"freelance-matcher/internal/common/database"
	commonhttp "freelance-matcher/internal/common/http"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/common/observability"
	"freelance-matcher/internal/matching/stack"
	"freelance-matcher/pkg/registry"

	cms "freelance-matcher/internal/workers/matching/calculate-match-score"
	nmd "freelance-matcher/internal/workers/matching/notify-match-digest"
	rfp "freelance-matcher/internal/workers/matching/rank-freelancers-for-project"
	rpf "freelance-matcher/internal/workers/matching/rank-projects-for-freelancer"
	sme "freelance-matcher/internal/workers/matching/sync-match-embedding"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Postgres, Redis and (optionally) Elasticsearch ---
	var clients *database.Clients
	err = retryWithBackoff(func() error {
		var err error
		clients, err = database.Connect(ctx, cfg)
		return err
	}, 15, 2*time.Second, zapLog, "data store connection")
	if err != nil {
		zapLog.Fatal("data stores failed after retries", zap.Error(err))
	}
	defer clients.Close()
	if err := clients.Postgres.CheckSchema(ctx); err != nil {
		zapLog.Fatal("matching schema check failed", zap.Error(err))
	}
	zapLog.Info("Data stores connected successfully")

	deps := stack.Deps{
		DB:         clients.Postgres.GetDB(),
		Redis:      clients.Redis.GetClient(),
		HTTPClient: commonhttp.NewClient(30*time.Second, cfg.App.Name+"/"+cfg.App.Version).Standard(),
		Recorder:   obs,
		Logger:     log,
	}
	if clients.ES != nil {
		deps.ES = clients.ES.Client
	}
	engine, err := stack.Build(ctx, cfg, deps)
	if err != nil {
		zapLog.Fatal("matching stack failed", zap.Error(err))
	}

	reg, err := registry.Load()
	if err != nil {
		zapLog.Fatal("activity registry failed", zap.Error(err))
	}

	handlers, err := buildHandlers(ctx, cfg, engine, reg, log)
	if err != nil {
		zapLog.Fatal("worker setup failed", zap.Error(err))
	}

	// --- Register workers ---
	var workers []*camunda.CamundaWorker
	for _, h := range handlers {
		wcfg := config.GetWorkerConfig(cfg, h.taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", h.taskType))
			continue
		}
		w := camunda.NewWorker(zeebe.GetClient(), h.taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, observed(obs, h.taskType, h.handler), zapLog)
		w.Start()
		workers = append(workers, w)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           healthMux(zeebe, clients),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

type registeredHandler struct {
	taskType string
	handler  camunda.JobHandler
}

func buildHandlers(ctx context.Context, cfg *config.Config, engine *stack.Stack, reg *registry.ActivityRegistry, log logger.Logger) ([]registeredHandler, error) {
	score, err := cms.NewHandler(cms.HandlerOptions{AppConfig: cfg, Matcher: engine.Matcher, Registry: reg, Logger: log})
	if err != nil {
		return nil, err
	}
	rankFreelancers, err := rfp.NewHandler(rfp.HandlerOptions{AppConfig: cfg, Matcher: engine.Matcher, Registry: reg, Logger: log})
	if err != nil {
		return nil, err
	}
	rankProjects, err := rpf.NewHandler(rpf.HandlerOptions{AppConfig: cfg, Matcher: engine.Matcher, Registry: reg, Logger: log})
	if err != nil {
		return nil, err
	}
	syncEmbedding, err := sme.NewHandler(sme.HandlerOptions{AppConfig: cfg, Store: engine.Store, Indexer: engine.Indexer, Registry: reg, Logger: log})
	if err != nil {
		return nil, err
	}

	notifyOpts := nmd.HandlerOptions{AppConfig: cfg, Registry: reg, Logger: log}
	if n := cfg.Notifications; config.IsWorkerEnabled(cfg, nmd.TaskType) && (n.Email.Enabled || n.SNS.Enabled) {
		awsCfg, err := aws.LoadConfig(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		if n.Email.Enabled {
			notifyOpts.Mailer = aws.NewMailer(awsCfg, n.Email.FromEmail)
		}
		if n.SNS.Enabled {
			notifyOpts.Publisher = aws.NewPublisher(awsCfg, n.SNS.TopicARN)
		}
	}
	notify, err := nmd.NewHandler(notifyOpts)
	if err != nil {
		return nil, err
	}

	return []registeredHandler{
		{cms.TaskType, score},
		{rfp.TaskType, rankFreelancers},
		{rpf.TaskType, rankProjects},
		{sme.TaskType, syncEmbedding},
		{nmd.TaskType, notify},
	}, nil
}

// observed traces each job and reports it to the OTel meter alongside the
// Prometheus counters kept by camunda.Instrument.
func observed(obs *observability.Observability, taskType string, h camunda.JobHandler) camunda.JobHandler {
	return camunda.JobHandlerFunc(func(client worker.JobClient, job entities.Job) error {
		ctx, span := obs.StartSpan(context.Background(), taskType,
			attribute.Int64("job.key", job.GetKey()),
			attribute.String("process.id", job.GetBpmnProcessId()),
		)
		defer span.End()

		start := time.Now()
		err := h.Handle(client, job)

		status := "completed"
		if err != nil {
			status = "failed"
			span.RecordError(err)
		}
		obs.RecordJobProcessed(ctx, status)
		obs.RecordJobDuration(ctx, time.Since(start), status)
		return err
	})
}

func healthMux(zeebe *camunda.Client, clients *database.Clients) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{"zeebe": "ok", "datastores": "ok"}
		code := http.StatusOK
		if err := zeebe.HealthCheck(ctx); err != nil {
			checks["zeebe"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := clients.HealthCheck(ctx); err != nil {
			checks["datastores"] = err.Error()
			code = http.StatusServiceUnavailable
		}

		status := "ready"
		if code != http.StatusOK {
			status = "not_ready"
		}
		writeStatus(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
