// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Matching engine metrics. direction is "freelancers_for_project" or
// "projects_for_freelancer", mode is "exhaustive" or "retrieval".
var (
	RankingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_rankings_total",
			Help: "Rankings produced, by direction, mode and outcome",
		},
		[]string{"direction", "mode", "outcome"},
	)

	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_ranking_duration_seconds",
			Help:    "End-to-end ranking latency including explanations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction", "mode"},
	)

	CandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Candidates passed through the scorer",
		},
		[]string{"direction"},
	)

	RetrievalFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_retrieval_fallbacks_total",
			Help: "Retrieval-mode rankings that degraded to exhaustive scoring or were topped up from the pool",
		},
		[]string{"reason"},
	)

	ExplanationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_explanation_fallbacks_total",
			Help: "Explanations replaced by the deterministic template",
		},
	)

	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_embedding_cache_hits_total",
			Help: "Embedding lookups served from Redis",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_embedding_cache_misses_total",
			Help: "Embedding lookups that called the provider",
		},
	)

	RecordCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_record_cache_lookups_total",
			Help: "Record cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)
)
