// internal/matching/matcher/matcher.go
package matcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freelance-matcher/internal/common/config"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/common/metrics"
	"freelance-matcher/internal/matching/embedding"
	"freelance-matcher/internal/matching/scorer"
	"freelance-matcher/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrDataSourceUnavailable is the only error a store failure surfaces as.
	ErrDataSourceUnavailable = errors.New("ranking unavailable: data source error")
	ErrRankingCancelled      = errors.New("ranking cancelled")
	ErrInvalidInput          = errors.New("invalid match input")
)

// Config tunes a Matcher. Zero fields take the documented defaults.
type Config struct {
	Concurrency        int
	RetrievalThreshold int
	OverFetchFactor    int
	MinOverFetch       int
	RetrievalTimeout   time.Duration
	ExplainConcurrency int
	PoolSize           int
}

// ConfigFrom converts the matching section of the application config.
func ConfigFrom(cfg config.MatchingConfig) Config {
	return Config{
		Concurrency:        cfg.Concurrency,
		RetrievalThreshold: cfg.RetrievalThreshold,
		OverFetchFactor:    cfg.OverFetchFactor,
		MinOverFetch:       cfg.MinOverFetch,
		RetrievalTimeout:   config.GetDuration(cfg.RetrievalTimeout),
		ExplainConcurrency: cfg.ExplainConcurrency,
		PoolSize:           cfg.PoolSize,
	}
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	if c.RetrievalThreshold <= 0 {
		c.RetrievalThreshold = 200
	}
	if c.OverFetchFactor <= 0 {
		c.OverFetchFactor = 5
	}
	if c.MinOverFetch <= 0 {
		c.MinOverFetch = 50
	}
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = 2 * time.Second
	}
	if c.ExplainConcurrency <= 0 {
		c.ExplainConcurrency = 4
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 1000
	}
	return c
}

// Options carries the collaborators. Only Scorer is required for the
// pool-based calls; Store is required for the *ID calls and retrieval mode.
type Options struct {
	Scorer          *scorer.Scorer
	Store           Store
	Embedder        Embedder
	FreelancerIndex VectorIndex
	ProjectIndex    VectorIndex
	Recorder        Recorder
	Logger          logger.Logger
}

// Matcher ranks candidates for a target. It is safe for concurrent use and
// never writes to its collaborators.
type Matcher struct {
	cfg             Config
	scorer          *scorer.Scorer
	store           Store
	embedder        Embedder
	freelancerIndex VectorIndex
	projectIndex    VectorIndex
	recorder        Recorder
	logger          logger.Logger
	tracer          trace.Tracer
}

func New(cfg Config, opts Options) *Matcher {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	sc := opts.Scorer
	if sc == nil {
		sc = scorer.New(nil)
	}
	return &Matcher{
		cfg:             cfg.withDefaults(),
		scorer:          sc,
		store:           opts.Store,
		embedder:        opts.Embedder,
		freelancerIndex: opts.FreelancerIndex,
		projectIndex:    opts.ProjectIndex,
		recorder:        opts.Recorder,
		logger:          log.WithFields(map[string]interface{}{"component": "matcher"}),
		tracer:          otel.Tracer("freelance-matcher/matcher"),
	}
}

// RankFreelancersForProject returns the top limit freelancers from pool for project.
func (m *Matcher) RankFreelancersForProject(ctx context.Context, project *models.ProjectRequirements, pool []*models.FreelancerProfile, limit int) ([]models.MatchScore, error) {
	matches, _, err := m.rankFreelancers(ctx, project, pool, limit, nil)
	return matches, err
}

// RankProjectsForFreelancer returns the top limit projects from pool for freelancer.
func (m *Matcher) RankProjectsForFreelancer(ctx context.Context, freelancer *models.FreelancerProfile, pool []*models.ProjectRequirements, limit int) ([]models.MatchScore, error) {
	matches, _, err := m.rankProjects(ctx, freelancer, pool, limit, nil)
	return matches, err
}

// RankFreelancersForProjectID loads the project and a filtered pool from the store.
func (m *Matcher) RankFreelancersForProjectID(ctx context.Context, projectID string, filter models.FreelancerFilter, limit int) (*models.Ranking, error) {
	project, err := m.LoadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return m.RankFreelancersFromStore(ctx, project, filter, limit)
}

// RankFreelancersFromStore ranks a caller-supplied project against a pool
// fetched from the store by filter. Without an explicit filter limit the
// pool holds at most PoolSize records; when the store has more, retrieval
// searches the whole filtered set instead of that prefix.
func (m *Matcher) RankFreelancersFromStore(ctx context.Context, project *models.ProjectRequirements, filter models.FreelancerFilter, limit int) (*models.Ranking, error) {
	if m.store == nil {
		return nil, ErrDataSourceUnavailable
	}
	if err := validateTarget(project); err != nil {
		return nil, err
	}
	capped := filter.Limit <= 0
	if capped {
		filter.Limit = m.cfg.PoolSize + 1
	}
	pool, err := m.store.ListFreelancers(ctx, filter)
	if err != nil {
		return nil, m.storeError(ctx, "list freelancers", err)
	}

	var eligible func(*models.FreelancerProfile) bool
	if capped && len(pool) > m.cfg.PoolSize {
		pool = pool[:m.cfg.PoolSize]
		eligible = filter.Matches
	}

	matches, mode, err := m.rankFreelancers(ctx, project, pool, limit, eligible)
	if err != nil {
		return nil, err
	}
	return newRanking(models.DirectionFreelancersForProject, mode, project.ID, matches), nil
}

// RankProjectsForFreelancerID loads the freelancer and a filtered pool from the store.
func (m *Matcher) RankProjectsForFreelancerID(ctx context.Context, freelancerID string, filter models.ProjectFilter, limit int) (*models.Ranking, error) {
	freelancer, err := m.LoadFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, err
	}
	return m.RankProjectsFromStore(ctx, freelancer, filter, limit)
}

// RankProjectsFromStore ranks a caller-supplied freelancer against a pool
// fetched from the store by filter, capped like RankFreelancersFromStore.
func (m *Matcher) RankProjectsFromStore(ctx context.Context, freelancer *models.FreelancerProfile, filter models.ProjectFilter, limit int) (*models.Ranking, error) {
	if m.store == nil {
		return nil, ErrDataSourceUnavailable
	}
	if err := validateTarget(freelancer); err != nil {
		return nil, err
	}
	capped := filter.Limit <= 0
	if capped {
		filter.Limit = m.cfg.PoolSize + 1
	}
	pool, err := m.store.ListProjects(ctx, filter)
	if err != nil {
		return nil, m.storeError(ctx, "list projects", err)
	}

	var eligible func(*models.ProjectRequirements) bool
	if capped && len(pool) > m.cfg.PoolSize {
		pool = pool[:m.cfg.PoolSize]
		eligible = filter.Matches
	}

	matches, mode, err := m.rankProjects(ctx, freelancer, pool, limit, eligible)
	if err != nil {
		return nil, err
	}
	return newRanking(models.DirectionProjectsForFreelancer, mode, freelancer.ID, matches), nil
}

// LoadFreelancer fetches one profile with the same error contract as the ranking calls.
func (m *Matcher) LoadFreelancer(ctx context.Context, id string) (*models.FreelancerProfile, error) {
	if m.store == nil {
		return nil, ErrDataSourceUnavailable
	}
	f, err := m.store.GetFreelancer(ctx, id)
	if err != nil {
		return nil, m.storeError(ctx, "get freelancer", err)
	}
	return f, nil
}

// LoadProject fetches one project with the same error contract as the ranking calls.
func (m *Matcher) LoadProject(ctx context.Context, id string) (*models.ProjectRequirements, error) {
	if m.store == nil {
		return nil, ErrDataSourceUnavailable
	}
	p, err := m.store.GetProject(ctx, id)
	if err != nil {
		return nil, m.storeError(ctx, "get project", err)
	}
	return p, nil
}

// ScorePair validates both records and scores them with an explanation.
func (m *Matcher) ScorePair(ctx context.Context, freelancer *models.FreelancerProfile, project *models.ProjectRequirements) (models.MatchScore, error) {
	if err := validateTarget(freelancer); err != nil {
		return models.MatchScore{}, err
	}
	if err := validateTarget(project); err != nil {
		return models.MatchScore{}, err
	}
	return m.scorer.Score(ctx, freelancer, project), nil
}

func (m *Matcher) rankFreelancers(ctx context.Context, project *models.ProjectRequirements, pool []*models.FreelancerProfile, limit int, eligible func(*models.FreelancerProfile) bool) ([]models.MatchScore, string, error) {
	if err := validateTarget(project); err != nil {
		return nil, "", err
	}
	explainer := m.scorer.Explainer()
	return rank(ctx, m, rankSpec[*models.FreelancerProfile]{
		direction: models.DirectionFreelancersForProject,
		targetID:  project.ID,
		index:     m.freelancerIndex,
		queryText: func() string { return embedding.ProjectText(project) },
		lookup:    m.freelancersByIDs,
		id:        func(f *models.FreelancerProfile) string { return f.ID },
		valid:     func(f *models.FreelancerProfile) error { return f.Validate() },
		score: func(f *models.FreelancerProfile) models.MatchScore {
			return scorer.Compute(f, project)
		},
		explain: func(ctx context.Context, f *models.FreelancerProfile, s models.MatchScore) string {
			return explainer.Explain(ctx, f, project, s)
		},
		eligible: eligible,
	}, pool, limit)
}

func (m *Matcher) rankProjects(ctx context.Context, freelancer *models.FreelancerProfile, pool []*models.ProjectRequirements, limit int, eligible func(*models.ProjectRequirements) bool) ([]models.MatchScore, string, error) {
	if err := validateTarget(freelancer); err != nil {
		return nil, "", err
	}
	explainer := m.scorer.Explainer()
	return rank(ctx, m, rankSpec[*models.ProjectRequirements]{
		direction: models.DirectionProjectsForFreelancer,
		targetID:  freelancer.ID,
		index:     m.projectIndex,
		queryText: func() string { return embedding.ProfileText(freelancer) },
		lookup:    m.projectsByIDs,
		id:        func(p *models.ProjectRequirements) string { return p.ID },
		valid:     func(p *models.ProjectRequirements) error { return p.Validate() },
		score: func(p *models.ProjectRequirements) models.MatchScore {
			return scorer.Compute(freelancer, p)
		},
		explain: func(ctx context.Context, p *models.ProjectRequirements, s models.MatchScore) string {
			return explainer.Explain(ctx, freelancer, p, s)
		},
		eligible: eligible,
	}, pool, limit)
}

func (m *Matcher) freelancersByIDs(ctx context.Context, ids []string) ([]*models.FreelancerProfile, error) {
	return m.store.FreelancersByIDs(ctx, ids)
}

func (m *Matcher) projectsByIDs(ctx context.Context, ids []string) ([]*models.ProjectRequirements, error) {
	return m.store.ProjectsByIDs(ctx, ids)
}

type validatable interface {
	Validate() error
}

func validateTarget(v validatable) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// storeError hides the cause behind ErrDataSourceUnavailable, except for a
// missing target and caller cancellation.
func (m *Matcher) storeError(ctx context.Context, op string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrRankingCancelled, ctxErr)
	}
	m.logger.Error("data source failure", map[string]interface{}{
		"operation": op,
		"error":     err,
	})
	return ErrDataSourceUnavailable
}

func newRanking(direction, mode, targetID string, matches []models.MatchScore) *models.Ranking {
	if matches == nil {
		matches = []models.MatchScore{}
	}
	return &models.Ranking{
		RankingID: uuid.NewString(),
		Direction: direction,
		Mode:      mode,
		TargetID:  targetID,
		Matches:   matches,
	}
}

func (m *Matcher) startSpan(ctx context.Context, name, direction string, poolSize, limit int) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("matching.direction", direction),
		attribute.Int("matching.pool_size", poolSize),
		attribute.Int("matching.limit", limit),
	))
}

func endSpan(span trace.Span, mode string, err error) {
	span.SetAttributes(attribute.String("matching.mode", mode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (m *Matcher) observe(ctx context.Context, direction, mode string, start time.Time, err error) {
	outcome := "success"
	switch {
	case errors.Is(err, ErrRankingCancelled):
		outcome = "cancelled"
	case err != nil:
		outcome = "error"
	}
	elapsed := time.Since(start)
	metrics.RankingsTotal.WithLabelValues(direction, mode, outcome).Inc()
	metrics.RankingDuration.WithLabelValues(direction, mode).Observe(elapsed.Seconds())
	if m.recorder != nil {
		m.recorder.RecordRanking(ctx, direction, mode, elapsed)
	}
}
