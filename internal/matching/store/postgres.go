// internal/matching/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/models"

	"github.com/lib/pq"
)

const freelancerColumns = `id, COALESCE(name, ''), COALESCE(title, ''), COALESCE(bio, ''), skills,
	experience_years, hourly_rate, rating, completed_projects,
	COALESCE(availability, ''), COALESCE(location, ''), languages`

const projectColumns = `id, COALESCE(owner_id, ''), title, COALESCE(description, ''), required_skills,
	budget_min, budget_max, COALESCE(duration, ''), COALESCE(complexity, ''),
	COALESCE(category, ''), COALESCE(location, ''), remote`

// Postgres reads freelancer profiles and project requirements. It never writes.
type Postgres struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgres(db *sql.DB, log logger.Logger) *Postgres {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Postgres{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store.postgres"}),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFreelancer(row rowScanner) (*models.FreelancerProfile, error) {
	var f models.FreelancerProfile
	var skills, languages pq.StringArray
	err := row.Scan(
		&f.ID, &f.Name, &f.Title, &f.Bio, &skills,
		&f.Experience, &f.HourlyRate, &f.Rating, &f.CompletedProjects,
		&f.Availability, &f.Location, &languages,
	)
	if err != nil {
		return nil, err
	}
	f.Skills = []string(skills)
	f.Languages = []string(languages)
	return &f, nil
}

func scanProject(row rowScanner) (*models.ProjectRequirements, error) {
	var p models.ProjectRequirements
	var skills pq.StringArray
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &skills,
		&p.Budget.Min, &p.Budget.Max, &p.Duration, &p.Complexity,
		&p.Category, &p.Location, &p.Remote,
	)
	if err != nil {
		return nil, err
	}
	p.RequiredSkills = []string(skills)
	return &p, nil
}

func (s *Postgres) GetFreelancer(ctx context.Context, id string) (*models.FreelancerProfile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+freelancerColumns+` FROM freelancers WHERE id = $1`, id)
	f, err := scanFreelancer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: freelancer %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get freelancer %s: %w", id, err)
	}
	return f, nil
}

func (s *Postgres) GetProject(ctx context.Context, id string) (*models.ProjectRequirements, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: project %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// ListFreelancers returns profiles matching filter ordered by id. Limit <= 0 means no limit.
func (s *Postgres) ListFreelancers(ctx context.Context, filter models.FreelancerFilter) ([]*models.FreelancerProfile, error) {
	q := newQuery(`SELECT ` + freelancerColumns + ` FROM freelancers`)
	if filter.Availability != "" {
		q.where("availability = %s", filter.Availability)
	}
	if len(filter.Skills) > 0 {
		q.where(skillsOverlap("skills"), pq.Array(normalizeSkills(filter.Skills)))
	}
	if filter.MaxHourlyRate > 0 {
		q.where("hourly_rate <= %s", filter.MaxHourlyRate)
	}
	if filter.MinRating > 0 {
		q.where("rating >= %s", filter.MinRating)
	}
	sqlText, args := q.build("id", filter.Limit)

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("list freelancers: %w", err)
	}
	defer rows.Close()

	var out []*models.FreelancerProfile
	for rows.Next() {
		f, err := scanFreelancer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan freelancer: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list freelancers: %w", err)
	}

	s.logger.Debug("listed freelancers", map[string]interface{}{"count": len(out)})
	return out, nil
}

// ListProjects returns projects matching filter ordered by id. Limit <= 0 means no limit.
func (s *Postgres) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]*models.ProjectRequirements, error) {
	q := newQuery(`SELECT ` + projectColumns + ` FROM projects`)
	if filter.Category != "" {
		q.where("category = %s", filter.Category)
	}
	if filter.Complexity != "" {
		q.where("complexity = %s", filter.Complexity)
	}
	if filter.RemoteOnly {
		q.where("remote = %s", true)
	}
	if len(filter.Skills) > 0 {
		q.where(skillsOverlap("required_skills"), pq.Array(normalizeSkills(filter.Skills)))
	}
	sqlText, args := q.build("id", filter.Limit)

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []*models.ProjectRequirements
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	s.logger.Debug("listed projects", map[string]interface{}{"count": len(out)})
	return out, nil
}

// FreelancersByIDs returns the profiles that still exist. Missing ids are skipped.
func (s *Postgres) FreelancersByIDs(ctx context.Context, ids []string) ([]*models.FreelancerProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+freelancerColumns+` FROM freelancers WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("freelancers by ids: %w", err)
	}
	defer rows.Close()

	var out []*models.FreelancerProfile
	for rows.Next() {
		f, err := scanFreelancer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan freelancer: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ProjectsByIDs returns the projects that still exist. Missing ids are skipped.
func (s *Postgres) ProjectsByIDs(ctx context.Context, ids []string) ([]*models.ProjectRequirements, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("projects by ids: %w", err)
	}
	defer rows.Close()

	var out []*models.ProjectRequirements
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// skillsOverlap matches when any element of column equals any requested skill,
// ignoring case and surrounding space, the same rule as models.SharesSkill.
func skillsOverlap(column string) string {
	return "EXISTS (SELECT 1 FROM unnest(" + column + ") AS s WHERE lower(trim(s)) = ANY(%s))"
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// query assembles a SELECT with numbered placeholders.
type query struct {
	base    string
	clauses []string
	args    []interface{}
}

func newQuery(base string) *query {
	return &query{base: base}
}

// where adds a condition; %s in cond is replaced by the next placeholder.
func (q *query) where(cond string, arg interface{}) {
	q.args = append(q.args, arg)
	q.clauses = append(q.clauses, fmt.Sprintf(cond, fmt.Sprintf("$%d", len(q.args))))
}

func (q *query) build(orderBy string, limit int) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(q.base)
	if len(q.clauses) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.clauses, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy)
	if limit > 0 {
		q.args = append(q.args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(q.args))
	}
	return b.String(), q.args
}
