package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ghosthawk/ghosthawk/internal/types"
)

// -----------------------------------------------------------------------------
// Company Methods
// -----------------------------------------------------------------------------

const companyColumns = `c.id, c.name, c.type, c.industry, c.location, c.description,
	c.website, c.logo_url, c.created_at, c.updated_at`

func companyScanTargets(c *types.Company) []any {
	return []any{&c.ID, &c.Name, &c.Type, &c.Industry, &c.Location, &c.Description,
		&c.Website, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt}
}

// upsertCompany finds a company by normalized name or creates it, in one
// statement. An existing company keeps its stored attributes; only
// updated_at is bumped.
func upsertCompany(ctx context.Context, q querier, in types.CompanyUpsert) (*types.Company, error) {
	normalized := types.NormalizeCompanyName(in.Name)
	if normalized == "" {
		return nil, fmt.Errorf("company name cannot be empty")
	}

	var c types.Company
	err := q.QueryRow(ctx,
		`INSERT INTO companies AS c (name, name_normalized, type, industry, location)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		 ON CONFLICT (name_normalized) DO UPDATE SET
		     updated_at = NOW(),
		     industry = COALESCE(c.industry, EXCLUDED.industry),
		     location = COALESCE(c.location, EXCLUDED.location)
		 RETURNING `+companyColumns,
		strings.TrimSpace(in.Name), normalized, in.Type, in.Industry, in.Location,
	).Scan(companyScanTargets(&c)...)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert company: %w", err)
	}
	return &c, nil
}

// UpsertCompany finds or creates a company by name.
func (db *DB) UpsertCompany(ctx context.Context, in types.CompanyUpsert) (*types.Company, error) {
	return upsertCompany(ctx, db.pool, in)
}

// GetCompanyByID retrieves a company by ID. Returns nil, nil when not found.
func (db *DB) GetCompanyByID(ctx context.Context, id uuid.UUID) (*types.Company, error) {
	var c types.Company
	err := db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies c WHERE c.id = $1`, id,
	).Scan(companyScanTargets(&c)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// ListCompanyAggregates returns every company matching the filter with the
// raw tallies of its experiences. Companies without experiences are included
// with zero counts; callers decide whether they qualify.
func (db *DB) ListCompanyAggregates(ctx context.Context, filter types.CompanyFilter) ([]types.CompanyAggregate, error) {
	query, args := buildAggregateQuery(filter)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list company aggregates: %w", err)
	}
	defer rows.Close()

	var out []types.CompanyAggregate
	for rows.Next() {
		var agg types.CompanyAggregate
		agg.Counts = types.NewExperienceCounts()
		scan := newCountScanner(&agg.Counts)
		targets := append(companyScanTargets(&agg.Company), scan.targets()...)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan company aggregate: %w", err)
		}
		scan.apply()
		out = append(out, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list company aggregates: %w", err)
	}
	return out, nil
}

// buildAggregateQuery returns the aggregate SQL and its positional args.
func buildAggregateQuery(filter types.CompanyFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + companyColumns + `,
		` + countColumns() + `
		FROM companies c
		LEFT JOIN experiences e ON e.company_id = c.id
		WHERE 1=1`)

	args := []any{}
	argNum := 1

	if q := strings.TrimSpace(filter.Query); q != "" {
		fmt.Fprintf(&b, ` AND c.name ILIKE $%d ESCAPE '\'`, argNum)
		args = append(args, "%"+escapeLike(q)+"%")
		argNum++
	}
	if industry := strings.TrimSpace(filter.Industry); industry != "" {
		fmt.Fprintf(&b, " AND c.industry = $%d", argNum)
		args = append(args, industry)
		argNum++
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		fmt.Fprintf(&b, ` AND c.location ILIKE $%d ESCAPE '\'`, argNum)
		args = append(args, "%"+escapeLike(loc)+"%")
		argNum++
	}
	if filter.Type != "" {
		fmt.Fprintf(&b, " AND c.type = $%d", argNum)
		args = append(args, string(filter.Type))
	}

	b.WriteString(" GROUP BY c.id ORDER BY c.name, c.id")
	return b.String(), args
}

// escapeLike escapes the LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// countColumns renders the tally columns. The enum values are package
// constants, never user input.
func countColumns() string {
	cols := []string{
		"COUNT(e.id)",
		"COUNT(e.id) FILTER (WHERE e.received_response)",
		"COUNT(e.id) FILTER (WHERE e.ghost_job = FALSE)",
		"COUNT(e.id) FILTER (WHERE e.ghost_job = TRUE)",
		"COUNT(e.id) FILTER (WHERE e.interview_offered = 'yes')",
		"COUNT(e.id) FILTER (WHERE e.interview_offered = 'yes' AND e.job_offered = 'yes')",
		"COUNT(e.id) FILTER (WHERE e.rejection_feedback = TRUE)",
	}
	for _, rt := range types.ResponseTimes {
		cols = append(cols, fmt.Sprintf("COUNT(e.id) FILTER (WHERE e.received_response AND e.response_time = '%s')", rt))
	}
	for _, q := range types.CommunicationQualities {
		cols = append(cols, fmt.Sprintf("COUNT(e.id) FILTER (WHERE e.received_response AND e.communication_quality = '%s')", q))
	}
	for _, s := range types.InterviewStages {
		cols = append(cols, fmt.Sprintf(
			"COUNT(e.id) FILTER (WHERE e.interview_offered = 'yes' AND '%s' = ANY(string_to_array(e.interview_stages, ',')))", s))
	}
	return strings.Join(cols, ",\n\t\t")
}

// countScanner reads the columns produced by countColumns into ExperienceCounts.
type countScanner struct {
	counts        *types.ExperienceCounts
	fixed         [7]int64
	responseTimes []int64
	communication []int64
	stages        []int64
}

func newCountScanner(c *types.ExperienceCounts) *countScanner {
	return &countScanner{
		counts:        c,
		responseTimes: make([]int64, len(types.ResponseTimes)),
		communication: make([]int64, len(types.CommunicationQualities)),
		stages:        make([]int64, len(types.InterviewStages)),
	}
}

func (s *countScanner) targets() []any {
	out := make([]any, 0, len(s.fixed)+len(s.responseTimes)+len(s.communication)+len(s.stages))
	for i := range s.fixed {
		out = append(out, &s.fixed[i])
	}
	for i := range s.responseTimes {
		out = append(out, &s.responseTimes[i])
	}
	for i := range s.communication {
		out = append(out, &s.communication[i])
	}
	for i := range s.stages {
		out = append(out, &s.stages[i])
	}
	return out
}

func (s *countScanner) apply() {
	c := s.counts
	c.Total = int(s.fixed[0])
	c.Responded = int(s.fixed[1])
	c.Legitimate = int(s.fixed[2])
	c.GhostReported = int(s.fixed[3])
	c.InterviewsOffered = int(s.fixed[4])
	c.JobsOffered = int(s.fixed[5])
	c.RejectionFeedback = int(s.fixed[6])
	for i, rt := range types.ResponseTimes {
		if n := s.responseTimes[i]; n > 0 {
			c.ResponseTimes[rt] = int(n)
		}
	}
	for i, q := range types.CommunicationQualities {
		if n := s.communication[i]; n > 0 {
			c.Communication[q] = int(n)
		}
	}
	for i, st := range types.InterviewStages {
		if n := s.stages[i]; n > 0 {
			c.Stages[st] = int(n)
		}
	}
}
