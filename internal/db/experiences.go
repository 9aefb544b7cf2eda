package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ghosthawk/ghosthawk/internal/types"
)

// -----------------------------------------------------------------------------
// Experience Methods
// -----------------------------------------------------------------------------

const experienceColumns = `e.id, e.user_id, e.company_id, COALESCE(e.position, ''), e.application_date,
	e.received_response, e.response_time, e.communication_quality, e.interview_offered,
	e.interview_stages, e.job_offered, e.ghost_job, e.rejection_feedback,
	COALESCE(e.comments, ''), e.is_anonymous, e.created_at`

// experienceRow holds the nullable columns of an experience row.
type experienceRow struct {
	exp              types.Experience
	received         bool
	responseTime     *string
	communication    *string
	interviewOffered *string
	stages           *string
	jobOffered       *string
}

func (r *experienceRow) targets() []any {
	e := &r.exp
	return []any{&e.ID, &e.UserID, &e.CompanyID, &e.Position, &e.ApplicationDate,
		&r.received, &r.responseTime, &r.communication, &r.interviewOffered,
		&r.stages, &r.jobOffered, &e.GhostJob, &e.RejectionFeedback,
		&e.Comments, &e.IsAnonymous, &e.CreatedAt}
}

// experience rebuilds the response and interview variants from the columns.
func (r *experienceRow) experience() types.Experience {
	e := r.exp
	if r.interviewOffered != nil {
		e.InterviewOffered = types.InterviewOffer(*r.interviewOffered)
	}
	if r.received {
		e.Response = &types.ResponseDetails{
			Time:    types.ResponseTime(deref(r.responseTime)),
			Quality: types.CommunicationQuality(deref(r.communication)),
		}
	}
	if e.InterviewOffered == types.InterviewOfferYes {
		e.Interview = &types.InterviewDetails{
			Stages:   types.ParseStages(deref(r.stages)),
			JobOffer: types.JobOffer(deref(r.jobOffered)),
		}
	}
	return e
}

// experienceArgs flattens an experience into insert arguments; absent
// variant fields become NULL.
func experienceArgs(e types.Experience) []any {
	var responseTime, communication, stages, jobOffered, interviewOffered *string
	if e.Response != nil {
		responseTime = nullIfEmpty(string(e.Response.Time))
		communication = nullIfEmpty(string(e.Response.Quality))
	}
	if e.Interview != nil && e.InterviewOffered == types.InterviewOfferYes {
		stages = nullIfEmpty(types.EncodeStages(e.Interview.Stages))
		jobOffered = nullIfEmpty(string(e.Interview.JobOffer))
	}
	interviewOffered = nullIfEmpty(string(e.InterviewOffered))
	return []any{
		e.UserID, e.CompanyID, nullIfEmpty(e.Position), e.ApplicationDate,
		e.ReceivedResponse(), responseTime, communication, interviewOffered,
		stages, jobOffered, e.GhostJob, e.RejectionFeedback,
		nullIfEmpty(e.Comments), e.IsAnonymous,
	}
}

// SubmitExperience upserts the named company and records the experience
// against it in one transaction. Neither is written if either step fails.
func (db *DB) SubmitExperience(ctx context.Context, company types.CompanyUpsert, exp types.Experience) (*types.Experience, *types.Company, error) {
	var (
		saved types.Experience
		c     *types.Company
	)
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		c, err = upsertCompany(ctx, tx, company)
		if err != nil {
			return err
		}
		exp.CompanyID = c.ID

		var row experienceRow
		err = tx.QueryRow(ctx,
			`INSERT INTO experiences AS e (user_id, company_id, position, application_date,
			     received_response, response_time, communication_quality, interview_offered,
			     interview_stages, job_offered, ghost_job, rejection_feedback, comments, is_anonymous)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 RETURNING `+experienceColumns,
			experienceArgs(exp)...,
		).Scan(row.targets()...)
		if err != nil {
			return fmt.Errorf("failed to insert experience: %w", err)
		}
		saved = row.experience()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &saved, c, nil
}

// ListExperiencesByCompany returns a company's experiences, newest first,
// with the reporter's name for display.
func (db *DB) ListExperiencesByCompany(ctx context.Context, companyID uuid.UUID) ([]types.ReportedExperience, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+experienceColumns+`, COALESCE(u.first_name, ''), COALESCE(u.last_name, '')
		 FROM experiences e
		 LEFT JOIN users u ON u.id = e.user_id
		 WHERE e.company_id = $1
		 ORDER BY e.created_at DESC, e.id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company experiences: %w", err)
	}
	defer rows.Close()

	var out []types.ReportedExperience
	for rows.Next() {
		var row experienceRow
		var first, last string
		if err := rows.Scan(append(row.targets(), &first, &last)...); err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		out = append(out, types.ReportedExperience{
			Experience:        row.experience(),
			ReporterFirstName: first,
			ReporterLastName:  last,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list company experiences: %w", err)
	}
	return out, nil
}

// ListExperiencesByUser returns a user's experiences with their companies, newest first.
func (db *DB) ListExperiencesByUser(ctx context.Context, userID uuid.UUID) ([]types.UserExperience, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+experienceColumns+`, `+companyColumns+`
		 FROM experiences e
		 JOIN companies c ON c.id = e.company_id
		 WHERE e.user_id = $1
		 ORDER BY e.created_at DESC, e.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user experiences: %w", err)
	}
	defer rows.Close()

	var out []types.UserExperience
	for rows.Next() {
		var row experienceRow
		var company types.Company
		if err := rows.Scan(append(row.targets(), companyScanTargets(&company)...)...); err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		out = append(out, types.UserExperience{Experience: row.experience(), Company: company})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list user experiences: %w", err)
	}
	return out, nil
}

// ListMonthlyActivity groups experiences by application month from since
// onwards. Months without activity are omitted.
func (db *DB) ListMonthlyActivity(ctx context.Context, since time.Time) ([]types.MonthlyActivity, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT to_char(date_trunc('month', e.application_date AT TIME ZONE 'UTC'), 'YYYY-MM') AS month,
		        COUNT(DISTINCT e.company_id),
		        COUNT(*),
		        COUNT(*) FILTER (WHERE e.received_response)
		 FROM experiences e
		 WHERE e.application_date >= $1
		 GROUP BY month
		 ORDER BY month`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly activity: %w", err)
	}
	defer rows.Close()

	var out []types.MonthlyActivity
	for rows.Next() {
		var m types.MonthlyActivity
		var companies, experiences, responded int64
		if err := rows.Scan(&m.Month, &companies, &experiences, &responded); err != nil {
			return nil, fmt.Errorf("failed to scan monthly activity: %w", err)
		}
		m.Companies = int(companies)
		m.Experiences = int(experiences)
		m.Responded = int(responded)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list monthly activity: %w", err)
	}
	return out, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
