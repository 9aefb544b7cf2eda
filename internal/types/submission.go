package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExperienceSubmission is the body of a new experience report. The company is
// named rather than referenced; it is created on first report.
type ExperienceSubmission struct {
	CompanyName          string               `json:"companyName" validate:"required,max=255"`
	CompanyType          CompanyType          `json:"companyType" validate:"required,oneof=company recruiter"`
	CompanyIndustry      string               `json:"companyIndustry,omitempty" validate:"max=100"`
	CompanyLocation      string               `json:"companyLocation,omitempty" validate:"max=255"`
	Position             string               `json:"position,omitempty" validate:"max=255"`
	ApplicationDate      string               `json:"applicationDate" validate:"required"`
	ReceivedResponse     *bool                `json:"receivedResponse" validate:"required"`
	ResponseTime         ResponseTime         `json:"responseTime,omitempty" validate:"omitempty,oneof=same_day 1_3_days 1_week 2_weeks 1_month longer"`
	CommunicationQuality CommunicationQuality `json:"communicationQuality,omitempty" validate:"omitempty,oneof=excellent good fair poor"`
	InterviewOffered     InterviewOffer       `json:"interviewOffered,omitempty" validate:"omitempty,oneof=yes no n/a"`
	InterviewStages      []InterviewStage     `json:"interviewStages,omitempty" validate:"omitempty,unique,dive,oneof=phone video technical onsite panel multiple"`
	JobOffered           JobOffer             `json:"jobOffered,omitempty" validate:"omitempty,oneof=yes no pending"`
	GhostJob             *bool                `json:"ghostJob,omitempty"`
	RejectionFeedback    *bool                `json:"rejectionFeedback,omitempty"`
	Comments             string               `json:"comments,omitempty" validate:"max=5000"`
	IsAnonymous          *bool                `json:"isAnonymous,omitempty"`
}

// applicationDateLayouts are tried in order.
var applicationDateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseApplicationDate accepts a calendar date or an RFC 3339 timestamp.
func ParseApplicationDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range applicationDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid application date %q", s)
}

// Validate returns every violation in the submission. now bounds the
// application date; a report cannot describe a future application.
func (s *ExperienceSubmission) Validate(now time.Time) []FieldViolation {
	violations := violationsFrom(validate.Struct(s))
	if strings.TrimSpace(s.CompanyName) == "" && s.CompanyName != "" {
		violations = append(violations, FieldViolation{Field: "companyName", Message: "is required"})
	}

	if s.ApplicationDate != "" {
		date, err := ParseApplicationDate(s.ApplicationDate)
		switch {
		case err != nil:
			violations = append(violations, FieldViolation{Field: "applicationDate", Message: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
		case date.After(now.Add(24 * time.Hour)):
			violations = append(violations, FieldViolation{Field: "applicationDate", Message: "must not be in the future"})
		}
	}

	if s.ReceivedResponse != nil && !*s.ReceivedResponse {
		if s.ResponseTime != "" {
			violations = append(violations, FieldViolation{Field: "responseTime", Message: "only allowed when receivedResponse is true"})
		}
		if s.CommunicationQuality != "" {
			violations = append(violations, FieldViolation{Field: "communicationQuality", Message: "only allowed when receivedResponse is true"})
		}
	}

	if s.InterviewOffered != InterviewOfferYes {
		if len(s.InterviewStages) > 0 {
			violations = append(violations, FieldViolation{Field: "interviewStages", Message: "only allowed when interviewOffered is yes"})
		}
		if s.JobOffered != "" {
			violations = append(violations, FieldViolation{Field: "jobOffered", Message: "only allowed when interviewOffered is yes"})
		}
	}

	return violations
}

// Company returns the upsert key for the submitted company.
func (s *ExperienceSubmission) Company() CompanyUpsert {
	return CompanyUpsert{
		Name:     strings.TrimSpace(s.CompanyName),
		Type:     s.CompanyType,
		Industry: strings.TrimSpace(s.CompanyIndustry),
		Location: strings.TrimSpace(s.CompanyLocation),
	}
}

// Experience builds the experience for a validated submission. The reporter
// is always recorded; anonymity only affects display.
func (s *ExperienceSubmission) Experience(userID uuid.UUID) (Experience, error) {
	date, err := ParseApplicationDate(s.ApplicationDate)
	if err != nil {
		return Experience{}, err
	}
	exp := Experience{
		UserID:            &userID,
		Position:          strings.TrimSpace(s.Position),
		ApplicationDate:   date,
		InterviewOffered:  s.InterviewOffered,
		GhostJob:          s.GhostJob,
		RejectionFeedback: s.RejectionFeedback,
		Comments:          strings.TrimSpace(s.Comments),
		IsAnonymous:       true,
	}
	if s.IsAnonymous != nil {
		exp.IsAnonymous = *s.IsAnonymous
	}
	if s.ReceivedResponse != nil && *s.ReceivedResponse {
		exp.Response = &ResponseDetails{Time: s.ResponseTime, Quality: s.CommunicationQuality}
	}
	if s.InterviewOffered == InterviewOfferYes {
		exp.Interview = &InterviewDetails{Stages: s.InterviewStages, JobOffer: s.JobOffered}
	}
	return exp, nil
}
