package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResponseTime is the bucketed delay between application and first response.
type ResponseTime string

const (
	ResponseSameDay   ResponseTime = "same_day"
	Response1To3Days  ResponseTime = "1_3_days"
	Response1Week     ResponseTime = "1_week"
	Response2Weeks    ResponseTime = "2_weeks"
	Response1Month    ResponseTime = "1_month"
	ResponseLonger    ResponseTime = "longer"
	responseTimeUnset ResponseTime = ""
)

// ResponseTimes lists every bucket from fastest to slowest.
var ResponseTimes = []ResponseTime{
	ResponseSameDay, Response1To3Days, Response1Week, Response2Weeks, Response1Month, ResponseLonger,
}

// CommunicationQuality is the reporter's rating of recruiter communication.
type CommunicationQuality string

const (
	CommunicationExcellent CommunicationQuality = "excellent"
	CommunicationGood      CommunicationQuality = "good"
	CommunicationFair      CommunicationQuality = "fair"
	CommunicationPoor      CommunicationQuality = "poor"
)

// CommunicationQualities lists every rating from best to worst.
var CommunicationQualities = []CommunicationQuality{
	CommunicationExcellent, CommunicationGood, CommunicationFair, CommunicationPoor,
}

// InterviewOffer records whether the application led to an interview.
type InterviewOffer string

const (
	InterviewOfferYes           InterviewOffer = "yes"
	InterviewOfferNo            InterviewOffer = "no"
	InterviewOfferNotApplicable InterviewOffer = "n/a"
)

// JobOffer records the outcome after interviewing.
type JobOffer string

const (
	JobOfferYes     JobOffer = "yes"
	JobOfferNo      JobOffer = "no"
	JobOfferPending JobOffer = "pending"
)

// InterviewStage tags one kind of interview round.
type InterviewStage string

const (
	StagePhone     InterviewStage = "phone"
	StageVideo     InterviewStage = "video"
	StageTechnical InterviewStage = "technical"
	StageOnsite    InterviewStage = "onsite"
	StagePanel     InterviewStage = "panel"
	StageMultiple  InterviewStage = "multiple"
)

// InterviewStages lists every stage tag in display order.
var InterviewStages = []InterviewStage{
	StagePhone, StageVideo, StageTechnical, StageOnsite, StagePanel, StageMultiple,
}

// stageSeparator delimits stage tags in storage.
const stageSeparator = ","

// EncodeStages joins stage tags into their stored form.
func EncodeStages(stages []InterviewStage) string {
	parts := make([]string, 0, len(stages))
	for _, s := range stages {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, stageSeparator)
}

// ParseStages splits a stored stage list, skipping blanks.
func ParseStages(stored string) []InterviewStage {
	if strings.TrimSpace(stored) == "" {
		return nil
	}
	var stages []InterviewStage
	for _, part := range strings.Split(stored, stageSeparator) {
		part = strings.TrimSpace(part)
		if part != "" {
			stages = append(stages, InterviewStage(part))
		}
	}
	return stages
}

// ResponseDetails is present only on experiences where the company responded.
type ResponseDetails struct {
	Time    ResponseTime         // empty when the reporter gave no bucket
	Quality CommunicationQuality // empty when the reporter gave no rating
}

// InterviewDetails is present only on experiences where an interview was offered.
type InterviewDetails struct {
	Stages   []InterviewStage
	JobOffer JobOffer // empty when not reported
}

// Experience is one candidate-reported job application.
// Response is nil when no response was received; Interview is nil unless
// InterviewOffered is yes.
type Experience struct {
	ID                uuid.UUID
	UserID            *uuid.UUID
	CompanyID         uuid.UUID
	Position          string
	ApplicationDate   time.Time
	Response          *ResponseDetails
	InterviewOffered  InterviewOffer
	Interview         *InterviewDetails
	GhostJob          *bool
	RejectionFeedback *bool
	Comments          string
	IsAnonymous       bool
	CreatedAt         time.Time
}

// ReceivedResponse reports whether the company ever responded.
func (e Experience) ReceivedResponse() bool {
	return e.Response != nil
}

// ResponseTime returns the response bucket, or empty when absent.
func (e Experience) ResponseTime() ResponseTime {
	if e.Response == nil {
		return responseTimeUnset
	}
	return e.Response.Time
}

// CommunicationQuality returns the communication rating, or empty when absent.
func (e Experience) CommunicationQuality() CommunicationQuality {
	if e.Response == nil {
		return ""
	}
	return e.Response.Quality
}

// JobOffered returns the post-interview outcome, or empty when absent.
func (e Experience) JobOffered() JobOffer {
	if e.Interview == nil {
		return ""
	}
	return e.Interview.JobOffer
}

// experienceJSON is the flat wire form of an Experience.
type experienceJSON struct {
	ID                   uuid.UUID            `json:"id"`
	UserID               *uuid.UUID           `json:"userId,omitempty"`
	CompanyID            uuid.UUID            `json:"companyId"`
	Position             string               `json:"position,omitempty"`
	ApplicationDate      time.Time            `json:"applicationDate"`
	ReceivedResponse     bool                 `json:"receivedResponse"`
	ResponseTime         ResponseTime         `json:"responseTime,omitempty"`
	CommunicationQuality CommunicationQuality `json:"communicationQuality,omitempty"`
	InterviewOffered     InterviewOffer       `json:"interviewOffered,omitempty"`
	InterviewStages      []InterviewStage     `json:"interviewStages,omitempty"`
	JobOffered           JobOffer             `json:"jobOffered,omitempty"`
	GhostJob             *bool                `json:"ghostJob,omitempty"`
	RejectionFeedback    *bool                `json:"rejectionFeedback,omitempty"`
	Comments             string               `json:"comments,omitempty"`
	IsAnonymous          bool                 `json:"isAnonymous"`
	CreatedAt            time.Time            `json:"createdAt"`
}

func (e Experience) toJSON() experienceJSON {
	out := experienceJSON{
		ID:                   e.ID,
		UserID:               e.UserID,
		CompanyID:            e.CompanyID,
		Position:             e.Position,
		ApplicationDate:      e.ApplicationDate,
		ReceivedResponse:     e.ReceivedResponse(),
		ResponseTime:         e.ResponseTime(),
		CommunicationQuality: e.CommunicationQuality(),
		InterviewOffered:     e.InterviewOffered,
		JobOffered:           e.JobOffered(),
		GhostJob:             e.GhostJob,
		RejectionFeedback:    e.RejectionFeedback,
		Comments:             e.Comments,
		IsAnonymous:          e.IsAnonymous,
		CreatedAt:            e.CreatedAt,
	}
	if e.Interview != nil {
		out.InterviewStages = e.Interview.Stages
	}
	return out
}

// MarshalJSON flattens the response and interview variants.
func (e Experience) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.toJSON())
}

// UnmarshalJSON rebuilds the variants from the flat wire form. Response and
// interview fields that do not belong to the reported state are dropped.
func (e *Experience) UnmarshalJSON(data []byte) error {
	var in experienceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Experience{
		ID:                in.ID,
		UserID:            in.UserID,
		CompanyID:         in.CompanyID,
		Position:          in.Position,
		ApplicationDate:   in.ApplicationDate,
		InterviewOffered:  in.InterviewOffered,
		GhostJob:          in.GhostJob,
		RejectionFeedback: in.RejectionFeedback,
		Comments:          in.Comments,
		IsAnonymous:       in.IsAnonymous,
		CreatedAt:         in.CreatedAt,
	}
	if in.ReceivedResponse {
		e.Response = &ResponseDetails{Time: in.ResponseTime, Quality: in.CommunicationQuality}
	}
	if in.InterviewOffered == InterviewOfferYes {
		e.Interview = &InterviewDetails{Stages: in.InterviewStages, JobOffer: in.JobOffered}
	}
	return nil
}

// UserExperience is an experience joined with its company, as listed for its reporter.
type UserExperience struct {
	Experience
	Company Company `json:"company"`
}

// MarshalJSON adds the company object to the flat experience form.
func (u UserExperience) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		experienceJSON
		Company Company `json:"company"`
	}{u.Experience.toJSON(), u.Company})
}

// UnmarshalJSON reads the flat experience form plus its company object.
func (u *UserExperience) UnmarshalJSON(data []byte) error {
	if err := u.Experience.UnmarshalJSON(data); err != nil {
		return err
	}
	var wrapper struct {
		Company Company `json:"company"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	u.Company = wrapper.Company
	return nil
}

// ReportedExperience is an experience with the reporter's name, as stored.
type ReportedExperience struct {
	Experience
	ReporterFirstName string
	ReporterLastName  string
}

// PublicExperience is the company-facing projection of an experience.
// Reporter identity is only present for non-anonymous reports.
type PublicExperience struct {
	ID                   uuid.UUID            `json:"id"`
	Position             string               `json:"position,omitempty"`
	ApplicationDate      time.Time            `json:"applicationDate"`
	ReceivedResponse     bool                 `json:"receivedResponse"`
	ResponseTime         ResponseTime         `json:"responseTime,omitempty"`
	CommunicationQuality CommunicationQuality `json:"communicationQuality,omitempty"`
	InterviewOffered     InterviewOffer       `json:"interviewOffered,omitempty"`
	InterviewStages      []InterviewStage     `json:"interviewStages,omitempty"`
	JobOffered           JobOffer             `json:"jobOffered,omitempty"`
	GhostJob             *bool                `json:"ghostJob,omitempty"`
	RejectionFeedback    *bool                `json:"rejectionFeedback,omitempty"`
	Comments             string               `json:"comments,omitempty"`
	IsAnonymous          bool                 `json:"isAnonymous"`
	ReporterName         string               `json:"reporterName,omitempty"`
	CreatedAt            time.Time            `json:"createdAt"`
}

// Public projects a reported experience for display on a company page.
func (r ReportedExperience) Public() PublicExperience {
	flat := r.Experience.toJSON()
	p := PublicExperience{
		ID:                   flat.ID,
		Position:             flat.Position,
		ApplicationDate:      flat.ApplicationDate,
		ReceivedResponse:     flat.ReceivedResponse,
		ResponseTime:         flat.ResponseTime,
		CommunicationQuality: flat.CommunicationQuality,
		InterviewOffered:     flat.InterviewOffered,
		InterviewStages:      flat.InterviewStages,
		JobOffered:           flat.JobOffered,
		GhostJob:             flat.GhostJob,
		RejectionFeedback:    flat.RejectionFeedback,
		Comments:             flat.Comments,
		IsAnonymous:          flat.IsAnonymous,
		CreatedAt:            flat.CreatedAt,
	}
	if !r.IsAnonymous {
		p.ReporterName = DisplayName(r.ReporterFirstName, r.ReporterLastName)
	}
	return p
}

// DisplayName renders "First L." from a reporter's names.
func DisplayName(first, last string) string {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	switch {
	case first == "" && last == "":
		return ""
	case last == "":
		return first
	case first == "":
		return initial(last)
	default:
		return first + " " + initial(last)
	}
}

func initial(name string) string {
	r := []rune(name)
	return strings.ToUpper(string(r[0])) + "."
}
