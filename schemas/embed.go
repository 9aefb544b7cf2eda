// Package schemas embeds the JSON Schema documents describing the REST API payloads.
package schemas

import "embed"

// FS holds every *.schema.json in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	ExperienceSubmission = "experience_submission.schema.json"
	Experience           = "experience.schema.json"
	UserExperiences      = "user_experiences.schema.json"
	CompanySearch        = "company_search.schema.json"
	CompanyDetail        = "company_detail.schema.json"
	Insights             = "insights.schema.json"
	PlatformStats        = "platform_stats.schema.json"
	DetailedStats        = "detailed_stats.schema.json"
)
