package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompanyType distinguishes direct employers from staffing agencies.
type CompanyType string

const (
	CompanyTypeCompany   CompanyType = "company"
	CompanyTypeRecruiter CompanyType = "recruiter"
)

// Company is a company or recruiter that experiences are reported against.
type Company struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Type        CompanyType `json:"type"`
	Industry    *string     `json:"industry,omitempty"`
	Location    *string     `json:"location,omitempty"`
	Description *string     `json:"description,omitempty"`
	Website     *string     `json:"website,omitempty"`
	LogoURL     *string     `json:"logoUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// IndustryName returns the industry, or empty when unset.
func (c Company) IndustryName() string {
	if c.Industry == nil {
		return ""
	}
	return *c.Industry
}

// CompanyUpsert carries the fields used to look up or create a company by name.
type CompanyUpsert struct {
	Name     string
	Type     CompanyType
	Industry string
	Location string
}

// NormalizeCompanyName folds a company name for case-insensitive matching.
// Example: "  Acme   Corp " -> "acme corp"
func NormalizeCompanyName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// CompanyFilter holds the predicates that can be evaluated by the store.
type CompanyFilter struct {
	Query    string      // case-insensitive substring of name
	Industry string      // exact match
	Location string      // case-insensitive substring
	Type     CompanyType // exact match
}

// CompanyAggregate is a company with the raw tallies of its experiences.
type CompanyAggregate struct {
	Company Company
	Counts  ExperienceCounts
}

// CompanyWithStats is a company merged with its derived statistics.
type CompanyWithStats struct {
	Company
	CompanyStats
}

// CompanyDetail is the company page: identity, statistics and reports.
// Stats is nil when the company has no experiences.
type CompanyDetail struct {
	Company
	Stats       *CompanyStats      `json:"stats"`
	Experiences []PublicExperience `json:"experiences"`
}
