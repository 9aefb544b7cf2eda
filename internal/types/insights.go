package types

import "github.com/google/uuid"

// IndustryStat averages the figures of the qualifying companies in one industry.
type IndustryStat struct {
	ResponseRate        float64  `json:"responseRate"`
	AvgResponseTimeDays *float64 `json:"avgResponseTimeDays"`
	GhostRisk           float64  `json:"ghostRisk"`
	CompanyCount        int      `json:"companyCount"`
}

// TopCompany is one entry of the most-reported list.
type TopCompany struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	GhostScore  int       `json:"ghostScore"`
	ReportCount int       `json:"reportCount"`
}

// Insights is the industry roll-up shown on the home page.
type Insights struct {
	IndustryStats map[string]IndustryStat `json:"industryStats"`
	TopCompanies  []TopCompany            `json:"topCompanies"`
	RecentTrends  []string                `json:"recentTrends"`
}

// PlatformStats are whole-platform totals.
// AvgResponseRate is pooled across all experiences, not averaged per company.
type PlatformStats struct {
	TotalCompanies   int `json:"totalCompanies"`
	TotalExperiences int `json:"totalExperiences"`
	AvgResponseRate  int `json:"avgResponseRate"`
}

// CompanyTypeStat summarises one company type.
type CompanyTypeStat struct {
	Count           int     `json:"count"`
	AvgResponseRate float64 `json:"avgResponseRate"`
}

// MonthlyActivity is the raw experience activity for one calendar month.
type MonthlyActivity struct {
	Month       string // YYYY-MM
	Companies   int
	Experiences int
	Responded   int
}

// MonthlyTrend is one month of the activity chart.
type MonthlyTrend struct {
	Month        string `json:"month"`
	Companies    int    `json:"companies"`
	Experiences  int    `json:"experiences"`
	ResponseRate int    `json:"responseRate"`
}

// InterviewStats summarise the interview funnel.
type InterviewStats struct {
	InterviewOfferRate       int                `json:"interviewOfferRate"`
	InterviewToJobRate       int                `json:"interviewToJobRate"`
	InterviewStagesBreakdown map[string]int     `json:"interviewStagesBreakdown"`
	IndustryInterviewRates   map[string]float64 `json:"industryInterviewRates"`
}

// DetailedStats backs the statistics page.
type DetailedStats struct {
	Insights
	CommunicationBreakdown map[string]int             `json:"communicationBreakdown"`
	ResponseTimeBreakdown  map[string]int             `json:"responseTimeBreakdown"`
	CompanyTypeStats       map[string]CompanyTypeStat `json:"companyTypeStats"`
	MonthlyTrends          []MonthlyTrend             `json:"monthlyTrends"`
	InterviewStats         InterviewStats             `json:"interviewStats"`
}
