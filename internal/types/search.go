package types

// SortBy orders search results.
type SortBy string

const (
	SortByRating       SortBy = "rating"        // ghost-risk score ascending
	SortByResponseRate SortBy = "response_rate" // response rate descending
	SortByRecent       SortBy = "recent"        // updatedAt descending
)

// ResponseRateBucket groups companies by reported response rate.
type ResponseRateBucket string

const (
	ResponseRateHigh   ResponseRateBucket = "high"   // >= 70
	ResponseRateMedium ResponseRateBucket = "medium" // 30 <= rate < 70
	ResponseRateLow    ResponseRateBucket = "low"    // < 30
)

// Search paging defaults.
const (
	DefaultSearchPage  = 1
	DefaultSearchLimit = 12
	MaxSearchLimit     = 50
)

// SearchParams is a company search request.
type SearchParams struct {
	Query        string             `json:"query,omitempty" validate:"max=255"`
	Industry     string             `json:"industry,omitempty" validate:"max=100"`
	Location     string             `json:"location,omitempty" validate:"max=255"`
	Type         CompanyType        `json:"type,omitempty" validate:"omitempty,oneof=company recruiter"`
	ResponseRate ResponseRateBucket `json:"responseRate,omitempty" validate:"omitempty,oneof=high medium low"`
	SortBy       SortBy             `json:"sortBy,omitempty" validate:"omitempty,oneof=rating response_rate recent"`
	Page         int                `json:"page,omitempty" validate:"gte=0"`
	Limit        int                `json:"limit,omitempty" validate:"gte=0"`
}

// Normalize fills defaults and caps the page size.
func (p SearchParams) Normalize() SearchParams {
	if p.SortBy == "" {
		p.SortBy = SortByRating
	}
	if p.Page < 1 {
		p.Page = DefaultSearchPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultSearchLimit
	}
	if p.Limit > MaxSearchLimit {
		p.Limit = MaxSearchLimit
	}
	return p
}

// Filter returns the predicates that can be pushed to the store.
func (p SearchParams) Filter() CompanyFilter {
	return CompanyFilter{
		Query:    p.Query,
		Industry: p.Industry,
		Location: p.Location,
		Type:     p.Type,
	}
}

// Validate checks enum and range constraints.
func (p *SearchParams) Validate() []FieldViolation {
	return violationsFrom(validate.Struct(p))
}

// SearchResult is one page of a company search.
// Total counts every company matching all filters, across pages.
type SearchResult struct {
	Companies  []CompanyWithStats `json:"companies"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}
