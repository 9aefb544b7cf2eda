// Package ranking searches companies and orders them by their derived statistics.
package ranking

import (
	"context"
	"sort"

	"github.com/ghosthawk/ghosthawk/internal/scoring"
	"github.com/ghosthawk/ghosthawk/internal/types"
)

// Store provides company aggregates matching the pushed-down predicates.
type Store interface {
	ListCompanyAggregates(ctx context.Context, filter types.CompanyFilter) ([]types.CompanyAggregate, error)
}

// Service answers company search requests.
type Service struct {
	store Store
}

// NewService creates a search service over store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Search returns one page of companies matching params.
// Companies without experiences never appear. Store errors are returned unchanged.
func (s *Service) Search(ctx context.Context, params types.SearchParams) (types.SearchResult, error) {
	params = params.Normalize()

	aggs, err := s.store.ListCompanyAggregates(ctx, params.Filter())
	if err != nil {
		return types.SearchResult{}, err
	}

	companies := FilterByResponseRate(Qualify(aggs), params.ResponseRate)
	Sort(companies, params.SortBy)
	return Paginate(companies, params.Page, params.Limit), nil
}

// Qualify keeps the companies with at least one experience and attaches their
// statistics. It is the single evidence rule shared by search and insights.
func Qualify(aggs []types.CompanyAggregate) []types.CompanyWithStats {
	out := make([]types.CompanyWithStats, 0, len(aggs))
	for _, agg := range aggs {
		stats, ok := scoring.Compute(agg.Counts)
		if !ok {
			continue
		}
		out = append(out, types.CompanyWithStats{Company: agg.Company, CompanyStats: stats})
	}
	return out
}

// InBucket reports whether a reported response rate falls in bucket.
// An empty bucket matches every rate.
func InBucket(rate int, bucket types.ResponseRateBucket) bool {
	switch bucket {
	case types.ResponseRateHigh:
		return rate >= 70
	case types.ResponseRateMedium:
		return rate >= 30 && rate < 70
	case types.ResponseRateLow:
		return rate < 30
	default:
		return true
	}
}

// FilterByResponseRate keeps the companies whose response rate is in bucket.
func FilterByResponseRate(companies []types.CompanyWithStats, bucket types.ResponseRateBucket) []types.CompanyWithStats {
	if bucket == "" {
		return companies
	}
	out := companies[:0:0]
	for _, c := range companies {
		if InBucket(c.ResponseRate, bucket) {
			out = append(out, c)
		}
	}
	return out
}

// Sort orders companies in place. Ties fall back to name then id so that
// pagination is stable across requests.
func Sort(companies []types.CompanyWithStats, by types.SortBy) {
	primary := func(a, b types.CompanyWithStats) int {
		switch by {
		case types.SortByResponseRate:
			return b.ResponseRate - a.ResponseRate
		case types.SortByRecent:
			return b.UpdatedAt.Compare(a.UpdatedAt)
		default:
			return a.GhostRiskScore - b.GhostRiskScore
		}
	}
	sort.SliceStable(companies, func(i, j int) bool {
		a, b := companies[i], companies[j]
		if c := primary(a, b); c != 0 {
			return c < 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.String() < b.ID.String()
	})
}

// Paginate slices one page out of the sorted companies. Total counts every
// company passed in; a page past the end is empty.
func Paginate(companies []types.CompanyWithStats, page, limit int) types.SearchResult {
	if page < 1 {
		page = types.DefaultSearchPage
	}
	if limit < 1 {
		limit = types.DefaultSearchLimit
	}
	total := len(companies)
	result := types.SearchResult{
		Companies:  []types.CompanyWithStats{},
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
	// Compare pages before multiplying so a huge page cannot overflow the offset.
	if page > result.TotalPages {
		return result
	}
	offset := (page - 1) * limit
	end := min(offset+limit, total)
	result.Companies = companies[offset:end]
	return result
}
