package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ghosthawk/ghosthawk/internal/scoring"
	"github.com/ghosthawk/ghosthawk/internal/types"
)

// handleSearchCompanies returns one page of companies with at least one
// reported experience.
func (s *Server) handleSearchCompanies(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.search.Search(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseSearchParams reads search filters from the query string. Unknown
// parameters are ignored.
func parseSearchParams(q url.Values) (types.SearchParams, error) {
	params := types.SearchParams{
		Query:        strings.TrimSpace(q.Get("query")),
		Industry:     strings.TrimSpace(q.Get("industry")),
		Location:     strings.TrimSpace(q.Get("location")),
		Type:         types.CompanyType(q.Get("type")),
		ResponseRate: types.ResponseRateBucket(q.Get("responseRate")),
		SortBy:       types.SortBy(q.Get("sortBy")),
	}

	var violations []types.FieldViolation
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"page", &params.Page},
		{"limit", &params.Limit},
	} {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			violations = append(violations, types.FieldViolation{Field: f.name, Message: "must be an integer"})
			continue
		}
		*f.dst = n
	}

	violations = append(violations, params.Validate()...)
	if len(violations) > 0 {
		return types.SearchParams{}, &ErrValidation{Violations: violations}
	}
	return params.Normalize(), nil
}

// handleGetCompany returns a company with its statistics and public reports.
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, invalidField("id", "must be a valid UUID"))
		return
	}

	company, err := s.store.GetCompanyByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if company == nil {
		writeError(w, r, &ErrNotFound{Resource: "company", ID: id.String()})
		return
	}

	reported, err := s.store.ListExperiencesByCompany(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, companyDetail(*company, reported))
}

// companyDetail derives the company page from its reports.
func companyDetail(company types.Company, reported []types.ReportedExperience) types.CompanyDetail {
	detail := types.CompanyDetail{
		Company:     company,
		Experiences: make([]types.PublicExperience, 0, len(reported)),
	}

	experiences := make([]types.Experience, 0, len(reported))
	for _, re := range reported {
		experiences = append(experiences, re.Experience)
		detail.Experiences = append(detail.Experiences, re.Public())
	}
	if stats, ok := scoring.Compute(scoring.Tally(experiences)); ok {
		detail.Stats = &stats
	}
	return detail
}
