// Package insights rolls per-company statistics up to industry and platform views.
//
// Industry and company-type figures are two-stage: each company's statistics
// are computed first and then averaged, so every company weighs the same.
// Platform-wide rates are pooled over all experiences.
package insights

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ghosthawk/ghosthawk/internal/cache"
	"github.com/ghosthawk/ghosthawk/internal/ranking"
	"github.com/ghosthawk/ghosthawk/internal/scoring"
	"github.com/ghosthawk/ghosthawk/internal/types"
)

// Top-list sizes per view.
const (
	InsightsTopCompanies = 5
	DetailedTopCompanies = 10
)

// TrendMonths is the length of the monthly activity window, current month included.
const TrendMonths = 6

// Cache keys.
const (
	keyInsights = "insights"
	keyPlatform = "stats"
	keyDetailed = "stats:detailed"
)

// Store provides the raw data behind every view.
type Store interface {
	ListCompanyAggregates(ctx context.Context, filter types.CompanyFilter) ([]types.CompanyAggregate, error)
	ListMonthlyActivity(ctx context.Context, since time.Time) ([]types.MonthlyActivity, error)
}

// Service computes insight views on every call, optionally through a cache.
type Service struct {
	store Store
	cache cache.Cache
	now   func() time.Time
}

// NewService creates an insights service. A nil cache disables caching.
func NewService(store Store, c cache.Cache) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{store: store, cache: c, now: time.Now}
}

// Insights returns industry statistics, the most-reported companies and trend lines.
func (s *Service) Insights(ctx context.Context) (types.Insights, error) {
	return cached(ctx, s.cache, keyInsights, func() (types.Insights, error) {
		aggs, err := s.store.ListCompanyAggregates(ctx, types.CompanyFilter{})
		if err != nil {
			return types.Insights{}, err
		}
		return buildInsights(aggs, InsightsTopCompanies), nil
	})
}

// PlatformStats returns whole-platform totals.
func (s *Service) PlatformStats(ctx context.Context) (types.PlatformStats, error) {
	return cached(ctx, s.cache, keyPlatform, func() (types.PlatformStats, error) {
		aggs, err := s.store.ListCompanyAggregates(ctx, types.CompanyFilter{})
		if err != nil {
			return types.PlatformStats{}, err
		}
		return Platform(aggs), nil
	})
}

// DetailedStats returns the full statistics page. The store reads run
// concurrently; any failure fails the whole view.
func (s *Service) DetailedStats(ctx context.Context) (types.DetailedStats, error) {
	return cached(ctx, s.cache, keyDetailed, func() (types.DetailedStats, error) {
		now := s.now().UTC()
		since := MonthStart(now, -(TrendMonths - 1))

		var (
			aggs     []types.CompanyAggregate
			activity []types.MonthlyActivity
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			aggs, err = s.store.ListCompanyAggregates(gctx, types.CompanyFilter{})
			return err
		})
		g.Go(func() error {
			var err error
			activity, err = s.store.ListMonthlyActivity(gctx, since)
			return err
		})
		if err := g.Wait(); err != nil {
			return types.DetailedStats{}, err
		}

		qualified := ranking.Qualify(aggs)
		pooled := PooledCounts(aggs)
		return types.DetailedStats{
			Insights:               buildInsights(aggs, DetailedTopCompanies),
			CommunicationBreakdown: communicationBreakdown(pooled),
			ResponseTimeBreakdown:  responseTimeBreakdown(pooled),
			CompanyTypeStats:       CompanyTypeStats(qualified),
			MonthlyTrends:          MonthlyTrends(activity, now, TrendMonths),
			InterviewStats:         InterviewStats(qualified, pooled),
		}, nil
	})
}

// cached serves key from c when present, otherwise computes and stores it.
// Cache failures are logged and bypassed.
func cached[T any](ctx context.Context, c cache.Cache, key string, compute func() (T, error)) (T, error) {
	var out T
	hit, err := c.Get(ctx, key, &out)
	if err != nil {
		log.Printf("[insights] cache get %s failed: %v", key, err)
	}
	if hit {
		return out, nil
	}

	out, err = compute()
	if err != nil {
		var zero T
		return zero, err
	}
	if err := c.Set(ctx, key, out); err != nil {
		log.Printf("[insights] cache set %s failed: %v", key, err)
	}
	return out, nil
}

func buildInsights(aggs []types.CompanyAggregate, topN int) types.Insights {
	qualified := ranking.Qualify(aggs)
	return types.Insights{
		IndustryStats: IndustryStats(qualified),
		TopCompanies:  TopCompanies(qualified, topN),
		RecentTrends:  Trends(qualified, PooledCounts(aggs)),
	}
}

// IndustryStats averages each industry's company figures. Companies without
// an industry are skipped.
func IndustryStats(qualified []types.CompanyWithStats) map[string]types.IndustryStat {
	byIndustry := groupByIndustry(qualified)
	out := make(map[string]types.IndustryStat, len(byIndustry))
	for industry, companies := range byIndustry {
		var rates, risks, days []float64
		for _, c := range companies {
			rates = append(rates, float64(c.ResponseRate))
			risks = append(risks, float64(c.GhostRiskScore))
			if c.AvgResponseTimeDays != nil {
				days = append(days, *c.AvgResponseTimeDays)
			}
		}
		stat := types.IndustryStat{
			ResponseRate: scoring.RoundTo(scoring.Mean(rates), 1),
			GhostRisk:    scoring.RoundTo(scoring.Mean(risks), 1),
			CompanyCount: len(companies),
		}
		if len(days) > 0 {
			avg := scoring.RoundTo(scoring.Mean(days), 1)
			stat.AvgResponseTimeDays = &avg
		}
		out[industry] = stat
	}
	return out
}

// TopCompanies returns the n most-reported companies, ties by name.
func TopCompanies(qualified []types.CompanyWithStats, n int) []types.TopCompany {
	sorted := make([]types.CompanyWithStats, len(qualified))
	copy(sorted, qualified)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalExperiences != b.TotalExperiences {
			return a.TotalExperiences > b.TotalExperiences
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.String() < b.ID.String()
	})

	out := make([]types.TopCompany, 0, min(n, len(sorted)))
	for _, c := range sorted[:min(n, len(sorted))] {
		out = append(out, types.TopCompany{
			ID:          c.ID,
			Name:        c.Name,
			GhostScore:  c.GhostRiskScore,
			ReportCount: c.TotalExperiences,
		})
	}
	return out
}

// Platform computes whole-platform totals. The response rate is pooled over
// every experience rather than averaged per company.
func Platform(aggs []types.CompanyAggregate) types.PlatformStats {
	pooled := PooledCounts(aggs)
	return types.PlatformStats{
		TotalCompanies:   len(ranking.Qualify(aggs)),
		TotalExperiences: pooled.Total,
		AvgResponseRate:  scoring.PooledResponseRate(pooled),
	}
}

// PooledCounts merges every company's counts.
func PooledCounts(aggs []types.CompanyAggregate) types.ExperienceCounts {
	total := types.NewExperienceCounts()
	for _, a := range aggs {
		total.Merge(a.Counts)
	}
	return total
}

// CompanyTypeStats counts qualifying companies per type and averages their response rates.
func CompanyTypeStats(qualified []types.CompanyWithStats) map[string]types.CompanyTypeStat {
	rates := map[types.CompanyType][]float64{}
	for _, c := range qualified {
		rates[c.Type] = append(rates[c.Type], float64(c.ResponseRate))
	}
	out := make(map[string]types.CompanyTypeStat, len(rates))
	for typ, rs := range rates {
		out[string(typ)] = types.CompanyTypeStat{
			Count:           len(rs),
			AvgResponseRate: scoring.RoundTo(scoring.Mean(rs), 1),
		}
	}
	return out
}

// InterviewStats summarises the interview funnel. Offer rates are pooled;
// industry interview rates average each company's offer rate.
func InterviewStats(qualified []types.CompanyWithStats, pooled types.ExperienceCounts) types.InterviewStats {
	stages := make(map[string]int, len(types.InterviewStages))
	for _, s := range types.InterviewStages {
		stages[string(s)] = pooled.Stages[s]
	}

	industryRates := map[string]float64{}
	for industry, companies := range groupByIndustry(qualified) {
		rates := make([]float64, 0, len(companies))
		for _, c := range companies {
			rates = append(rates, scoring.Percent(c.InterviewsOfferedCount, c.TotalExperiences))
		}
		industryRates[industry] = scoring.RoundTo(scoring.Mean(rates), 1)
	}

	return types.InterviewStats{
		InterviewOfferRate:       roundPercent(scoring.Percent(pooled.InterviewsOffered, pooled.Total)),
		InterviewToJobRate:       roundPercent(scoring.Percent(pooled.JobsOffered, pooled.InterviewsOffered)),
		InterviewStagesBreakdown: stages,
		IndustryInterviewRates:   industryRates,
	}
}

// MonthlyTrends lays activity onto the last months calendar months ending at
// now, oldest first. Months without activity are zero.
func MonthlyTrends(activity []types.MonthlyActivity, now time.Time, months int) []types.MonthlyTrend {
	byMonth := make(map[string]types.MonthlyActivity, len(activity))
	for _, a := range activity {
		byMonth[a.Month] = a
	}
	out := make([]types.MonthlyTrend, 0, months)
	for i := months - 1; i >= 0; i-- {
		key := MonthStart(now, -i).Format("2006-01")
		a := byMonth[key]
		out = append(out, types.MonthlyTrend{
			Month:        key,
			Companies:    a.Companies,
			Experiences:  a.Experiences,
			ResponseRate: roundPercent(scoring.Percent(a.Responded, a.Experiences)),
		})
	}
	return out
}

// MonthStart returns the first instant of the month offset months from t, in UTC.
func MonthStart(t time.Time, offset int) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
}

// Trends derives short observations from the current data. No data yields no trends.
func Trends(qualified []types.CompanyWithStats, pooled types.ExperienceCounts) []string {
	trends := []string{}
	if len(qualified) == 0 || pooled.Total == 0 {
		return trends
	}

	if industry, stat, ok := bestIndustry(IndustryStats(qualified)); ok {
		trends = append(trends, fmt.Sprintf(
			"%s companies lead with an average response rate of %.0f%%", industry, stat.ResponseRate))
	}

	risk := CompanyTypeRisk(qualified)
	recruiter, hasRecruiter := risk[types.CompanyTypeRecruiter]
	employer, hasEmployer := risk[types.CompanyTypeCompany]
	if hasRecruiter && hasEmployer {
		trends = append(trends, fmt.Sprintf(
			"Recruiters average a ghost-risk score of %.0f versus %.0f for direct employers", recruiter, employer))
	}

	unanswered := roundPercent(scoring.Percent(pooled.Total-pooled.Responded, pooled.Total))
	trends = append(trends, fmt.Sprintf("%d%% of reported applications never received a response", unanswered))

	if pooled.GhostReported > 0 {
		flagged := roundPercent(scoring.Percent(pooled.GhostReported, pooled.Total))
		trends = append(trends, fmt.Sprintf("%d%% of reports flagged the posting as a ghost job", flagged))
	}
	return trends
}

// CompanyTypeRisk averages ghost-risk scores per company type.
func CompanyTypeRisk(qualified []types.CompanyWithStats) map[types.CompanyType]float64 {
	scores := map[types.CompanyType][]float64{}
	for _, c := range qualified {
		scores[c.Type] = append(scores[c.Type], float64(c.GhostRiskScore))
	}
	out := make(map[types.CompanyType]float64, len(scores))
	for typ, s := range scores {
		out[typ] = scoring.RoundTo(scoring.Mean(s), 1)
	}
	return out
}

func bestIndustry(stats map[string]types.IndustryStat) (string, types.IndustryStat, bool) {
	var (
		best     string
		bestStat types.IndustryStat
		found    bool
	)
	for industry, stat := range stats {
		if !found || stat.ResponseRate > bestStat.ResponseRate ||
			(stat.ResponseRate == bestStat.ResponseRate && industry < best) {
			best, bestStat, found = industry, stat, true
		}
	}
	return best, bestStat, found
}

func communicationBreakdown(pooled types.ExperienceCounts) map[string]int {
	out := make(map[string]int, len(types.CommunicationQualities))
	for _, q := range types.CommunicationQualities {
		out[string(q)] = pooled.Communication[q]
	}
	return out
}

func responseTimeBreakdown(pooled types.ExperienceCounts) map[string]int {
	out := make(map[string]int, len(types.ResponseTimes))
	for _, rt := range types.ResponseTimes {
		out[string(rt)] = pooled.ResponseTimes[rt]
	}
	return out
}

func groupByIndustry(qualified []types.CompanyWithStats) map[string][]types.CompanyWithStats {
	out := map[string][]types.CompanyWithStats{}
	for _, c := range qualified {
		industry := c.IndustryName()
		if industry == "" {
			continue
		}
		out[industry] = append(out[industry], c)
	}
	return out
}

func roundPercent(v float64) int {
	return int(scoring.RoundTo(v, 0))
}
