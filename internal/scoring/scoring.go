// Package scoring derives per-company statistics and the ghost-risk score from
// raw experience tallies. Everything here is a pure function of its inputs.
package scoring

import (
	"math"

	"github.com/ghosthawk/ghosthawk/internal/types"
)

// Ghost-risk weights; they sum to 1.
const (
	responseWeight     = 0.40
	legitimacyWeight   = 0.40
	interviewJobWeight = 0.20
)

// neutralCommunicationScore is used for experiences without a rating.
const neutralCommunicationScore = 3.0

// responseTimeDays maps each response bucket to a representative day count.
var responseTimeDays = map[types.ResponseTime]float64{
	types.ResponseSameDay:  0.5,
	types.Response1To3Days: 2,
	types.Response1Week:    7,
	types.Response2Weeks:   14,
	types.Response1Month:   30,
	types.ResponseLonger:   45,
}

var communicationScores = map[types.CommunicationQuality]float64{
	types.CommunicationExcellent: 5,
	types.CommunicationGood:      4,
	types.CommunicationFair:      3,
	types.CommunicationPoor:      2,
}

// ResponseTimeDays returns the day count for a bucket and false for an unknown or empty bucket.
func ResponseTimeDays(bucket types.ResponseTime) (float64, bool) {
	days, ok := responseTimeDays[bucket]
	return days, ok
}

// CommunicationScore returns the 2–5 score for a rating, 3 when unset or unknown.
func CommunicationScore(q types.CommunicationQuality) float64 {
	if score, ok := communicationScores[q]; ok {
		return score
	}
	return neutralCommunicationScore
}

// Percent returns part/whole*100, or 0 when whole is 0.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// GhostRiskScore combines the three percentages into a 0–100 risk score.
// Lower is better: responsive, legitimate and converting interviews to offers.
func GhostRiskScore(responseRate, legitimatePct, interviewRatio float64) int {
	raw := (100-responseRate)*responseWeight +
		(100-legitimatePct)*legitimacyWeight +
		(100-interviewRatio)*interviewJobWeight
	return clamp(int(math.Round(raw)), 0, 100)
}

// RiskTier labels a ghost-risk score.
func RiskTier(score int) string {
	switch {
	case score <= 20:
		return "Very Low"
	case score <= 40:
		return "Low"
	case score <= 60:
		return "Medium"
	case score <= 80:
		return "High"
	default:
		return "Very High"
	}
}

// AvgResponseTimeDays averages the day counts of bucketed experiences, rounded
// to one decimal. Experiences without a bucket are excluded; nil when none has one.
func AvgResponseTimeDays(buckets map[types.ResponseTime]int) *float64 {
	var sum float64
	var n int
	for bucket, count := range buckets {
		days, ok := ResponseTimeDays(bucket)
		if !ok || count <= 0 {
			continue
		}
		sum += days * float64(count)
		n += count
	}
	if n == 0 {
		return nil
	}
	avg := RoundTo(sum/float64(n), 1)
	return &avg
}

// AvgCommunicationScore averages ratings over all total experiences, counting
// unrated ones as neutral. Rounded to two decimals.
func AvgCommunicationScore(ratings map[types.CommunicationQuality]int, total int) float64 {
	if total <= 0 {
		return neutralCommunicationScore
	}
	var sum float64
	rated := 0
	for q, count := range ratings {
		if _, ok := communicationScores[q]; !ok {
			continue
		}
		sum += CommunicationScore(q) * float64(count)
		rated += count
	}
	sum += neutralCommunicationScore * float64(max(total-rated, 0))
	return RoundTo(sum/float64(total), 2)
}

// Compute derives CompanyStats from counts. ok is false when there are no
// experiences; such stats must not be shown or ranked.
func Compute(c types.ExperienceCounts) (stats types.CompanyStats, ok bool) {
	if c.Total <= 0 {
		return types.CompanyStats{}, false
	}

	responseRate := Percent(c.Responded, c.Total)
	legitimatePct := Percent(c.Legitimate, c.Total)
	interviewRatio := Percent(c.JobsOffered, c.InterviewsOffered)
	score := GhostRiskScore(responseRate, legitimatePct, interviewRatio)

	breakdown := make(map[string]int, len(types.CommunicationQualities))
	for _, q := range types.CommunicationQualities {
		breakdown[string(q)] = c.Communication[q]
	}

	return types.CompanyStats{
		TotalExperiences:          c.Total,
		ResponseRate:              roundPercent(responseRate),
		AvgResponseTimeDays:       AvgResponseTimeDays(c.ResponseTimes),
		CommunicationBreakdown:    breakdown,
		CommunicationScore:        AvgCommunicationScore(c.Communication, c.Total),
		LegitimateJobPercentage:   roundPercent(legitimatePct),
		InterviewsOfferedCount:    c.InterviewsOffered,
		JobsOfferedCount:          c.JobsOffered,
		GoodInterviewOutcomeRatio: roundPercent(interviewRatio),
		GhostRiskScore:            score,
		RiskTier:                  RiskTier(score),
	}, true
}

// Tally counts a set of experiences.
func Tally(experiences []types.Experience) types.ExperienceCounts {
	c := types.NewExperienceCounts()
	for _, e := range experiences {
		c.Total++
		if e.ReceivedResponse() {
			c.Responded++
			if rt := e.ResponseTime(); rt != "" {
				c.ResponseTimes[rt]++
			}
			if q := e.CommunicationQuality(); q != "" {
				c.Communication[q]++
			}
		}
		if e.GhostJob != nil {
			if *e.GhostJob {
				c.GhostReported++
			} else {
				c.Legitimate++
			}
		}
		if e.InterviewOffered == types.InterviewOfferYes {
			c.InterviewsOffered++
			if e.JobOffered() == types.JobOfferYes {
				c.JobsOffered++
			}
			if e.Interview != nil {
				for _, s := range e.Interview.Stages {
					c.Stages[s]++
				}
			}
		}
		if e.RejectionFeedback != nil && *e.RejectionFeedback {
			c.RejectionFeedback++
		}
	}
	return c
}

// PooledResponseRate is the single-stage response rate across all counts.
func PooledResponseRate(counts ...types.ExperienceCounts) int {
	var responded, total int
	for _, c := range counts {
		responded += c.Responded
		total += c.Total
	}
	return roundPercent(Percent(responded, total))
}

// Mean is the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// RoundTo rounds v to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func roundPercent(v float64) int {
	return clamp(int(math.Round(v)), 0, 100)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
