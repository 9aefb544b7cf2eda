package types

// ExperienceCounts are the raw tallies behind every derived statistic.
type ExperienceCounts struct {
	Total             int
	Responded         int
	Legitimate        int // ghostJob reported as false
	GhostReported     int // ghostJob reported as true
	InterviewsOffered int
	JobsOffered       int
	RejectionFeedback int
	ResponseTimes     map[ResponseTime]int
	Communication     map[CommunicationQuality]int
	Stages            map[InterviewStage]int
}

// NewExperienceCounts returns zeroed counts with initialised maps.
func NewExperienceCounts() ExperienceCounts {
	return ExperienceCounts{
		ResponseTimes: make(map[ResponseTime]int, len(ResponseTimes)),
		Communication: make(map[CommunicationQuality]int, len(CommunicationQualities)),
		Stages:        make(map[InterviewStage]int, len(InterviewStages)),
	}
}

// Merge adds other into c.
func (c *ExperienceCounts) Merge(other ExperienceCounts) {
	if c.ResponseTimes == nil || c.Communication == nil || c.Stages == nil {
		fresh := NewExperienceCounts()
		if c.ResponseTimes == nil {
			c.ResponseTimes = fresh.ResponseTimes
		}
		if c.Communication == nil {
			c.Communication = fresh.Communication
		}
		if c.Stages == nil {
			c.Stages = fresh.Stages
		}
	}
	c.Total += other.Total
	c.Responded += other.Responded
	c.Legitimate += other.Legitimate
	c.GhostReported += other.GhostReported
	c.InterviewsOffered += other.InterviewsOffered
	c.JobsOffered += other.JobsOffered
	c.RejectionFeedback += other.RejectionFeedback
	for k, v := range other.ResponseTimes {
		c.ResponseTimes[k] += v
	}
	for k, v := range other.Communication {
		c.Communication[k] += v
	}
	for k, v := range other.Stages {
		c.Stages[k] += v
	}
}

// CompanyStats are the statistics derived from a company's experiences.
// They are recomputed on every read and never stored.
type CompanyStats struct {
	TotalExperiences          int            `json:"totalExperiences"`
	ResponseRate              int            `json:"responseRate"`
	AvgResponseTimeDays       *float64       `json:"avgResponseTimeDays"`
	CommunicationBreakdown    map[string]int `json:"communicationBreakdown"`
	CommunicationScore        float64        `json:"communicationScore"`
	LegitimateJobPercentage   int            `json:"legitimateJobPercentage"`
	InterviewsOfferedCount    int            `json:"interviewsOfferedCount"`
	JobsOfferedCount          int            `json:"jobsOfferedCount"`
	GoodInterviewOutcomeRatio int            `json:"goodInterviewOutcomeRatio"`
	GhostRiskScore            int            `json:"ghostRiskScore"`
	RiskTier                  string         `json:"riskTier"`
}
