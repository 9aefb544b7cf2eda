// Package observability provides formatted terminal output for the stats CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ghosthawk/ghosthawk/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the width of a full histogram bar
	barWidth = 20
)

// Printer handles formatted output for the stats command
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes. fmt's width counts bytes, which
// misaligns the box for the bar glyphs.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// bar renders count relative to max as a histogram bar.
func bar(count, max int) string {
	if max <= 0 || count <= 0 {
		return ""
	}
	n := count * barWidth / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func formatDays(days *float64) string {
	if days == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f days", *days)
}

// PrintPlatformStats outputs the whole-platform totals.
func (p *Printer) PrintPlatformStats(stats *types.PlatformStats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Companies:       %d\n", stats.TotalCompanies))
	sb.WriteString(fmt.Sprintf("Experiences:     %d\n", stats.TotalExperiences))
	sb.WriteString(fmt.Sprintf("Response rate:   %d%%", stats.AvgResponseRate))

	p.printBox("PLATFORM STATS", sb.String())
}

// PrintInsights outputs the industry roll-up, the most reported companies and the trends.
func (p *Printer) PrintInsights(insights *types.Insights) {
	if insights == nil {
		return
	}

	var sb strings.Builder

	if len(insights.IndustryStats) > 0 {
		industries := make([]string, 0, len(insights.IndustryStats))
		for name := range insights.IndustryStats {
			industries = append(industries, name)
		}
		sort.Strings(industries)

		sb.WriteString("Industries:\n")
		count := min(len(industries), maxItemsToShow)
		for i := 0; i < count; i++ {
			stat := insights.IndustryStats[industries[i]]
			sb.WriteString(fmt.Sprintf("  • %s (%d)\n", industries[i], stat.CompanyCount))
			sb.WriteString(fmt.Sprintf("    response %.1f%%  risk %.1f  reply %s\n",
				stat.ResponseRate, stat.GhostRisk, formatDays(stat.AvgResponseTimeDays)))
		}
		if len(industries) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(industries)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(insights.TopCompanies) > 0 {
		sb.WriteString("Most reported:\n")
		count := min(len(insights.TopCompanies), maxItemsToShow)
		for i := 0; i < count; i++ {
			c := insights.TopCompanies[i]
			sb.WriteString(fmt.Sprintf("  #%d %s: score %d, %d reports\n", i+1, c.Name, c.GhostScore, c.ReportCount))
		}
		sb.WriteString("\n")
	}

	if len(insights.RecentTrends) > 0 {
		sb.WriteString("Trends:\n")
		for _, trend := range insights.RecentTrends {
			sb.WriteString(fmt.Sprintf("  • %s\n", trend))
		}
	}

	content := strings.TrimSuffix(sb.String(), "\n")
	if content == "" {
		content = "No experiences reported yet"
	}
	p.printBox("INSIGHTS", content)
}

// PrintDetailedStats outputs the insights followed by the breakdown histograms.
func (p *Printer) PrintDetailedStats(stats *types.DetailedStats) {
	if stats == nil {
		return
	}

	p.PrintInsights(&stats.Insights)

	var sb strings.Builder
	sb.WriteString("Response time:\n")
	writeHistogram(&sb, stats.ResponseTimeBreakdown, responseTimeKeys())
	sb.WriteString("\nCommunication:\n")
	writeHistogram(&sb, stats.CommunicationBreakdown, communicationKeys())
	sb.WriteString("\nInterview stages:\n")
	writeHistogram(&sb, stats.InterviewStats.InterviewStagesBreakdown, stageKeys())
	sb.WriteString(fmt.Sprintf("\nInterview offer rate:  %d%%\n", stats.InterviewStats.InterviewOfferRate))
	sb.WriteString(fmt.Sprintf("Interview to job rate: %d%%", stats.InterviewStats.InterviewToJobRate))
	p.printBox("BREAKDOWNS", sb.String())

	if len(stats.MonthlyTrends) > 0 {
		sb.Reset()
		maxExperiences := 0
		for _, m := range stats.MonthlyTrends {
			maxExperiences = max(maxExperiences, m.Experiences)
		}
		for i, m := range stats.MonthlyTrends {
			sb.WriteString(fmt.Sprintf("%s %4d %s", m.Month, m.Experiences, bar(m.Experiences, maxExperiences)))
			if i < len(stats.MonthlyTrends)-1 {
				sb.WriteString("\n")
			}
		}
		p.printBox("MONTHLY ACTIVITY", sb.String())
	}
}

func writeHistogram(sb *strings.Builder, counts map[string]int, keys []string) {
	maxCount := 0
	for _, k := range keys {
		maxCount = max(maxCount, counts[k])
	}
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-10s %4d %s\n", k, counts[k], bar(counts[k], maxCount)))
	}
}

func responseTimeKeys() []string {
	keys := make([]string, len(types.ResponseTimes))
	for i, rt := range types.ResponseTimes {
		keys[i] = string(rt)
	}
	return keys
}

func communicationKeys() []string {
	keys := make([]string, len(types.CommunicationQualities))
	for i, q := range types.CommunicationQualities {
		keys[i] = string(q)
	}
	return keys
}

func stageKeys() []string {
	keys := make([]string, len(types.InterviewStages))
	for i, s := range types.InterviewStages {
		keys[i] = string(s)
	}
	return keys
}
