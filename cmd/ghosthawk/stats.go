package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ghosthawk/ghosthawk/internal/db"
	"github.com/ghosthawk/ghosthawk/internal/insights"
	"github.com/ghosthawk/ghosthawk/internal/observability"
	"github.com/ghosthawk/ghosthawk/internal/types"
)

var (
	statsDetailed bool
	statsJSON     bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print platform statistics and insights",
	Long:  `Compute platform totals and industry insights from the database and print them to the terminal.`,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsDetailed, "detailed", false, "Include breakdowns and monthly activity")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print JSON instead of formatted boxes")
	rootCmd.AddCommand(statsCmd)
}

// statsSource computes the views printed by the stats command.
type statsSource interface {
	Insights(ctx context.Context) (types.Insights, error)
	PlatformStats(ctx context.Context) (types.PlatformStats, error)
	DetailedStats(ctx context.Context) (types.DetailedStats, error)
}

func runStats(cmd *cobra.Command, _ []string) error {
	databaseURL, err := databaseURLFromConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	return printStats(ctx, cmd.OutOrStdout(), insights.NewService(database, nil), statsDetailed, statsJSON)
}

func printStats(ctx context.Context, out io.Writer, src statsSource, detailed, asJSON bool) error {
	platform, err := src.PlatformStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute platform stats: %w", err)
	}

	if detailed {
		stats, err := src.DetailedStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to compute detailed stats: %w", err)
		}
		if asJSON {
			return writeIndented(out, map[string]any{"platform": platform, "detailed": stats})
		}
		p := observability.NewPrinter(out)
		p.PrintPlatformStats(&platform)
		p.PrintDetailedStats(&stats)
		return nil
	}

	view, err := src.Insights(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute insights: %w", err)
	}
	if asJSON {
		return writeIndented(out, map[string]any{"platform": platform, "insights": view})
	}
	p := observability.NewPrinter(out)
	p.PrintPlatformStats(&platform)
	p.PrintInsights(&view)
	return nil
}

func writeIndented(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
