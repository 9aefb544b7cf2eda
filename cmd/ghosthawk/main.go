// Package main provides the entry point for the GhostHawk API server and tooling.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ghosthawk",
	Short: "GhostHawk company ghost-risk API",
	Long: `GhostHawk collects candidate-reported hiring experiences and scores how likely
each company is to ghost applicants. It serves search, company detail and
platform insight endpoints over a REST API backed by PostgreSQL.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (env vars override it)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
