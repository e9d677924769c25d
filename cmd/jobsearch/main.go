// Package main is the jobsearch command: the HTTP API server plus maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobsearch",
	Short: "Adaptive multi-layer job search engine",
	Long: "jobsearch serves ranked job postings through a cascade of exact, full-text, fuzzy, " +
		"semantic, token and recency retrieval layers.",
	SilenceUsage: true,
}

var envFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "config environment (default $ENV or local)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
