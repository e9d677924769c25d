package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/jobsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/jobsearch/internal/domain/search/request"
	chiTransport "github.com/kailas-cloud/jobsearch/internal/transport/chi"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run one search against the configured store and print the response envelope",
	Args:  cobra.ArbitraryArgs,
	RunE:  runSearch,
}

var (
	searchLocation string
	searchRemote   bool
	searchDate     string
	searchPage     int
	searchLimit    int
	searchBasic    bool
)

func init() {
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "location substring filter")
	searchCmd.Flags().BoolVar(&searchRemote, "remote", false, "remote postings only")
	searchCmd.Flags().StringVar(&searchDate, "date", "all", "posting age window: all, 7d, 30d")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "page number")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "page size")
	searchCmd.Flags().BoolVar(&searchBasic, "basic", false, "disable fuzzy, semantic and broad-token layers")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	date, err := filter.ParseDatePosted(searchDate)
	if err != nil {
		return err //nolint:wrapcheck // message is user-facing as is
	}
	req, err := request.New(
		strings.Join(args, " "),
		mode.FromFlag(!searchBasic),
		filter.New(searchLocation, searchRemote, date),
		searchPage, searchLimit, "",
	)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	a, err := loadApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	out, err := a.search.Search(cmd.Context(), &req)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(chiTransport.NewSearchResponse(&out)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
