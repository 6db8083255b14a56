// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/survey-engine/internal/corpus"
	"github.com/pdiddy/survey-engine/internal/organize"
	"github.com/pdiddy/survey-engine/internal/search"
	"github.com/pdiddy/survey-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [keywords...]",
	Short: "Search academic sources and download the best papers",
	Long: `Search queries the enabled sources (Semantic Scholar, OpenAlex, arXiv, and
optionally Google Scholar) for each keyword, merges the results into one
deduplicated corpus, ranks them by citation count discounted by age, and
downloads the papers that clear the threshold into the destination folder.

Repeating a search is idempotent: papers already on disk are skipped and the
folder's metadata file is merged, not clobbered.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("num-results", 0, "papers to keep after ranking (default from config)")
	searchCmd.Flags().String("sort-by", "relevance", `result ordering: "relevance" or "date"`)
	searchCmd.Flags().String("date-cutoff", "", "drop papers published before this date (YYYY-MM-DD, required with --sort-by=date)")
	searchCmd.Flags().Float64("score-threshold", 0, "minimum combined score to keep a paper")
	searchCmd.Flags().String("dest", "papers", "destination folder for PDFs and metadata")
	searchCmd.Flags().Bool("no-download", false, "print the ranking without downloading")
	searchCmd.Flags().Bool("no-index", false, "skip updating the corpus index")
	searchCmd.Flags().String("save-query", "", "save the run parameters and ranked results to a YAML file")
	searchCmd.Flags().String("from-query", "", "rerun the keywords and parameters of a saved query file")
	searchCmd.Flags().Bool("zip", false, "zip the destination folder after downloading")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	fromQuery, _ := cmd.Flags().GetString("from-query")
	if len(args) == 0 && fromQuery == "" {
		return fmt.Errorf("provide one or more search keywords")
	}

	cfg := buildSearchConfig()
	if n, _ := cmd.Flags().GetInt("num-results"); n > 0 {
		cfg.NumResults = n
	}

	sortBy, _ := cmd.Flags().GetString("sort-by")
	cutoffStr, _ := cmd.Flags().GetString("date-cutoff")
	threshold, _ := cmd.Flags().GetFloat64("score-threshold")
	dest, _ := cmd.Flags().GetString("dest")
	noDownload, _ := cmd.Flags().GetBool("no-download")
	noIndex, _ := cmd.Flags().GetBool("no-index")

	base := types.SearchQuery{
		NumResults:     cfg.NumResults,
		SortBy:         types.SortBy(sortBy),
		ScoreThreshold: threshold,
		Destination:    dest,
	}
	if cutoffStr != "" {
		cutoff, err := time.Parse("2006-01-02", cutoffStr)
		if err != nil {
			return fmt.Errorf("parsing --date-cutoff: %w", err)
		}
		base.DateCutoff = cutoff
	}

	keywords := splitKeywords(args)
	if fromQuery != "" {
		qf, err := search.ReadQueryFile(fromQuery)
		if err != nil {
			return err
		}
		saved, err := qf.Query.ToQuery()
		if err != nil {
			return err
		}
		keywords = qf.Query.Keywords
		base = saved
		if cmd.Flags().Changed("dest") {
			base.Destination = dest
		}
		dest = base.Destination
	}

	engine := buildEngine(cfg)

	var mat search.Materializer
	if !noDownload {
		mat = buildDownloader(cfg)
	}

	result, err := engine.Run(cmd.Context(), base, keywords, nil, mat, os.Stdout)
	if err != nil {
		return err
	}
	search.FormatTable(result.Records, result.DupsRemoved, os.Stdout)

	if savePath, _ := cmd.Flags().GetString("save-query"); savePath != "" {
		if err := search.WriteQueryFile(savePath, base, keywords, result); err != nil {
			return err
		}
	}

	if !noIndex && !noDownload && len(result.Records) > 0 {
		store, err := corpus.NewStore(viper.GetString("corpus.index_path"))
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.UpsertRecords(dest, result.Records); err != nil {
			return err
		}
	}

	if zipDest, _ := cmd.Flags().GetBool("zip"); zipDest && !noDownload && len(result.Records) > 0 {
		archive := strings.TrimSuffix(dest, "/") + ".zip"
		if err := organize.Zip(dest, archive); err != nil {
			return err
		}
		fmt.Printf("archived to %s\n", archive)
	}

	if len(result.SourceErrors) > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d source queries failed:\n  %s\n",
			len(result.SourceErrors), strings.Join(result.SourceErrors, "\n  "))
	}
	return nil
}

// splitKeywords accepts both space-separated arguments and comma lists
// ("a,b" or "a, b" inside one argument).
func splitKeywords(args []string) []string {
	var keywords []string
	for _, arg := range args {
		for _, kw := range strings.Split(arg, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
	}
	return keywords
}
