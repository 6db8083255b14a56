// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/survey-engine/internal/corpus"
	"github.com/pdiddy/survey-engine/internal/extract"
	"github.com/pdiddy/survey-engine/internal/topic"
	"github.com/pdiddy/survey-engine/pkg/types"
)

var topicCmd = &cobra.Command{
	Use:   "topic [topic...]",
	Short: "Survey a research topic end to end",
	Long: `Topic drives the whole pipeline interactively: the LLM proposes search
keywords for your topic, you pick which to use (or type your own), the chosen
keywords are searched as one deduplicated corpus, and the downloaded papers
are organized, summarized, and optionally checked for code availability.

With no arguments it loops, asking for topics until you type "exit".`,
	RunE: runTopic,
}

func init() {
	topicCmd.Flags().Int("num-results", 0, "papers to keep after ranking (default from config)")
	topicCmd.Flags().String("sort-by", "relevance", `result ordering: "relevance" or "date"`)
	topicCmd.Flags().String("date-cutoff", "", "drop papers published before this date (YYYY-MM-DD)")
	topicCmd.Flags().Float64("score-threshold", 0, "minimum combined score to keep a paper")
	topicCmd.Flags().String("dest", "papers", "destination folder for PDFs and metadata")
	topicCmd.Flags().String("api-key", "", "LLM API key (default from config or .secrets/)")
	topicCmd.Flags().Bool("zip", false, "archive the organized folder at the end")

	rootCmd.AddCommand(topicCmd)
}

func runTopic(cmd *cobra.Command, args []string) error {
	cfg := buildSearchConfig()
	if n, _ := cmd.Flags().GetInt("num-results"); n > 0 {
		cfg.NumResults = n
	}

	sortBy, _ := cmd.Flags().GetString("sort-by")
	cutoffStr, _ := cmd.Flags().GetString("date-cutoff")
	threshold, _ := cmd.Flags().GetFloat64("score-threshold")
	dest, _ := cmd.Flags().GetString("dest")
	apiKey, _ := cmd.Flags().GetString("api-key")
	zipFolder, _ := cmd.Flags().GetBool("zip")

	base := types.SearchQuery{
		NumResults:     cfg.NumResults,
		SortBy:         types.SortBy(sortBy),
		ScoreThreshold: threshold,
		Destination:    dest,
	}
	if cutoffStr != "" {
		cutoff, err := time.Parse("2006-01-02", cutoffStr)
		if err != nil {
			return err
		}
		base.DateCutoff = cutoff
	}

	client, err := buildLLM(apiKey)
	if err != nil {
		return err
	}

	store, err := corpus.NewStore(viper.GetString("corpus.index_path"))
	if err != nil {
		return err
	}
	defer store.Close()

	orch := &topic.Orchestrator{
		Client:       client,
		Engine:       buildEngine(cfg),
		Materializer: buildDownloader(cfg),
		Extractor:    &extract.Pdftotext{},
		HTTPClient:   &http.Client{Timeout: cfg.Timeout},
		Corpus:       store,
		OrganizeCfg: types.OrganizeConfig{
			ThresholdType:  types.ThresholdScore,
			ScoreThreshold: threshold,
			OrderByScore:   true,
			ZipFolder:      zipFolder,
		},
		Prompter: topic.NewConsole(os.Stdin, os.Stdout),
		Out:      os.Stdout,
		Log:      log,
	}

	if len(args) > 0 {
		_, err := orch.Run(cmd.Context(), base, strings.Join(args, " "))
		return err
	}
	return orch.RunLoop(cmd.Context(), base)
}
