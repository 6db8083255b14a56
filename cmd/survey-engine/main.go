// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the survey-engine CLI. Each pipeline
// stage is a subcommand: search finds and downloads papers, survey runs LLM
// sessions over a downloaded paper, organize lays out a ranked folder,
// summaries reads the corpus index, and topic drives the whole workflow
// interactively.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/internal/logging"
	"github.com/pdiddy/survey-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// log is the process logger, built in the root pre-run.
var log = zap.NewNop()

// secretDefault returns fallback if non-empty, otherwise the secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the survey-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "survey-engine",
	Short: "Literature discovery and survey pipeline",
	Long: `survey-engine searches academic sources for papers on a topic, merges and
ranks the results by citation count discounted by age, downloads the papers
that clear the threshold, and summarizes them with an LLM.

Each stage is a subcommand: search, organize, survey, and summaries. The
topic subcommand composes them into an interactive topic-to-survey workflow.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		logger, err := logging.New(level, format)
		if err != nil {
			return err
		}
		log = logger
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./survey-engine.yaml or ~/.config/survey-engine/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console or json)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("survey-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "survey-engine"))
		}
	}

	viper.SetEnvPrefix("SURVEY_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("search.num_results", 30)
	viper.SetDefault("search.recency_weight", 3.5)
	viper.SetDefault("search.requests_per_second", 1.0)
	viper.SetDefault("search.enable_semantic_scholar", true)
	viper.SetDefault("search.enable_openalex", true)
	viper.SetDefault("search.enable_arxiv", true)
	viper.SetDefault("search.enable_scholar", false)
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("corpus.index_path", "corpus/index.db")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
