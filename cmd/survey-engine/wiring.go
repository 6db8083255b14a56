// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/survey-engine/internal/download"
	"github.com/pdiddy/survey-engine/internal/httputil"
	"github.com/pdiddy/survey-engine/internal/llm"
	"github.com/pdiddy/survey-engine/internal/search"
	"github.com/pdiddy/survey-engine/internal/secrets"
	"github.com/pdiddy/survey-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "survey-engine/0.1"
)

func buildSearchConfig() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		NumResults:            viper.GetInt("search.num_results"),
		RecencyWeight:         viper.GetFloat64("search.recency_weight"),
		RequestsPerSecond:     viper.GetFloat64("search.requests_per_second"),
		EnableSemanticScholar: viper.GetBool("search.enable_semantic_scholar"),
		EnableOpenAlex:        viper.GetBool("search.enable_openalex"),
		EnableArxiv:           viper.GetBool("search.enable_arxiv"),
		EnableScholar:         viper.GetBool("search.enable_scholar"),
		SemanticScholarAPIKey: viper.GetString("search.semantic_scholar_api_key"),
		OpenAlexEmail:         viper.GetString("search.openalex_email"),
	}
}

// buildEngine assembles the search engine with every enabled source sharing
// one HTTP client and one pacer.
func buildEngine(cfg types.SearchConfig) *search.Engine {
	client := &http.Client{Timeout: cfg.Timeout}

	var sources []search.Source
	if cfg.EnableSemanticScholar {
		sources = append(sources, &search.SemanticScholarSource{Client: client, APIKey: cfg.SemanticScholarAPIKey})
	}
	if cfg.EnableOpenAlex {
		sources = append(sources, &search.OpenAlexSource{Client: client, Email: cfg.OpenAlexEmail})
	}
	if cfg.EnableArxiv {
		sources = append(sources, &search.ArxivSource{Client: client})
	}
	if cfg.EnableScholar {
		sources = append(sources, &search.ScholarSource{Client: client})
	}

	return &search.Engine{
		Sources: sources,
		Cfg:     cfg,
		Pacer:   httputil.NewPacer(cfg.RequestsPerSecond),
		Log:     log,
	}
}

func buildDownloader(cfg types.SearchConfig) *download.Downloader {
	return &download.Downloader{
		Client: &http.Client{Timeout: cfg.Timeout},
		Cfg: types.DownloadConfig{
			HTTPConfig:        cfg.HTTPConfig,
			RequestsPerSecond: cfg.RequestsPerSecond,
		},
		Pacer: httputil.NewPacer(cfg.RequestsPerSecond),
		Log:   log,
	}
}

// buildLLM resolves the API key (flag, then config, then .secrets/) and
// returns the client.
func buildLLM(apiKeyFlag string) (llm.Client, error) {
	key := secretDefault(secrets.KeyOpenAI, apiKeyFlag)
	if key == "" {
		key = viper.GetString("llm.api_key")
	}
	if key == "" {
		k, err := secrets.Require(loadedSecrets, secrets.KeyOpenAI)
		if err != nil {
			return nil, err
		}
		key = k
	}
	return llm.NewOpenAI(types.LLMConfig{
		Model:     viper.GetString("llm.model"),
		APIKey:    key,
		MaxTokens: viper.GetInt("llm.max_tokens"),
	}, log), nil
}
