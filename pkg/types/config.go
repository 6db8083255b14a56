// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "survey-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// NumResults is the number of results to request per keyword (default 30).
	NumResults int `json:"num_results" yaml:"num_results"`

	// RecencyWeight controls how strongly recency discounts citations in the
	// combined score (default 3.5).
	RecencyWeight float64 `json:"recency_weight" yaml:"recency_weight"`

	// RequestsPerSecond paces outbound source queries and downloads (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// EnableSemanticScholar controls whether the Semantic Scholar source is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// EnableOpenAlex controls whether the OpenAlex source is used.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex"`

	// EnableArxiv controls whether the arXiv source is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableScholar controls whether the Google Scholar HTML source is used.
	EnableScholar bool `json:"enable_scholar" yaml:"enable_scholar"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`
}

// DownloadConfig holds settings for materializing kept papers to disk.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// Destination is the folder PDFs and the metadata file are written to.
	Destination string `json:"destination_folder" yaml:"destination_folder"`

	// RequestsPerSecond paces consecutive downloads (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// LLMConfig holds settings for stages that call the LLM API.
type LLMConfig struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the LLM API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the completion length per call (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// ThresholdType selects how the organizer trims the ranked corpus.
type ThresholdType string

const (
	// ThresholdRank keeps the top N papers by rank.
	ThresholdRank ThresholdType = "rank"

	// ThresholdScore keeps papers whose combined score clears the minimum.
	ThresholdScore ThresholdType = "score"
)

// OrganizeConfig holds settings for organizing a downloaded folder.
type OrganizeConfig struct {
	// SourceFolder is the folder holding downloaded PDFs and metadata.
	SourceFolder string `json:"source_folder" yaml:"source_folder"`

	// TargetName is the organized subfolder name (default "papers_organized").
	TargetName string `json:"target_name" yaml:"target_name"`

	// ThresholdType is "rank" or "score".
	ThresholdType ThresholdType `json:"threshold_type" yaml:"threshold_type"`

	// ScoreThreshold is the minimum combined score when filtering by score.
	ScoreThreshold float64 `json:"score_threshold" yaml:"score_threshold"`

	// RankThreshold is the number of top papers to keep when filtering by rank.
	RankThreshold int `json:"rank_threshold" yaml:"rank_threshold"`

	// OrderByScore prefixes organized file names with rank and score.
	OrderByScore bool `json:"order_by_score" yaml:"order_by_score"`

	// ZipFolder archives the organized folder after copying.
	ZipFolder bool `json:"zip_folder" yaml:"zip_folder"`
}

// CorpusConfig holds settings for the cross-run corpus index.
type CorpusConfig struct {
	// IndexPath is the SQLite database path (default "corpus/index.db").
	IndexPath string `json:"index_path" yaml:"index_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search   SearchConfig   `json:"search" yaml:"search"`
	Download DownloadConfig `json:"download" yaml:"download"`
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Organize OrganizeConfig `json:"organize" yaml:"organize"`
	Corpus   CorpusConfig   `json:"corpus" yaml:"corpus"`
}
