// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the survey-engine pipeline:
// paper records, search queries, stage configuration, and the error taxonomy.
package types

import "time"

// SortBy selects the ordering a source applies to its results.
type SortBy string

const (
	// SortByRelevance orders results by the source's own relevance ranking.
	SortByRelevance SortBy = "relevance"

	// SortByDate orders results newest first and requires a date cutoff.
	SortByDate SortBy = "date"
)

// Valid reports whether the value is a member of the closed sort set.
func (s SortBy) Valid() bool {
	return s == SortByRelevance || s == SortByDate
}

// SearchQuery binds one keyword to the parameters of a single source query.
// Multiple queries (one per keyword) may target the same destination folder;
// their results are merged before ranking.
type SearchQuery struct {
	// Keyword is the search string issued to each source.
	Keyword string `json:"keyword" yaml:"keyword"`

	// NumResults caps how many results to request and how many papers to keep.
	NumResults int `json:"num_results" yaml:"num_results"`

	// SortBy is "relevance" or "date".
	SortBy SortBy `json:"sort_by" yaml:"sort_by"`

	// DateCutoff excludes papers published before it when SortBy is "date".
	// Ignored for relevance ordering.
	DateCutoff time.Time `json:"date_cutoff,omitempty" yaml:"date_cutoff,omitempty"`

	// ScoreThreshold is the minimum combined score a paper must reach to be kept.
	ScoreThreshold float64 `json:"score_threshold" yaml:"score_threshold"`

	// Destination is the folder downloaded PDFs and metadata are written to.
	Destination string `json:"destination_folder" yaml:"destination_folder"`
}
