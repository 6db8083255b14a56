// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// QueryFile is the on-disk representation of a search run and its ranked
// results. A run can be saved to a file and reloaded later without
// re-querying the sources.
type QueryFile struct {
	Query   QueryParams         `yaml:"query"`
	Records []types.PaperRecord `yaml:"records"`
	Summary QuerySummary        `yaml:"summary"`
}

// QueryParams stores the run parameters in a serializable form.
type QueryParams struct {
	Keywords       []string     `yaml:"keywords"`
	NumResults     int          `yaml:"num_results"`
	SortBy         types.SortBy `yaml:"sort_by"`
	DateCutoff     string       `yaml:"date_cutoff,omitempty"`
	ScoreThreshold float64      `yaml:"score_threshold,omitempty"`
	Destination    string       `yaml:"destination_folder,omitempty"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total        int       `yaml:"total"`
	DupsRemoved  int       `yaml:"duplicates_removed"`
	SourceErrors []string  `yaml:"source_errors,omitempty"`
	Timestamp    time.Time `yaml:"timestamp"`
}

const queryDateFmt = "2006-01-02"

// WriteQueryFile saves run parameters and ranked results to a YAML file.
func WriteQueryFile(path string, base types.SearchQuery, keywords []string, result RunResult) error {
	qf := QueryFile{
		Query: QueryParams{
			Keywords:       keywords,
			NumResults:     base.NumResults,
			SortBy:         base.SortBy,
			ScoreThreshold: base.ScoreThreshold,
			Destination:    base.Destination,
		},
		Records: result.Records,
		Summary: QuerySummary{
			Total:        len(result.Records),
			DupsRemoved:  result.DupsRemoved,
			SourceErrors: result.SourceErrors,
			Timestamp:    time.Now(),
		},
	}
	if !base.DateCutoff.IsZero() {
		qf.Query.DateCutoff = base.DateCutoff.Format(queryDateFmt)
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToQuery converts stored QueryParams back into a base SearchQuery.
func (p QueryParams) ToQuery() (types.SearchQuery, error) {
	q := types.SearchQuery{
		NumResults:     p.NumResults,
		SortBy:         p.SortBy,
		ScoreThreshold: p.ScoreThreshold,
		Destination:    p.Destination,
	}
	if p.DateCutoff != "" {
		t, err := time.Parse(queryDateFmt, p.DateCutoff)
		if err != nil {
			return q, fmt.Errorf("invalid date_cutoff %q: %w", p.DateCutoff, err)
		}
		q.DateCutoff = t
	}
	return q, nil
}
