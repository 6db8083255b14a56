// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// --- fakes ---

type fakeSource struct {
	name    string
	results []types.PaperRecord
	err     error
	calls   int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(_ context.Context, _ types.SearchQuery, _ types.SearchConfig) ([]types.PaperRecord, error) {
	f.calls++
	return f.results, f.err
}

// fakeMaterializer marks every record downloaded without touching the network.
type fakeMaterializer struct {
	dest    string
	fetched [][]types.PaperRecord
}

func (f *fakeMaterializer) Fetch(_ context.Context, records []types.PaperRecord, dest string, _ io.Writer) ([]types.PaperRecord, error) {
	f.dest = dest
	out := make([]types.PaperRecord, len(records))
	copy(out, records)
	for i := range out {
		out[i].Downloaded = true
	}
	f.fetched = append(f.fetched, out)
	return out, nil
}

func testEngine(sources ...Source) *Engine {
	return &Engine{
		Sources: sources,
		Cfg: types.SearchConfig{
			NumResults:    20,
			RecencyWeight: 3.5,
		},
		Now: func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) },
	}
}

func relevanceQuery() types.SearchQuery {
	return types.SearchQuery{
		NumResults:  20,
		SortBy:      types.SortByRelevance,
		Destination: "papers",
	}
}

// --- validation ---

func TestRunValidation(t *testing.T) {
	src := &fakeSource{name: "s1"}
	tests := []struct {
		name     string
		engine   *Engine
		query    types.SearchQuery
		keywords []string
		wantKey  string
	}{
		{"no keywords", testEngine(src), relevanceQuery(), nil, "keywords"},
		{"invalid sort", testEngine(src), types.SearchQuery{SortBy: "citations"}, []string{"k"}, "sort_by"},
		{"date sort without cutoff", testEngine(src), types.SearchQuery{SortBy: types.SortByDate}, []string{"k"}, "date_cutoff"},
		{"no sources", testEngine(), relevanceQuery(), []string{"k"}, "sources"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.engine.Run(context.Background(), tt.query, tt.keywords, nil, nil, &bytes.Buffer{})
			var cfgErr *types.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want ConfigurationError", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
		})
	}
}

// --- merging and isolation ---

func TestRunMergesAcrossSources(t *testing.T) {
	s1 := &fakeSource{name: "s1", results: []types.PaperRecord{
		{Title: "Shared Paper", Year: 2025, CitationCount: 10},
		{Title: "Only One", Year: 2025, CitationCount: 5},
	}}
	s2 := &fakeSource{name: "s2", results: []types.PaperRecord{
		{Title: "shared paper", Year: 2025, CitationCount: 40},
		{Title: "Only Two", Year: 2025, CitationCount: 3},
	}}

	result, err := testEngine(s1, s2).Run(context.Background(), relevanceQuery(), []string{"k"}, nil, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(result.Records))
	}
	if result.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", result.DupsRemoved)
	}
	// The shared paper's count is the max across sources, so it ranks first.
	if result.Records[0].Title != "Shared Paper" || result.Records[0].CitationCount != 40 {
		t.Errorf("top record = %+v", result.Records[0])
	}
}

func TestRunSourceFailureIsolated(t *testing.T) {
	dead := &fakeSource{name: "dead", err: fmt.Errorf("connection refused")}
	alive := &fakeSource{name: "alive", results: []types.PaperRecord{
		{Title: "Survivor", Year: 2025, CitationCount: 7},
	}}

	var out bytes.Buffer
	result, err := testEngine(dead, alive).Run(context.Background(), relevanceQuery(), []string{"k"}, nil, nil, &out)
	if err != nil {
		t.Fatalf("one dead source must not fail the run: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].Title != "Survivor" {
		t.Fatalf("records = %+v", result.Records)
	}
	if len(result.SourceErrors) != 1 || !strings.Contains(result.SourceErrors[0], "dead") {
		t.Errorf("SourceErrors = %v", result.SourceErrors)
	}
	if !strings.Contains(out.String(), "warning") {
		t.Error("failure was not reported to the output writer")
	}
}

func TestRunTagsKeywordAndSearchDate(t *testing.T) {
	src := &fakeSource{name: "s", results: []types.PaperRecord{
		{Title: "P", Year: 2025, CitationCount: 1},
	}}
	result, err := testEngine(src).Run(context.Background(), relevanceQuery(), []string{"graph ml"}, nil, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	r := result.Records[0]
	if r.Keyword != "graph ml" {
		t.Errorf("Keyword = %q", r.Keyword)
	}
	if r.SearchDate != "2026-06-15" {
		t.Errorf("SearchDate = %q", r.SearchDate)
	}
}

// --- keyword rounds with a shared merge set ---

func TestRunSharedMergeSetAcrossRounds(t *testing.T) {
	src := &fakeSource{name: "s", results: []types.PaperRecord{
		{Title: "Same Paper", Year: 2025, CitationCount: 9},
	}}
	engine := testEngine(src)
	set := NewMergeSet()

	first, err := engine.Run(context.Background(), relevanceQuery(), []string{"kw1"}, set, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Run(context.Background(), relevanceQuery(), []string{"kw2"}, set, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Records) != 1 || len(second.Records) != 1 {
		t.Fatalf("records = %d then %d, want 1 and 1", len(first.Records), len(second.Records))
	}
	// The paper stays attributed to the keyword that found it first.
	if second.Records[0].Keyword != "kw1" {
		t.Errorf("Keyword = %q, want first round's keyword", second.Records[0].Keyword)
	}
	if second.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", second.DupsRemoved)
	}
}

// --- date filtering ---

func TestRunDateCutoffExcludesOlder(t *testing.T) {
	src := &fakeSource{name: "s", results: []types.PaperRecord{
		{Title: "Old", PublicationDate: "2023-01-10", Year: 2023, CitationCount: 100},
		{Title: "New", PublicationDate: "2025-03-01", Year: 2025, CitationCount: 1},
		{Title: "Undated", CitationCount: 2},
	}}
	query := relevanceQuery()
	query.SortBy = types.SortByDate
	query.DateCutoff = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := testEngine(src).Run(context.Background(), query, []string{"k"}, nil, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	titles := make(map[string]bool)
	for _, r := range result.Records {
		titles[r.Title] = true
	}
	if titles["Old"] {
		t.Error("paper older than the cutoff was kept")
	}
	if !titles["New"] || !titles["Undated"] {
		t.Errorf("kept = %v, want New and Undated", titles)
	}
}

// --- empty results and materialization ---

func TestRunZeroKeptIsNotAnError(t *testing.T) {
	src := &fakeSource{name: "s", results: nil}
	var out bytes.Buffer
	result, err := testEngine(src).Run(context.Background(), relevanceQuery(), []string{"k"}, nil, nil, &out)
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if len(result.Records) != 0 {
		t.Errorf("records = %d, want 0", len(result.Records))
	}
	if !strings.Contains(out.String(), "No papers matched") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunMaterializesKeptRecords(t *testing.T) {
	src := &fakeSource{name: "s", results: []types.PaperRecord{
		{Title: "P", Year: 2025, CitationCount: 3},
	}}
	mat := &fakeMaterializer{}
	query := relevanceQuery()
	query.Destination = "out/papers"

	result, err := testEngine(src).Run(context.Background(), query, []string{"k"}, nil, mat, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if mat.dest != "out/papers" {
		t.Errorf("dest = %q", mat.dest)
	}
	if !result.Records[0].Downloaded {
		t.Error("materializer's download state was dropped")
	}
}

// --- output ---

func TestFormatTable(t *testing.T) {
	var out bytes.Buffer
	FormatTable([]types.PaperRecord{
		{Title: "A Paper", Year: 2025, CitationCount: 12, CombinedScore: 1.5, Keyword: "k"},
	}, 2, &out)
	s := out.String()
	if !strings.Contains(s, "A Paper") || !strings.Contains(s, "2 duplicates removed") {
		t.Errorf("output = %q", s)
	}

	out.Reset()
	FormatTable(nil, 0, &out)
	if !strings.Contains(out.String(), "No results found.") {
		t.Errorf("output = %q", out.String())
	}
}
