// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"testing"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// --- MergeSet ---

func TestMergeSetKeepsFirstSeen(t *testing.T) {
	set := NewMergeSet()
	set.Add([]types.PaperRecord{
		{Title: "Graph Attention Networks", Source: "semantic_scholar", Keyword: "attention"},
	})
	set.Add([]types.PaperRecord{
		{Title: "Graph  Attention   Networks", Source: "openalex", Keyword: "graphs"},
	})

	records := set.Records()
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	if records[0].Source != "semantic_scholar" || records[0].Keyword != "attention" {
		t.Errorf("provenance should stay with first occurrence, got %s/%s",
			records[0].Source, records[0].Keyword)
	}
	if set.Removed() != 1 {
		t.Errorf("Removed = %d, want 1", set.Removed())
	}
}

func TestMergeSetFillsGapsFromDuplicates(t *testing.T) {
	set := NewMergeSet()
	set.Add([]types.PaperRecord{
		{Title: "A Paper", CitationCount: 10},
	})
	set.Add([]types.PaperRecord{
		{Title: "a paper", Authors: "Doe, J.", Abstract: "An abstract.", Year: 2024, CitationCount: 25},
	})

	r := set.Records()[0]
	if r.Authors != "Doe, J." || r.Abstract != "An abstract." || r.Year != 2024 {
		t.Errorf("missing fields not filled: %+v", r)
	}
	if r.CitationCount != 25 {
		t.Errorf("CitationCount = %d, want max of both sources (25)", r.CitationCount)
	}
}

func TestMergeSetDoesNotOverwriteExisting(t *testing.T) {
	set := NewMergeSet()
	set.Add([]types.PaperRecord{
		{Title: "A Paper", Authors: "First, A.", CitationCount: 30},
	})
	set.Add([]types.PaperRecord{
		{Title: "A Paper", Authors: "Second, B.", CitationCount: 5},
	})

	r := set.Records()[0]
	if r.Authors != "First, A." {
		t.Errorf("Authors = %q, want first-seen value", r.Authors)
	}
	if r.CitationCount != 30 {
		t.Errorf("CitationCount = %d, lower duplicate count must not win", r.CitationCount)
	}
}

func TestMergeSetIgnoresEmptyTitles(t *testing.T) {
	set := NewMergeSet()
	set.Add([]types.PaperRecord{{Title: ""}, {Title: "   "}, {Title: "Real"}})
	if got := len(set.Records()); got != 1 {
		t.Errorf("len = %d, want 1", got)
	}
}

func TestMergeSetContains(t *testing.T) {
	set := NewMergeSet()
	set.Add([]types.PaperRecord{{Title: "Deep Learning"}})
	if !set.Contains("DEEP learning") {
		t.Error("Contains should match case-insensitively")
	}
	if set.Contains("Shallow Learning") {
		t.Error("Contains reported a title that was never added")
	}
}

// --- Deduplicate ---

func TestDeduplicateIdempotent(t *testing.T) {
	records := []types.PaperRecord{
		{Title: "One", CitationCount: 1},
		{Title: "Two", CitationCount: 2},
	}
	once, removed := Deduplicate(records)
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	twice, removed := Deduplicate(once, once)
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if len(twice) != len(once) {
		t.Fatalf("len = %d, want %d", len(twice), len(once))
	}
	for i := range once {
		if twice[i] != once[i] {
			t.Errorf("record %d changed on re-merge: %+v vs %+v", i, twice[i], once[i])
		}
	}
}

func TestDeduplicateAcrossSequences(t *testing.T) {
	a := []types.PaperRecord{{Title: "Shared"}, {Title: "Only A"}}
	b := []types.PaperRecord{{Title: "shared"}, {Title: "Only B"}}
	merged, removed := Deduplicate(a, b)
	if len(merged) != 3 || removed != 1 {
		t.Errorf("len = %d removed = %d, want 3 and 1", len(merged), removed)
	}
}
