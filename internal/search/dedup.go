// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import "github.com/pdiddy/survey-engine/pkg/types"

// MergeSet accumulates paper records across queries and keyword rounds while
// keeping at most one record per normalized title. The record from the query
// that found a paper first is kept, including its keyword and source
// provenance; later occurrences are dropped silently after filling fields the
// kept copy is missing. Duplicates are expected, not exceptional.
type MergeSet struct {
	seen    map[string]int // normalized title → index in kept
	kept    []types.PaperRecord
	removed int
}

// NewMergeSet returns an empty merge set.
func NewMergeSet() *MergeSet {
	return &MergeSet{seen: make(map[string]int)}
}

// Add folds a result sequence into the set. Records with empty titles are
// ignored. For a fixed sequence of Add calls the kept records and their order
// are deterministic.
func (m *MergeSet) Add(records []types.PaperRecord) {
	for _, r := range records {
		key := types.NormalizedTitle(r.Title)
		if key == "" {
			continue
		}
		if idx, ok := m.seen[key]; ok {
			fillGaps(&m.kept[idx], r)
			m.removed++
			continue
		}
		m.seen[key] = len(m.kept)
		m.kept = append(m.kept, r)
	}
}

// Contains reports whether a paper with this title is already in the set.
func (m *MergeSet) Contains(title string) bool {
	_, ok := m.seen[types.NormalizedTitle(title)]
	return ok
}

// Records returns the deduplicated sequence in first-seen order.
func (m *MergeSet) Records() []types.PaperRecord {
	out := make([]types.PaperRecord, len(m.kept))
	copy(out, m.kept)
	return out
}

// Removed returns how many duplicate occurrences were dropped so far.
func (m *MergeSet) Removed() int { return m.removed }

// Deduplicate merges one or more result sequences into a single sequence with
// no two records sharing a normalized title. Merging a set with itself yields
// the set unchanged.
func Deduplicate(sequences ...[]types.PaperRecord) ([]types.PaperRecord, int) {
	set := NewMergeSet()
	for _, seq := range sequences {
		set.Add(seq)
	}
	return set.Records(), set.Removed()
}

// fillGaps copies fields the kept record lacks from a duplicate occurrence.
// Provenance fields (title, keyword, source) stay with the first-seen copy;
// the citation count takes the maximum so a stale count from one source never
// depresses the paper's rank.
func fillGaps(dst *types.PaperRecord, src types.PaperRecord) {
	if dst.Authors == "" {
		dst.Authors = src.Authors
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.Year == 0 {
		dst.Year = src.Year
	}
	if dst.PublicationDate == "" {
		dst.PublicationDate = src.PublicationDate
	}
	if dst.SourceURL == "" {
		dst.SourceURL = src.SourceURL
	}
	if dst.ArxivURL == "" {
		dst.ArxivURL = src.ArxivURL
	}
	if src.CitationCount > dst.CitationCount {
		dst.CitationCount = src.CitationCount
	}
}
