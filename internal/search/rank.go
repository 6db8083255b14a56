// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"math"
	"sort"
	"time"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// DefaultRecencyWeight is the exponent applied to paper age in the combined
// score when the configuration does not set one.
const DefaultRecencyWeight = 3.5

// Score computes the combined citation/recency score for one record.
//
// When the record carries an exact publication date the score is
//
//	citations / (((365 + daysAgo) / 365) ^ weight)
//
// otherwise the publication year is used:
//
//	citations / ((currentYear + 1 - year) ^ weight)
//
// Both forms are non-decreasing in citation count and non-increasing in age.
// A record with no year at all is treated as published in the current year,
// and a missing citation count scores as zero citations rather than erroring.
func Score(r types.PaperRecord, weight float64, now time.Time) float64 {
	if weight <= 0 {
		weight = DefaultRecencyWeight
	}
	citations := float64(r.CitationCount)
	if citations < 0 {
		citations = 0
	}

	if r.PublicationDate != "" {
		if pub, err := time.Parse("2006-01-02", r.PublicationDate); err == nil {
			daysAgo := now.Sub(pub).Hours() / 24
			if daysAgo < 0 {
				daysAgo = 0
			}
			return citations / math.Pow((365+daysAgo)/365, weight)
		}
	}

	year := r.Year
	if year <= 0 || year > now.Year() {
		year = now.Year()
	}
	recency := float64(now.Year() + 1 - year)
	return citations / math.Pow(recency, weight)
}

// Rank annotates every record with its combined score and orders the set by
// score descending. Ties break on normalized title, then raw title, so ranking
// is a pure function of the input set and repeated runs produce identical
// orderings.
func Rank(records []types.PaperRecord, weight float64, now time.Time) []types.PaperRecord {
	ranked := make([]types.PaperRecord, len(records))
	copy(ranked, records)

	for i := range ranked {
		ranked[i].CombinedScore = Score(ranked[i], weight, now)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CombinedScore != ranked[j].CombinedScore {
			return ranked[i].CombinedScore > ranked[j].CombinedScore
		}
		ni, nj := types.NormalizedTitle(ranked[i].Title), types.NormalizedTitle(ranked[j].Title)
		if ni != nj {
			return ni < nj
		}
		return ranked[i].Title < ranked[j].Title
	})

	return ranked
}

// ApplyThreshold returns the prefix of a ranked sequence containing at most
// topN records whose score is at least minScore. A non-positive topN means
// unbounded; a zero minScore passes everything. An empty result is valid and
// left to the caller to interpret.
func ApplyThreshold(ranked []types.PaperRecord, topN int, minScore float64) []types.PaperRecord {
	var kept []types.PaperRecord
	for _, r := range ranked {
		if topN > 0 && len(kept) >= topN {
			break
		}
		if r.CombinedScore < minScore {
			// Ranked input is descending, so nothing later can qualify.
			break
		}
		kept = append(kept, r)
	}
	return kept
}
