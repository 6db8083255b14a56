// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic paper sources, merges and ranks the results,
// and hands the kept records to the downloader. Sources are pluggable per the
// Strategy pattern; one dead source degrades a run instead of failing it.
package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/internal/httputil"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// Source queries a single paper index. Implementations must tolerate missing
// citation counts (report zero) and missing dates.
type Source interface {
	Name() string
	Search(ctx context.Context, query types.SearchQuery, cfg types.SearchConfig) ([]types.PaperRecord, error)
}

// Materializer downloads kept records into the destination folder and returns
// them with download state attached. The download stage implements this; tests
// substitute a fake.
type Materializer interface {
	Fetch(ctx context.Context, records []types.PaperRecord, dest string, w io.Writer) ([]types.PaperRecord, error)
}

// Engine composes sources, deduplication, ranking, threshold filtering, and
// the downloader into the user-facing search operation.
type Engine struct {
	Sources []Source
	Cfg     types.SearchConfig
	Pacer   *httputil.Pacer
	Log     *zap.Logger

	// Now is the clock used for scoring. Nil means time.Now.
	Now func() time.Time
}

// RunResult holds the outcome of one search run.
type RunResult struct {
	// Records are the kept papers in rank order, with download state.
	Records []types.PaperRecord

	// DupsRemoved counts duplicate occurrences dropped across all queries.
	DupsRemoved int

	// SourceErrors lists per-keyword source failures ("keyword/source: cause").
	// A non-empty list with non-empty Records is a partial result, not an error.
	SourceErrors []string
}

// Run issues one query per keyword against every configured source, merges the
// results through set (a fresh one when nil, or a shared one when the caller
// is accumulating across keyword rounds), ranks and threshold-filters the
// merged records, and materializes the kept ones. An unreachable source for
// one keyword is logged and skipped; zero results across all keywords is
// reported through w and returned as an empty result, not an error.
func (e *Engine) Run(ctx context.Context, base types.SearchQuery, keywords []string, set *MergeSet, mat Materializer, w io.Writer) (RunResult, error) {
	if len(keywords) == 0 {
		return RunResult{}, &types.ConfigurationError{Key: "keywords", Reason: "provide at least one keyword"}
	}
	if !base.SortBy.Valid() {
		return RunResult{}, &types.ConfigurationError{Key: "sort_by", Reason: fmt.Sprintf("unknown value %q", base.SortBy)}
	}
	if base.SortBy == types.SortByDate && base.DateCutoff.IsZero() {
		return RunResult{}, &types.ConfigurationError{Key: "date_cutoff", Reason: "required when sorting by date"}
	}
	if len(e.Sources) == 0 {
		return RunResult{}, &types.ConfigurationError{Key: "sources", Reason: "no search sources enabled"}
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	if set == nil {
		set = NewMergeSet()
	}

	searchDate := now().Format("2006-01-02")
	var sourceErrors []string

	for i, keyword := range keywords {
		fmt.Fprintf(w, "------Searching for keyword %d/%d: %q------\n", i+1, len(keywords), keyword)
		query := base
		query.Keyword = keyword

		for _, src := range e.Sources {
			if e.Pacer != nil {
				if err := e.Pacer.Wait(ctx); err != nil {
					return RunResult{}, err
				}
			}
			records, err := src.Search(ctx, query, e.Cfg)
			if err != nil {
				msg := fmt.Sprintf("%s/%s: %v", keyword, src.Name(), err)
				sourceErrors = append(sourceErrors, msg)
				e.logger().Warn("source failed",
					zap.String("keyword", keyword),
					zap.String("source", src.Name()),
					zap.Error(err))
				fmt.Fprintf(w, "warning: source %s failed for %q: %v\n", src.Name(), keyword, err)
				continue
			}

			tagged := records[:0:0]
			for _, r := range records {
				if query.SortBy == types.SortByDate && tooOld(r, query.DateCutoff) {
					continue
				}
				if r.Keyword == "" {
					r.Keyword = keyword
				}
				r.SearchDate = searchDate
				tagged = append(tagged, r)
			}
			set.Add(tagged)
		}
	}

	ranked := Rank(set.Records(), e.Cfg.RecencyWeight, now())
	kept := ApplyThreshold(ranked, base.NumResults, base.ScoreThreshold)

	if len(kept) == 0 {
		fmt.Fprintf(w, "No papers matched (threshold %.3g across %d keyword(s)).\n",
			base.ScoreThreshold, len(keywords))
		return RunResult{DupsRemoved: set.Removed(), SourceErrors: sourceErrors}, nil
	}

	// A nil materializer means a ranking-only run.
	if mat == nil {
		return RunResult{Records: kept, DupsRemoved: set.Removed(), SourceErrors: sourceErrors}, nil
	}

	fetched, err := mat.Fetch(ctx, kept, base.Destination, w)
	if err != nil {
		return RunResult{Records: kept, DupsRemoved: set.Removed(), SourceErrors: sourceErrors}, err
	}

	return RunResult{
		Records:      fetched,
		DupsRemoved:  set.Removed(),
		SourceErrors: sourceErrors,
	}, nil
}

// tooOld reports whether a record predates the cutoff. Records with no date
// information at all are kept; date filtering only ever excludes papers known
// to be older than the cutoff.
func tooOld(r types.PaperRecord, cutoff time.Time) bool {
	if r.PublicationDate != "" {
		if pub, err := time.Parse("2006-01-02", r.PublicationDate); err == nil {
			return pub.Before(cutoff)
		}
	}
	if r.Year > 0 {
		return r.Year < cutoff.Year()
	}
	return false
}

func (e *Engine) logger() *zap.Logger {
	if e.Log != nil {
		return e.Log
	}
	return zap.NewNop()
}

// FormatTable writes kept records as a human-readable table to w.
func FormatTable(records []types.PaperRecord, dupsRemoved int, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-5s  %-6s  %-8s  %s\n",
		"Rank", "Title", "Year", "Cites", "Score", "Keyword")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range records {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if r.Year > 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-5s  %-6d  %-8.3g  %s\n",
			i+1, title, year, r.CitationCount, r.CombinedScore, r.Keyword)
	}

	fmt.Fprintf(w, "\n%d results", len(records))
	if dupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", dupsRemoved)
	}
	fmt.Fprintln(w)
}
