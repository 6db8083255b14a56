// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/survey-engine/internal/httputil"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// scholarBase is the Google Scholar results endpoint. Declared as a var so
// tests can substitute an httptest server.
var scholarBase = "https://scholar.google.com/scholar"

// citedByPattern pulls the count out of a "Cited by 1234" footer link.
var citedByPattern = regexp.MustCompile(`Cited by (\d+)`)

// metaYearPattern finds a publication year in the byline ("A Author - Conf, 2023 - host").
var metaYearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ScholarSource scrapes Google Scholar result pages. Scholar has no API;
// citation counts come from the "Cited by N" footer of each result block.
type ScholarSource struct {
	Client *http.Client
}

// Name returns the source identifier.
func (s *ScholarSource) Name() string { return "scholar" }

// Search fetches one results page for the keyword and parses its result blocks.
func (s *ScholarSource) Search(ctx context.Context, query types.SearchQuery, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	params := url.Values{
		"q":  {query.Keyword},
		"hl": {"en"},
	}
	if query.SortBy == types.SortByDate {
		params.Set("scisbd", "1")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scholarBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, &types.ExternalServiceError{Service: s.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.ExternalServiceError{
			Service: s.Name(),
			Err:     fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &types.ExternalServiceError{Service: s.Name(), Err: fmt.Errorf("parsing page: %w", err)}
	}

	limit := query.NumResults
	if limit <= 0 {
		limit = cfg.NumResults
	}

	var records []types.PaperRecord
	doc.Find("div.gs_ri").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if limit > 0 && len(records) >= limit {
			return false
		}
		r, ok := parseScholarResult(sel)
		if ok {
			records = append(records, r)
		}
		return true
	})
	return records, nil
}

// parseScholarResult extracts one record from a result block. Blocks without
// a title are skipped; blocks without a "Cited by" link get a zero count.
func parseScholarResult(sel *goquery.Selection) (types.PaperRecord, bool) {
	titleLink := sel.Find("h3.gs_rt a").First()
	title := strings.TrimSpace(titleLink.Text())
	if title == "" {
		// Citations-only entries render the title without an anchor.
		title = strings.TrimSpace(sel.Find("h3.gs_rt").Text())
		title = strings.TrimSpace(strings.TrimPrefix(title, "[CITATION]"))
	}
	if title == "" {
		return types.PaperRecord{}, false
	}

	r := types.PaperRecord{
		Title:  title,
		Source: "scholar",
	}
	if href, ok := titleLink.Attr("href"); ok {
		r.SourceURL = href
	}

	// Byline: "A Author, B Author - Venue, 2023 - publisher.host".
	meta := strings.TrimSpace(sel.Find("div.gs_a").Text())
	if meta != "" {
		parts := strings.Split(meta, " - ")
		r.Authors = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			r.Venue = strings.TrimSpace(strings.TrimRight(metaYearPattern.ReplaceAllString(parts[1], ""), ", "))
		}
		if m := metaYearPattern.FindString(meta); m != "" {
			if year, err := strconv.Atoi(m); err == nil {
				r.Year = year
			}
		}
	}

	r.Abstract = strings.TrimSpace(sel.Find("div.gs_rs").Text())

	sel.Find("div.gs_fl a").Each(func(_ int, a *goquery.Selection) {
		if m := citedByPattern.FindStringSubmatch(a.Text()); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				r.CitationCount = n
			}
		}
	})

	return r, true
}
