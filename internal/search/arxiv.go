// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/survey-engine/internal/httputil"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom API. arXiv reports no citation counts,
// so its records score on recency alone until another source fills the count
// in during deduplication.
type ArxivSource struct {
	Client *http.Client
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Search queries the arXiv API for one keyword.
func (s *ArxivSource) Search(ctx context.Context, query types.SearchQuery, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	maxResults := query.NumResults
	if maxResults <= 0 {
		maxResults = cfg.NumResults
	}
	if maxResults <= 0 {
		maxResults = 30
	}

	params := url.Values{
		"search_query": {"all:" + query.Keyword},
		"max_results":  {fmt.Sprintf("%d", maxResults)},
	}
	if query.SortBy == types.SortByDate {
		params.Set("sortBy", "submittedDate")
		params.Set("sortOrder", "descending")
	} else {
		params.Set("sortBy", "relevance")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
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

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, &types.ExternalServiceError{Service: s.Name(), Err: fmt.Errorf("parsing feed: %w", err)}
	}

	records := make([]types.PaperRecord, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		title := strings.Join(strings.Fields(entry.Title), " ")
		if title == "" {
			continue
		}
		var authors []string
		for _, a := range entry.Authors {
			authors = append(authors, strings.TrimSpace(a.Name))
		}
		r := types.PaperRecord{
			Title:    title,
			Authors:  strings.Join(authors, ", "),
			Abstract: strings.TrimSpace(entry.Summary),
			Source:   s.Name(),
			Venue:    "arXiv",
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			r.Year = t.Year()
			r.PublicationDate = t.Format("2006-01-02")
		}
		for _, link := range entry.Links {
			if link.Title == "pdf" || strings.Contains(link.Href, "/pdf/") {
				r.SourceURL = link.Href
				r.ArxivURL = link.Href
				break
			}
		}
		if r.SourceURL == "" && entry.ID != "" {
			r.SourceURL = strings.Replace(entry.ID, "/abs/", "/pdf/", 1)
			r.ArxivURL = r.SourceURL
		}
		records = append(records, r)
	}
	return records, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}
