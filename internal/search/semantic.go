// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/survey-engine/internal/httputil"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,year,publicationDate,citationCount,venue,openAccessPdf,externalIds"

// SemanticScholarSource queries the Semantic Scholar Graph API.
type SemanticScholarSource struct {
	Client *http.Client
	APIKey string
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return "semantic_scholar" }

// Search queries the Semantic Scholar API for one keyword. Papers without a
// citationCount field come back with a zero count.
func (s *SemanticScholarSource) Search(ctx context.Context, query types.SearchQuery, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	limit := query.NumResults
	if limit <= 0 {
		limit = cfg.NumResults
	}
	if limit <= 0 {
		limit = 30
	}

	params := url.Values{
		"query":  {query.Keyword},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {semanticFields},
	}
	if query.SortBy == types.SortByDate && !query.DateCutoff.IsZero() {
		params.Set("publicationDateOrYear", query.DateCutoff.Format("2006-01-02")+":")
		params.Set("sort", "publicationDate:desc")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

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

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &types.ExternalServiceError{Service: s.Name(), Err: fmt.Errorf("parsing response: %w", err)}
	}

	records := make([]types.PaperRecord, 0, len(sr.Data))
	for _, p := range sr.Data {
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		var authors []string
		for _, a := range p.Authors {
			authors = append(authors, a.Name)
		}
		r := types.PaperRecord{
			Title:           strings.TrimSpace(p.Title),
			Authors:         strings.Join(authors, ", "),
			Year:            p.Year,
			PublicationDate: p.PublicationDate,
			CitationCount:   p.CitationCount,
			Venue:           p.Venue,
			Abstract:        p.Abstract,
			Source:          s.Name(),
		}
		if p.OpenAccessPdf != nil {
			r.SourceURL = p.OpenAccessPdf.URL
		}
		if p.ExternalIds != nil && p.ExternalIds.ArXiv != "" {
			r.ArxivURL = "https://arxiv.org/pdf/" + p.ExternalIds.ArXiv
			if r.SourceURL == "" {
				r.SourceURL = r.ArxivURL
			}
		}
		records = append(records, r)
	}
	return records, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title           string             `json:"title"`
	Abstract        string             `json:"abstract"`
	Year            int                `json:"year"`
	PublicationDate string             `json:"publicationDate"`
	CitationCount   int                `json:"citationCount"`
	Venue           string             `json:"venue"`
	Authors         []semanticAuthor   `json:"authors"`
	OpenAccessPdf   *semanticOpenPDF   `json:"openAccessPdf"`
	ExternalIds     *semanticExternals `json:"externalIds"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticOpenPDF struct {
	URL string `json:"url"`
}

type semanticExternals struct {
	ArXiv string `json:"ArXiv"`
	DOI   string `json:"DOI"`
}
