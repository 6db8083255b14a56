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

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlexSource queries the OpenAlex API.
type OpenAlexSource struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the source identifier.
func (s *OpenAlexSource) Name() string { return "openalex" }

// Search queries the OpenAlex API for one keyword.
func (s *OpenAlexSource) Search(ctx context.Context, query types.SearchQuery, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	perPage := query.NumResults
	if perPage <= 0 {
		perPage = cfg.NumResults
	}
	if perPage <= 0 {
		perPage = 30
	}
	if perPage > 200 {
		perPage = 200
	}

	params := url.Values{
		"search":   {query.Keyword},
		"per_page": {fmt.Sprintf("%d", perPage)},
		"page":     {"1"},
	}
	if query.SortBy == types.SortByDate {
		params.Set("sort", "publication_date:desc")
		if !query.DateCutoff.IsZero() {
			params.Set("filter", "from_publication_date:"+query.DateCutoff.Format("2006-01-02"))
		}
	}
	if s.Email != "" {
		params.Set("mailto", s.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexSearchBase+"?"+params.Encode(), nil)
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

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, &types.ExternalServiceError{Service: s.Name(), Err: fmt.Errorf("parsing response: %w", err)}
	}

	records := make([]types.PaperRecord, 0, len(oar.Results))
	for _, w := range oar.Results {
		title := strings.TrimSpace(w.Title)
		if title == "" {
			continue
		}
		var authors []string
		for _, a := range w.Authorships {
			if a.Author.DisplayName != "" {
				authors = append(authors, a.Author.DisplayName)
			}
		}
		r := types.PaperRecord{
			Title:           title,
			Authors:         strings.Join(authors, ", "),
			Year:            w.PublicationYear,
			PublicationDate: w.PublicationDate,
			CitationCount:   w.CitedByCount,
			Abstract:        reconstructAbstract(w.AbstractInvertedIndex),
			Source:          s.Name(),
		}
		if w.PrimaryLocation != nil {
			r.SourceURL = w.PrimaryLocation.PdfURL
			if w.PrimaryLocation.Source != nil {
				r.Venue = w.PrimaryLocation.Source.DisplayName
			}
		}
		if r.SourceURL == "" && w.OpenAccess != nil {
			r.SourceURL = w.OpenAccess.OaURL
		}
		records = append(records, r)
	}
	return records, nil
}

// reconstructAbstract rebuilds plain text from OpenAlex's inverted index,
// which maps each word to the positions it occupies.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	maxPos := -1
	for _, positions := range index {
		for _, p := range positions {
			if p > maxPos {
				maxPos = p
			}
		}
	}
	words := make([]string, maxPos+1)
	for word, positions := range index {
		for _, p := range positions {
			if p >= 0 && p < len(words) {
				words[p] = word
			}
		}
	}
	return strings.Join(strings.Fields(strings.Join(words, " ")), " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	Title                 string              `json:"title"`
	PublicationYear       int                 `json:"publication_year"`
	PublicationDate       string              `json:"publication_date"`
	CitedByCount          int                 `json:"cited_by_count"`
	Authorships           []openAlexAuthor    `json:"authorships"`
	PrimaryLocation       *openAlexLocation   `json:"primary_location"`
	OpenAccess            *openAlexOpenAccess `json:"open_access"`
	AbstractInvertedIndex map[string][]int    `json:"abstract_inverted_index"`
}

type openAlexAuthor struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexLocation struct {
	PdfURL string `json:"pdf_url"`
	Source *struct {
		DisplayName string `json:"display_name"`
	} `json:"source"`
}

type openAlexOpenAccess struct {
	OaURL string `json:"oa_url"`
}
