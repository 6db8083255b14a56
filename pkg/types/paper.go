// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"unicode"
)

// PaperRecord holds metadata for one discovered paper. Records are created by
// search sources, enriched during deduplication, and mutated once more when the
// downloader attaches a local file path. After that they are read-only.
type PaperRecord struct {
	// Title is the paper title as returned by the source that found it first.
	Title string `json:"title" yaml:"title"`

	// Authors is the comma-joined author list.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year. Zero when the source did not report one.
	Year int `json:"publication_year,omitempty" yaml:"publication_year,omitempty"`

	// PublicationDate is the exact publication date when known ("2024-03-18").
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	// CitationCount is the number of citations. Unknown counts are zero; a
	// missing count depresses rank but is never an error.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// CombinedScore is the citation/recency ranking value computed by Rank.
	CombinedScore float64 `json:"combined_score" yaml:"combined_score"`

	// Venue is the publication venue, possibly filled in from a later source
	// during deduplication.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// SourceURL is the link the downloader should try first.
	SourceURL string `json:"link,omitempty" yaml:"link,omitempty"`

	// ArxivURL is a fallback PDF link, when an arXiv version exists.
	ArxivURL string `json:"arxiv_link,omitempty" yaml:"arxiv_link,omitempty"`

	// Source identifies which backend found this record (e.g. "semantic_scholar").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Keyword is the search keyword that first surfaced this record.
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`

	// SearchDate is the date the record was found ("2026-08-29").
	SearchDate string `json:"search_date,omitempty" yaml:"search_date,omitempty"`

	// Downloaded reports whether a PDF was materialized on disk.
	Downloaded bool `json:"downloaded" yaml:"downloaded"`

	// FileName is the deterministic PDF file name within the destination folder.
	FileName string `json:"file_name,omitempty" yaml:"file_name,omitempty"`

	// PDFPath is the local filesystem path, set only after download.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	// Summary is the cached LLM summary, attached by the survey stage.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// CodeVerdict is the code-availability verdict, attached when checked.
	CodeVerdict string `json:"code_verdict,omitempty" yaml:"code_verdict,omitempty"`
}

// NormalizedTitle returns the dedup key for a title: lowercased, punctuation
// stripped, whitespace collapsed. No two kept records may share one.
func NormalizedTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Sections holds the extracted text blocks a summarization session works from.
// Every field is always present; a section the paper lacks is an empty string.
type Sections struct {
	Abstract     string `json:"abstract" yaml:"abstract"`
	Introduction string `json:"introduction" yaml:"introduction"`
	Discussion   string `json:"discussion" yaml:"discussion"`
	Conclusion   string `json:"conclusion" yaml:"conclusion"`
}

// IsEmpty reports whether no section text was extracted at all.
func (s Sections) IsEmpty() bool {
	return s.Abstract == "" && s.Introduction == "" && s.Discussion == "" && s.Conclusion == ""
}
