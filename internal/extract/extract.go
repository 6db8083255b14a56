// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns a paper PDF into the section texts a summarization
// session works from. Text extraction shells out to pdftotext; section
// boundaries are found by heading heuristics over page windows (the abstract
// lives in the first pages, discussion and conclusion in the last).
package extract

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// Extractor splits a paper into section text blocks. Implementations must
// return every section key, using an empty string for sections the paper
// lacks, and must fail with an ExtractionError when no text is available.
type Extractor interface {
	Extract(pdfPath string) (types.Sections, error)
}

// Page windows mirroring where papers put each section.
const (
	abstractPages   = 2
	introPages      = 5
	endingPages     = 3
	maxSectionChars = 12000
)

// Pdftotext extracts text with the poppler pdftotext binary.
type Pdftotext struct {
	// Binary overrides the executable name (default "pdftotext").
	Binary string
}

// Extract reads the PDF's text and splits it into sections. The error is an
// ExtractionError when the binary is unavailable or the PDF has no usable
// text, so callers can refuse to spend LLM calls on it.
func (p *Pdftotext) Extract(pdfPath string) (types.Sections, error) {
	bin := p.Binary
	if bin == "" {
		bin = "pdftotext"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bin, "-layout", pdfPath, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return types.Sections{}, &types.ExtractionError{
			Path: pdfPath,
			Err:  fmt.Errorf("%s: %v: %s", bin, err, strings.TrimSpace(stderr.String())),
		}
	}

	pages := SplitPages(stdout.String())
	sections := SplitSections(pages)
	if sections.IsEmpty() {
		return types.Sections{}, &types.ExtractionError{Path: pdfPath}
	}
	return sections, nil
}

// SplitPages splits pdftotext output on form feeds and drops blank pages.
func SplitPages(text string) []string {
	var pages []string
	for _, page := range strings.Split(text, "\f") {
		if strings.TrimSpace(page) != "" {
			pages = append(pages, page)
		}
	}
	return pages
}

// SplitSections locates the four section texts inside page windows. Sections
// that cannot be found come back empty; only a PDF with no text at all makes
// the result empty overall.
func SplitSections(pages []string) types.Sections {
	if len(pages) == 0 {
		return types.Sections{}
	}

	head := firstPages(pages, abstractPages)
	intro := firstPages(pages, introPages)
	tail := lastPages(pages, endingPages)

	s := types.Sections{
		Abstract:     sectionText(head, []string{"abstract"}),
		Introduction: sectionText(intro, []string{"introduction", "background", "related work"}),
		Discussion:   sectionText(tail, []string{"discussion", "limitations", "analysis", "future work"}),
		Conclusion:   sectionText(tail, []string{"conclusion", "conclusions", "concluding remarks"}),
	}

	// A paper without a recognizable abstract heading still has its opening
	// text on the first pages; fall back to a trimmed slice of them so the
	// session has something to prompt with.
	if s.Abstract == "" && s.Introduction == "" {
		s.Abstract = clip(strings.TrimSpace(head), maxSectionChars/4)
	}
	return s
}

// firstPages joins the first n pages.
func firstPages(pages []string, n int) string {
	if n > len(pages) {
		n = len(pages)
	}
	return strings.Join(pages[:n], "\n")
}

// lastPages joins the last n pages.
func lastPages(pages []string, n int) string {
	if n > len(pages) {
		n = len(pages)
	}
	return strings.Join(pages[len(pages)-n:], "\n")
}

// stopHeadings end any section: running into one of these truncates the text.
var stopHeadings = []string{
	"abstract", "introduction", "background", "related work", "method",
	"methods", "methodology", "approach", "experiments", "results",
	"evaluation", "discussion", "limitations", "analysis", "future work",
	"conclusion", "conclusions", "concluding remarks", "acknowledgment",
	"acknowledgments", "acknowledgement", "acknowledgements", "references",
	"bibliography", "appendix",
}

// sectionText returns the text between the first heading matching one of
// names and the next section heading after it.
func sectionText(text string, names []string) string {
	lower := strings.ToLower(text)

	start := -1
	for _, name := range names {
		if idx := headingIndex(lower, name, 0); idx >= 0 && (start < 0 || idx < start) {
			start = idx
		}
	}
	if start < 0 {
		return ""
	}

	// Skip past the heading line itself.
	bodyStart := start
	if nl := strings.IndexByte(text[start:], '\n'); nl >= 0 {
		bodyStart = start + nl + 1
	}

	end := len(text)
	for _, stop := range stopHeadings {
		if idx := headingIndex(lower, stop, bodyStart); idx >= 0 && idx < end {
			end = idx
		}
	}

	return clip(strings.TrimSpace(text[bodyStart:end]), maxSectionChars)
}

// headingIndex finds name appearing as a heading (at a line start, possibly
// behind a section number) at or after from. Returns -1 when absent.
func headingIndex(lower, name string, from int) int {
	for {
		idx := strings.Index(lower[from:], name)
		if idx < 0 {
			return -1
		}
		abs := from + idx
		if isHeadingAt(lower, abs, len(name)) {
			return abs
		}
		from = abs + 1
	}
}

// isHeadingAt reports whether the match at pos looks like a heading: preceded
// on its line only by whitespace, digits, and dots (section numbers), and
// followed by a line break or whitespace-only remainder of the line.
func isHeadingAt(lower string, pos, nameLen int) bool {
	lineStart := strings.LastIndexByte(lower[:pos], '\n') + 1
	for _, r := range lower[lineStart:pos] {
		if r != ' ' && r != '\t' && r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	rest := lower[pos+nameLen:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	rest = strings.TrimSpace(rest)
	// Allow trailing punctuation like "1. Introduction." but not prose.
	return rest == "" || rest == "." || rest == ":" || rest == "s"
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
