// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codecheck decides whether a paper's code is really available: it
// pulls a repository link out of an LLM answer and probes the link itself.
// A dead link is its own verdict — a paper claiming code behind a dead link
// is not the same as a paper stating no code exists.
package codecheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Verdict is the three-valued code-availability outcome.
type Verdict string

const (
	// VerdictNoLink means the answer contained no repository link.
	VerdictNoLink Verdict = "no-link-found"

	// VerdictReachable means a link was found and responded.
	VerdictReachable Verdict = "link-found-reachable"

	// VerdictUnreachable means a link was found but the probe failed.
	VerdictUnreachable Verdict = "link-found-unreachable"
)

// NotAvailable is the sentinel the code-check prompt instructs the model to
// answer when a paper provides no repository.
const NotAvailable = "not available"

// repoLinkPattern matches links on known repository hosts.
var repoLinkPattern = regexp.MustCompile(`https?://(?:www\.)?(?:github\.com|gitlab\.com|bitbucket\.org|codeberg\.org)/[^\s"'<>\)\]\}]+`)

// Result pairs the verdict with the link it concerns.
type Result struct {
	Verdict Verdict `json:"verdict"`
	Link    string  `json:"link,omitempty"`
}

// ExtractLink returns the first repository link in the response, trimmed of
// trailing punctuation, or "" when there is none.
func ExtractLink(response string) string {
	link := repoLinkPattern.FindString(response)
	return strings.TrimRight(link, ".,;")
}

// Check extracts a repository link from the response and probes it. No link
// yields VerdictNoLink; a link that responds yields VerdictReachable; a link
// that does not is VerdictUnreachable, never coerced into "no link".
func Check(ctx context.Context, client *http.Client, response string) Result {
	link := ExtractLink(response)
	if link == "" {
		return Result{Verdict: VerdictNoLink}
	}
	if probe(ctx, client, link) {
		return Result{Verdict: VerdictReachable, Link: link}
	}
	return Result{Verdict: VerdictUnreachable, Link: link}
}

// probe HEADs the link, falling back to GET for hosts that refuse HEAD.
func probe(ctx context.Context, client *http.Client, link string) bool {
	for _, method := range []string{http.MethodHead, http.MethodGet} {
		req, err := http.NewRequestWithContext(ctx, method, link, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 400:
			return true
		case resp.StatusCode == http.StatusMethodNotAllowed && method == http.MethodHead:
			continue
		default:
			return false
		}
	}
	return false
}

// Validate is the session validator for code-check answers: the model must
// answer either the "not available" sentinel or a bare repository link.
// Anything else (prose, a non-repository URL) is rejected so the session can
// re-ask instead of storing junk.
func Validate(response string) error {
	answer := strings.TrimSpace(response)
	if strings.EqualFold(answer, NotAvailable) {
		return nil
	}
	u, err := url.Parse(answer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("answer is %q instead of a repository link or %q", answer, NotAvailable)
	}
	if ExtractLink(answer) == "" {
		return fmt.Errorf("answer is %q which is not on a known repository host", answer)
	}
	return nil
}
