// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codecheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- ExtractLink ---

func TestExtractLink(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"bare github link", "https://github.com/pytorch/pytorch", "https://github.com/pytorch/pytorch"},
		{"link inside prose", "The code is at https://github.com/org/repo.", "https://github.com/org/repo"},
		{"gitlab", "https://gitlab.com/group/project", "https://gitlab.com/group/project"},
		{"bitbucket", "see https://bitbucket.org/team/repo;", "https://bitbucket.org/team/repo"},
		{"codeberg", "https://codeberg.org/dev/tool", "https://codeberg.org/dev/tool"},
		{"www prefix", "http://www.github.com/a/b", "http://www.github.com/a/b"},
		{"unknown host", "https://example.com/code", ""},
		{"sentinel", "not available", ""},
		{"no url at all", "the authors promise code upon acceptance", ""},
		{"trailing paren stripped by pattern", "(https://github.com/a/b)", "https://github.com/a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLink(tt.response); got != tt.want {
				t.Errorf("ExtractLink(%q) = %q, want %q", tt.response, got, tt.want)
			}
		})
	}
}

// --- Validate ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
	}{
		{"sentinel", "not available", false},
		{"sentinel case insensitive", "Not Available", false},
		{"sentinel with whitespace", "  not available \n", false},
		{"github link", "https://github.com/org/repo", false},
		{"prose around link", "the code is at https://github.com/org/repo", true},
		{"non-repository url", "https://example.com/downloads", true},
		{"empty", "", true},
		{"hallucinated prose", "The code will be released soon.", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.response)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) err = %v, wantErr %v", tt.response, err, tt.wantErr)
			}
		})
	}
}

// --- probe ---

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    bool
	}{
		{"ok", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}, true},
		{"redirect counts as reachable", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusMovedPermanently)
		}, true},
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, false},
		{"head refused, get accepted", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()
			// Follow redirects manually so 301 is observed, not chased.
			client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			}}
			if got := probe(context.Background(), client, ts.URL); got != tt.want {
				t.Errorf("probe = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProbeConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	ts.Close() // nothing listening anymore
	if probe(context.Background(), http.DefaultClient, ts.URL) {
		t.Error("probe of a dead server reported reachable")
	}
}

// --- Check ---

// hostRewriter sends every request to the test server regardless of host, so
// verdicts can be exercised against repository-host links.
type hostRewriter struct {
	target string
}

func (h hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	redirected := *req
	u := *req.URL
	u.Scheme = "http"
	u.Host = h.target
	redirected.URL = &u
	return http.DefaultTransport.RoundTrip(&redirected)
}

func TestCheckVerdicts(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer down.Close()

	t.Run("no link", func(t *testing.T) {
		got := Check(context.Background(), http.DefaultClient, "not available")
		if got.Verdict != VerdictNoLink || got.Link != "" {
			t.Errorf("Check = %+v", got)
		}
	})

	t.Run("reachable", func(t *testing.T) {
		client := &http.Client{Transport: hostRewriter{target: up.Listener.Addr().String()}}
		got := Check(context.Background(), client, "https://github.com/org/repo")
		if got.Verdict != VerdictReachable || got.Link != "https://github.com/org/repo" {
			t.Errorf("Check = %+v", got)
		}
	})

	t.Run("unreachable keeps the link", func(t *testing.T) {
		client := &http.Client{Transport: hostRewriter{target: down.Listener.Addr().String()}}
		got := Check(context.Background(), client, "https://github.com/org/gone")
		if got.Verdict != VerdictUnreachable {
			t.Errorf("Verdict = %q, a dead link is not the same as no link", got.Verdict)
		}
		if got.Link != "https://github.com/org/gone" {
			t.Errorf("Link = %q", got.Link)
		}
	})
}
