// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package survey

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/survey-engine/internal/llm"
	"github.com/pdiddy/survey-engine/internal/llm/llmtest"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// --- fakes ---

type fakeExtractor struct {
	sections types.Sections
	err      error
	calls    int
}

func (f *fakeExtractor) Extract(_ string) (types.Sections, error) {
	f.calls++
	if f.err != nil {
		return types.Sections{}, f.err
	}
	return f.sections, nil
}

func testSections() types.Sections {
	return types.Sections{
		Abstract:     "The abstract.",
		Introduction: "The introduction.",
		Discussion:   "The discussion.",
		Conclusion:   "The conclusion.",
	}
}

func newTestSession(t *testing.T, client llm.Client, mode Mode) (*Session, *fakeExtractor) {
	t.Helper()
	ex := &fakeExtractor{sections: testSections()}
	sess, err := NewSession(SessionConfig{
		Client:    client,
		Extractor: ex,
		PaperPath: filepath.Join(t.TempDir(), "paper.pdf"),
		Mode:      mode,
	})
	if err != nil {
		t.Fatal(err)
	}
	return sess, ex
}

// --- Store ---

func TestStoreTrialHistory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "summaries.json"))

	if _, ok := store.Latest("p.pdf", "summary"); ok {
		t.Error("Latest on empty store reported a value")
	}
	if err := store.AddTrial("p.pdf", "summary", "first run"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddTrial("p.pdf", "summary", "second run"); err != nil {
		t.Fatal(err)
	}

	got, ok := store.Latest("p.pdf", "summary")
	if !ok || got != "second run" {
		t.Errorf("Latest = %q, %v", got, ok)
	}

	// Reload from disk: trials persist with their history intact.
	reloaded := NewStore(store.Path())
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if got, _ := reloaded.Latest("p.pdf", "summary"); got != "second run" {
		t.Errorf("reloaded Latest = %q", got)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	if err := store.Load(); err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
}

func TestStoreSectionsRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "summaries.json"))
	if _, ok := store.Sections("p.pdf"); ok {
		t.Error("Sections reported before any were stored")
	}
	if err := store.SetSections("p.pdf", testSections()); err != nil {
		t.Fatal(err)
	}
	got, ok := store.Sections("p.pdf")
	if !ok || got != testSections() {
		t.Errorf("Sections = %+v, %v", got, ok)
	}
}

func TestStorePapersSorted(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "summaries.json"))
	for _, p := range []string{"zeta.pdf", "alpha.pdf", "mid.pdf"} {
		if err := store.AddTrial(p, "summary", "s"); err != nil {
			t.Fatal(err)
		}
	}
	papers := store.Papers()
	if len(papers) != 3 || papers[0] != "alpha.pdf" || papers[2] != "zeta.pdf" {
		t.Errorf("Papers = %v", papers)
	}
}

// --- buildPrompt ---

func TestBuildPrompt(t *testing.T) {
	sections := testSections()

	t.Run("summarize embeds sections", func(t *testing.T) {
		p, err := buildPrompt(ModeSummarize, sections, "")
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"The abstract.", "The introduction.", "The discussion.", "The conclusion.", "summarize"} {
			if !strings.Contains(p, want) {
				t.Errorf("prompt missing %q", want)
			}
		}
	})

	t.Run("explain embeds the question", func(t *testing.T) {
		p, err := buildPrompt(ModeExplain, sections, "What is the main result?")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(p, "What is the main result?") {
			t.Error("question missing from prompt")
		}
	})

	t.Run("explain requires a question", func(t *testing.T) {
		_, err := buildPrompt(ModeExplain, sections, "")
		var cfgErr *types.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("code-check demands the sentinel", func(t *testing.T) {
		p, err := buildPrompt(ModeCodeCheck, sections, "")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(p, `"not available"`) {
			t.Error("sentinel instruction missing")
		}
	})

	t.Run("custom passes through verbatim", func(t *testing.T) {
		p, err := buildPrompt(ModeCustom, sections, "my exact prompt")
		if err != nil {
			t.Fatal(err)
		}
		if p != "my exact prompt" {
			t.Errorf("prompt = %q", p)
		}
	})

	t.Run("custom requires a prompt", func(t *testing.T) {
		if _, err := buildPrompt(ModeCustom, sections, ""); err == nil {
			t.Error("expected error")
		}
	})
}

// --- Session ---

func TestSessionCostAdditivity(t *testing.T) {
	fake := &llmtest.Fake{Replies: []llmtest.Reply{
		{Text: "answer 1", Cost: 0.0013},
		{Text: "answer 2", Cost: 0.0021},
		{Text: "answer 3", Cost: 0.0008},
	}}
	sess, _ := newTestSession(t, fake, ModeExplain)

	var want float64
	for i, cost := range []float64{0.0013, 0.0021, 0.0008} {
		_, got, err := sess.Run(context.Background(), fmt.Sprintf("question %d", i), nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != cost {
			t.Errorf("call %d cost = %v, want %v", i, got, cost)
		}
		want += cost
	}
	if sess.CostAccumulation != want {
		t.Errorf("CostAccumulation = %v, want the exact sum %v", sess.CostAccumulation, want)
	}
}

func TestSessionHistoryGrows(t *testing.T) {
	fake := &llmtest.Fake{Replies: []llmtest.Reply{
		{Text: "first answer"},
		{Text: "second answer"},
	}}
	sess, _ := newTestSession(t, fake, ModeExplain)

	if _, _, err := sess.Run(context.Background(), "first question", nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := sess.Run(context.Background(), "second question", nil); err != nil {
		t.Fatal(err)
	}

	if len(sess.History) != 2 {
		t.Fatalf("History len = %d, want 2", len(sess.History))
	}
	// The second call carried the first exchange as context.
	if len(fake.Histories[1]) != 1 || fake.Histories[1][0].Response != "first answer" {
		t.Errorf("second call history = %+v", fake.Histories[1])
	}
}

func TestSessionExtractionFailsBeforeAnySpend(t *testing.T) {
	fake := &llmtest.Fake{Replies: []llmtest.Reply{{Text: "never used"}}}
	ex := &fakeExtractor{err: &types.ExtractionError{Path: "paper.pdf"}}
	sess, err := NewSession(SessionConfig{
		Client:    fake,
		Extractor: ex,
		PaperPath: "paper.pdf",
		Mode:      ModeSummarize,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, cost, err := sess.Run(context.Background(), "", nil)
	var exErr *types.ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("err = %v, want ExtractionError", err)
	}
	if cost != 0 || sess.CostAccumulation != 0 {
		t.Error("cost accrued despite extraction failure")
	}
	if len(fake.Calls) != 0 {
		t.Error("LLM was called after extraction failed")
	}
}

func TestSessionResumableAfterLLMError(t *testing.T) {
	fake := &llmtest.Fake{Replies: []llmtest.Reply{
		{Err: fmt.Errorf("rate limited")},
		{Text: "recovered answer", Cost: 0.002},
	}}
	sess, _ := newTestSession(t, fake, ModeExplain)

	_, _, err := sess.Run(context.Background(), "question", nil)
	if err == nil {
		t.Fatal("expected the scripted failure")
	}
	if sess.CostAccumulation != 0 {
		t.Errorf("failed call changed the accumulator: %v", sess.CostAccumulation)
	}
	if len(sess.History) != 0 {
		t.Errorf("failed call was recorded in history")
	}

	text, cost, err := sess.Run(context.Background(), "question", nil)
	if err != nil {
		t.Fatalf("session not resumable: %v", err)
	}
	if text != "recovered answer" || cost != 0.002 {
		t.Errorf("retry = %q, %v", text, cost)
	}
	if sess.CostAccumulation != 0.002 {
		t.Errorf("CostAccumulation = %v", sess.CostAccumulation)
	}
}

func TestSessionExtractsOnce(t *testing.T) {
	fake := &llmtest.Fake{Replies: []llmtest.Reply{{Text: "a"}, {Text: "b"}}}
	sess, ex := newTestSession(t, fake, ModeExplain)

	if _, _, err := sess.Run(context.Background(), "q1", nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := sess.Run(context.Background(), "q2", nil); err != nil {
		t.Fatal(err)
	}
	if ex.calls != 1 {
		t.Errorf("extractor called %d times, want 1", ex.calls)
	}
}

func TestSessionSummarizeCachesAndStores(t *testing.T) {
	fake := &llmtest.Fake{Replies: []llmtest.Reply{{Text: "the summary", Cost: 0.001}}}
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "summaries.json"))
	ex := &fakeExtractor{sections: testSections()}
	sess, err := NewSession(SessionConfig{
		Client:    fake,
		Extractor: ex,
		Store:     store,
		PaperPath: filepath.Join(dir, "paper.pdf"),
		Mode:      ModeSummarize,
	})
	if err != nil {
		t.Fatal(err)
	}

	text, _, err := sess.Run(context.Background(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "the summary" {
		t.Errorf("text = %q", text)
	}

	if got, ok := sess.Summary(); !ok || got != "the summary" {
		t.Errorf("Summary = %q, %v", got, ok)
	}
	if got, ok := store.Summary("paper.pdf"); !ok || got != "the summary" {
		t.Errorf("stored summary = %q, %v", got, ok)
	}
	// Sections were persisted too; a later session skips extraction.
	if _, ok := store.Sections("paper.pdf"); !ok {
		t.Error("sections not persisted")
	}
}

func TestSessionUsesStoredSections(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "summaries.json"))
	if err := store.SetSections("paper.pdf", testSections()); err != nil {
		t.Fatal(err)
	}

	fake := &llmtest.Fake{Replies: []llmtest.Reply{{Text: "s"}}}
	ex := &fakeExtractor{err: &types.ExtractionError{Path: "paper.pdf"}}
	sess, err := NewSession(SessionConfig{
		Client:    fake,
		Extractor: ex,
		Store:     store,
		PaperPath: filepath.Join(dir, "paper.pdf"),
		Mode:      ModeSummarize,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := sess.Run(context.Background(), "", nil); err != nil {
		t.Fatalf("stored sections should make extraction unnecessary: %v", err)
	}
	if ex.calls != 0 {
		t.Errorf("extractor called %d times, want 0", ex.calls)
	}
}

func TestSessionReextractBypassesStore(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "summaries.json"))
	stale := testSections()
	stale.Abstract = "stale abstract"
	if err := store.SetSections("paper.pdf", stale); err != nil {
		t.Fatal(err)
	}

	fake := &llmtest.Fake{Replies: []llmtest.Reply{{Text: "s"}}}
	ex := &fakeExtractor{sections: testSections()}
	sess, err := NewSession(SessionConfig{
		Client:    fake,
		Extractor: ex,
		Store:     store,
		PaperPath: filepath.Join(dir, "paper.pdf"),
		Mode:      ModeSummarize,
		Reextract: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := sess.Run(context.Background(), "", nil); err != nil {
		t.Fatal(err)
	}
	if ex.calls != 1 {
		t.Errorf("extractor called %d times, want 1", ex.calls)
	}
	if !strings.Contains(fake.Calls[0], "The abstract.") {
		t.Error("prompt built from stale sections")
	}
}

func TestSessionValidatorFailureCountsCost(t *testing.T) {
	fake := &llmtest.Fake{Replies: []llmtest.Reply{{Text: "gibberish", Cost: 0.004}}}
	sess, _ := newTestSession(t, fake, ModeCodeCheck)

	text, cost, err := sess.Run(context.Background(), "", func(string) error {
		return fmt.Errorf("not a link")
	})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if valErr.Response != "gibberish" || text != "gibberish" {
		t.Error("raw response not surfaced alongside the verdict")
	}
	if cost != 0.004 || sess.CostAccumulation != 0.004 {
		t.Error("the model was paid; the cost must be counted")
	}
}

func TestSessionRejectsInvalidConfig(t *testing.T) {
	_, err := NewSession(SessionConfig{Mode: "nonsense"})
	var cfgErr *types.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v", err)
	}
}

// --- interactive loop ---

func TestRunInteractiveExitsOnSentinel(t *testing.T) {
	fake := &llmtest.Fake{Replies: []llmtest.Reply{{Text: "an answer", Cost: 0.001}}}
	sess, _ := newTestSession(t, fake, ModeExplain)

	inputs := []string{"what is this paper about?", "", "EXIT"}
	i := 0
	ask := func(string) (string, error) {
		s := inputs[i]
		i++
		return s, nil
	}

	var out strings.Builder
	if err := sess.RunInteractive(context.Background(), ask, &out); err != nil {
		t.Fatal(err)
	}
	if len(fake.Calls) != 1 {
		t.Errorf("LLM calls = %d, want 1 (blank input skipped, exit word stops)", len(fake.Calls))
	}
	if !strings.Contains(out.String(), "an answer") {
		t.Errorf("output = %q", out.String())
	}
	if sess.CostAccumulation != 0.001 {
		t.Errorf("CostAccumulation = %v", sess.CostAccumulation)
	}
}
