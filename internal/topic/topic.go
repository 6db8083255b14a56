// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topic drives the end-to-end survey workflow: the user names a
// topic, the model proposes search keywords, the chosen keywords are searched
// and deduplicated as one corpus, the kept papers are downloaded, organized,
// summarized, and optionally checked for code availability. One failing paper
// never aborts the run; failures are collected and reported at the end.
package topic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/internal/codecheck"
	"github.com/pdiddy/survey-engine/internal/corpus"
	"github.com/pdiddy/survey-engine/internal/download"
	"github.com/pdiddy/survey-engine/internal/extract"
	"github.com/pdiddy/survey-engine/internal/llm"
	"github.com/pdiddy/survey-engine/internal/organize"
	"github.com/pdiddy/survey-engine/internal/search"
	"github.com/pdiddy/survey-engine/internal/survey"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// ExitWord ends the interactive topic loop.
const ExitWord = "exit"

// SummariesFile is the per-folder summary store written next to the PDFs.
const SummariesFile = "summaries.json"

// Orchestrator wires the pipeline stages behind the interactive flow.
type Orchestrator struct {
	Client       llm.Client
	Engine       *search.Engine
	Materializer search.Materializer
	Extractor    extract.Extractor

	// HTTPClient probes repository links during code checking.
	HTTPClient *http.Client

	// Corpus indexes results across runs. Optional.
	Corpus *corpus.Store

	OrganizeCfg types.OrganizeConfig
	Prompter    Prompter
	Out         io.Writer
	Log         *zap.Logger
}

// RunReport sums up one topic run.
type RunReport struct {
	Keywords   []string
	Found      int
	Summarized int
	TotalCost  float64

	// Failures holds per-paper and per-source problems that did not stop the
	// run, in the order they happened.
	Failures []string
}

// RunLoop asks for topics until the user enters the exit word.
func (o *Orchestrator) RunLoop(ctx context.Context, base types.SearchQuery) error {
	for {
		topicName, err := o.Prompter.Ask(fmt.Sprintf("Enter a research topic (type %q to quit): ", ExitWord))
		if err != nil {
			return err
		}
		if strings.EqualFold(topicName, ExitWord) {
			return nil
		}
		if topicName == "" {
			continue
		}
		if _, err := o.Run(ctx, base, topicName); err != nil {
			return err
		}
	}
}

// Run surveys one topic end to end and returns the report. Only failures
// that make the remaining steps meaningless (search refusing to run, the
// keyword suggestion dying, the user bailing out) surface as errors; paper
// level problems land in the report instead.
func (o *Orchestrator) Run(ctx context.Context, base types.SearchQuery, topicName string) (RunReport, error) {
	var report RunReport

	keywords, cost, err := SuggestKeywords(ctx, o.Client, topicName, defaultKeywordCount)
	report.TotalCost += cost
	if err != nil {
		return report, err
	}

	keywords, err = o.chooseKeywords(ctx, topicName, keywords, &report.TotalCost)
	if err != nil {
		return report, err
	}
	if len(keywords) == 0 {
		o.Prompter.Say("No keywords chosen; nothing to do.")
		return report, nil
	}
	report.Keywords = keywords

	set := search.NewMergeSet()
	result, err := o.Engine.Run(ctx, base, keywords, set, o.Materializer, o.Out)
	if err != nil {
		return report, err
	}
	report.Failures = append(report.Failures, result.SourceErrors...)
	report.Found = len(result.Records)
	if len(result.Records) == 0 {
		o.finish(report)
		return report, nil
	}
	search.FormatTable(result.Records, result.DupsRemoved, o.Out)

	if o.Corpus != nil {
		if err := o.Corpus.UpsertRecords(base.Destination, result.Records); err != nil {
			o.logger().Warn("indexing results failed", zap.Error(err))
			report.Failures = append(report.Failures, fmt.Sprintf("corpus index: %v", err))
		}
	}

	records := result.Records
	chosen, err := o.choosePapers(records)
	if err != nil {
		return report, err
	}

	store := survey.NewStore(filepath.Join(base.Destination, SummariesFile))
	if err := store.Load(); err != nil {
		o.logger().Warn("loading summary store failed", zap.Error(err))
	}

	summarized := o.summarize(ctx, records, chosen, store, &report)

	if len(summarized) > 0 {
		yes, err := o.Prompter.Ask("Check code availability for the summarized papers? [y/N]: ")
		if err != nil {
			return report, err
		}
		if isYes(yes) {
			o.checkCode(ctx, records, summarized, store, &report)
		}
	}

	if err := download.SaveMetadata(filepath.Join(base.Destination, download.MetadataFile), records); err != nil {
		o.logger().Warn("updating metadata failed", zap.Error(err))
		report.Failures = append(report.Failures, fmt.Sprintf("metadata: %v", err))
	}

	orgCfg := o.OrganizeCfg
	orgCfg.SourceFolder = base.Destination
	org := &organize.Organizer{Cfg: orgCfg, Log: o.Log}
	if _, err := org.Run(o.Out); err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("organize: %v", err))
	}

	o.finish(report)
	return report, nil
}

// chooseKeywords lets the user take the suggested list as is, pick a subset
// by number, type their own, or ask for a fresh suggestion round. Invalid
// answers re-prompt; refresh rounds are bounded only by the user proceeding.
func (o *Orchestrator) chooseKeywords(ctx context.Context, topicName string, suggested []string, totalCost *float64) ([]string, error) {
	sayList := func() {
		o.Prompter.Say("Suggested keywords:")
		for i, kw := range suggested {
			o.Prompter.Say("  %d. %s", i+1, kw)
		}
	}
	sayList()

	for {
		answer, err := o.Prompter.Ask("Use [a]ll, [s]elect by number, [c]ustom keywords, or [r]efresh suggestions: ")
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(answer) {
		case "a", "all":
			return suggested, nil
		case "s", "select":
			picked, err := o.askIndices(len(suggested))
			if err != nil {
				return nil, err
			}
			if picked == nil {
				continue
			}
			keywords := make([]string, 0, len(picked))
			for _, i := range picked {
				keywords = append(keywords, suggested[i])
			}
			return keywords, nil
		case "c", "custom":
			line, err := o.Prompter.Ask("Enter keywords, comma separated: ")
			if err != nil {
				return nil, err
			}
			var keywords []string
			for _, kw := range strings.Split(line, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					keywords = append(keywords, kw)
				}
			}
			if len(keywords) == 0 {
				o.Prompter.Say("No keywords entered.")
				continue
			}
			return keywords, nil
		case "r", "refresh":
			fresh, cost, err := SuggestKeywords(ctx, o.Client, topicName, defaultKeywordCount)
			*totalCost += cost
			if err != nil {
				o.Prompter.Say("Could not get fresh suggestions: %v", err)
				continue
			}
			suggested = fresh
			sayList()
		case ExitWord:
			return nil, nil
		default:
			o.Prompter.Say("Please answer all, select, custom, or refresh.")
		}
	}
}

// choosePapers lets the user summarize every downloaded paper or a subset.
// Only records with a PDF on disk are offered.
func (o *Orchestrator) choosePapers(records []types.PaperRecord) ([]int, error) {
	var available []int
	for i, r := range records {
		if r.Downloaded && r.PDFPath != "" {
			available = append(available, i)
		}
	}
	if len(available) == 0 {
		o.Prompter.Say("No papers were downloaded; skipping summarization.")
		return nil, nil
	}

	o.Prompter.Say("Downloaded papers:")
	for n, i := range available {
		o.Prompter.Say("  %d. %s", n+1, records[i].Title)
	}

	for {
		answer, err := o.Prompter.Ask("Summarize [a]ll or [s]elect by number: ")
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(answer) {
		case "a", "all":
			return available, nil
		case "s", "select":
			picked, err := o.askIndices(len(available))
			if err != nil {
				return nil, err
			}
			if picked == nil {
				continue
			}
			chosen := make([]int, 0, len(picked))
			for _, n := range picked {
				chosen = append(chosen, available[n])
			}
			return chosen, nil
		case ExitWord:
			return nil, nil
		default:
			o.Prompter.Say("Please answer all or select.")
		}
	}
}

// askIndices reads 1-based comma-separated indices into 0-based ones.
// A nil return with nil error means the answer was invalid and the caller
// should re-prompt.
func (o *Orchestrator) askIndices(n int) ([]int, error) {
	line, err := o.Prompter.Ask(fmt.Sprintf("Enter numbers 1-%d, comma separated: ", n))
	if err != nil {
		return nil, err
	}
	var picked []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil || i < 1 || i > n {
			o.Prompter.Say("Invalid selection %q.", part)
			return nil, nil
		}
		if !seen[i-1] {
			seen[i-1] = true
			picked = append(picked, i-1)
		}
	}
	if len(picked) == 0 {
		o.Prompter.Say("Nothing selected.")
		return nil, nil
	}
	return picked, nil
}

// summarize runs one summarization session per chosen paper. A failing paper
// is reported and skipped; the indices of the papers that got a summary come
// back for the code-check step.
func (o *Orchestrator) summarize(ctx context.Context, records []types.PaperRecord, chosen []int, store *survey.Store, report *RunReport) []int {
	var summarized []int
	for _, i := range chosen {
		r := &records[i]
		sess, err := survey.NewSession(survey.SessionConfig{
			Client:    o.Client,
			Extractor: o.Extractor,
			Store:     store,
			PaperPath: r.PDFPath,
			Mode:      survey.ModeSummarize,
			Log:       o.Log,
		})
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", r.Title, err))
			continue
		}

		text, cost, err := sess.Run(ctx, "", nil)
		report.TotalCost += cost
		if err != nil {
			o.logger().Warn("summarization failed", zap.String("paper", r.Title), zap.Error(err))
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", r.Title, err))
			continue
		}

		r.Summary = text
		summarized = append(summarized, i)
		report.Summarized++
		o.Prompter.Say("\n=== %s ===\n%s", r.Title, text)

		if o.Corpus != nil {
			if err := o.Corpus.SetSummary(filepath.Dir(r.PDFPath), r.Title, text); err != nil {
				o.logger().Warn("indexing summary failed", zap.String("paper", r.Title), zap.Error(err))
			}
		}
	}
	return summarized
}

// checkCode asks the model for each summarized paper's code link, probes it,
// and attaches the verdict to the record.
func (o *Orchestrator) checkCode(ctx context.Context, records []types.PaperRecord, summarized []int, store *survey.Store, report *RunReport) {
	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	for _, i := range summarized {
		r := &records[i]
		sess, err := survey.NewSession(survey.SessionConfig{
			Client:    o.Client,
			Extractor: o.Extractor,
			Store:     store,
			PaperPath: r.PDFPath,
			Mode:      survey.ModeCodeCheck,
			Log:       o.Log,
		})
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", r.Title, err))
			continue
		}

		text, cost, err := sess.Run(ctx, "", codecheck.Validate)
		report.TotalCost += cost
		if err != nil {
			o.logger().Warn("code check failed", zap.String("paper", r.Title), zap.Error(err))
			report.Failures = append(report.Failures, fmt.Sprintf("%s code check: %v", r.Title, err))
			continue
		}

		verdict := codecheck.Check(ctx, client, text)
		r.CodeVerdict = string(verdict.Verdict)
		if verdict.Link != "" {
			o.Prompter.Say("%s: %s (%s)", r.Title, verdict.Link, verdict.Verdict)
		} else {
			o.Prompter.Say("%s: no code link found", r.Title)
		}

		if o.Corpus != nil {
			if err := o.Corpus.SetCodeVerdict(filepath.Dir(r.PDFPath), r.Title, r.CodeVerdict); err != nil {
				o.logger().Warn("indexing verdict failed", zap.String("paper", r.Title), zap.Error(err))
			}
		}
	}
}

func (o *Orchestrator) finish(report RunReport) {
	o.Prompter.Say("\nRun complete: %d papers found, %d summarized, total LLM cost $%.4f.",
		report.Found, report.Summarized, report.TotalCost)
	if len(report.Failures) > 0 {
		o.Prompter.Say("Problems during the run:")
		for _, f := range report.Failures {
			o.Prompter.Say("  - %s", f)
		}
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Log != nil {
		return o.Log
	}
	return zap.NewNop()
}
