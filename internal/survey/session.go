// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package survey drives the per-paper LLM dialogue: section extraction feeds
// mode-specific prompts, every exchange lands in the session history, and the
// running cost is the exact sum of the individual call costs.
package survey

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/internal/extract"
	"github.com/pdiddy/survey-engine/internal/llm"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// ExitWord ends an interactive explain loop.
const ExitWord = "exit"

// ValidationError reports that the model answered but the answer failed the
// caller's validator. The call's cost has already been accumulated — the
// model was paid whether or not its answer was usable.
type ValidationError struct {
	Response string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response failed validation: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// SessionConfig assembles a session's collaborators.
type SessionConfig struct {
	Client    llm.Client
	Extractor extract.Extractor
	// Store caches extractions and summaries across sessions. Optional.
	Store *Store
	// PaperPath is the PDF the session is about.
	PaperPath string
	Mode      Mode
	// Reextract forces a fresh extraction instead of loading cached sections.
	Reextract bool
	Log       *zap.Logger
}

// Session is one summarization workflow over one paper. It starts
// uninitialized (no LLM call made) and becomes active on the first Run; there
// is no terminal state — Run may be called repeatedly until the caller stops.
type Session struct {
	client    llm.Client
	extractor extract.Extractor
	store     *Store
	paperPath string
	paperName string
	mode      Mode
	reextract bool
	log       *zap.Logger

	// sections is filled on the first Run and cached for the session's life.
	sections *types.Sections

	// History is the append-only exchange log replayed as LLM context.
	History []llm.Exchange

	// CostAccumulation is the exact sum of all per-call costs this session
	// has incurred. It only ever grows.
	CostAccumulation float64

	cachedSummary string
}

// NewSession validates the configuration and returns an uninitialized session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if !cfg.Mode.Valid() {
		return nil, &types.ConfigurationError{Key: "mode", Reason: fmt.Sprintf("unknown mode %q", cfg.Mode)}
	}
	if cfg.Client == nil {
		return nil, &types.ConfigurationError{Key: "llm", Reason: "no LLM client"}
	}
	if cfg.Extractor == nil {
		return nil, &types.ConfigurationError{Key: "extractor", Reason: "no section extractor"}
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		client:    cfg.Client,
		extractor: cfg.Extractor,
		store:     cfg.Store,
		paperPath: cfg.PaperPath,
		paperName: filepath.Base(cfg.PaperPath),
		mode:      cfg.Mode,
		reextract: cfg.Reextract,
		log:       log,
	}, nil
}

// PaperName returns the base name of the session's paper.
func (s *Session) PaperName() string { return s.paperName }

// Run performs one LLM call: extract-and-cache sections on the first call,
// build the mode's prompt (or use override), dispatch, append the exchange to
// the history, and add the call's exact reported cost to the accumulator.
//
// An extraction failure surfaces before any LLM call, with no cost incurred.
// An LLM failure surfaces without touching CostAccumulation or History, so
// the session stays resumable. A validator failure comes back as a
// ValidationError after the cost has been counted, with the raw text returned
// so the caller can still inspect it.
func (s *Session) Run(ctx context.Context, override string, validator func(string) error) (string, float64, error) {
	if err := s.ensureSections(); err != nil {
		return "", 0, err
	}

	prompt, err := buildPrompt(s.mode, *s.sections, override)
	if err != nil {
		return "", 0, err
	}

	text, cost, err := s.client.Complete(ctx, prompt, s.History)
	if err != nil {
		return "", 0, err
	}

	s.History = append(s.History, llm.Exchange{Prompt: prompt, Response: text})
	s.CostAccumulation += cost

	if s.mode == ModeSummarize {
		s.cachedSummary = text
		if s.store != nil {
			if err := s.store.AddTrial(s.paperName, "summary", text); err != nil {
				s.log.Warn("storing summary failed", zap.String("paper", s.paperName), zap.Error(err))
			}
		}
	}

	if validator != nil {
		if verr := validator(text); verr != nil {
			return text, cost, &ValidationError{Response: text, Err: verr}
		}
	}
	return text, cost, nil
}

// Summary returns the cached summary without invoking the LLM: first from
// this session's own run, then from the store.
func (s *Session) Summary() (string, bool) {
	if s.cachedSummary != "" {
		return s.cachedSummary, true
	}
	if s.store != nil {
		return s.store.Summary(s.paperName)
	}
	return "", false
}

// RunInteractive drives an explain loop: ask reads the next question, the
// session answers it with the full conversation as context, and the loop ends
// when the user enters the exit word. The loop is bounded only by the user.
func (s *Session) RunInteractive(ctx context.Context, ask func(prompt string) (string, error), w io.Writer) error {
	for {
		question, err := ask(fmt.Sprintf("Question about %s (type %q to quit): ", s.paperName, ExitWord))
		if err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(question), ExitWord) {
			return nil
		}
		if strings.TrimSpace(question) == "" {
			continue
		}

		answer, _, err := s.Run(ctx, question, nil)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(w, answer)
		fmt.Fprintln(w)
	}
}

// ensureSections fills the session's section cache: from the store when a
// prior session already extracted this paper (unless Reextract), otherwise
// from the extractor, persisting the fresh result for later sessions.
func (s *Session) ensureSections() error {
	if s.sections != nil {
		return nil
	}

	if s.store != nil && !s.reextract {
		if err := s.store.Load(); err != nil {
			s.log.Warn("loading section store failed", zap.Error(err))
		} else if cached, ok := s.store.Sections(s.paperName); ok {
			s.sections = &cached
			return nil
		}
	}

	sections, err := s.extractor.Extract(s.paperPath)
	if err != nil {
		return err
	}
	s.sections = &sections

	if s.store != nil {
		if err := s.store.SetSections(s.paperName, sections); err != nil {
			s.log.Warn("storing sections failed", zap.String("paper", s.paperName), zap.Error(err))
		}
	}
	return nil
}
