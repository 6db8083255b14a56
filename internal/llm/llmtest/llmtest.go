// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides a scripted LLM client for tests.
package llmtest

import (
	"context"
	"fmt"

	"github.com/pdiddy/survey-engine/internal/llm"
)

// Reply is one scripted response with its reported cost.
type Reply struct {
	Text string
	Cost float64
	Err  error
}

// Fake replays scripted replies in order and records every call it receives.
type Fake struct {
	Replies []Reply

	// Calls holds the prompt of each Complete call in order.
	Calls []string

	// Histories holds a copy of the history passed with each call.
	Histories [][]llm.Exchange

	next int
}

// Complete returns the next scripted reply. Running out of replies is a test
// authoring error, not a silent success.
func (f *Fake) Complete(_ context.Context, prompt string, history []llm.Exchange) (string, float64, error) {
	f.Calls = append(f.Calls, prompt)
	h := make([]llm.Exchange, len(history))
	copy(h, history)
	f.Histories = append(f.Histories, h)

	if f.next >= len(f.Replies) {
		return "", 0, fmt.Errorf("llmtest: no reply scripted for call %d", f.next+1)
	}
	r := f.Replies[f.next]
	f.next++
	if r.Err != nil {
		return "", 0, r.Err
	}
	return r.Text, r.Cost, nil
}
