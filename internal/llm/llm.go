// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the chat-completion API used for keyword suggestion
// and paper summarization. Every call reports its exact cost so sessions can
// keep a running total; the engine never interprets cost beyond summation.
package llm

import "context"

// Exchange is one completed prompt/response pair. Sessions keep an append-only
// list of exchanges and replay it as conversation context on later calls.
type Exchange struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// Client issues one chat completion. history carries earlier exchanges of the
// same session in order; cost is the call's price in USD. Implementations must
// not return a partial cost with a nil error: either the call succeeded and
// its full cost is reported, or it failed and the caller's accumulator stays
// untouched.
type Client interface {
	Complete(ctx context.Context, prompt string, history []Exchange) (text string, cost float64, err error)
}
