// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/pkg/types"
)

const defaultMaxTokens = 4096

// OpenAI implements Client against the OpenAI chat completion API.
type OpenAI struct {
	api       *openai.Client
	model     string
	maxTokens int
	log       *zap.Logger
}

// NewOpenAI builds a client for the configured model. The API key must already
// have been resolved (secrets.Require) before this point.
func NewOpenAI(cfg types.LLMConfig, log *zap.Logger) *OpenAI {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenAI{
		api:       openai.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		log:       log,
	}
}

// Complete sends the prompt with the session history as chat context and
// returns the response text with the call's cost. On failure no cost is
// reported, leaving the caller's accumulator untouched and the session
// resumable.
func (c *OpenAI) Complete(ctx context.Context, prompt string, history []Exchange) (string, float64, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2*len(history)+1)
	for _, ex := range history {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: ex.Prompt},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: ex.Response},
		)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", 0, &types.ExternalServiceError{Service: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", 0, &types.ExternalServiceError{
			Service: "openai",
			Err:     fmt.Errorf("empty completion for model %s", c.model),
		}
	}

	cost := CallCost(c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	c.log.Debug("completion",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Float64("cost_usd", cost))

	return resp.Choices[0].Message.Content, cost, nil
}
