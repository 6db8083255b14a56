// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topic

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/survey-engine/internal/llm"
	"github.com/pdiddy/survey-engine/pkg/types"
)

// defaultKeywordCount is how many search keywords the model is asked for.
const defaultKeywordCount = 5

// keywordSuggestionAttempts bounds re-asks when the model's list is unparseable.
const keywordSuggestionAttempts = 3

var listItemPattern = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*(.+)$`)

// SuggestKeywords asks the model for search keywords covering the topic.
// The model is re-asked, with the failure in history, when its answer cannot
// be parsed as a list; cost covers every attempt.
func SuggestKeywords(ctx context.Context, client llm.Client, topic string, count int) ([]string, float64, error) {
	if count <= 0 {
		count = defaultKeywordCount
	}

	prompt := fmt.Sprintf(
		"Provide %d keywords for searching academic papers about the following topic. "+
			"Answer with a numbered list of keywords only, one per line, nothing else.\n\nTopic: %s",
		count, topic)

	var history []llm.Exchange
	var total float64
	for attempt := 0; attempt < keywordSuggestionAttempts; attempt++ {
		ask := prompt
		if attempt > 0 {
			ask = fmt.Sprintf("Your previous answer was not a numbered list. "+
				"Answer again with exactly %d keywords as a numbered list, one per line, nothing else.", count)
		}

		text, cost, err := client.Complete(ctx, ask, history)
		if err != nil {
			return nil, total, err
		}
		total += cost
		history = append(history, llm.Exchange{Prompt: ask, Response: text})

		if keywords := ParseKeywordList(text); len(keywords) > 0 {
			return keywords, total, nil
		}
	}
	return nil, total, &types.ExternalServiceError{
		Service: "llm",
		Err:     fmt.Errorf("no keyword list after %d attempts", keywordSuggestionAttempts),
	}
}

// ParseKeywordList pulls keywords out of a numbered or bulleted list,
// dropping surrounding quotes and blank items.
func ParseKeywordList(text string) []string {
	var keywords []string
	for _, line := range strings.Split(text, "\n") {
		m := listItemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kw := strings.Trim(strings.TrimSpace(m[1]), `"'`)
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
