// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

// Pricing per 1M tokens in USD. Models missing from the tables fall back to
// the default rates so an unknown model depresses nothing silently — its
// calls still cost something in the accumulator.
var inputPricing = map[string]float64{
	"gpt-4o":             2.50,
	"gpt-4o-mini":        0.15,
	"chatgpt-4o-latest":  5.00,
	"gpt-4-turbo":        10.00,
	"gpt-4":              30.00,
	"o1-preview":         15.00,
	"o1-mini":            3.00,
	"gpt-3.5-turbo-0125": 0.50,
}

var outputPricing = map[string]float64{
	"gpt-4o":             10.00,
	"gpt-4o-mini":        0.60,
	"chatgpt-4o-latest":  15.00,
	"gpt-4-turbo":        30.00,
	"gpt-4":              60.00,
	"o1-preview":         60.00,
	"o1-mini":            12.00,
	"gpt-3.5-turbo-0125": 1.50,
}

const (
	defaultInputPrice  = 2.50
	defaultOutputPrice = 10.00
)

// CallCost prices one call from its token usage.
func CallCost(model string, promptTokens, completionTokens int) float64 {
	in, ok := inputPricing[model]
	if !ok {
		in = defaultInputPrice
	}
	out, ok := outputPricing[model]
	if !ok {
		out = defaultOutputPrice
	}
	return float64(promptTokens)*in/1e6 + float64(completionTokens)*out/1e6
}
