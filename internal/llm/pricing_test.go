// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"math"
	"testing"
)

func TestCallCost(t *testing.T) {
	tests := []struct {
		name       string
		model      string
		prompt     int
		completion int
		want       float64
	}{
		{"gpt-4o", "gpt-4o", 1_000_000, 1_000_000, 12.50},
		{"gpt-4o-mini", "gpt-4o-mini", 1_000_000, 0, 0.15},
		{"small call", "gpt-4o-mini", 1000, 500, 0.15/1000 + 0.60*500/1e6},
		{"zero tokens", "gpt-4o", 0, 0, 0},
		{"unknown model uses default rates", "some-new-model", 1_000_000, 1_000_000, 12.50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CallCost(tt.model, tt.prompt, tt.completion)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("CallCost = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCallCostNeverNegative(t *testing.T) {
	for model := range inputPricing {
		if CallCost(model, 10, 10) < 0 {
			t.Errorf("negative cost for %s", model)
		}
	}
}
