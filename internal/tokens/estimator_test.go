package tokens

import (
	"strings"
	"testing"
)

func TestHeuristicEstimatorQuarterLength(t *testing.T) {
	e := HeuristicEstimator{}

	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"ab", 1}, // non-empty text is never zero tokens
		{"abcd", 1},
		{strings.Repeat("x", 400), 100},
		{strings.Repeat("x", 4001), 1000},
	}

	for _, tc := range cases {
		if got := e.EstimateTokens(tc.text); got != tc.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tc.text), got, tc.want)
		}
	}
}

func TestNewEstimatorDefaultsToHeuristic(t *testing.T) {
	e, err := NewEstimator("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := e.(HeuristicEstimator); !ok {
		t.Errorf("expected HeuristicEstimator, got %T", e)
	}
}

func TestNewEstimatorRejectsUnknownKind(t *testing.T) {
	if _, err := NewEstimator("wordpiece"); err == nil {
		t.Error("expected error for unknown estimator kind")
	}
}
