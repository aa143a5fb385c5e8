package tokens

// Estimator converts text into an approximate token count. The budgeter
// treats this as a pluggable strategy so the heuristic can be swapped for a
// real tokenizer without touching call sites.
type Estimator interface {
	EstimateTokens(text string) int
}

// HeuristicEstimator approximates 1 token per 4 characters. This matches the
// budget arithmetic used throughout the context layer.
type HeuristicEstimator struct{}

func (HeuristicEstimator) EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}

// Default is the estimator used when none is configured.
var Default Estimator = HeuristicEstimator{}
