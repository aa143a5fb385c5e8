package contextbudget

import "github.com/karimzidan/pmdoc/internal/tokens"

// Summarizer condenses text into a token budget. The only implementation
// today truncates; the interface exists so a model-backed summarizer can be
// swapped in without changing callers. Callers must not assume the output
// is a real summary.
type Summarizer interface {
	Summarize(text string, maxTokens int) string
}

// TruncatingSummarizer cuts text at the character budget implied by the
// token limit and appends a truncation marker.
type TruncatingSummarizer struct {
	Estimator tokens.Estimator
}

const truncationMarker = "\n[... truncated for context budget]"

func (s TruncatingSummarizer) Summarize(text string, maxTokens int) string {
	est := s.Estimator
	if est == nil {
		est = tokens.Default
	}
	if est.EstimateTokens(text) <= maxTokens {
		return text
	}

	maxChars := maxTokens*4 - len(truncationMarker)
	if maxChars <= 0 {
		return ""
	}
	if maxChars > len(text) {
		maxChars = len(text)
	}
	return text[:maxChars] + truncationMarker
}
