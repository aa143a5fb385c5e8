package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenEstimator counts tokens with a real BPE tokenizer. More accurate
// than the heuristic but slower and requires the encoding tables.
type TiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenEstimator creates an estimator for the given encoding
// (e.g. "cl100k_base").
func NewTiktokenEstimator(encoding string) (*TiktokenEstimator, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("loading tiktoken encoding %q: %w", encoding, err)
	}
	return &TiktokenEstimator{enc: enc}, nil
}

func (e *TiktokenEstimator) EstimateTokens(text string) int {
	return len(e.enc.Encode(text, nil, nil))
}

// NewEstimator returns the estimator named in config: "heuristic" (default)
// or "tiktoken".
func NewEstimator(kind string) (Estimator, error) {
	switch kind {
	case "", "heuristic":
		return HeuristicEstimator{}, nil
	case "tiktoken":
		return NewTiktokenEstimator("cl100k_base")
	default:
		return nil, fmt.Errorf("unknown token estimator %q: must be heuristic or tiktoken", kind)
	}
}
