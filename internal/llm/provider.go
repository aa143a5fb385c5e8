package llm

import "context"

// Provider defines the capability interface for an LLM backend. The fallback
// manager selects among implementations by the configured provider enum.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Ping performs a lightweight connectivity check against the backend.
	// It must be cheap: an authenticated round trip, no generation.
	Ping(ctx context.Context) error
	// Name returns the name of this provider.
	Name() string
	// Configured reports whether the provider has the credentials it needs.
	// Unconfigured providers are skipped during selection.
	Configured() bool
}
