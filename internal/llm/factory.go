package llm

import (
	"fmt"
	"os"
)

// NewProvider creates an LLM provider for the given provider type and model.
// Supported types: "anthropic", "openai", "google", "ollama", "minimax",
// "openrouter". Missing credentials do not error here: the provider is
// returned with Configured() == false so the fallback manager can skip it.
func NewProvider(providerType string, model string) (Provider, error) {
	switch providerType {
	case "anthropic":
		return NewAnthropicProvider(os.Getenv("ANTHROPIC_API_KEY"), model), nil

	case "openai":
		return NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), model), nil

	case "google":
		return NewGoogleProvider(os.Getenv("GOOGLE_API_KEY"), model), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	case "minimax":
		return NewMinimaxProvider(os.Getenv("MINIMAX_API_KEY"), model), nil

	case "openrouter":
		return NewOpenRouterProvider(os.Getenv("OPENROUTER_API_KEY"), model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// RequireProvider is like NewProvider but fails when the provider lacks
// credentials. Used by code paths that target a single provider directly.
func RequireProvider(providerType string, model string) (Provider, error) {
	p, err := NewProvider(providerType, model)
	if err != nil {
		return nil, err
	}
	if !p.Configured() {
		return nil, fmt.Errorf("provider %s is not configured: missing API key", providerType)
	}
	return p, nil
}
