// Package config loads and validates pmdoc configuration from .pmdoc.yml
// with PMDOC_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the conventional config file location.
const DefaultPath = ".pmdoc.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PMDOC_*). Nested keys use underscores
// doubled in env form: PMDOC_SERVER__PORT -> server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("PMDOC_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "PMDOC_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[string]bool{
	"anthropic":  true,
	"openai":     true,
	"google":     true,
	"ollama":     true,
	"minimax":    true,
	"openrouter": true,
}

// validQualityTiers is the set of recognized quality tier values.
var validQualityTiers = map[QualityTier]bool{
	QualityLite:   true,
	QualityNormal: true,
	QualityMax:    true,
}

// validEstimators is the set of recognized token estimator values.
var validEstimators = map[string]bool{
	"heuristic": true,
	"tiktoken":  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	for _, p := range c.Providers {
		if !validProviders[p] {
			return fmt.Errorf("invalid provider %q: must be one of anthropic, openai, google, ollama, minimax, openrouter", p)
		}
	}

	if c.Quality != "" && !validQualityTiers[c.Quality] {
		return fmt.Errorf("invalid quality %q: must be one of lite, normal, max", c.Quality)
	}

	if c.Context.MaxTokens <= 0 {
		return fmt.Errorf("context.max_tokens must be positive")
	}
	if c.Context.Estimator != "" && !validEstimators[c.Context.Estimator] {
		return fmt.Errorf("invalid context.estimator %q: must be heuristic or tiktoken", c.Context.Estimator)
	}

	if c.Fallback.FailureThreshold < 0 {
		return fmt.Errorf("fallback.failure_threshold must be non-negative")
	}

	if c.Embeddings.Provider != "" && c.Embeddings.Provider != "openai" && c.Embeddings.Provider != "ollama" {
		return fmt.Errorf("invalid embeddings.provider %q: must be openai or ollama", c.Embeddings.Provider)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.MaxCostUSD < 0 {
		return fmt.Errorf("max_cost_usd must be non-negative")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	case "minimax":
		return "MINIMAX_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}
