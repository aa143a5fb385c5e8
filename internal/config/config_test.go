package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Providers) == 0 || cfg.Providers[0] != "anthropic" {
		t.Errorf("expected anthropic-led fallback order, got %v", cfg.Providers)
	}
	if cfg.Quality != QualityNormal {
		t.Errorf("expected default quality %q, got %q", QualityNormal, cfg.Quality)
	}
	if cfg.Fallback.FailureThreshold != 5 {
		t.Errorf("expected failure threshold 5, got %d", cfg.Fallback.FailureThreshold)
	}
	if cfg.Fallback.HealthInterval() != 5*time.Minute {
		t.Errorf("expected 5m health interval, got %v", cfg.Fallback.HealthInterval())
	}
	if cfg.Context.MaxTokens != 8000 {
		t.Errorf("expected 8000 context tokens, got %d", cfg.Context.MaxTokens)
	}
	if cfg.OutputDir != "docs" {
		t.Errorf("expected default output_dir %q, got %q", "docs", cfg.OutputDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.pmdoc.yml")

	original := DefaultConfig()
	original.Providers = []string{"openai", "ollama"}
	original.Model = "gpt-4o"
	original.Quality = QualityMax
	original.Context.MaxTokens = 12000
	original.Server.Port = 9000
	original.MaxCostUSD = 25.5

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Providers) != 2 || loaded.Providers[0] != "openai" {
		t.Errorf("providers: got %v, want %v", loaded.Providers, original.Providers)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Quality != original.Quality {
		t.Errorf("quality: got %q, want %q", loaded.Quality, original.Quality)
	}
	if loaded.Context.MaxTokens != 12000 {
		t.Errorf("context.max_tokens: got %d, want 12000", loaded.Context.MaxTokens)
	}
	if loaded.Server.Port != 9000 {
		t.Errorf("server.port: got %d, want 9000", loaded.Server.Port)
	}
	if loaded.MaxCostUSD != original.MaxCostUSD {
		t.Errorf("max_cost_usd: got %f, want %f", loaded.MaxCostUSD, original.MaxCostUSD)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Providers[0] != "anthropic" {
		t.Errorf("expected default providers, got %v", cfg.Providers)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("PMDOC_MODEL", "gpt-4o-mini")
	os.Setenv("PMDOC_SERVER__PORT", "9999")
	defer os.Unsetenv("PMDOC_MODEL")
	defer os.Unsetenv("PMDOC_SERVER__PORT")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Model != "gpt-4o-mini" {
		t.Errorf("env override failed: got %q", loaded.Model)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("nested env override failed: got %d", loaded.Server.Port)
	}
}

func TestValidateValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no providers", func(c *Config) { c.Providers = nil }},
		{"invalid provider", func(c *Config) { c.Providers = []string{"invalid"} }},
		{"invalid quality", func(c *Config) { c.Quality = "ultra" }},
		{"zero context tokens", func(c *Config) { c.Context.MaxTokens = 0 }},
		{"invalid estimator", func(c *Config) { c.Context.Estimator = "guesswork" }},
		{"invalid embeddings provider", func(c *Config) { c.Embeddings.Provider = "bedrock" }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"negative cost", func(c *Config) { c.MaxCostUSD = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("anthropic", QualityLite)
	if p.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected haiku model, got %q", p.Model)
	}

	p = GetPreset("openai", QualityMax)
	if p.Model != "gpt-4" {
		t.Errorf("expected gpt-4, got %q", p.Model)
	}

	// Unknown combination falls back.
	p = GetPreset("unknown", QualityLite)
	if p.Model != "claude-sonnet-4-5-20250929" {
		t.Errorf("expected fallback to sonnet, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"google", "GOOGLE_API_KEY"},
		{"minimax", "MINIMAX_API_KEY"},
		{"openrouter", "OPENROUTER_API_KEY"},
		{"ollama", ""},
	}
	for _, tt := range tests {
		if got := APIKeyEnvVar(tt.provider); got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestProviderOrder(t *testing.T) {
	order := providerOrder("google")
	if order[0] != "google" {
		t.Errorf("expected google first, got %v", order)
	}
	seen := map[string]int{}
	for _, p := range order {
		seen[p]++
	}
	if seen["google"] != 1 {
		t.Errorf("lead provider duplicated: %v", order)
	}
}
