package config

// QualityPreset describes the model to use for a given quality tier.
type QualityPreset struct {
	Model string
}

// qualityPresets maps each lead provider+quality combination to its model.
var qualityPresets = map[string]map[QualityTier]QualityPreset{
	"anthropic": {
		QualityLite:   {Model: "claude-haiku-4-5-20251001"},
		QualityNormal: {Model: "claude-sonnet-4-5-20250929"},
		QualityMax:    {Model: "claude-opus-4-6"},
	},
	"openai": {
		QualityLite:   {Model: "gpt-4o-mini"},
		QualityNormal: {Model: "gpt-4o"},
		QualityMax:    {Model: "gpt-4"},
	},
	"google": {
		QualityLite:   {Model: "gemini-2.0-flash"},
		QualityNormal: {Model: "gemini-1.5-pro"},
		QualityMax:    {Model: "gemini-1.5-pro"},
	},
	"ollama": {
		QualityLite:   {Model: "llama3"},
		QualityNormal: {Model: "llama3"},
		QualityMax:    {Model: "llama3:70b"},
	},
	"minimax": {
		QualityLite:   {Model: "MiniMax-M2.5-highspeed"},
		QualityNormal: {Model: "MiniMax-M2.5"},
		QualityMax:    {Model: "MiniMax-M2.5"},
	},
	"openrouter": {
		QualityLite:   {Model: "minimax/minimax-m2.5"},
		QualityNormal: {Model: "minimax/minimax-m2.5"},
		QualityMax:    {Model: "minimax/minimax-m2.5"},
	},
}

// DefaultImportExcludes are glob patterns excluded from import by default.
var DefaultImportExcludes = []string{
	"node_modules/**",
	"vendor/**",
	".git/**",
	"CHANGELOG.md",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: []string{"anthropic", "openai", "google", "ollama"},
		Model:     "claude-sonnet-4-5-20250929",
		Quality:   QualityNormal,
		Fallback: FallbackConfig{
			FailureThreshold:   5,
			MaxRetries:         2,
			HealthIntervalSecs: 300,
			ProbeTimeoutSecs:   10,
		},
		Context: ContextConfig{
			MaxTokens:    8000,
			Estimator:    "heuristic",
			CacheTTLSecs: 30,
		},
		Import: ImportConfig{
			Exclude: DefaultImportExcludes,
		},
		Server: ServerConfig{
			Port: 8321,
		},
		OutputDir:  "docs",
		DataDir:    ".pmdoc",
		MaxCostUSD: 10.0,
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the Normal Anthropic preset if the combination is not found.
func GetPreset(provider string, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets["anthropic"][QualityNormal]
}
