package config

import "time"

// QualityTier controls the model choice trade-off between speed/cost and quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// Config is the top-level pmdoc configuration, corresponding to .pmdoc.yml.
type Config struct {
	// Providers is the fallback order. The first configured healthy
	// provider handles each request.
	Providers []string    `yaml:"providers" koanf:"providers"`
	Model     string      `yaml:"model" koanf:"model"`
	Quality   QualityTier `yaml:"quality" koanf:"quality"`

	Fallback   FallbackConfig   `yaml:"fallback" koanf:"fallback"`
	Context    ContextConfig    `yaml:"context" koanf:"context"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" koanf:"embeddings"`
	Import     ImportConfig     `yaml:"import" koanf:"import"`
	Server     ServerConfig     `yaml:"server" koanf:"server"`

	OutputDir  string  `yaml:"output_dir" koanf:"output_dir"`
	DataDir    string  `yaml:"data_dir" koanf:"data_dir"`
	MaxCostUSD float64 `yaml:"max_cost_usd" koanf:"max_cost_usd"`
}

// FallbackConfig tunes provider health monitoring and failover.
type FallbackConfig struct {
	FailureThreshold   int `yaml:"failure_threshold" koanf:"failure_threshold"`
	MaxRetries         int `yaml:"max_retries" koanf:"max_retries"`
	HealthIntervalSecs int `yaml:"health_interval_secs" koanf:"health_interval_secs"`
	ProbeTimeoutSecs   int `yaml:"probe_timeout_secs" koanf:"probe_timeout_secs"`
}

// HealthInterval returns the periodic probe interval.
func (f FallbackConfig) HealthInterval() time.Duration {
	return time.Duration(f.HealthIntervalSecs) * time.Second
}

// ProbeTimeout returns the per-probe timeout.
func (f FallbackConfig) ProbeTimeout() time.Duration {
	return time.Duration(f.ProbeTimeoutSecs) * time.Second
}

// ContextConfig tunes the token budgeter.
type ContextConfig struct {
	MaxTokens    int    `yaml:"max_tokens" koanf:"max_tokens"`
	Estimator    string `yaml:"estimator" koanf:"estimator"`
	CacheTTLSecs int    `yaml:"cache_ttl_secs" koanf:"cache_ttl_secs"`
}

// CacheTTL returns the cluster cache lifetime.
func (c ContextConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// EmbeddingsConfig selects the optional semantic-search backend.
type EmbeddingsConfig struct {
	// Provider is "openai", "ollama", or empty to disable semantic search.
	Provider string `yaml:"provider" koanf:"provider"`
	Model    string `yaml:"model" koanf:"model"`
}

// ImportConfig holds the default filters for importing existing docs.
type ImportConfig struct {
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}

// ServerConfig holds the API server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
