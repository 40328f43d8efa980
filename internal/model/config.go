package model

import "time"

// Config is the full engine configuration. Hierarchy (highest first):
// CLI flags, FACTLINE_* environment variables, ~/.factline/config.yaml,
// the defaults below.
type Config struct {
	Normalize    NormalizeConfig   `yaml:"normalize" json:"normalize"`
	Cache        CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output       OutputConfig      `yaml:"output" json:"output"`
	Store        StoreConfig       `yaml:"store" json:"store"`
	LLM          LLMConfig         `yaml:"llm" json:"llm"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" json:"rate_limiting"`
}

// NormalizeConfig controls fact normalization.
type NormalizeConfig struct {
	// DefaultCurrency is the ISO code assumed for bare amounts when no
	// symbol or code appears anywhere in the document. Empty means
	// "infer from the document's explicit currencies, else XXX".
	DefaultCurrency string `yaml:"default_currency" json:"default_currency"`
}

// CacheConfig controls the record cache.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	Dir             string        `yaml:"dir" json:"dir"`
	TTL             time.Duration `yaml:"ttl" json:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// ConcurrencyConfig controls batch parallelism.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"` // Concurrent document pipelines
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// StoreConfig controls SQLite persistence of records.
type StoreConfig struct {
	Path string `yaml:"path" json:"path"` // Empty disables persistence
}

// LLMConfig configures the optional summary annotator.
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // openai, ollama, "" = disabled
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"` // Env only, never written to config files
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`

	HTTPProxy  string `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" json:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" json:"no_proxy"`
}

// RateLimitConfig paces outbound LLM calls in batch mode.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" json:"burst_size"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Normalize: NormalizeConfig{
			DefaultCurrency: "",
		},
		Cache: CacheConfig{
			Enabled:         true,
			Dir:             "", // resolved to ~/.factline/cache at runtime
			TTL:             24 * time.Hour,
			CleanupInterval: time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		Store: StoreConfig{
			Path: "",
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   30,
			MaxTokens: 1000,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
	}
}
