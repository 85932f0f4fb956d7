// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "partswap/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 and 5xx responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CatalogConfig holds settings for the Digi-Key catalog client.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// ClientID and ClientSecret are the OAuth2 client-credentials pair.
	ClientID     string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`

	// LocaleSite, LocaleLanguage and LocaleCurrency populate the
	// X-DIGIKEY-Locale-* headers (defaults US, en, USD).
	LocaleSite     string `json:"locale_site" yaml:"locale_site"`
	LocaleLanguage string `json:"locale_language" yaml:"locale_language"`
	LocaleCurrency string `json:"locale_currency" yaml:"locale_currency"`

	// CacheDir is the directory holding the lookup cache database.
	// Empty disables caching.
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`

	// CacheTTL is how long a cached lookup stays fresh (default 24h).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// HasCredentials reports whether both halves of the client-credentials pair are set.
func (c CatalogConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// RankerConfig holds settings for the parameter ranking oracle.
type RankerConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API. When empty the
	// ranker is disabled and parameters keep their input order.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single ranking call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// SearchConfig holds settings for the replacement search.
type SearchConfig struct {
	// RecordCount caps the number of products requested per catalog query (default 50).
	RecordCount int `json:"record_count" yaml:"record_count"`

	// RoundDelay is the pause between relaxation rounds (default 200ms).
	RoundDelay time.Duration `json:"round_delay" yaml:"round_delay"`

	// MaxMatchReasons is how many used parameters are attached to each
	// candidate as match justification (default 6).
	MaxMatchReasons int `json:"max_match_reasons" yaml:"max_match_reasons"`

	// KeywordTokens is how many top value tokens the keyword fallback uses (default 3).
	KeywordTokens int `json:"keyword_tokens" yaml:"keyword_tokens"`

	Enrich EnrichConfig `json:"enrich" yaml:"enrich"`
}

// EnrichConfig holds settings for the candidate enrichment pool.
type EnrichConfig struct {
	// Workers bounds concurrent lookups (default 8, clamped to [1,32]).
	Workers int `json:"workers" yaml:"workers"`

	// Timeout bounds the whole pool. Zero means no deadline beyond the transport's.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Defaults for SearchConfig and EnrichConfig.
const (
	DefaultRecordCount     = 50
	DefaultRoundDelay      = 200 * time.Millisecond
	DefaultMaxMatchReasons = 6
	DefaultKeywordTokens   = 3
	DefaultEnrichWorkers   = 8
	MinEnrichWorkers       = 1
	MaxEnrichWorkers       = 32
)

// WithDefaults returns a copy of c with zero values replaced by defaults
// and the worker count clamped.
func (c SearchConfig) WithDefaults() SearchConfig {
	if c.RecordCount <= 0 {
		c.RecordCount = DefaultRecordCount
	}
	if c.RoundDelay < 0 {
		c.RoundDelay = 0
	}
	if c.MaxMatchReasons <= 0 {
		c.MaxMatchReasons = DefaultMaxMatchReasons
	}
	if c.KeywordTokens <= 0 {
		c.KeywordTokens = DefaultKeywordTokens
	}
	c.Enrich.Workers = ClampWorkers(c.Enrich.Workers)
	return c
}

// ClampWorkers maps n into [MinEnrichWorkers, MaxEnrichWorkers]; zero or
// negative input yields the default.
func ClampWorkers(n int) int {
	switch {
	case n <= 0:
		return DefaultEnrichWorkers
	case n > MaxEnrichWorkers:
		return MaxEnrichWorkers
	default:
		return n
	}
}

// LogConfig selects the structured logger setup.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is console or json (default console).
	Format string `json:"format" yaml:"format"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default 127.0.0.1:5000).
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// Config groups every component configuration.
type Config struct {
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Ranker  RankerConfig  `json:"ranker" yaml:"ranker"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}
