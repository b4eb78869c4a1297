package model

import "time"

// Config is the full pitchcheck configuration
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	PDF         PDFConfig         `yaml:"pdf" mapstructure:"pdf"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Pipeline    PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
	Authority   AuthorityConfig   `yaml:"authority" mapstructure:"authority"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// LLMConfig selects and tunes the language model provider
type LLMConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"` // anthropic, openai, gemini, ollama
	Model          string  `yaml:"model" mapstructure:"model"`
	APIKey         string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL        string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout        int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
	StrictEvidence bool    `yaml:"strict_evidence" mapstructure:"strict_evidence"` // Flag narrative URLs not found by search
}

// SearchConfig configures the web search client
type SearchConfig struct {
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries"`
}

// CacheConfig configures search result caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	RedisAddr string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"` // Empty disables the shared layer
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
	RedisTTL  time.Duration `yaml:"redis_ttl" mapstructure:"redis_ttl"`
}

// PDFConfig tunes extraction and rendering
type PDFConfig struct {
	RenderDPI      float64 `yaml:"render_dpi" mapstructure:"render_dpi"`
	JPEGQuality    int     `yaml:"jpeg_quality" mapstructure:"jpeg_quality"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// HTTPConfig is shared by the deck fetcher and source validator
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	AnalysisTimeout time.Duration `yaml:"analysis_timeout" mapstructure:"analysis_timeout"`
}

// ConcurrencyConfig bounds fan-out
type ConcurrencyConfig struct {
	ClassifierWorkers int `yaml:"classifier_workers" mapstructure:"classifier_workers"`
	StageWorkers      int `yaml:"stage_workers" mapstructure:"stage_workers"`
	BatchWorkers      int `yaml:"batch_workers" mapstructure:"batch_workers"`
	ValidationWorkers int `yaml:"validation_workers" mapstructure:"validation_workers"`
}

// PipelineConfig controls orchestration behavior
type PipelineConfig struct {
	SelectionPolicy   string `yaml:"selection_policy" mapstructure:"selection_policy"` // first, longest, all
	ClassifierRetries int    `yaml:"classifier_retries" mapstructure:"classifier_retries"`
	ValidateSources   bool   `yaml:"validate_sources" mapstructure:"validate_sources"` // HEAD-check collected source URLs
	ContextChars      int    `yaml:"context_chars" mapstructure:"context_chars"`       // Default general context length
}

// AuthorityConfig maps source domains to authority tiers
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// LoggingConfig configures zap
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "anthropic",
			Timeout:        60,
			MaxTokens:      2000,
			Temperature:    0,
			MaxRetries:     2,
			StrictEvidence: true,
		},
		Search: SearchConfig{
			BaseURL:           "https://api.tavily.com",
			Timeout:           20 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
			MaxRetries:        2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			Dir:       defaultCacheDir(),
			DiskTTL:   24 * time.Hour,
			RedisTTL:  24 * time.Hour,
		},
		PDF: PDFConfig{
			RenderDPI:      150,
			JPEGQuality:    85,
			MaxUploadBytes: 50 << 20,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "pitchcheck/0.3 (+https://github.com/ppiankov/pitchcheck)",
			MaxBodyBytes: 50 << 20,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			AnalysisTimeout: 10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			ClassifierWorkers: 4,
			StageWorkers:      3,
			BatchWorkers:      2,
			ValidationWorkers: 10,
		},
		Pipeline: PipelineConfig{
			SelectionPolicy:   "first",
			ClassifierRetries: 1,
			ValidateSources:   false,
			ContextChars:      1000,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"sec.gov", "census.gov", "bls.gov", "europa.eu",
				"worldbank.org", "oecd.org", "imf.org", "ons.gov.uk",
			},
			SecondaryDomains: []string{
				"crunchbase.com", "pitchbook.com", "linkedin.com", "statista.com",
				"gartner.com", "mckinsey.com", "reuters.com", "bloomberg.com",
				"ft.com", "wsj.com", "techcrunch.com", "forbes.com", "wikipedia.org",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
