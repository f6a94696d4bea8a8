package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default confidence floors. The two call sites historically used different values.
const (
	DefaultSearchMinConfidence       = 0.5
	DefaultConversationMinConfidence = 0.7
)

// Config holds the haven service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	LLM       LLMConfig       `yaml:"llm"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Crisis    CrisisConfig    `yaml:"crisis"`
	Outcomes  OutcomesConfig  `yaml:"outcomes"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// Enabled reports whether at least one non-empty key is configured.
// An unset ${API_KEY} expands to "", which must not count as a key.
func (a AuthConfig) Enabled() bool {
	for _, k := range a.APIKeys {
		if strings.TrimSpace(k) != "" {
			return true
		}
	}
	return false
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// RequestTimeoutSec bounds one pipeline run.
	RequestTimeoutSec int `yaml:"request_timeout_sec"`
}

// DatabaseConfig holds the optional key-value store settings.
// An empty Addrs list disables the embedding cache and the outcome journal.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool { return len(d.Addrs) > 0 }

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // label for metrics and logs (default: openai)
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// SearchConfig holds Tavily settings.
type SearchConfig struct {
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url"`
	SearchDepth    string   `yaml:"search_depth"` // basic, advanced
	MaxResults     int      `yaml:"max_results"`
	IncludeDomains []string `yaml:"include_domains"`
	TimeoutSec     int      `yaml:"timeout_sec"`
}

// LLMConfig holds settings for the text generator used by classification and fallback.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, anthropic, gemini
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// PipelineConfig holds query pipeline settings.
type PipelineConfig struct {
	SearchMinConfidence       float64 `yaml:"search_min_confidence"`
	ConversationMinConfidence float64 `yaml:"conversation_min_confidence"`
	RerankMaxCandidates       int     `yaml:"rerank_max_candidates"`
	RerankWorkers             int     `yaml:"rerank_workers"`
}

// CrisisConfig holds the hotline surfaced in every response.
type CrisisConfig struct {
	HotlineName   string `yaml:"hotline_name"`
	HotlineNumber string `yaml:"hotline_number"`
}

// OutcomesConfig holds outcome journal settings.
type OutcomesConfig struct {
	Enabled  bool `yaml:"enabled"`
	KeepLast int  `yaml:"keep_last"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML with ${VAR} expansion, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RequestTimeoutSec <= 0 {
		c.HTTP.RequestTimeoutSec = 45
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.CacheTTLSec <= 0 {
		c.Embedding.CacheTTLSec = 7 * 24 * 3600
	}
	if c.Search.SearchDepth == "" {
		c.Search.SearchDepth = "basic"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 5
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 10
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModel(c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 400
	}
	if c.Pipeline.SearchMinConfidence == 0 {
		c.Pipeline.SearchMinConfidence = DefaultSearchMinConfidence
	}
	if c.Pipeline.ConversationMinConfidence == 0 {
		c.Pipeline.ConversationMinConfidence = DefaultConversationMinConfidence
	}
	if c.Pipeline.RerankMaxCandidates <= 0 {
		c.Pipeline.RerankMaxCandidates = 5
	}
	if c.Pipeline.RerankWorkers <= 0 {
		c.Pipeline.RerankWorkers = 16
	}
	if c.Crisis.HotlineName == "" {
		c.Crisis.HotlineName = "National Domestic Violence Hotline"
	}
	if c.Crisis.HotlineNumber == "" {
		c.Crisis.HotlineNumber = "1-800-799-7233"
	}
	if c.Outcomes.KeepLast <= 0 {
		c.Outcomes.KeepLast = 1000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if c.Outcomes.Enabled && !c.Database.Enabled() {
		return fmt.Errorf("outcomes.enabled requires database.addrs")
	}
	if c.Outcomes.Enabled && !c.Auth.Enabled() {
		return fmt.Errorf("outcomes.enabled requires a non-empty auth.api_keys entry")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("llm.provider must be one of openai, anthropic, gemini, got %q", c.LLM.Provider)
	}
	switch c.Search.SearchDepth {
	case "basic", "advanced":
	default:
		return fmt.Errorf("search.search_depth must be \"basic\" or \"advanced\", got %q", c.Search.SearchDepth)
	}
	if err := validateConfidence("pipeline.search_min_confidence", c.Pipeline.SearchMinConfidence); err != nil {
		return err
	}
	if err := validateConfidence(
		"pipeline.conversation_min_confidence", c.Pipeline.ConversationMinConfidence,
	); err != nil {
		return err
	}
	return nil
}

// ThresholdsDiffer reports whether the two pipelines gate on different confidence floors.
func (c *Config) ThresholdsDiffer() bool {
	return c.Pipeline.SearchMinConfidence != c.Pipeline.ConversationMinConfidence
}

func validateConfidence(name string, v float64) error {
	if v < -1 || v > 1 {
		return fmt.Errorf("%s must be within [-1, 1], got %v", name, v)
	}
	return nil
}

func defaultModel(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-3-5-haiku-latest"
	case "gemini":
		return "gemini-1.5-flash"
	default:
		return "gpt-4o-mini"
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
