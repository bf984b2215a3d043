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

// Config holds the SaferBites configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Data      DataConfig      `yaml:"data"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Aggregate AggregateConfig `yaml:"aggregate"`
	Search    SearchConfig    `yaml:"search"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DataConfig locates the processed collections.
type DataConfig struct {
	ViolationsPath string `yaml:"violations_path"`
	ReviewsPath    string `yaml:"reviews_path"`
	TagDelimiter   string `yaml:"tag_delimiter"`
	// Aliases replaces the accepted header names per logical field (doc_id, business_id, ...).
	Aliases map[string][]string `yaml:"aliases"`
}

// IndexConfig holds BM25 parameters.
type IndexConfig struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// RetrievalConfig holds candidate retrieval settings.
type RetrievalConfig struct {
	TopK  int    `yaml:"top_k"` // per collection
	Merge string `yaml:"merge"` // concat (default), score, rrf
}

// RerankConfig holds semantic reranking settings.
type RerankConfig struct {
	Enabled             bool   `yaml:"enabled"`
	OnFailure           string `yaml:"on_failure"` // fallback (default), fail
	QueryInstruction    string `yaml:"query_instruction"`
	DocumentInstruction string `yaml:"document_instruction"`
}

// AggregateConfig holds establishment scoring settings.
type AggregateConfig struct {
	Boost       string  `yaml:"boost"` // none (default), tag
	BoostFactor float64 `yaml:"boost_factor"`
}

// SearchConfig holds per-query settings.
type SearchConfig struct {
	QueryTimeoutSec int `yaml:"query_timeout_sec"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	Provider     string        `yaml:"provider"`
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	Dimensions   int           `yaml:"dimensions"`
	MaxBatchSize int           `yaml:"max_batch_size"`
	TimeoutSec   int           `yaml:"timeout_sec"`
	Breaker      BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the embedding provider.
type BreakerConfig struct {
	MinRequests      uint32  `yaml:"min_requests"`
	FailureRatio     float64 `yaml:"failure_ratio"`
	OpenTimeoutSec   int     `yaml:"open_timeout_sec"`
	HalfOpenMaxCalls uint32  `yaml:"half_open_max_calls"`
}

// CacheConfig holds the embedding cache (Valkey/Redis) settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLHours         int      `yaml:"ttl_hours"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	Endpoint     string  `yaml:"endpoint"`
	Insecure     bool    `yaml:"insecure"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Data.TagDelimiter == "" {
		c.Data.TagDelimiter = ","
	}
	if c.Index.K1 <= 0 {
		c.Index.K1 = 1.5
	}
	if c.Index.B <= 0 {
		c.Index.B = 0.75
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 30
	}
	if c.Retrieval.Merge == "" {
		c.Retrieval.Merge = "concat"
	}
	if c.Rerank.OnFailure == "" {
		c.Rerank.OnFailure = "fallback"
	}
	if c.Aggregate.Boost == "" {
		c.Aggregate.Boost = "none"
	}
	if c.Aggregate.BoostFactor <= 0 {
		c.Aggregate.BoostFactor = 1.5
	}
	if c.Search.QueryTimeoutSec <= 0 {
		c.Search.QueryTimeoutSec = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 256
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 5
	}
	if c.Embedding.Breaker.MinRequests == 0 {
		c.Embedding.Breaker.MinRequests = 10
	}
	if c.Embedding.Breaker.FailureRatio <= 0 {
		c.Embedding.Breaker.FailureRatio = 0.5
	}
	if c.Embedding.Breaker.OpenTimeoutSec <= 0 {
		c.Embedding.Breaker.OpenTimeoutSec = 30
	}
	if c.Embedding.Breaker.HalfOpenMaxCalls == 0 {
		c.Embedding.Breaker.HalfOpenMaxCalls = 2
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "saferbites"
	}
	if c.Tracing.SamplingRate <= 0 {
		c.Tracing.SamplingRate = 1.0
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Index.B > 1 {
		return fmt.Errorf("index.b must be in [0, 1], got %v", c.Index.B)
	}
	switch c.Retrieval.Merge {
	case "concat", "score", "rrf":
	default:
		return fmt.Errorf("retrieval.merge must be \"concat\", \"score\" or \"rrf\", got %q", c.Retrieval.Merge)
	}
	switch c.Rerank.OnFailure {
	case "fallback", "fail":
	default:
		return fmt.Errorf("rerank.on_failure must be \"fallback\" or \"fail\", got %q", c.Rerank.OnFailure)
	}
	switch c.Aggregate.Boost {
	case "none", "tag":
	default:
		return fmt.Errorf("aggregate.boost must be \"none\" or \"tag\", got %q", c.Aggregate.Boost)
	}
	if c.Rerank.Enabled && c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required when rerank is enabled")
	}
	if c.Embedding.Breaker.FailureRatio > 1 {
		return fmt.Errorf("embedding.breaker.failure_ratio must be in (0, 1], got %v", c.Embedding.Breaker.FailureRatio)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	if c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("tracing.sampling_rate must be in (0, 1], got %v", c.Tracing.SamplingRate)
	}
	return nil
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
