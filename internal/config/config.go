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

// Config holds the notedex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Ingest    IngestConfig    `yaml:"ingest"`
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

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string      `yaml:"api_key"`
	BaseURL    string      `yaml:"base_url"`
	Model      string      `yaml:"model"`
	ChatModel  string      `yaml:"chat_model"` // metadata extraction model
	Dimensions int         `yaml:"dimensions"`
	TimeoutSec int         `yaml:"timeout_sec"`
	// CacheTTLHours bounds embedding cache entries; 0 keeps them forever.
	CacheTTLHours int         `yaml:"cache_ttl_hours"`
	Retry         RetryConfig `yaml:"retry"`
}

// RetryConfig holds the retry policy for provider calls.
type RetryConfig struct {
	MaxAttempts  int     `yaml:"max_attempts"`
	BaseDelayMS  int     `yaml:"base_delay_ms"`
	Multiplier   float64 `yaml:"multiplier"`
	MaxDelaySec  int     `yaml:"max_delay_sec"`
}

// SearchConfig holds retrieval tuning knobs.
type SearchConfig struct {
	// CandidatePool is the KNN candidate count fetched before filtering.
	CandidatePool int `yaml:"candidate_pool"`
	// MaxResults caps the final result list.
	MaxResults      int `yaml:"max_results"`
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	Workers          int    `yaml:"workers"`
	FetchTimeoutSec  int    `yaml:"fetch_timeout_sec"`
	MaxContentChars  int    `yaml:"max_content_chars"`
	ColabExportURL   string `yaml:"colab_export_url"` // %s is replaced by the Drive file id
	SourcesFile      string `yaml:"sources_file"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.Retry.MaxAttempts <= 0 {
		c.Embedding.Retry.MaxAttempts = 4
	}
	if c.Embedding.Retry.BaseDelayMS <= 0 {
		c.Embedding.Retry.BaseDelayMS = 500
	}
	if c.Embedding.Retry.Multiplier <= 0 {
		c.Embedding.Retry.Multiplier = 2.0
	}
	if c.Embedding.Retry.MaxDelaySec <= 0 {
		c.Embedding.Retry.MaxDelaySec = 10
	}
	if c.Search.CandidatePool <= 0 {
		c.Search.CandidatePool = 100
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 10
	}
	if c.Search.HNSWM <= 0 {
		c.Search.HNSWM = 32
	}
	if c.Search.HNSWEFConstruct <= 0 {
		c.Search.HNSWEFConstruct = 400
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.FetchTimeoutSec <= 0 {
		c.Ingest.FetchTimeoutSec = 30
	}
	if c.Ingest.MaxContentChars <= 0 {
		c.Ingest.MaxContentChars = 24000
	}
	if c.Ingest.ColabExportURL == "" {
		c.Ingest.ColabExportURL = "https://drive.google.com/uc?export=download&id=%s"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Search.CandidatePool < c.Search.MaxResults {
		return fmt.Errorf("search.candidate_pool (%d) must be >= search.max_results (%d)",
			c.Search.CandidatePool, c.Search.MaxResults)
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
