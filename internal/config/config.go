package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the govlens API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ClientName       string   `yaml:"client_name"`
	WriteTimeoutSec  int      `yaml:"write_timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	Provider         string       `yaml:"provider"`
	APIKey           string       `yaml:"api_key"`
	BaseURL          string       `yaml:"base_url"`
	Model            string       `yaml:"model"`
	Dimensions       int          `yaml:"dimensions"`
	QueryInstruction string       `yaml:"query_instruction"`
	TimeoutSec       int          `yaml:"timeout_sec"`
	CacheTTLSec      int          `yaml:"cache_ttl_sec"` // 0 = no expiry
	Budget           BudgetConfig `yaml:"budget"`
}

// LLMConfig holds chat model settings for synopses and narratives.
type LLMConfig struct {
	Provider            string       `yaml:"provider"`
	APIKey              string       `yaml:"api_key"`
	BaseURL             string       `yaml:"base_url"`
	Model               string       `yaml:"model"`
	Temperature         float32      `yaml:"temperature"`
	MaxTokens           int          `yaml:"max_tokens"`
	SynopsisConcurrency int          `yaml:"synopsis_concurrency"`
	RequestsPerSecond   float64      `yaml:"requests_per_second"` // 0 = unlimited
	Burst               int          `yaml:"burst"`
	SynopsisTimeoutSec  int          `yaml:"synopsis_timeout_sec"`
	FinalTimeoutSec     int          `yaml:"final_timeout_sec"`
	RetryAttempts       int          `yaml:"retry_attempts"`
	RetryBaseMs         int          `yaml:"retry_base_ms"`
	RetryCapMs          int          `yaml:"retry_cap_ms"`
	Budget              BudgetConfig `yaml:"budget"`
}

// RetrievalConfig holds query and ranking limits.
type RetrievalConfig struct {
	DefaultTopK   int `yaml:"default_top_k"`
	MaxTopK       int `yaml:"max_top_k"`
	SummaryTopK   int `yaml:"summary_top_k"`
	MaxQueryRunes int `yaml:"max_query_runes"`
	SnippetRunes  int `yaml:"snippet_runes"` // text length in responses and prompt fallbacks
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// Variables from .env and <env>.env are loaded first without overriding the process environment.
func Load(env string) (Config, error) {
	if err := loadDotEnv(env); err != nil {
		return Config{}, err
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, decodes it and applies defaults.
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
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ClientName == "" {
		c.Database.ClientName = "govlens"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.SynopsisConcurrency <= 0 {
		c.LLM.SynopsisConcurrency = 4
	}
	if c.LLM.SynopsisTimeoutSec <= 0 {
		c.LLM.SynopsisTimeoutSec = 60
	}
	if c.LLM.FinalTimeoutSec <= 0 {
		c.LLM.FinalTimeoutSec = 120
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = 4
	}
	if c.LLM.RetryBaseMs <= 0 {
		c.LLM.RetryBaseMs = 500
	}
	if c.LLM.RetryCapMs <= 0 {
		c.LLM.RetryCapMs = 8000
	}

	if c.Retrieval.DefaultTopK <= 0 {
		c.Retrieval.DefaultTopK = 5
	}
	if c.Retrieval.MaxTopK <= 0 {
		c.Retrieval.MaxTopK = 100
	}
	if c.Retrieval.SummaryTopK <= 0 {
		c.Retrieval.SummaryTopK = 10
	}
	if c.Retrieval.MaxQueryRunes <= 0 {
		c.Retrieval.MaxQueryRunes = 4000
	}
	if c.Retrieval.SnippetRunes <= 0 {
		c.Retrieval.SnippetRunes = 1000
	}

	c.CORS.AllowedOrigins = splitList(c.CORS.AllowedOrigins)
	c.Auth.APIKeys = splitList(c.Auth.APIKeys)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if len(c.Database.Addrs) == 0 {
		errs = append(errs, errors.New("database.addrs is required"))
	}
	if c.Embedding.Model == "" {
		errs = append(errs, errors.New("embedding.model is required"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature))
	}
	if c.LLM.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("llm.requests_per_second must not be negative, got %v", c.LLM.RequestsPerSecond))
	}
	if c.LLM.RetryCapMs < c.LLM.RetryBaseMs {
		errs = append(errs, fmt.Errorf("llm.retry_cap_ms (%d) must not be below llm.retry_base_ms (%d)", c.LLM.RetryCapMs, c.LLM.RetryBaseMs))
	}
	if c.Retrieval.DefaultTopK > c.Retrieval.MaxTopK {
		errs = append(errs, fmt.Errorf("retrieval.default_top_k (%d) exceeds retrieval.max_top_k (%d)", c.Retrieval.DefaultTopK, c.Retrieval.MaxTopK))
	}
	for name, b := range map[string]BudgetConfig{"embedding": c.Embedding.Budget, "llm": c.LLM.Budget} {
		switch b.Action {
		case "", "warn", "reject":
			// ok
		default:
			errs = append(errs, fmt.Errorf("%s.budget.action must be \"warn\" or \"reject\", got %q", name, b.Action))
		}
	}
	return errors.Join(errs...)
}

// loadDotEnv loads .env then <env>.env when present.
func loadDotEnv(env string) error {
	for _, name := range []string{".env", env + ".env"} {
		if !fileExists(name) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
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

// splitList flattens comma-separated entries so a single ${VAR} can carry a list.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
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
