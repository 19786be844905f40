package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Missions    MissionsConfig  `toml:"missions"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Extractor   ExtractorConfig `toml:"extractor"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
}

// SQLiteConfig represents SQLite-specific configuration
type SQLiteConfig struct {
	Path string `toml:"path"` // Database file path
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// MissionsConfig contains configuration for mission definition files
type MissionsConfig struct {
	DefinitionsDir string `toml:"definitions_dir"` // Directory containing mission definition files (TOML)
}

// SchedulerConfig contains configuration for scheduled mission runs
type SchedulerConfig struct {
	Enabled bool `toml:"enabled"` // Run missions on their cadence (default: true)
}

// ExtractorConfig contains configuration for the content extraction provider
// and the shared rate-limited fetcher in front of it.
type ExtractorConfig struct {
	BaseURL          string        `toml:"base_url"`            // Extraction API base URL
	APIKey           string        `toml:"api_key"`             // Extraction API key
	RequestTimeout   time.Duration `toml:"request_timeout"`     // HTTP request timeout
	RequestDelay     time.Duration `toml:"request_delay"`       // Minimum delay between extraction calls
	RateLimitCooldown time.Duration `toml:"rate_limit_cooldown"` // Cooldown after a provider rate-limit error
	BatchSize        int           `toml:"batch_size"`          // URLs per batch in batched fetches
	BatchPause       time.Duration `toml:"batch_pause"`         // Extra pause between batches
}

// GeminiConfig contains Google Gemini API configuration for scoring
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for scoring operations (default: "gemini-3-flash-preview")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// ClaudeConfig contains Anthropic Claude API configuration for scoring
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for scoring operations (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // Default provider: "gemini" or "claude" (default: "gemini")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in venari.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path: "./data/venari.db",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Missions: MissionsConfig{
			DefinitionsDir: "./missions",
		},
		Scheduler: SchedulerConfig{
			Enabled: true,
		},
		Extractor: ExtractorConfig{
			BaseURL:           "https://api.firecrawl.dev",
			APIKey:            "", // User must provide API key (VENARI_EXTRACTOR_API_KEY or config)
			RequestTimeout:    90 * time.Second,
			RequestDelay:      6 * time.Second,  // Extraction calls are expensive; keep provider load low
			RateLimitCooldown: 60 * time.Second, // Provider quota window
			BatchSize:         5,
			BatchPause:        10 * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "5m",
			Temperature: 0.2, // Scoring wants stable verdicts, not creativity
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.2,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VENARI_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if path := os.Getenv("VENARI_SQLITE_PATH"); path != "" {
		config.Storage.SQLite.Path = path
	}

	if level := os.Getenv("VENARI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("VENARI_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if dir := os.Getenv("VENARI_MISSIONS_DIR"); dir != "" {
		config.Missions.DefinitionsDir = dir
	}
	if enabled := os.Getenv("VENARI_SCHEDULER_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = b
		}
	}

	if baseURL := os.Getenv("VENARI_EXTRACTOR_BASE_URL"); baseURL != "" {
		config.Extractor.BaseURL = baseURL
	}
	if apiKey := os.Getenv("VENARI_EXTRACTOR_API_KEY"); apiKey != "" {
		config.Extractor.APIKey = apiKey
	}
	if delay := os.Getenv("VENARI_EXTRACTOR_REQUEST_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			config.Extractor.RequestDelay = d
		}
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if provider := os.Getenv("VENARI_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// Validate checks the configuration for fatal misconfiguration
func (c *Config) Validate() error {
	if c.Storage.SQLite.Path == "" {
		return fmt.Errorf("storage.sqlite.path is required")
	}
	if c.Extractor.RequestDelay <= 0 {
		return fmt.Errorf("extractor.request_delay must be positive")
	}
	if c.Extractor.BatchSize <= 0 {
		return fmt.Errorf("extractor.batch_size must be positive")
	}
	return nil
}
