package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string         `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	LLM         LLMConfig      `yaml:"llm"`
	Voice       VoiceConfig    `yaml:"voice"`
	Sessions    SessionConfig  `yaml:"sessions"`
	LogLevel    string         `yaml:"log_level"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the API listener
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig selects the catalog store
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"`
	URL     string `yaml:"url"`
}

// LLMConfig configures the delegated text-generation provider
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIVersion  string        `yaml:"api_version"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// VoiceConfig holds the narration defaults returned to voice-capable clients
type VoiceConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Language string  `yaml:"language"`
	Rate     float64 `yaml:"rate"`
	Pitch    float64 `yaml:"pitch"`
	Volume   float64 `yaml:"volume"`
}

// SessionConfig bounds the number of live sessions
type SessionConfig struct {
	Capacity int `yaml:"capacity"`
}

// MetricsConfig configures the prometheus listener
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Enabled: true,
			Driver:  "sqlite3",
			URL:     ":memory:",
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			MaxTokens:   500,
			Temperature: 0.7,
			Timeout:     15 * time.Second,
		},
		Voice: VoiceConfig{
			Enabled:  true,
			Language: "en-US",
			Rate:     0.9,
			Pitch:    1.0,
			Volume:   0.8,
		},
		Sessions: SessionConfig{Capacity: 1024},
		LogLevel: "info",
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if os.Getenv("SMARTBITE_ENV") != "production" && cfg.Environment != "production" {
		// .env is optional; real environment variables take precedence
		_ = godotenv.Load()
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Environment, "SMARTBITE_ENV")
	setString(&c.LogLevel, "SMARTBITE_LOG_LEVEL")
	setString(&c.Database.Driver, "SMARTBITE_DATABASE_DRIVER")
	setString(&c.Database.URL, "SMARTBITE_DATABASE_URL")
	setString(&c.LLM.Provider, "SMARTBITE_LLM_PROVIDER")
	setString(&c.LLM.Model, "SMARTBITE_LLM_MODEL")
	setString(&c.LLM.BaseURL, "SMARTBITE_LLM_BASE_URL")

	if err := setInt(&c.Server.Port, "SMARTBITE_PORT"); err != nil {
		return err
	}
	if v := os.Getenv("SMARTBITE_LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SMARTBITE_LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}
	if v := os.Getenv("SMARTBITE_VOICE_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SMARTBITE_VOICE_ENABLED: %w", err)
		}
		c.Voice.Enabled = enabled
	}

	// Provider credentials follow each vendor's own variable names
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "azure":
			setString(&c.LLM.APIKey, "AZURE_OPENAI_API_KEY")
			setString(&c.LLM.BaseURL, "AZURE_OPENAI_ENDPOINT")
			setString(&c.LLM.Model, "AZURE_OPENAI_DEPLOYMENT_NAME")
			setString(&c.LLM.APIVersion, "AZURE_OPENAI_API_VERSION")
		case "github_models":
			setString(&c.LLM.APIKey, "GITHUB_TOKEN")
		default:
			setString(&c.LLM.APIKey, "OPENAI_API_KEY")
		}
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.LLM.Provider {
	case "openai", "azure", "github_models":
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	if c.Database.Enabled {
		switch c.Database.Driver {
		case "sqlite3", "postgres":
		default:
			return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
		}
	}
	if c.Sessions.Capacity <= 0 {
		return fmt.Errorf("session capacity must be positive")
	}
	return nil
}

// HasLLMCredential reports whether the delegated strategies can be enabled
func (c *Config) HasLLMCredential() bool {
	return c.LLM.APIKey != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
