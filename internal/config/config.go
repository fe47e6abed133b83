package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration. Credentials are only ever
// sourced from the environment or a config file, never compiled in.
type Config struct {
	Server    ServerConfig    `json:"server"`
	OpenAI    OpenAIConfig    `json:"openai"`
	LMS       LMSConfig       `json:"lms"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Cache     CacheConfig     `json:"cache"`
	Journal   JournalConfig   `json:"journal"`
	Tracing   TracingConfig   `json:"tracing"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port string `json:"port"`
	Host string `json:"host"`
	// Max request body size in bytes (default: 1MB)
	MaxRequestBodySize int64 `json:"max_request_body_size"`
	// Allowed CORS origins (comma-separated)
	AllowedOrigins string `json:"allowed_origins"`
}

// OpenAIConfig holds the text-generation service credentials and tuning.
type OpenAIConfig struct {
	APIKey         string  `json:"api_key"`
	BaseURL        string  `json:"base_url"`
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// LMSConfig holds the loyalty-management API credentials and constants.
type LMSConfig struct {
	BaseURL        string `json:"base_url"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	App            string `json:"app"`
	MerchantID     string `json:"merchant_id"`
	ClientID       string `json:"client_id"`
	Timezone       string `json:"timezone"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool `json:"enabled"`
	Rate    int  `json:"rate"`
	Window  int  `json:"window"` // in seconds
}

// CacheConfig holds the draft-store backend configuration. Redis is used
// when Addr is set, otherwise drafts live in process memory.
type CacheConfig struct {
	RedisAddr       string `json:"redis_addr"`
	RedisPassword   string `json:"redis_password"`
	RedisDB         int    `json:"redis_db"`
	DraftTTLSeconds int    `json:"draft_ttl_seconds"`
}

// JournalConfig holds the publish-journal configuration.
type JournalConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// TracingConfig holds OpenTelemetry tracing configuration.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	Endpoint    string `json:"endpoint"` // Jaeger collector endpoint
	Environment string `json:"environment"`
}

// LoadConfig loads configuration from environment variables and/or config file.
// Environment variables take precedence over config file values.
func LoadConfig(configFile string) (*Config, error) {
	cfg := defaults()

	// Load from config file if provided
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables (they take precedence)
	overrideFromEnv(cfg)

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "8080",
			MaxRequestBodySize: 1 << 20,
			AllowedOrigins:     "*",
		},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o",
			Temperature:    0.3,
			TimeoutSeconds: 60,
		},
		LMS: LMSConfig{
			App:            "merchant-portal",
			Timezone:       "Asia/Colombo",
			TimeoutSeconds: 30,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Rate:    100,
			Window:  60,
		},
		Cache: CacheConfig{
			DraftTTLSeconds: 3600,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "./offer_composer.db",
		},
		Tracing: TracingConfig{
			Environment: "development",
		},
	}
}

// loadFromFile loads configuration from a JSON file.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, cfg)
}

// overrideFromEnv overrides configuration with environment variables.
func overrideFromEnv(cfg *Config) {
	setString(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt64(&cfg.Server.MaxRequestBodySize, "MAX_REQUEST_BODY_SIZE")
	setString(&cfg.Server.AllowedOrigins, "ALLOWED_ORIGINS")

	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.OpenAI.Model, "OPENAI_MODEL")
	setFloat(&cfg.OpenAI.Temperature, "OPENAI_TEMPERATURE")
	setInt(&cfg.OpenAI.TimeoutSeconds, "OPENAI_TIMEOUT_SECONDS")

	setString(&cfg.LMS.BaseURL, "LMS_BASE_URL")
	setString(&cfg.LMS.Email, "LMS_EMAIL")
	setString(&cfg.LMS.Password, "LMS_PASSWORD")
	setString(&cfg.LMS.App, "LMS_APP")
	setString(&cfg.LMS.MerchantID, "LMS_MERCHANT_ID")
	setString(&cfg.LMS.ClientID, "LMS_CLIENT_ID")
	setString(&cfg.LMS.Timezone, "LMS_TIMEZONE")
	setInt(&cfg.LMS.TimeoutSeconds, "LMS_TIMEOUT_SECONDS")

	setBool(&cfg.RateLimit.Enabled, "RATE_LIMIT_ENABLED")
	setInt(&cfg.RateLimit.Rate, "RATE_LIMIT_RATE")
	setInt(&cfg.RateLimit.Window, "RATE_LIMIT_WINDOW")

	setString(&cfg.Cache.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Cache.RedisPassword, "REDIS_PASSWORD")
	setInt(&cfg.Cache.RedisDB, "REDIS_DB")
	setInt(&cfg.Cache.DraftTTLSeconds, "DRAFT_TTL_SECONDS")

	setBool(&cfg.Journal.Enabled, "JOURNAL_ENABLED")
	setString(&cfg.Journal.Path, "JOURNAL_PATH")

	setBool(&cfg.Tracing.Enabled, "TRACING_ENABLED")
	setString(&cfg.Tracing.Endpoint, "TRACING_ENDPOINT")
	setString(&cfg.Tracing.Environment, "TRACING_ENVIRONMENT")
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setBool(dst *bool, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = strings.ToLower(value) == "true" || value == "1"
	}
}

func setInt(dst *int, key string) {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			*dst = i
		}
	}
}

func setInt64(dst *int64, key string) {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			*dst = i
		}
	}
}

func setFloat(dst *float64, key string) {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			*dst = f
		}
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.LMS.BaseURL == "" {
		return fmt.Errorf("LMS_BASE_URL is required")
	}
	if c.LMS.Email == "" || c.LMS.Password == "" {
		return fmt.Errorf("LMS_EMAIL and LMS_PASSWORD are required")
	}
	if c.LMS.MerchantID == "" {
		return fmt.Errorf("LMS_MERCHANT_ID is required")
	}
	if c.LMS.ClientID == "" {
		return fmt.Errorf("LMS_CLIENT_ID is required")
	}
	if c.LMS.Timezone == "" {
		return fmt.Errorf("LMS_TIMEZONE is required")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal path is required when the journal is enabled")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			return fmt.Errorf("rate limit rate must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}
	return nil
}
