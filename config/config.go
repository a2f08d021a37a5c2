package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Fetch     FetchConfig
	Matching  MatchingConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// CatalogConfig holds brand catalog configuration
type CatalogConfig struct {
	Path       string        `mapstructure:"path"` // preloaded catalog, optional on disk
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// FetchConfig holds retailer page fetch configuration
type FetchConfig struct {
	Engine            string        `mapstructure:"engine"` // "http" or "colly"
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// MatchingConfig holds matching pipeline configuration
type MatchingConfig struct {
	FilterStopWords bool     `mapstructure:"filter_stop_words"`
	StopWords       []string `mapstructure:"stop_words"`
	FoldDiacritics  bool     `mapstructure:"fold_diacritics"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/retailmatch/")

	// RETAILMATCH_FETCH_TIMEOUT -> fetch.timeout
	v.SetEnvPrefix("RETAILMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.max_upload_bytes", 10<<20)

	// Catalog defaults
	v.SetDefault("catalog.path", "tshowlist.csv")
	v.SetDefault("catalog.session_ttl", "1h")

	// Fetch defaults
	v.SetDefault("fetch.engine", "http")
	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.user_agent", "retailmatch-bot/1.0")
	v.SetDefault("fetch.max_body_bytes", 10<<20)
	v.SetDefault("fetch.requests_per_second", 1)
	v.SetDefault("fetch.burst", 2)

	// Matching defaults
	v.SetDefault("matching.filter_stop_words", true)
	v.SetDefault("matching.stop_words", []string{
		"the", "home", "search", "about", "info", "contact", "shop", "new", "brands",
		"collections", "faq", "policies", "support", "login", "sign", "account",
	})
	v.SetDefault("matching.fold_diacritics", false)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Fetch.Engine != "http" && config.Fetch.Engine != "colly" {
		return fmt.Errorf("fetch engine must be 'http' or 'colly', got: %s", config.Fetch.Engine)
	}

	if config.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got: %s", config.Fetch.Timeout)
	}

	if config.Log.Format != "console" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", config.Log.Format)
	}

	return nil
}
