package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Classifier ClassifierConfig
	Audit      AuditConfig
	Crawl      CrawlConfig
	Matcher    MatcherConfig
	Judgment   JudgmentConfig
	Storage    StorageConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ClassifierConfig holds external AI classifier configuration
type ClassifierConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuditConfig holds smart-audit run configuration
type AuditConfig struct {
	Workers    int    `mapstructure:"workers"`
	ModuleType string `mapstructure:"module_type"`
}

// CrawlConfig holds crawl intake configuration
type CrawlConfig struct {
	DuplicateThreshold int `mapstructure:"duplicate_threshold"`
}

// MatcherConfig holds keyword matcher configuration
type MatcherConfig struct {
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`
}

// JudgmentConfig holds pending-judgment review window configuration
type JudgmentConfig struct {
	ExpiryDays      int           `mapstructure:"expiry_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if present (does not override existing env vars)
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/certwatch/")

	// Environment variable settings
	v.SetEnvPrefix("CERTWATCH")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile reads KEY=VALUE pairs from a .env file in the working
// directory. Existing environment variables win.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}
	return scanner.Err()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Classifier defaults
	v.SetDefault("classifier.base_url", "http://localhost:9200")
	v.SetDefault("classifier.timeout", "30s")

	// Audit defaults
	v.SetDefault("audit.workers", 6)
	v.SetDefault("audit.module_type", "DEVICE_DATA")

	// Crawl defaults
	v.SetDefault("crawl.duplicate_threshold", 3)

	// Matcher defaults
	v.SetDefault("matcher.fuzzy_threshold", 0.70)

	// Judgment defaults
	v.SetDefault("judgment.expiry_days", 30)
	v.SetDefault("judgment.cleanup_interval", "24h")

	// Storage defaults
	v.SetDefault("storage.path", "certwatch.db")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Classifier.BaseURL == "" {
		return fmt.Errorf("classifier base URL is required (set CERTWATCH_CLASSIFIER_BASE_URL)")
	}

	if config.Audit.Workers < 1 {
		return fmt.Errorf("audit workers must be at least 1, got: %d", config.Audit.Workers)
	}

	if config.Crawl.DuplicateThreshold < 1 {
		return fmt.Errorf("crawl duplicate threshold must be at least 1, got: %d", config.Crawl.DuplicateThreshold)
	}

	if config.Matcher.FuzzyThreshold <= 0 || config.Matcher.FuzzyThreshold > 1 {
		return fmt.Errorf("matcher fuzzy threshold must be in (0, 1], got: %f", config.Matcher.FuzzyThreshold)
	}

	if config.Judgment.ExpiryDays < 1 {
		return fmt.Errorf("judgment expiry days must be at least 1, got: %d", config.Judgment.ExpiryDays)
	}

	return nil
}

// JudgmentTTL returns the configured review window as a duration
func (c *Config) JudgmentTTL() time.Duration {
	return time.Duration(c.Judgment.ExpiryDays) * 24 * time.Hour
}
