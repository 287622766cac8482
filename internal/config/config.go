package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Logging LoggingConfig `mapstructure:"logging"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FetchConfig defines dataset download settings
type FetchConfig struct {
	Timeout string `mapstructure:"timeout"`
	Mirror  string `mapstructure:"mirror"` // Optional base URL replacing the manifest host
}

// Load loads configuration from file and environment variables.
// An empty configPath falls back to defaults plus environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	v.SetEnvPrefix("MNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// MNE_DATA is the historical override for the data directory.
	if err := v.BindEnv("data_dir", "MNE_DATA"); err != nil {
		return nil, fmt.Errorf("bind MNE_DATA: %w", err)
	}

	// Read config file
	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Config file not found, use defaults and environment variables
		}
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Data directory: empty means <home>/mne_data, resolved at use time so
	// the home lookup happens in the invoking user's environment.
	v.SetDefault("data_dir", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Fetch defaults
	v.SetDefault("fetch.timeout", "10m")
	v.SetDefault("fetch.mirror", "")
}

// validate validates the configuration
func validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.Fetch.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Fetch.Timeout); err != nil {
			return fmt.Errorf("invalid fetch timeout %q: %w", cfg.Fetch.Timeout, err)
		}
	}

	return nil
}

// FetchTimeout returns the parsed fetch timeout with a fallback.
func (c *Config) FetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}
