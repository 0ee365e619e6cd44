package config

import (
	"fmt"
	"os"
	"runtime"
	"slices"

	"github.com/spf13/viper"
)

type Config struct {
	Database   string   `mapstructure:"database"`
	LogLevel   string   `mapstructure:"log_level"`
	LogFormat  string   `mapstructure:"log_format"`
	Cache      bool     `mapstructure:"cache"`
	CacheDir   string   `mapstructure:"cache_dir"`
	Extensions []string `mapstructure:"extensions"`
	Workers    int      `mapstructure:"workers"`
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Load initializes and loads configuration from file
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database", "fresdb.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("cache", false)
	v.SetDefault("cache_dir", "")
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("workers", runtime.NumCPU())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName("fresdb")
		v.SetConfigType("yaml")
	}

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that can also be set from flags after Load.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("unsupported log level '%s': supported levels are debug, info, warn, error", c.LogLevel)
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("unsupported log format '%s': supported formats are text, json", c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if err := validateExtensions(c.Extensions); err != nil {
		return fmt.Errorf("invalid extensions: %w", err)
	}
	return nil
}
