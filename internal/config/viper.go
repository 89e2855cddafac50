// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"ledgerline/bankimport/internal/dedup"
	"ledgerline/bankimport/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Import struct {
		Book            string `mapstructure:"book" yaml:"book"`
		Profile         string `mapstructure:"profile" yaml:"profile"`
		FuzzyWindowDays int    `mapstructure:"fuzzy_window_days" yaml:"fuzzy_window_days"`
	} `mapstructure:"import" yaml:"import"`

	Database struct {
		URL string `mapstructure:"url" yaml:"-"` // Never serialize connection strings
	} `mapstructure:"database" yaml:"database"`

	Profiles struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"profiles" yaml:"profiles"`

	Report struct {
		Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
		IncludeHeaders bool   `mapstructure:"include_headers" yaml:"include_headers"`
		Format         string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"report" yaml:"report"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.bankimport")
	v.AddConfigPath(".bankimport")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("BANKIMPORT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	// 5. The database connection string always comes from an unprefixed env var
	if err := v.BindEnv("database.url", "DATABASE_URL"); err != nil {
		fmt.Printf("Warning: failed to bind DATABASE_URL environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Import defaults
	v.SetDefault("import.book", "")
	v.SetDefault("import.profile", "")
	v.SetDefault("import.fuzzy_window_days", dedup.DefaultDateWindowDays)

	// Database defaults
	v.SetDefault("database.url", "")

	// Profiles defaults
	v.SetDefault("profiles.file", "")

	// Report defaults
	v.SetDefault("report.delimiter", ",")
	v.SetDefault("report.include_headers", true)
	v.SetDefault("report.format", "csv")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate fuzzy window
	if config.Import.FuzzyWindowDays < 0 || config.Import.FuzzyWindowDays > 31 {
		return fmt.Errorf("import.fuzzy_window_days must be between 0 and 31, got: %d", config.Import.FuzzyWindowDays)
	}

	// Validate report delimiter
	if len(config.Report.Delimiter) != 1 {
		return fmt.Errorf("report delimiter must be a single character, got: %s", config.Report.Delimiter)
	}

	// Validate report format
	if err := validation.IsValidOutputFormat(config.Report.Format); err != nil {
		return err
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
