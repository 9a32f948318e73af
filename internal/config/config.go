package config

import (
	"os"
	"strings"

	"sheetcheck/internal/errors"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Schemas SchemaConfig
	Upload  UploadConfig
	Metrics MetricsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	APIPort string
	GinMode string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// SchemaConfig points at optional catalogs that extend the built-in schemas
type SchemaConfig struct {
	File     string
	DBDriver string
	DBURL    string
}

// UploadConfig bounds what a single validation request may consume
type UploadConfig struct {
	MaxBytes              int64
	Concurrency           int64
	PreviewRows           int
	SheetName             string
	AllowFormattedNumbers bool
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables (and an optional
// file named by SHEETCHECK_CONFIG) and validates it
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("SHEETCHECK_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("api_port", "8081")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_format", "console")
	v.SetDefault("schema_file", "")
	v.SetDefault("schema_db_driver", "postgres")
	v.SetDefault("schema_db_url", "")
	v.SetDefault("max_upload_mb", 50)
	v.SetDefault("upload_concurrency", 4)
	v.SetDefault("preview_rows", 5)
	v.SetDefault("sheet_name", "")
	v.SetDefault("allow_formatted_numbers", false)
	v.SetDefault("metrics_enabled", true)
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    v.GetString("port"),
			APIPort: v.GetString("api_port"),
			GinMode: v.GetString("gin_mode"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Schemas: SchemaConfig{
			File:     v.GetString("schema_file"),
			DBDriver: strings.ToLower(v.GetString("schema_db_driver")),
			DBURL:    v.GetString("schema_db_url"),
		},
		Upload: UploadConfig{
			MaxBytes:              v.GetInt64("max_upload_mb") * 1024 * 1024,
			Concurrency:           v.GetInt64("upload_concurrency"),
			PreviewRows:           v.GetInt("preview_rows"),
			SheetName:             v.GetString("sheet_name"),
			AllowFormattedNumbers: v.GetBool("allow_formatted_numbers"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics_enabled"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Upload.Concurrency <= 0 {
		return errors.ConfigInvalid("UPLOAD_CONCURRENCY must be positive")
	}
	if config.Upload.PreviewRows < 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS cannot be negative")
	}
	if config.Schemas.DBURL != "" {
		switch config.Schemas.DBDriver {
		case "postgres", "sqlite3":
		default:
			return errors.ConfigInvalid("SCHEMA_DB_DRIVER must be postgres or sqlite3")
		}
	}
	return nil
}
