package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/tejzpr/audience-inbox/internal/errs"
	"github.com/tejzpr/audience-inbox/internal/logging"
)

const EnvPrefix = "INBOX"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Classify ClassifyConfig `mapstructure:"classify"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Path to a YAML seed file; empty uses the built-in data set.
	Path string `mapstructure:"path"`
}

type ClassifyConfig struct {
	AutoTagOnCreate bool `mapstructure:"auto_tag_on_create"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// New returns a viper instance with defaults and INBOX_* env overrides wired.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server.port", 56235)
	v.SetDefault("database.dsn", ":memory:")
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.path", "")
	v.SetDefault("classify.auto_tag_on_create", true)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (or ./audience-inbox.yaml when empty and present) into v
// and decodes the result.
func Load(ctx context.Context, v *viper.Viper, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if v == nil {
		v = New()
	}
	logCtx := logging.WithAttrs(ctx, slog.String("component", "config"))

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("audience-inbox")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Debug(logCtx, "no config file, using defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, errors.New("server.port must be between 1 and 65535")
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	return cfg, nil
}
