// Package config loads pocket-meta settings and the session seed.
//
// Settings come from viper with this precedence, highest first:
//  1. command-line flags bound by the cli package
//  2. POCKET_META_<KEY> environment variables (POCKET_META_LOG_LEVEL, ...)
//  3. the file named by --config, or config.yaml in . or $HOME/.pocket-meta
//  4. defaults from DefaultConfig
//
// The seed (template, initial variables, packs) is a separate YAML file decoded with
// yaml.v3 so variable names keep their case.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/dpshade/pocket-meta/internal/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POCKET_META"

// Config holds application settings.
type Config struct {
	DataDir      string        `mapstructure:"data_dir"`
	SeedFile     string        `mapstructure:"seed_file"`
	LogLevel     string        `mapstructure:"log_level"`
	LogMode      string        `mapstructure:"log_mode"`
	LogFile      string        `mapstructure:"log_file"`
	StatusDelay  time.Duration `mapstructure:"status_delay"`
	GlamourStyle string        `mapstructure:"glamour_style"`
}

// DefaultDataDir returns ~/.pocket-meta, or "" when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pocket-meta")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		DataDir:     DefaultDataDir(),
		LogLevel:    "info",
		LogMode:     "dev",
		StatusDelay: 2 * time.Second,
	}
}

// LogPath returns the log file used in interactive mode.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "logs", "pocket-meta.log")
}

// Load reads settings into v and returns the resulting Config. A missing config
// file is not an error; a malformed one is.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	defaults := DefaultConfig()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("seed_file", defaults.SeedFile)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_mode", defaults.LogMode)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("status_delay", defaults.StatusDelay)
	v.SetDefault("glamour_style", defaults.GlamourStyle)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if defaults.DataDir != "" {
			v.AddConfigPath(defaults.DataDir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, apperrors.ConfigError("read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, apperrors.ConfigError("decode settings", err)
	}
	if cfg.StatusDelay <= 0 {
		return Config{}, apperrors.ConfigError("validate settings",
			fmt.Errorf("status_delay must be positive, got %s", cfg.StatusDelay))
	}
	return cfg, nil
}
