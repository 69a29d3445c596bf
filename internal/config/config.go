// Package config provides configuration management for the matomo CLI
// using Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Sources are merged with the usual precedence: flags override MATOMO_*
// environment variables, which override the .matomo.yml config file.
package config

import (
	"strings"

	"github.com/spf13/viper"

	sdkerrors "github.com/GesetzeFinden-at/matomo-sdk/internal/errors"
	"github.com/GesetzeFinden-at/matomo-sdk/internal/validation"
)

// Config holds every setting the CLI understands.
type Config struct {
	Tracker TrackerConfig `yaml:"tracker" mapstructure:"tracker"`
	Spool   SpoolConfig   `yaml:"spool" mapstructure:"spool"`
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// TrackerConfig identifies the site and endpoint hits are sent to.
type TrackerConfig struct {
	SiteID         int    `yaml:"site_id" mapstructure:"site_id"`
	Endpoint       string `yaml:"endpoint" mapstructure:"endpoint"`
	TokenAuth      string `yaml:"token_auth" mapstructure:"token_auth"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	SkipValidation bool   `yaml:"skip_validation" mapstructure:"skip_validation"`
}

// SpoolConfig configures the on-disk hit spool.
type SpoolConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// MonitorConfig configures the local dev hit monitor.
type MonitorConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig configures CLI logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from the already-initialized viper instance
// (config file plus MATOMO_* environment plus bound flags) and validates it.
func Load() (*Config, error) {
	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, sdkerrors.NewConfigError("unmarshal_failed", "cannot parse configuration").WithCause(err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SetupEnv wires the MATOMO_ environment prefix into viper. Nested keys use
// underscores: tracker.site_id becomes MATOMO_TRACKER_SITE_ID.
func SetupEnv() {
	viper.SetEnvPrefix("MATOMO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func setDefaults() {
	// Register every key with a default so AutomaticEnv-sourced values are
	// visible to Unmarshal (viper only merges env vars for known keys).
	viper.SetDefault("tracker.site_id", 0)
	viper.SetDefault("tracker.endpoint", "")
	viper.SetDefault("tracker.token_auth", "")
	viper.SetDefault("tracker.user_agent", "")
	viper.SetDefault("tracker.skip_validation", false)
	viper.SetDefault("spool.dir", ".matomo-spool")
	viper.SetDefault("spool.batch_size", 50)
	viper.SetDefault("monitor.addr", "localhost:9638")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// Validate checks a loaded configuration. The tracker section is required
// for every command that dispatches hits; spool and monitor settings get
// range checks only.
func Validate(cfg *Config) error {
	if cfg.Tracker.SiteID <= 0 {
		return sdkerrors.NewConfigError("invalid_site_id",
			"tracker.site_id must be a positive integer (set it in .matomo.yml or MATOMO_TRACKER_SITE_ID)")
	}

	if err := validation.ValidateEndpoint(cfg.Tracker.Endpoint, !cfg.Tracker.SkipValidation); err != nil {
		return err
	}

	if cfg.Spool.BatchSize <= 0 {
		return sdkerrors.NewConfigError("invalid_batch_size",
			"spool.batch_size must be positive, got %d", cfg.Spool.BatchSize)
	}

	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return sdkerrors.NewConfigError("invalid_log_format",
			"log.format must be text or json, got %q", cfg.Log.Format)
	}

	return nil
}
