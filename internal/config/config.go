package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Upstream struct {
		URL     string        `yaml:"url" default:"https://api.coinbase.com/v2/prices/spot" validate:"required,url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout" default:"30s" validate:"min=1s"`
	} `yaml:"upstream"`
	Collector struct {
		Enabled    bool          `yaml:"enabled" default:"true"`
		Interval   time.Duration `yaml:"interval" default:"15s" validate:"min=1s"`
		RunOnStart bool          `yaml:"run_on_start"`
	} `yaml:"collector"`
	Database struct {
		Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite postgres memory"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Dashboard struct {
		Enabled           bool          `yaml:"enabled" default:"true"`
		Host              string        `yaml:"host" default:"0.0.0.0"`
		Port              int           `yaml:"port" default:"8501" validate:"min=1,max=65535"`
		DefaultWindowDays int           `yaml:"default_window_days" default:"30" validate:"min=1"`
		MAWindow          int           `yaml:"ma_window" default:"5" validate:"min=1"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"dashboard"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load applies struct defaults, then the YAML file (if present), then the
// environment (including a local .env file).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_KEY")
	}
	if dsn != "" {
		c.Database.DSN = dsn
		// a DSN from the environment picks its own driver unless one is set alongside it
		c.Database.Driver = ""
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("UPSTREAM_URL"); v != "" {
		c.Upstream.URL = v
	}
	if v := os.Getenv("UPSTREAM_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("POLL_INTERVAL: %w", err)
		}
		c.Collector.Interval = d
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		c.Collector.RunOnStart = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("DASHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DASHBOARD_PORT: %w", err)
		}
		c.Dashboard.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	return nil
}

// parseInterval accepts a Go duration ("30s") or a plain number of seconds ("30").
func parseInterval(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

var validate = validator.New()

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (set DATABASE_URL)")
	}
	if c.Database.Driver == "sqlite" && isPostgresDSN(c.Database.DSN) {
		return fmt.Errorf("database.driver is sqlite but database.dsn is a postgres URL")
	}
	if !c.Collector.Enabled && !c.Dashboard.Enabled {
		return fmt.Errorf("at least one of collector.enabled or dashboard.enabled must be true")
	}
	return nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
