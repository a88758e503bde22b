package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/claude/replog/internal/models"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Units     UnitsConfig     `yaml:"units"`
	RestTimer RestTimerConfig `yaml:"rest_timer"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// UnitsConfig is the ambient unit-system preference. It is resolved here
// once per call site and threaded explicitly into every operation that
// stamps units on new sets; core logic never reads it from global state.
type UnitsConfig struct {
	System string `yaml:"system"` // "metric" or "imperial"
}

type RestTimerConfig struct {
	DefaultSeconds int    `yaml:"default_seconds"`
	WebhookURL     string `yaml:"webhook_url"`
}

type AdvisorConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// UnitSystem returns the configured preference as a models value,
// defaulting to metric.
func (u UnitsConfig) UnitSystem() models.UnitSystem {
	if u.System == string(models.Imperial) {
		return models.Imperial
	}
	return models.Metric
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix REPLOG_ and underscore-separated paths:
//
//	REPLOG_SERVER_HOST, REPLOG_SERVER_PORT,
//	REPLOG_DB_HOST, REPLOG_DB_PORT, REPLOG_DB_NAME,
//	REPLOG_DB_USER, REPLOG_DB_PASSWORD, REPLOG_DB_SSLMODE,
//	REPLOG_AUTH_API_KEY, REPLOG_UNITS_SYSTEM,
//	REPLOG_REST_DEFAULT_SECONDS, REPLOG_ADVISOR_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPLOG_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPLOG_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPLOG_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPLOG_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPLOG_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REPLOG_UNITS_SYSTEM"); v != "" {
		cfg.Units.System = v
	}
	if v := os.Getenv("REPLOG_REST_DEFAULT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.RestTimer.DefaultSeconds = secs
		}
	}
	if v := os.Getenv("REPLOG_ADVISOR_API_KEY"); v != "" {
		cfg.Advisor.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if s := c.Units.System; s != "" && s != "metric" && s != "imperial" {
		return fmt.Errorf("units.system must be metric or imperial, got %q", s)
	}
	if c.RestTimer.DefaultSeconds < 0 {
		return fmt.Errorf("rest_timer.default_seconds must not be negative")
	}
	return nil
}
