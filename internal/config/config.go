// Package config loads folio's settings from an optional YAML file and the
// environment. Environment variables win over the file, and a .env file is
// picked up by the binary before Load runs.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Theme storage backends.
const (
	ThemeStoreCookie = "cookie"
	ThemeStoreMemory = "memory"
	ThemeStoreSQLite = "sqlite"
	ThemeStoreRedis  = "redis"
)

// Config represents the complete folio configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Profile  ProfileConfig  `yaml:"profile"`
	Theme    ThemeConfig    `yaml:"theme"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Admin    AdminConfig    `yaml:"admin"`
	PDF      PDFConfig      `yaml:"pdf"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// BaseURL is where headless Chrome reaches this server for PDF export.
	// Derived from Addr when empty.
	BaseURL string `yaml:"base_url"`

	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

type ProfileConfig struct {
	// Path to a .yaml/.yml/.toml profile. Empty uses the embedded default.
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type ThemeConfig struct {
	Store string `yaml:"store"`

	// MaxAge bounds how long a stored choice survives.
	MaxAge    time.Duration `yaml:"-"`
	MaxAgeRaw string        `yaml:"max_age"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type SMTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	To   string `yaml:"to"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type PDFConfig struct {
	ChromePath string        `yaml:"chrome_path"`
	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:               ":8080",
			ShutdownTimeoutRaw: "10s",
		},
		Theme: ThemeConfig{
			Store:     ThemeStoreCookie,
			MaxAgeRaw: "8760h",
		},
		Database: DatabaseConfig{Path: "./data/folio.db"},
		Redis:    RedisConfig{URL: "redis://localhost:6379/0"},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: "587",
		},
		PDF:     PDFConfig{TimeoutRaw: "30s"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides. ${VAR} references inside
// the file are expanded first.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or with the
// empty string when unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	setFromEnv(&cfg.Server.BaseURL, "BASE_URL")
	setFromEnv(&cfg.Profile.Path, "PROFILE_PATH")
	setFromEnv(&cfg.Theme.Store, "THEME_STORE")
	setFromEnv(&cfg.Database.Path, "DATABASE_PATH")
	setFromEnv(&cfg.Redis.URL, "REDIS_URL")
	setFromEnv(&cfg.SMTP.Host, "SMTP_HOST")
	setFromEnv(&cfg.SMTP.Port, "SMTP_PORT")
	setFromEnv(&cfg.SMTP.User, "SMTP_USER")
	setFromEnv(&cfg.SMTP.Pass, "SMTP_PASS")
	setFromEnv(&cfg.SMTP.To, "TO_EMAIL")
	setFromEnv(&cfg.Admin.Username, "ADMIN_USERNAME")
	setFromEnv(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setFromEnv(&cfg.PDF.ChromePath, "CHROME_PATH")
	setFromEnv(&cfg.Logging.Level, "LOG_LEVEL")
	setFromEnv(&cfg.Logging.Format, "LOG_FORMAT")
	if v := os.Getenv("PROFILE_WATCH"); v != "" {
		cfg.Profile.Watch = v == "1" || strings.EqualFold(v, "true")
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the fields that must be usable before startup.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	c.Theme.Store = strings.ToLower(strings.TrimSpace(c.Theme.Store))
	switch c.Theme.Store {
	case ThemeStoreCookie, ThemeStoreMemory:
	case ThemeStoreSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for theme.store %q", c.Theme.Store)
		}
	case ThemeStoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for theme.store %q", c.Theme.Store)
		}
	default:
		return fmt.Errorf("theme.store must be one of cookie, memory, sqlite, redis (got %q)", c.Theme.Store)
	}

	if c.Profile.Watch && c.Profile.Path == "" {
		return fmt.Errorf("profile.watch requires profile.path")
	}
	return nil
}

// SMTPConfigured reports whether contact mail can be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTP.User != "" && c.SMTP.Pass != ""
}

// ResolvedBaseURL returns Server.BaseURL, or http://localhost<port> derived
// from Server.Addr.
func (c *Config) ResolvedBaseURL() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	addr := c.Server.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"theme.max_age", cfg.Theme.MaxAgeRaw, &cfg.Theme.MaxAge},
		{"pdf.timeout", cfg.PDF.TimeoutRaw, &cfg.PDF.Timeout},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}
