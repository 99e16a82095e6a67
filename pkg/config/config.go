// Package config loads the application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	Mail    MailConfig    `yaml:"mail"`
	Catalog CatalogConfig `yaml:"catalog"`
	Theme   ThemeConfig   `yaml:"theme"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	PublicURL       string        `yaml:"public_url"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// BackendConfig identifies the deployment. The backend counts as configured
// only when the api key, app id and project id are all set.
type BackendConfig struct {
	APIKey       string `yaml:"api_key"`
	AppID        string `yaml:"app_id"`
	ProjectID    string `yaml:"project_id"`
	UseEmulator  bool   `yaml:"use_emulator"`
	EmulatorHost string `yaml:"emulator_host"`
	EmulatorPort int    `yaml:"emulator_port"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	ResetTTL       time.Duration `yaml:"reset_ttl"`
	GoogleAudience string        `yaml:"google_audience"`
	GoogleSecret   string        `yaml:"google_secret"`
	AppleAudience  string        `yaml:"apple_audience"`
	AppleSecret    string        `yaml:"apple_secret"`
}

// GoogleEnabled reports whether Google identity tokens can be verified.
func (a AuthConfig) GoogleEnabled() bool { return a.GoogleSecret != "" }

// AppleEnabled reports whether Apple identity tokens can be verified.
func (a AuthConfig) AppleEnabled() bool { return a.AppleSecret != "" }

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	NoTLS    bool   `yaml:"no_tls"`
}

// Enabled reports whether an SMTP relay is configured.
func (m MailConfig) Enabled() bool { return m.Host != "" }

type CatalogConfig struct {
	RemoteURL string `yaml:"remote_url"`
	CacheSize int    `yaml:"cache_size"`
}

type ThemeConfig struct {
	Variant string `yaml:"variant"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Store: StoreConfig{
			Driver: DriverSQLite,
			DSN:    "trackjournal.db",
		},
		Backend: BackendConfig{
			EmulatorHost: "localhost",
			EmulatorPort: 8080,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
			ResetTTL: time.Hour,
		},
		Mail: MailConfig{
			Port: 587,
			From: "no-reply@trackjournal.local",
		},
		Catalog: CatalogConfig{CacheSize: 128},
		Theme:   ThemeConfig{Variant: "light"},
	}
}

// Load reads path (a missing file yields defaults) and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes c as YAML to path.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// BackendConfigured reports whether the deployment identity is complete.
func (c *Config) BackendConfigured() bool {
	b := c.Backend
	return b.APIKey != "" && b.AppID != "" && b.ProjectID != ""
}

// UseEmulator reports whether stores should run against the local in-memory
// emulator instead of the configured driver.
func (c *Config) UseEmulator() bool {
	return c.Backend.UseEmulator
}

// Validate reports configuration that cannot be served.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("config: store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unknown store driver %q (valid: memory, sqlite, postgres)", c.Store.Driver)
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	switch c.Theme.Variant {
	case "", "light", "dark":
	default:
		return fmt.Errorf("config: unknown theme variant %q", c.Theme.Variant)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

const envPrefix = "TRACKJOURNAL_"

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("ADDR", &c.Server.Addr)
	str("BASE_PATH", &c.Server.BasePath)
	str("PUBLIC_URL", &c.Server.PublicURL)
	str("LOG_LEVEL", &c.Log.Level)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_DSN", &c.Store.DSN)
	str("API_KEY", &c.Backend.APIKey)
	str("APP_ID", &c.Backend.AppID)
	str("PROJECT_ID", &c.Backend.ProjectID)
	str("EMULATOR_HOST", &c.Backend.EmulatorHost)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("GOOGLE_AUDIENCE", &c.Auth.GoogleAudience)
	str("GOOGLE_SECRET", &c.Auth.GoogleSecret)
	str("APPLE_AUDIENCE", &c.Auth.AppleAudience)
	str("APPLE_SECRET", &c.Auth.AppleSecret)
	str("SMTP_HOST", &c.Mail.Host)
	str("SMTP_USERNAME", &c.Mail.Username)
	str("SMTP_PASSWORD", &c.Mail.Password)
	str("MAIL_FROM", &c.Mail.From)
	str("CATALOG_URL", &c.Catalog.RemoteURL)
	str("THEME", &c.Theme.Variant)

	if v, ok := lookup(envPrefix + "USE_EMULATOR"); ok {
		c.Backend.UseEmulator = v == "true"
	}
	if v, ok := lookup(envPrefix + "EMULATOR_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sEMULATOR_PORT: %w", envPrefix, err)
		}
		c.Backend.EmulatorPort = port
	}
	if v, ok := lookup(envPrefix + "SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sSMTP_PORT: %w", envPrefix, err)
		}
		c.Mail.Port = port
	}
	return nil
}
