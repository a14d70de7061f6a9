// Package config loads the intake service configuration from TOML files
// and INTAKE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/intake/internal/inference"
	"github.com/JaimeStill/intake/internal/stages"
	"github.com/JaimeStill/intake/pkg/auth"
	"github.com/JaimeStill/intake/pkg/database"
	"github.com/JaimeStill/intake/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvIntakeEnv     = "INTAKE_ENV"
	EnvIntakeVersion = "INTAKE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "INTAKE_DB_HOST",
	Port:            "INTAKE_DB_PORT",
	Name:            "INTAKE_DB_NAME",
	User:            "INTAKE_DB_USER",
	Password:        "INTAKE_DB_PASSWORD",
	SSLMode:         "INTAKE_DB_SSL_MODE",
	MaxOpenConns:    "INTAKE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "INTAKE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "INTAKE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "INTAKE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "INTAKE_STORAGE_PROVIDER",
	ContainerName:    "INTAKE_STORAGE_CONTAINER_NAME",
	ConnectionString: "INTAKE_STORAGE_CONNECTION_STRING",
	AccountURL:       "INTAKE_STORAGE_ACCOUNT_URL",
	Region:           "INTAKE_STORAGE_REGION",
	Endpoint:         "INTAKE_STORAGE_ENDPOINT",
	AccessKey:        "INTAKE_STORAGE_ACCESS_KEY",
	SecretKey:        "INTAKE_STORAGE_SECRET_KEY",
}

var agentEnv = &inference.Env{
	Provider:   "INTAKE_AGENT_PROVIDER",
	BaseURL:    "INTAKE_AGENT_BASE_URL",
	Model:      "INTAKE_AGENT_MODEL",
	Token:      "INTAKE_AGENT_TOKEN",
	Deployment: "INTAKE_AGENT_DEPLOYMENT",
	APIVersion: "INTAKE_AGENT_API_VERSION",
	AuthType:   "INTAKE_AGENT_AUTH_TYPE",
	Timeout:    "INTAKE_AGENT_TIMEOUT",
}

var stagesEnv = &stages.Env{
	Categories: "INTAKE_STAGES_CATEGORIES",
	MaxPages:   "INTAKE_STAGES_MAX_PAGES",
}

var authEnv = &auth.Env{
	Enabled:   "INTAKE_AUTH_ENABLED",
	IssuerURL: "INTAKE_AUTH_ISSUER_URL",
	ClientID:  "INTAKE_AUTH_CLIENT_ID",
	Roles:     "INTAKE_AUTH_ROLES",
}

// Config is the root configuration for the intake service.
type Config struct {
	Server   ServerConfig     `toml:"server"`
	Logging  LoggingConfig    `toml:"logging"`
	Database database.Config  `toml:"database"`
	Storage  storage.Config   `toml:"storage"`
	API      APIConfig        `toml:"api"`
	Agent    inference.Config `toml:"agent"`
	Stages   stages.Config    `toml:"stages"`
	Auth     auth.Config      `toml:"auth"`
	Version  string           `toml:"version"`
}

// Env returns the INTAKE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvIntakeEnv); env != "" {
		return env
	}
	return "local"
}

// Load reads configuration from the working directory. See LoadFrom.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom reads dir/config.toml (if present), applies the
// dir/config.<INTAKE_ENV>.toml overlay (if present), and finalizes all
// values. Without any file, defaults and environment variables provide the
// whole configuration.
func LoadFrom(dir string) (*Config, error) {
	cfg := &Config{}

	base := filepath.Join(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Stages.Merge(&overlay.Stages)
	c.Auth.Merge(&overlay.Auth)
}

// Finalize applies defaults, environment overrides, and validation to
// every section.
func (c *Config) Finalize() error {
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v := os.Getenv(EnvIntakeVersion); v != "" {
		c.Version = v
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"logging", c.Logging.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"agent", func() error { return c.Agent.Finalize(agentEnv) }},
		{"stages", func() error { return c.Stages.Finalize(stagesEnv) }},
		{"auth", func() error { return c.Auth.Finalize(authEnv) }},
	}

	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvIntakeEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
