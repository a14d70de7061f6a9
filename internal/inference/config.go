package inference

import (
	"fmt"
	"os"
	"time"
)

// ProviderGemini selects the Gemini REST backend. Any other provider name is
// handed to go-agents (ollama, azure, openai).
const ProviderGemini = "gemini"

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Config holds the inference provider settings shared by all stages.
type Config struct {
	Provider   string `toml:"provider"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Token      string `toml:"token"`
	Deployment string `toml:"deployment"`
	APIVersion string `toml:"api_version"`
	AuthType   string `toml:"auth_type"`
	Timeout    string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider   string
	BaseURL    string
	Model      string
	Token      string
	Deployment string
	APIVersion string
	AuthType   string
	Timeout    string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Deployment != "" {
		c.Deployment = overlay.Deployment
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.AuthType != "" {
		c.AuthType = overlay.AuthType
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// defaults depend on the provider, so env overrides are applied first.
func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = "ollama"
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}

	switch c.Provider {
	case ProviderGemini:
		if c.BaseURL == "" {
			c.BaseURL = defaultGeminiBaseURL
		}
		if c.Model == "" {
			c.Model = "gemini-2.0-flash"
		}
	case "ollama":
		if c.BaseURL == "" {
			c.BaseURL = "http://localhost:11434"
		}
		if c.Model == "" {
			c.Model = "llama3.2-vision"
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.BaseURL, &c.BaseURL)
	set(env.Model, &c.Model)
	set(env.Token, &c.Token)
	set(env.Deployment, &c.Deployment)
	set(env.APIVersion, &c.APIVersion)
	set(env.AuthType, &c.AuthType)
	set(env.Timeout, &c.Timeout)
}

func (c *Config) validate() error {
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
