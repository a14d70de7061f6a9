package auth

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds OIDC bearer token settings. When Enabled is false the
// middleware passes every request through.
type Config struct {
	Enabled   bool     `toml:"enabled"`
	IssuerURL string   `toml:"issuer_url"`
	ClientID  string   `toml:"client_id"`
	Roles     []string `toml:"roles"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled   string
	IssuerURL string
	ClientID  string
	Roles     string
}

// Finalize applies environment variable overrides and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Enabled only switches on.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.IssuerURL != "" {
		c.IssuerURL = overlay.IssuerURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if len(overlay.Roles) > 0 {
		c.Roles = overlay.Roles
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.IssuerURL != "" {
		if v := os.Getenv(env.IssuerURL); v != "" {
			c.IssuerURL = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.Roles != "" {
		if v := os.Getenv(env.Roles); v != "" {
			c.Roles = nil
			for role := range strings.SplitSeq(v, ",") {
				if r := strings.TrimSpace(role); r != "" {
					c.Roles = append(c.Roles, r)
				}
			}
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.IssuerURL == "" {
		return fmt.Errorf("issuer_url required when auth is enabled")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	return nil
}
