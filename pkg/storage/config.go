package storage

import (
	"fmt"
	"os"
)

// Supported storage providers.
const (
	ProviderAzure = "azure"
	ProviderS3    = "s3"
)

// Config holds blob storage connection parameters. Azure uses
// ConnectionString when set and otherwise authenticates to AccountURL with
// the default Azure credential chain. S3 uses static keys when both are set
// and otherwise the default AWS credential chain.
type Config struct {
	Provider         string `toml:"provider"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	Region           string `toml:"region"`
	Endpoint         string `toml:"endpoint"`
	AccessKey        string `toml:"access_key"`
	SecretKey        string `toml:"secret_key"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	ContainerName    string
	ConnectionString string
	AccountURL       string
	Region           string
	Endpoint         string
	AccessKey        string
	SecretKey        string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	merge := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	merge(&c.Provider, overlay.Provider)
	merge(&c.ContainerName, overlay.ContainerName)
	merge(&c.ConnectionString, overlay.ConnectionString)
	merge(&c.AccountURL, overlay.AccountURL)
	merge(&c.Region, overlay.Region)
	merge(&c.Endpoint, overlay.Endpoint)
	merge(&c.AccessKey, overlay.AccessKey)
	merge(&c.SecretKey, overlay.SecretKey)
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.ContainerName == "" {
		c.ContainerName = "submissions"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	override := func(dst *string, name string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	override(&c.Provider, env.Provider)
	override(&c.ContainerName, env.ContainerName)
	override(&c.ConnectionString, env.ConnectionString)
	override(&c.AccountURL, env.AccountURL)
	override(&c.Region, env.Region)
	override(&c.Endpoint, env.Endpoint)
	override(&c.AccessKey, env.AccessKey)
	override(&c.SecretKey, env.SecretKey)
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	switch c.Provider {
	case ProviderAzure:
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("connection_string or account_url required")
		}
	case ProviderS3:
		if (c.AccessKey == "") != (c.SecretKey == "") {
			return fmt.Errorf("access_key and secret_key must be set together")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	return nil
}
