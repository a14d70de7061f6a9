package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/stages"
)

const baseConfig = `
version = "1.2.0"

[server]
port = 8080

[logging]
level = "debug"
format = "json"

[database]
name = "intake"
user = "intake"

[storage]
connection_string = "UseDevelopmentStorage=true"

[api]
max_upload_size = "10MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[agent]
provider = "gemini"
token = "base-token"

[stages]
categories = ["FIR", "Pension"]
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[auth]
enabled = true
issuer_url = "https://login.example.gov/realms/intake"
client_id = "intake-api"
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadBase(t *testing.T) {
	t.Setenv(config.EnvIntakeEnv, "")
	dir := t.TempDir()
	writeFile(t, dir, config.BaseConfigFile, baseConfig)

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Version != "1.2.0" {
		t.Errorf("version = %q", cfg.Version)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if cfg.Server.ReadHeaderTimeoutDuration() != 10*time.Second || cfg.Server.IdleTimeoutDuration() != 2*time.Minute {
		t.Errorf("timeouts = %+v", cfg.Server)
	}
	if cfg.Server.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeoutDuration())
	}
	if cfg.Logging.Format != config.LogFormatJSON || cfg.Logging.SlogLevel().String() != "DEBUG" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("max upload = %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("default page size = %d", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Agent.Model != "gemini-2.0-flash" {
		t.Errorf("agent model = %q, want gemini default", cfg.Agent.Model)
	}
	if diff := cmp.Diff([]string{"FIR", "Pension"}, cfg.Stages.Categories); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
	if cfg.Auth.Enabled {
		t.Error("auth enabled by default")
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.BaseConfigFile, baseConfig)
	writeFile(t, dir, "config.prod.toml", overlayConfig)
	t.Setenv(config.EnvIntakeEnv, "prod")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Env() != "prod" {
		t.Errorf("env = %q", cfg.Env())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want overlay 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" || cfg.Database.Name != "intake" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if !cfg.Auth.Enabled || cfg.Auth.ClientID != "intake-api" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvIntakeEnv, "")
	dir := t.TempDir()
	writeFile(t, dir, config.BaseConfigFile, baseConfig)

	t.Setenv("INTAKE_SERVER_PORT", "7000")
	t.Setenv("INTAKE_LOG_LEVEL", "warn")
	t.Setenv("INTAKE_AGENT_TOKEN", "env-token")
	t.Setenv("INTAKE_STAGES_CATEGORIES", "FIR, Ration Card")
	t.Setenv("INTAKE_STORAGE_PROVIDER", "s3")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
	if cfg.Agent.Token != "env-token" {
		t.Errorf("agent token = %q", cfg.Agent.Token)
	}
	if diff := cmp.Diff([]string{"FIR", "Ration Card"}, cfg.Stages.Categories); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
	if cfg.Storage.Provider != "s3" {
		t.Errorf("storage provider = %q", cfg.Storage.Provider)
	}
}

func TestLoadWithoutFiles(t *testing.T) {
	t.Setenv(config.EnvIntakeEnv, "")
	t.Setenv("INTAKE_DB_NAME", "intake")
	t.Setenv("INTAKE_DB_USER", "intake")
	t.Setenv("INTAKE_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")

	cfg, err := config.LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if diff := cmp.Diff(stages.DefaultCategories, cfg.Stages.Categories); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path = %q", cfg.API.BasePath)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(config.EnvIntakeEnv, "")

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed toml", "[server\nport = 1", "parse config"},
		{"valid", baseConfig, ""},
		{"bad log format", strings.Replace(baseConfig, `format = "json"`, `format = "xml"`, 1), "logging"},
		{"invalid port", strings.Replace(baseConfig, "port = 8080", "port = 70000", 1), "server"},
		{"auth without issuer", baseConfig + "\n[auth]\nenabled = true\n", "auth"},
		{"bad upload size", strings.Replace(baseConfig, `max_upload_size = "10MB"`, `max_upload_size = "lots"`, 1), "max_upload_size"},
		{"zero timeout", strings.Replace(baseConfig, "port = 8080", "port = 8080\nwrite_timeout = \"0s\"", 1), "write_timeout"},
		{"root base path", strings.Replace(baseConfig, `max_upload_size = "10MB"`, "max_upload_size = \"10MB\"\nbase_path = \"/\"", 1), "base_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, config.BaseConfigFile, tt.content)

			_, err := config.LoadFrom(dir)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("LoadFrom() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFrom() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingValidation(t *testing.T) {
	for _, lc := range []config.LoggingConfig{{Level: "verbose"}, {Format: "xml"}} {
		if err := lc.Finalize(); err == nil {
			t.Errorf("Finalize(%+v) error = nil", lc)
		}
	}
}
