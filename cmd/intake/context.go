package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/infrastructure"
)

type commandContext struct {
	configDir *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configDir *string) *commandContext {
	return &commandContext{configDir: configDir}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		dir := "."
		if c.configDir != nil && strings.TrimSpace(*c.configDir) != "" {
			dir = strings.TrimSpace(*c.configDir)
		}
		c.config, c.configErr = config.LoadFrom(dir)
	})
	return c.config, c.configErr
}

// logger writes pipeline records to w so stdout stays reserved for results.
func (c *commandContext) logger(w io.Writer) *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return slog.New(slog.NewTextHandler(w, nil))
	}
	return infrastructure.NewLogger(&cfg.Logging, w)
}
