package stages

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultCategories are the form types the classifier chooses between.
var DefaultCategories = []string{
	"FIR",
	"Pension",
	"Ration Card",
	"Income Certificate",
	"Birth Certificate",
	"Death Certificate",
	"Marriage Certificate",
	"General Complaint",
}

const defaultMaxPages = 10

// Config holds prompt overrides and limits for the form stages.
// Empty instruction fields fall back to the built-in prompts.
type Config struct {
	OCRInstructions        string   `toml:"ocr_instructions"`
	NERInstructions        string   `toml:"ner_instructions"`
	ClassifierInstructions string   `toml:"classifier_instructions"`
	RouterInstructions     string   `toml:"router_instructions"`
	Categories             []string `toml:"categories"`
	MaxPages               int      `toml:"max_pages"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Categories string
	MaxPages   string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.OCRInstructions != "" {
		c.OCRInstructions = overlay.OCRInstructions
	}
	if overlay.NERInstructions != "" {
		c.NERInstructions = overlay.NERInstructions
	}
	if overlay.ClassifierInstructions != "" {
		c.ClassifierInstructions = overlay.ClassifierInstructions
	}
	if overlay.RouterInstructions != "" {
		c.RouterInstructions = overlay.RouterInstructions
	}
	if len(overlay.Categories) > 0 {
		c.Categories = overlay.Categories
	}
	if overlay.MaxPages > 0 {
		c.MaxPages = overlay.MaxPages
	}
}

func (c *Config) loadDefaults() {
	if c.OCRInstructions == "" {
		c.OCRInstructions = ocrInstructions
	}
	if c.NERInstructions == "" {
		c.NERInstructions = nerInstructions
	}
	if c.ClassifierInstructions == "" {
		c.ClassifierInstructions = classifierInstructions
	}
	if c.RouterInstructions == "" {
		c.RouterInstructions = routerInstructions
	}
	if len(c.Categories) == 0 {
		c.Categories = DefaultCategories
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env.Categories != "" {
		if v := os.Getenv(env.Categories); v != "" {
			c.Categories = splitList(v)
		}
	}
	if env.MaxPages != "" {
		if v := os.Getenv(env.MaxPages); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid max_pages: %w", err)
			}
			c.MaxPages = n
		}
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category required")
	}
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat) == "" {
			return fmt.Errorf("category names must not be empty")
		}
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max_pages must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
