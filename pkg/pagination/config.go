package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds page size limits for list endpoints.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv maps config fields to environment variable names.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}

	if env != nil {
		if env.DefaultPageSize != "" {
			if v := os.Getenv(env.DefaultPageSize); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					c.DefaultPageSize = n
				}
			}
		}
		if env.MaxPageSize != "" {
			if v := os.Getenv(env.MaxPageSize); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					c.MaxPageSize = n
				}
			}
		}
	}

	if c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default_page_size %d exceeds max_page_size %d", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize != 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize != 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
}
