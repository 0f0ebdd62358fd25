package extraction

import (
	"fmt"
	"time"
)

// Config controls passage segmentation and the extraction call budget.
type Config struct {
	ChunkSize    int    `toml:"chunk_size"`
	ChunkOverlap int    `toml:"chunk_overlap"`
	MaxPassages  int    `toml:"max_passages"`
	Timeout      string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults and validation.
func (c *Config) Finalize() error {
	if c.ChunkSize == 0 {
		c.ChunkSize = 1000
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = c.ChunkSize / 10
	}
	if c.MaxPassages == 0 {
		c.MaxPassages = 12
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}

	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap %d must be smaller than chunk_size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid extraction timeout: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ChunkSize != 0 {
		c.ChunkSize = overlay.ChunkSize
	}
	if overlay.ChunkOverlap != 0 {
		c.ChunkOverlap = overlay.ChunkOverlap
	}
	if overlay.MaxPassages != 0 {
		c.MaxPassages = overlay.MaxPassages
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}
