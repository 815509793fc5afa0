package config

import (
	"fmt"
	"os"
	"strconv"
)

const EnvWorkflowsMaxConcurrent = "BOMFLOW_WORKFLOWS_MAX_CONCURRENT"

// WorkflowsConfig holds processing limits for background workflow runs.
type WorkflowsConfig struct {
	MaxConcurrent int `toml:"max_concurrent"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowsConfig) Merge(overlay *WorkflowsConfig) {
	if overlay.MaxConcurrent != 0 {
		c.MaxConcurrent = overlay.MaxConcurrent
	}
}

func (c *WorkflowsConfig) loadDefaults() {
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 4
	}
}

func (c *WorkflowsConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowsMaxConcurrent); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxConcurrent = n
		}
	}
}

func (c *WorkflowsConfig) validate() error {
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be positive")
	}
	return nil
}
