package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvExtractorBaseURL     = "BOMFLOW_EXTRACTOR_BASE_URL"
	EnvExtractorAPIKey      = "BOMFLOW_EXTRACTOR_API_KEY"
	EnvExtractorModel       = "BOMFLOW_EXTRACTOR_MODEL"
	EnvExtractorTimeout     = "BOMFLOW_EXTRACTOR_TIMEOUT"
	EnvExtractorMaxAttempts = "BOMFLOW_EXTRACTOR_MAX_ATTEMPTS"
)

// ExtractorConfig holds connection parameters for the external
// extraction/classification gateway. The API key is the single external
// credential the service owns; it is read from the process environment
// at startup and never re-read afterward.
type ExtractorConfig struct {
	BaseURL     string `toml:"base_url"`
	APIKey      string `toml:"api_key"`
	Model       string `toml:"model"`
	Timeout     string `toml:"timeout"`
	MaxAttempts int    `toml:"max_attempts"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ExtractorConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ExtractorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ExtractorConfig) Merge(overlay *ExtractorConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
}

func (c *ExtractorConfig) loadDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
}

func (c *ExtractorConfig) loadEnv() {
	if v := os.Getenv(EnvExtractorBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvExtractorAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvExtractorModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvExtractorTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvExtractorMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxAttempts = n
		}
	}
}

func (c *ExtractorConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive")
	}
	return nil
}
