package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/example/bomflow/pkg/database"
	"github.com/example/bomflow/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBomflowEnv             = "BOMFLOW_ENV"
	EnvBomflowShutdownTimeout = "BOMFLOW_SHUTDOWN_TIMEOUT"
	EnvBomflowVersion         = "BOMFLOW_VERSION"
	EnvBomflowLogFile         = "BOMFLOW_LOG_FILE"
)

var databaseEnv = &database.Env{
	Host:            "BOMFLOW_DB_HOST",
	Port:            "BOMFLOW_DB_PORT",
	Name:            "BOMFLOW_DB_NAME",
	User:            "BOMFLOW_DB_USER",
	Password:        "BOMFLOW_DB_PASSWORD",
	SSLMode:         "BOMFLOW_DB_SSL_MODE",
	MaxOpenConns:    "BOMFLOW_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "BOMFLOW_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "BOMFLOW_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "BOMFLOW_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "BOMFLOW_STORAGE_CONTAINER_NAME",
	ConnectionString: "BOMFLOW_STORAGE_CONNECTION_STRING",
	MaxListSize:      "BOMFLOW_STORAGE_MAX_LIST_SIZE",
}

// Config is the root configuration for the bomflow service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Extractor       ExtractorConfig `toml:"extractor"`
	Workflows       WorkflowsConfig `toml:"workflows"`
	LogFile         string          `toml:"log_file"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the BOMFLOW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBomflowEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.LogFile != "" {
		c.LogFile = overlay.LogFile
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Extractor.Merge(&overlay.Extractor)
	c.Workflows.Merge(&overlay.Workflows)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Extractor.Finalize(); err != nil {
		return fmt.Errorf("extractor: %w", err)
	}
	if err := c.Workflows.Finalize(); err != nil {
		return fmt.Errorf("workflows: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.LogFile == "" {
		c.LogFile = "bomflow.log"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBomflowLogFile); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv(EnvBomflowShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvBomflowVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvBomflowEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
