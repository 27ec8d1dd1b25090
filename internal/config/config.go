// Package config loads the resortops configuration file.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/resortops/internal/monitor"
	"github.com/fentz26/resortops/internal/staffing"
	"gopkg.in/yaml.v3"
)

const (
	dirName  = ".resortops"
	fileName = "config.yaml"
)

// Config holds daemon and client settings.
type Config struct {
	// Listen is the API server listen address.
	Listen string `yaml:"listen"`
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`
	// Monitor configures the background attention sweep.
	Monitor monitor.Config `yaml:"monitor"`
	// Staffing holds the staff directory and matching rules.
	Staffing staffing.Config `yaml:"staffing"`
}

// Dir returns ~/.resortops, or .resortops when there is no home directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), fileName)
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   "127.0.0.1:7466",
		DBPath:   filepath.Join(Dir(), "resortops.db"),
		Monitor:  monitor.DefaultConfig(),
		Staffing: staffing.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromHome loads configuration from ~/.resortops/config.yaml.
func LoadConfigFromHome() (*Config, error) {
	return LoadConfig(DefaultPath())
}

// SaveConfig saves configuration to a YAML file, creating parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Monitor.Enabled && c.Monitor.Interval < time.Second {
		return fmt.Errorf("monitor interval must be at least 1s")
	}
	if c.Monitor.Lookahead < 0 {
		return fmt.Errorf("monitor lookahead cannot be negative")
	}
	if err := c.Staffing.Validate(); err != nil {
		return fmt.Errorf("staffing: %w", err)
	}
	return nil
}
