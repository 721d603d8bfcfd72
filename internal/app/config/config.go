package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ghalamif/enginesim/internal/ports"
)

type Config struct {
	Policy     ports.Policy     `yaml:"policy" toml:"policy"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	Alerts     AlertsConfig     `yaml:"alerts" toml:"alerts"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics" toml:"metrics"`
}

type SimulationConfig struct {
	// Noise is the half-width of the multiplicative noise band; 0 disables it.
	Noise float64 `yaml:"noise" toml:"noise"`
	// Seed makes a run reproducible. Zero picks a random seed.
	Seed uint64 `yaml:"seed" toml:"seed"`
}

type AlertsConfig struct {
	// DedupWindow is in simulated seconds.
	DedupWindow float64 `yaml:"dedup_window" toml:"dedup_window"`
	Color       bool    `yaml:"color" toml:"color"`
}

type LoggingConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Dir     string `yaml:"dir" toml:"dir"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Addr    string `yaml:"addr" toml:"addr"`
}

// Default returns the configuration used when no file is given. Load decodes
// over it, so keys absent from the file keep these values.
func Default() Config {
	cfg := Config{
		Simulation: SimulationConfig{Noise: 0.01},
		Alerts:     AlertsConfig{DedupWindow: 5, Color: true},
		Logging:    LoggingConfig{Enabled: true},
	}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads a YAML or TOML file, chosen by extension.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills zero-valued policy, logging and metrics fields.
func (c *Config) ApplyDefaults() {
	if c.Policy.TickInterval == 0 {
		c.Policy.TickInterval = 5 * time.Millisecond
	}
	if c.Policy.DisplayInterval == 0 {
		c.Policy.DisplayInterval = time.Second
	}
	if c.Policy.MaxPendingCommands == 0 {
		c.Policy.MaxPendingCommands = 64
	}
	if c.Policy.OnCommandQueueFull == "" {
		c.Policy.OnCommandQueueFull = "reject"
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "./DataLogging"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
}

func (c *Config) Validate() error {
	if c.Policy.TickInterval < 0 {
		return fmt.Errorf("policy.tick_interval must be positive, got %s", c.Policy.TickInterval)
	}
	if c.Policy.DisplayInterval < c.Policy.TickInterval {
		return fmt.Errorf("policy.display_interval (%s) must not be shorter than tick_interval (%s)",
			c.Policy.DisplayInterval, c.Policy.TickInterval)
	}
	if c.Policy.MaxPendingCommands < 0 {
		return fmt.Errorf("policy.max_pending_commands must be positive, got %d", c.Policy.MaxPendingCommands)
	}
	switch c.Policy.OnCommandQueueFull {
	case "reject", "block":
	default:
		return fmt.Errorf("policy.on_command_queue_full must be reject or block, got %q", c.Policy.OnCommandQueueFull)
	}
	if c.Simulation.Noise < 0 || c.Simulation.Noise >= 1 {
		return fmt.Errorf("simulation.noise must be in [0, 1), got %v", c.Simulation.Noise)
	}
	if c.Alerts.DedupWindow < 0 {
		return fmt.Errorf("alerts.dedup_window must not be negative, got %v", c.Alerts.DedupWindow)
	}
	if c.Logging.Enabled && c.Logging.Dir == "" {
		return fmt.Errorf("logging.dir is required when logging is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	return nil
}
