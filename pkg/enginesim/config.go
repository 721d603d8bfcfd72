package enginesim

import (
	"github.com/ghalamif/enginesim/internal/app/config"
	"github.com/ghalamif/enginesim/internal/ports"
)

// Config re-exports the root configuration struct so embedding programs can
// construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls tick rate, display rate and command queue behaviour.
	Policy = ports.Policy
	// SimulationConfig sets noise amplitude and seed.
	SimulationConfig = config.SimulationConfig
	// AlertsConfig sets the repeat window and console colour.
	AlertsConfig = config.AlertsConfig
	// LoggingConfig configures the session log directory.
	LoggingConfig = config.LoggingConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
)

// LoadConfig loads a YAML or TOML file using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := config.Default()
	return &cfg
}
