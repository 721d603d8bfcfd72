package ports

import "time"

type Policy struct {
	TickInterval       time.Duration `yaml:"tick_interval" toml:"tick_interval"`
	DisplayInterval    time.Duration `yaml:"display_interval" toml:"display_interval"`
	MaxPendingCommands int           `yaml:"max_pending_commands" toml:"max_pending_commands"`

	OnCommandQueueFull string `yaml:"on_command_queue_full" toml:"on_command_queue_full"` // "reject", "block"
}
