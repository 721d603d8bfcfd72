package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghalamif/enginesim/internal/adapters/console"
	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/pkg/enginesim"
)

func runCmd() *cobra.Command {
	var (
		cfgPath  string
		seed     uint64
		noColor  bool
		metrics  string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulator, reading operator commands from stdin",
		Long:  "Run the simulator, reading operator commands from stdin.\n\n" + console.Usage,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.Seed = seed
			}
			if noColor || os.Getenv("NO_COLOR") != "" {
				cfg.Alerts.Color = false
			}
			if metrics != "" {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Addr = metrics
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			flow, err := enginesim.ConfFromConfig(cfg)
			if err != nil {
				return err
			}
			sim, err := flow.StreamOUT()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), banner(cmd))
			if err := sim.Start(); err != nil {
				return err
			}

			go func() {
				submit := func(c domain.Command) error { return sim.Submit(ctx, c) }
				onErr := func(err error) { fmt.Fprintf(cmd.ErrOrStderr(), "command: %v\n", err) }
				if err := console.ReadCommands(ctx, cmd.InOrStdin(), submit, onErr); err != nil && ctx.Err() == nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reading commands: %v\n", err)
				}
			}()

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return sim.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to a YAML or TOML config file (defaults apply when empty)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Noise seed; overrides simulation.seed")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured alert output")
	cmd.Flags().StringVar(&metrics, "metrics-addr", "", "Serve /metrics and /healthz on this address")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}

func validateCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate a config file without starting the simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := enginesim.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config %s looks good (tick %s, display %s, logs %s)\n",
				cfgPath, cfg.Policy.TickInterval, cfg.Policy.DisplayInterval, logTarget(cfg))
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "./config.yaml", "Path to configuration file to validate")
	return cmd
}

func loadConfig(path string) (*enginesim.Config, error) {
	if path == "" {
		return enginesim.DefaultConfig(), nil
	}
	cfg, err := enginesim.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func logTarget(cfg *enginesim.Config) string {
	if !cfg.Logging.Enabled {
		return "disabled"
	}
	return cfg.Logging.Dir
}
