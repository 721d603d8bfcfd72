package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var statsTargets = []string{
	"enginesim_phase",
	"enginesim_n1_left_percent",
	"enginesim_n1_right_percent",
	"enginesim_egt_left_celsius",
	"enginesim_egt_right_celsius",
	"enginesim_fuel_level_lbs",
	"enginesim_alerts_emitted_total",
	"enginesim_ticks_total",
}

func statsCmd() *cobra.Command {
	var (
		url      string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Poll the Prometheus metrics endpoint and print live engine values",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Streaming metrics from %s (Ctrl+C to stop)\n", url)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := printMetricsSnapshot(ctx, out, url); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "stats error: %v\n", err)
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Refresh interval")
	return cmd
}

func printMetricsSnapshot(ctx context.Context, out io.Writer, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	values, err := scrapeValues(resp.Body, statsTargets)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[%s] phase=%.0f n1=%.1f/%.1f egt=%.1f/%.1f fuel=%.2f alerts=%.0f ticks=%.0f\n",
		time.Now().Format(time.RFC3339),
		values["enginesim_phase"],
		values["enginesim_n1_left_percent"],
		values["enginesim_n1_right_percent"],
		values["enginesim_egt_left_celsius"],
		values["enginesim_egt_right_celsius"],
		values["enginesim_fuel_level_lbs"],
		values["enginesim_alerts_emitted_total"],
		values["enginesim_ticks_total"],
	)
	return nil
}

// scrapeValues reads unlabelled samples for keys from a text exposition body.
func scrapeValues(r io.Reader, keys []string) (map[string]float64, error) {
	values := make(map[string]float64, len(keys))
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, key := range keys {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %g", &value); err == nil {
					values[key] = value
				}
			}
		}
	}
	return values, scanner.Err()
}
