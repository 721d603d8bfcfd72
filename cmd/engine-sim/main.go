package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "engine-sim: %v\n", err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "engine-sim",
		Short:         "Twin-spool engine telemetry simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		runCmd(),
		validateCmd(),
		statsCmd(),
	)
	return root
}

func banner(cmd *cobra.Command) string {
	r := lipgloss.NewRenderer(cmd.OutOrStdout())
	return r.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00BFFF")).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 2).
		Render("ENGINE SIM  twin-spool telemetry")
}
