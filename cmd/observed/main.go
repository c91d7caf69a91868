package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "observed",
		Short: "Serve observable properties over HTTP and WebSocket",
		Long: `observed exposes a registry of observable properties.

Property values are readable and writable as JSON over HTTP, and every
change is pushed to connected WebSocket clients. Snapshots of the
registry can be persisted across restarts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// versionCmd prints build information.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("observed %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
