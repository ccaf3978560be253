package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for iprecon.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iprecon",
		Short: "Batch IP reconnaissance: geolocation, liveness, open ports and cloud attribution",
		Long: `iprecon enriches a batch of IP addresses with reconnaissance data.

For every address it determines:
- An approximate "city, country" location from public geolocation APIs
- Whether the host accepts TCP connections on port 80 or 443
- Which common service ports are open
- Which cloud provider publishes a range containing the address

Results are written to CSV, archived in a local SQLite database and can be
served over HTTP with 'iprecon serve'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON (for log aggregation)")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewBatchesCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
