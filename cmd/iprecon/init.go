package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/iprecon/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/iprecon.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new iprecon configuration file",
		Long: `Initialize creates a new .iprecon configuration file in the current directory.

The generated file includes:
- Default concurrency, timeouts and geolocation pacing
- The built-in geolocation providers, ready to be reordered or replaced
- Commented examples for a SOCKS5 proxy and custom directories

Examples:
  # Create .iprecon in current directory
  iprecon init

  # Create config file at a specific path
  iprecon init -o myconfig.yaml

  # Force overwrite existing file
  iprecon init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/iprecon.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - Geolocation providers and their request limits")
	fmt.Fprintln(out, "  - Probe timeouts and batch concurrency")
	fmt.Fprintln(out, "  - A SOCKS5 proxy for outbound traffic")

	return nil
}
