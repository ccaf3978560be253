package main

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/iprecon/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the batch API over HTTP",
		Long: `Serve starts an HTTP server exposing the batch service.

Endpoint:
  POST /api/process-ips
  {"ips": "8.8.8.8\n1.1.1.1", "use_default_output": true}

The response contains a message, batch metrics, one result per address and
the number of addresses. CORS is open to any origin. The server shuts down
gracefully on SIGINT or SIGTERM.

Examples:
  # Listen on the default address (:3000)
  iprecon serve

  # Listen on localhost only
  iprecon serve -a 127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "a", "",
		"Listen address (default: :3000 or the config file value)")
	cmd.Flags().Bool("no-db", false,
		"Do not archive batches in the local database")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .iprecon in current or home directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	listen, err := cmd.Flags().GetString("listen")
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.ListenAddress = listen
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return err
	}
	if noDB {
		cfg.SaveToDB = false
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(a.service, cfg.ListenAddress, server.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", srv.Addr())
	return srv.ListenAndServe(ctx)
}
