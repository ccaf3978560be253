package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/iprecon/internal/cloud"
	"github.com/nao1215/iprecon/internal/config"
	"github.com/nao1215/iprecon/internal/database"
	"github.com/nao1215/iprecon/internal/geo"
	"github.com/nao1215/iprecon/internal/log"
	"github.com/nao1215/iprecon/internal/model"
	"github.com/nao1215/iprecon/internal/pipeline"
	"github.com/nao1215/iprecon/internal/probe"
	"github.com/nao1215/iprecon/internal/service"
	"github.com/nao1215/iprecon/internal/transport"
	"github.com/spf13/cobra"
)

// app holds the components built from a Config.
type app struct {
	service *service.Service
	db      *database.ResultDB
}

// Close releases the archive, if open.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// newApp wires the transport, geolocation, probes, cloud table, pipeline,
// batch processor, archive and service together.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	clientOpts := []transport.Option{transport.WithUserAgent(cfg.UserAgent)}
	if cfg.ProxyAddress != "" {
		clientOpts = append(clientOpts, transport.WithProxy(cfg.ProxyAddress))
	}

	client, err := transport.NewClient(cfg.GeoTimeout, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create network client: %w", err)
	}

	if cfg.ProxyAddress != "" {
		if status := client.CheckConnection(ctx); status != transport.ProxyStatusOK {
			return nil, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				status.Error(), cfg.ProxyAddress)
		}
		logger.Info("proxy connection verified", "proxy", cfg.ProxyAddress)
	}

	providers, err := geo.NewHTTPProviders(cfg.Providers, client.HTTPClient())
	if err != nil {
		return nil, fmt.Errorf("invalid geolocation provider: %w", err)
	}
	resolver := geo.NewResolver(providers,
		geo.WithPacing(cfg.Pacing),
		geo.WithTimeout(cfg.GeoTimeout),
		geo.WithLogger(logger),
	)

	liveness := probe.NewLivenessProbe(client,
		probe.WithLivenessTimeout(cfg.ProbeTimeout),
		probe.WithLivenessLogger(logger),
	)
	scanner := probe.NewPortScanner(client,
		probe.WithPortTimeout(cfg.PortTimeout),
		probe.WithScannerLogger(logger),
	)

	table, err := cloud.NewDefaultTable(cloud.LoadDocuments(cfg.RangesDir, cloud.WithLoadLogger(logger)))
	if err != nil {
		return nil, fmt.Errorf("failed to build cloud range table: %w", err)
	}
	for _, p := range table.Providers() {
		logger.Debug("cloud ranges loaded", "provider", p, "ranges", table.RangeCount(p))
	}

	recon := pipeline.NewReconnaissance(pipeline.Components{
		Locator:    resolver,
		Liveness:   liveness,
		Ports:      scanner,
		Classifier: table,
	}, pipeline.WithLogger(logger))

	batch := pipeline.NewBatchProcessor(recon,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	a := &app{}
	svcOpts := []service.Option{
		service.WithResultsDir(cfg.ResultsDir),
		service.WithCustomOutput(cfg.CustomOutput),
		service.WithLogger(logger),
		service.WithProgress(func(r model.Record, done, total int) {
			logger.Debug("record processed",
				"ip", r.IP,
				"progress", fmt.Sprintf("%d/%d", done, total),
				"active", r.Active,
			)
		}),
	}

	if cfg.SaveToDB {
		a.db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		logger.Info("database opened", "path", a.db.Path())
		svcOpts = append(svcOpts, service.WithArchiver(a.db))
	}

	a.service = service.New(batch, svcOpts...)
	return a, nil
}

// loadConfig builds a Config from defaults and the configuration file.
// If the user explicitly named a file that does not exist, it fails;
// otherwise a missing file is silently ignored.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if cmd.Flags().Lookup("config") != nil {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, err
		}
		cfg.ConfigFilePath = path
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" {
		if cfg.ConfigFilePath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return cfg, nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.ApplyFile(file)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getGlobalBool(cmd, "verbose")
}

// getGlobalBool reads a boolean persistent flag from the command or the root.
func getGlobalBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger creates a secure structured logger on the command's stderr,
// honoring --verbose and --log-json.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	if getGlobalBool(cmd, "log-json") {
		return log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
