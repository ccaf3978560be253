package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nao1215/iprecon/internal/config"
	"github.com/nao1215/iprecon/internal/model"
	"github.com/nao1215/iprecon/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [ip...]",
		Short: "Run reconnaissance on a batch of IP addresses",
		Long: `Scan enriches every given IP address with:
- An approximate location from public geolocation APIs
- Liveness (TCP connect on port 80 or 443)
- Open common service ports
- The cloud provider whose published ranges contain it

Every input line yields exactly one result, in input order. Lines that are
not IP addresses are reported as inactive without any network traffic.

Results are written to a timestamped CSV file under the results directory
(or to --output) and archived in the local database.

Examples:
  # Scan a few addresses
  iprecon scan 8.8.8.8 1.1.1.1

  # Scan a newline-separated list
  iprecon scan --list ips.txt

  # Read the list from stdin
  cat ips.txt | iprecon scan --list -

  # Write results to a specific CSV file and print a Markdown report
  iprecon scan -o results.csv -m 8.8.8.8

  # Route all traffic through a SOCKS5 proxy
  iprecon scan --proxy 127.0.0.1:1080 8.8.8.8`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Input flags
	cmd.Flags().StringP("list", "l", "",
		"File with one IP address per line ('-' reads stdin)")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Write CSV results to this file instead of the timestamped default")
	cmd.Flags().Bool("default-output", true,
		"Write CSV results to a timestamped file under the results directory")
	cmd.Flags().BoolP("json", "j", false,
		"Print a JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print a Markdown report (mutually exclusive with --json)")
	cmd.Flags().Bool("no-db", false,
		"Do not archive the batch in the local database")

	// Behavior flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Maximum number of addresses processed at once (0 = unbounded)")
	cmd.Flags().Duration("geo-timeout", config.DefaultGeoTimeout,
		"Timeout of each geolocation request")
	cmd.Flags().Duration("probe-timeout", config.DefaultProbeTimeout,
		"Timeout of each liveness connect")
	cmd.Flags().Duration("port-timeout", config.DefaultPortTimeout,
		"Timeout of each port scan connect")
	cmd.Flags().Duration("pacing", config.DefaultPacing,
		"Wait after a failed geolocation provider")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address for all outbound traffic (e.g., 127.0.0.1:1080)")
	cmd.Flags().String("ranges-dir", "",
		"Directory with cloud range documents (default: XDG data directory)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .iprecon in current or home directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runScan(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildConfig creates a Config from defaults, the configuration file and
// the flags the user actually set, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("geo-timeout") {
		if cfg.GeoTimeout, err = flags.GetDuration("geo-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("probe-timeout") {
		if cfg.ProbeTimeout, err = flags.GetDuration("probe-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("port-timeout") {
		if cfg.PortTimeout, err = flags.GetDuration("port-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("pacing") {
		if cfg.Pacing, err = flags.GetDuration("pacing"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("ranges-dir") {
		if cfg.RangesDir, err = flags.GetString("ranges-dir"); err != nil {
			return nil, err
		}
	}

	output, err := flags.GetString("output")
	if err != nil {
		return nil, err
	}
	if output != "" {
		cfg.CustomOutput = output
		cfg.UseDefaultOutput = false
	}
	if flags.Changed("default-output") {
		if cfg.UseDefaultOutput, err = flags.GetBool("default-output"); err != nil {
			return nil, err
		}
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if noDB {
		cfg.SaveToDB = false
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	cfg.Targets = append(cfg.Targets, args...)

	list, err := flags.GetString("list")
	if err != nil {
		return nil, err
	}
	if list != "" {
		lines, err := readTargetList(list, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, lines...)
	}

	return cfg, nil
}

// readTargetList reads newline-separated addresses from path, or from
// stdin when path is "-". Blank lines are dropped.
func readTargetList(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to open target list: %w", err)
		}
		defer f.Close()
		r = f
	}

	var targets []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			targets = append(targets, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read target list: %w", err)
	}
	return targets, nil
}

// runScan processes the targets and prints the report.
func runScan(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return config.ErrNoTarget
	}

	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"concurrency", cfg.Concurrency,
		"proxy", cfg.ProxyAddress,
		"saveToDB", cfg.SaveToDB,
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	resp := a.service.Process(ctx, model.Request{
		IPs:              strings.Join(cfg.Targets, "\n"),
		UseDefaultOutput: cfg.UseDefaultOutput,
	})

	return outputReport(cfg, out, &resp)
}

// outputReport prints the batch in the requested format.
func outputReport(cfg *config.Config, out io.Writer, resp *model.Response) error {
	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(resp)
	return err
}
