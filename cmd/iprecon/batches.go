package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/iprecon/internal/config"
	"github.com/nao1215/iprecon/internal/database"
	"github.com/nao1215/iprecon/internal/model"
	"github.com/nao1215/iprecon/internal/report"
	"github.com/spf13/cobra"
)

// defaultBatchListLimit is the number of batches listed by default.
const defaultBatchListLimit = 20

// NewBatchesCmd creates the batches command.
// This command inspects batches archived in the database.
func NewBatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List and export archived batches",
		Long: `Batches inspects the batches archived by 'iprecon scan' and 'iprecon serve'.

Without flags it lists the most recent batches with their metrics.

Examples:
  # List the 20 most recent batches
  iprecon batches

  # List every archived batch
  iprecon batches --limit 0

  # Show the results of batch 5
  iprecon batches --show 5

  # Show batch 5 as JSON
  iprecon batches --show 5 --json

  # Rewrite the CSV file of batch 5
  iprecon batches --export 5 -o batch5.csv`,
		Args: cobra.NoArgs,
		RunE: runBatchesCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultBatchListLimit,
		"Number of batches to list (0 = all)")
	cmd.Flags().Int64P("show", "s", 0,
		"Show the results of the batch with this ID")
	cmd.Flags().Int64P("export", "e", 0,
		"Write the results of the batch with this ID as CSV (requires --output)")
	cmd.Flags().StringP("output", "o", "",
		"CSV path for --export")
	cmd.Flags().BoolP("json", "j", false,
		"Print --show results as JSON")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print --show results as Markdown")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .iprecon in current or home directory)")

	return cmd
}

// runBatchesCmd executes the batches command.
func runBatchesCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	showID, err := flags.GetInt64("show")
	if err != nil {
		return err
	}
	exportID, err := flags.GetInt64("export")
	if err != nil {
		return err
	}
	output, err := flags.GetString("output")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	if showID != 0 && exportID != 0 {
		return errors.New("--show and --export cannot be used together")
	}
	if exportID != 0 && output == "" {
		return errors.New("--export requires --output")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}
	cfg.Verbose = getVerboseFlag(cmd)

	db, err := database.Open(cfg.DBDir, database.Options{EnableWAL: true})
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return errors.New("no archived batches yet (run 'iprecon scan' first)")
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case showID != 0:
		return showBatch(ctx, db, cfg, showID, out)
	case exportID != 0:
		return exportBatch(ctx, db, exportID, output, out)
	default:
		return listBatches(ctx, db, limit, out)
	}
}

// listBatches prints a table of archived batches, newest first.
func listBatches(ctx context.Context, db *database.ResultDB, limit int, out io.Writer) error {
	batches, err := db.ListBatches(ctx, limit)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Fprintln(out, "No archived batches.")
		return nil
	}

	fmt.Fprintf(out, "%-6s  %-19s  %6s  %8s  %10s  %s\n", "ID", "Created", "IPs", "Success", "Elapsed", "Output")
	for _, b := range batches {
		outputPath := b.OutputPath
		if outputPath == "" {
			outputPath = "-"
		}
		fmt.Fprintf(out, "%-6d  %-19s  %6d  %7.1f%%  %10s  %s\n",
			b.ID,
			b.CreatedAt.Local().Format(time.DateTime),
			b.Metrics.Total,
			b.Metrics.SuccessRate(),
			b.Metrics.Elapsed.Round(time.Millisecond),
			outputPath,
		)
	}
	return nil
}

// showBatch prints one archived batch in the requested format.
func showBatch(ctx context.Context, db *database.ResultDB, cfg *config.Config, id int64, out io.Writer) error {
	resp, err := loadBatchResponse(ctx, db, id)
	if err != nil {
		return err
	}
	return outputReport(cfg, out, resp)
}

// exportBatch writes one archived batch as CSV.
func exportBatch(ctx context.Context, db *database.ResultDB, id int64, path string, out io.Writer) error {
	records, err := db.GetBatchRecords(ctx, id)
	if err != nil {
		return err
	}
	if err := report.WriteCSVFile(path, records); err != nil {
		return fmt.Errorf("failed to export batch %d: %w", id, err)
	}
	fmt.Fprintf(out, "Batch %d has been written to %s\n", id, path)
	return nil
}

// loadBatchResponse rebuilds the Response of an archived batch.
func loadBatchResponse(ctx context.Context, db *database.ResultDB, id int64) (*model.Response, error) {
	batch, err := db.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := db.GetBatchRecords(ctx, id)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Batch %d archived at %s", batch.ID, batch.CreatedAt.Local().Format(time.DateTime))
	if batch.OutputPath != "" {
		message += fmt.Sprintf(", results written to %s", batch.OutputPath)
	}

	return &model.Response{
		Message:  message,
		Metrics:  model.NewMetricsSummary(batch.Metrics),
		Results:  records,
		TotalIPs: len(records),
	}, nil
}
