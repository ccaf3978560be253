package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/iprecon/internal/model"
	"golang.org/x/sync/errgroup"
)

// Runner produces the record for one address. *Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, addr model.Address) model.Record
}

// BatchProcessor runs one Runner invocation per address concurrently.
type BatchProcessor struct {
	// runner is shared by every address in the batch.
	runner Runner

	// concurrency is the maximum number of in-flight addresses; -1 means no limit.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency caps the number of addresses processed at once.
// Non-positive values leave the batch unbounded.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor around runner.
// By default every address in a batch is processed at the same time.
func NewBatchProcessor(runner Runner, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		runner:      runner,
		concurrency: -1,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Concurrency returns the in-flight cap, or -1 when unbounded.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// ProcessBatch produces exactly one record per input string, in input order,
// and the metrics of the batch. Strings that are not IP addresses still get
// a record (inactive, no location) without any network activity.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []string) ([]model.Record, model.BatchMetrics) {
	return bp.ProcessBatchWithCallback(ctx, inputs, nil)
}

// ProcessBatchWithCallback works like ProcessBatch and also calls callback
// as each record completes, with the record's input index. Callbacks are
// never invoked concurrently.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	inputs []string,
	callback func(record model.Record, index int),
) ([]model.Record, model.BatchMetrics) {
	bp.logger.Info("starting batch processing",
		"total_ips", len(inputs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	records := make([]model.Record, len(inputs))
	var callbackMu sync.Mutex

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			addr, err := model.ParseAddress(input)
			if err != nil {
				bp.logger.Warn("invalid address", "input", input, "error", err)
			}

			record := bp.runner.Run(ctx, addr)
			records[i] = record

			if callback != nil {
				callbackMu.Lock()
				callback(record, i)
				callbackMu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // per-address failures live in the records

	metrics := model.NewBatchMetrics(records, time.Since(startTime))
	bp.logger.Info("batch processing complete",
		"total_ips", metrics.Total,
		"success", metrics.Success,
		"failure", metrics.Failure,
		"elapsed", metrics.Elapsed,
	)

	return records, metrics
}
