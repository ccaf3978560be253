package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/iprecon/internal/model"
	"github.com/nao1215/iprecon/internal/report"
)

// Batcher processes a list of raw address strings, calling callback as
// each record completes. *pipeline.BatchProcessor implements it.
type Batcher interface {
	ProcessBatchWithCallback(
		ctx context.Context,
		inputs []string,
		callback func(record model.Record, index int),
	) ([]model.Record, model.BatchMetrics)
}

// ProgressFunc is called once per completed record. done counts the
// records finished so far, out of total.
type ProgressFunc func(record model.Record, done, total int)

// Archiver stores a finished batch.
// *database.ResultDB implements it.
type Archiver interface {
	SaveBatch(ctx context.Context, records []model.Record, metrics model.BatchMetrics, outputPath string) (int64, error)
}

// Service handles batch requests.
type Service struct {
	batcher      Batcher
	archiver     Archiver
	resultsDir   string
	customOutput string
	progress     ProgressFunc
	logger       *slog.Logger
	now          func() time.Time

	// writeMu serializes CSV writes. Requests may share an output path
	// (the fixed custom file, or a timestamp within the same second);
	// the last writer wins but the file always holds one whole batch.
	writeMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithResultsDir sets the directory of the timestamped CSV files.
func WithResultsDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.resultsDir = dir
		}
	}
}

// WithCustomOutput sets the CSV path used when a request does not ask
// for the default output.
func WithCustomOutput(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.customOutput = path
		}
	}
}

// WithArchiver stores every processed batch in a.
func WithArchiver(a Archiver) Option {
	return func(s *Service) {
		s.archiver = a
	}
}

// WithProgress reports each completed record to fn.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Service) {
		s.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock sets the time source used to name the default output file.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service around batcher.
func New(batcher Batcher, opts ...Option) *Service {
	s := &Service{
		batcher:      batcher,
		resultsDir:   report.DefaultResultsDir,
		customOutput: report.CustomOutputFile,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// OutputPath returns the CSV path a request writes to.
func (s *Service) OutputPath(useDefaultOutput bool) string {
	if useDefaultOutput {
		return report.DefaultOutputPath(s.resultsDir, s.now())
	}
	return s.customOutput
}

func (s *Service) writeCSV(path string, records []model.Record) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return report.WriteCSVFile(path, records)
}

// Process runs the batch described by req. The records and metrics are
// returned even when the results cannot be written; the message says so.
func (s *Service) Process(ctx context.Context, req model.Request) model.Response {
	inputs := model.SplitLines(req.IPs)

	var callback func(model.Record, int)
	if s.progress != nil {
		// The batcher serializes callbacks.
		done := 0
		callback = func(r model.Record, _ int) {
			done++
			s.progress(r, done, len(inputs))
		}
	}
	records, metrics := s.batcher.ProcessBatchWithCallback(ctx, inputs, callback)

	outputPath := s.OutputPath(req.UseDefaultOutput)
	message := fmt.Sprintf("Results have been written to %s", outputPath)
	written := true
	if err := s.writeCSV(outputPath, records); err != nil {
		s.logger.Error("failed to write results", "path", outputPath, "error", err)
		message = fmt.Sprintf("Error writing to file: %v", err)
		written = false
	}

	if s.archiver != nil {
		archivedPath := outputPath
		if !written {
			archivedPath = ""
		}
		id, err := s.archiver.SaveBatch(ctx, records, metrics, archivedPath)
		if err != nil {
			s.logger.Warn("failed to archive batch", "error", err)
		} else {
			s.logger.Debug("batch archived", "batch_id", id)
		}
	}

	return model.Response{
		Message:  message,
		Metrics:  model.NewMetricsSummary(metrics),
		Results:  records,
		TotalIPs: len(inputs),
	}
}
