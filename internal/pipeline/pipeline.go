package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/iprecon/internal/model"
	"golang.org/x/sync/errgroup"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step for the draft's address.
	// A returned error is recorded in the draft; it never stops other steps.
	Do(ctx context.Context, draft *Draft) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs lanes of steps for a single address.
// A Pipeline holds no per-address state and may be shared by any number
// of goroutines once built.
type Pipeline struct {
	// lanes run concurrently; steps within a lane run in order.
	lanes [][]Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline. Lanes are added with AddLane.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		lanes: make([][]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddLane appends a lane whose steps run in the given order.
func (p *Pipeline) AddLane(steps ...Step) {
	if len(steps) == 0 {
		return
	}
	p.lanes = append(p.lanes, steps)
}

// Run executes every lane for addr and returns the finished record.
// It always returns a record, even when steps fail or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, addr model.Address) model.Record {
	draft := NewDraft(addr)

	var g errgroup.Group
	for _, lane := range p.lanes {
		g.Go(func() error {
			p.runLane(ctx, lane, draft)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // lanes never return errors

	return draft.Record()
}

// runLane executes steps in order, recording failures in the draft.
func (p *Pipeline) runLane(ctx context.Context, steps []Step, draft *Draft) {
	ip := draft.Address().String()
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"ip", ip,
				"reason", err,
			)
			draft.AddError(fmt.Sprintf("%s: %v", step.Name(), err))
			continue
		}

		if err := step.Do(ctx, draft); err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"ip", ip,
				"error", err,
			)
			draft.AddError(fmt.Sprintf("%s: %v", step.Name(), err))
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"ip", ip,
		)
	}
}

// LaneCount returns the number of lanes.
func (p *Pipeline) LaneCount() int {
	return len(p.lanes)
}

// StepCount returns the number of steps across all lanes.
func (p *Pipeline) StepCount() int {
	n := 0
	for _, lane := range p.lanes {
		n += len(lane)
	}
	return n
}

// StepNames returns the step names lane by lane, in execution order.
func (p *Pipeline) StepNames() [][]string {
	names := make([][]string, len(p.lanes))
	for i, lane := range p.lanes {
		for _, step := range lane {
			names[i] = append(names[i], step.Name())
		}
	}
	return names
}
