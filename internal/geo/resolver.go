package geo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/iprecon/internal/model"
)

const (
	// DefaultPacing is the wait between a failed provider and the next one.
	DefaultPacing = 1 * time.Second

	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 10 * time.Second
)

// Resolver resolves addresses through an ordered provider chain.
// A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	providers []Provider
	pacing    time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPacing sets the delay inserted after each failed provider.
func WithPacing(d time.Duration) Option {
	return func(r *Resolver) {
		if d >= 0 {
			r.pacing = d
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger used to report provider failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver that queries providers in the given order.
func NewResolver(providers []Provider, opts ...Option) *Resolver {
	r := &Resolver{
		providers: append([]Provider(nil), providers...),
		pacing:    DefaultPacing,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Providers returns the provider names in query order.
func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Resolve returns "city, country" for addr from the first provider that
// answers. Invalid addresses fail without contacting any provider.
// When every provider fails the error wraps ErrExhausted.
func (r *Resolver) Resolve(ctx context.Context, addr model.Address) (string, error) {
	if !addr.Valid() {
		return "", fmt.Errorf("%w: %s: %w", ErrExhausted, addr, model.ErrInvalidAddress)
	}

	for i, p := range r.providers {
		loc, err := r.lookup(ctx, p, addr)
		if err == nil {
			r.logger.Debug("geolocation resolved",
				"ip", addr.String(),
				"provider", p.Name(),
				"location", loc.String(),
			)
			return loc.String(), nil
		}

		r.logger.Warn("geolocation provider failed",
			"ip", addr.String(),
			"provider", p.Name(),
			"error", err,
		)

		if i == len(r.providers)-1 {
			break
		}
		if err := sleep(ctx, r.pacing); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrExhausted, addr, err)
		}
	}

	return "", fmt.Errorf("%w: %s", ErrExhausted, addr)
}

// lookup runs one provider request under the per-request timeout.
func (r *Resolver) lookup(ctx context.Context, p Provider, addr model.Address) (Location, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return p.Lookup(ctx, addr.IP())
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
