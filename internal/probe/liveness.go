package probe

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/nao1215/iprecon/internal/model"
)

// DefaultLivenessTimeout bounds each liveness connect.
const DefaultLivenessTimeout = 3 * time.Second

// LivenessPorts are the ports tried by LivenessProbe.
var LivenessPorts = []uint16{80, 443}

// LivenessProbe reports whether an address accepts TCP on a web port.
type LivenessProbe struct {
	dialer  Dialer
	ports   []uint16
	timeout time.Duration
	logger  *slog.Logger
}

// LivenessOption configures a LivenessProbe.
type LivenessOption func(*LivenessProbe)

// WithLivenessTimeout sets the per-connect timeout.
func WithLivenessTimeout(d time.Duration) LivenessOption {
	return func(p *LivenessProbe) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLivenessPorts overrides the probed ports.
func WithLivenessPorts(ports ...uint16) LivenessOption {
	return func(p *LivenessProbe) {
		p.ports = append([]uint16(nil), ports...)
	}
}

// WithLivenessLogger sets a custom logger.
func WithLivenessLogger(logger *slog.Logger) LivenessOption {
	return func(p *LivenessProbe) {
		p.logger = logger
	}
}

// NewLivenessProbe creates a LivenessProbe. A nil dialer connects directly.
func NewLivenessProbe(dialer Dialer, opts ...LivenessOption) *LivenessProbe {
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	p := &LivenessProbe{
		dialer:  dialer,
		ports:   LivenessPorts,
		timeout: DefaultLivenessTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = defaultLogger(p.logger)
	return p
}

// IsAlive connects to every liveness port concurrently and returns true as
// soon as one succeeds. Invalid addresses return false without dialing.
func (p *LivenessProbe) IsAlive(ctx context.Context, addr model.Address) bool {
	if !addr.Valid() || len(p.ports) == 0 {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan bool, len(p.ports))
	for _, port := range p.ports {
		go func() {
			results <- connect(ctx, p.dialer, addr.IP(), port, p.timeout)
		}()
	}

	for range p.ports {
		if <-results {
			p.logger.Debug("host is alive", "ip", addr.String())
			return true
		}
	}

	p.logger.Debug("host is not responding", "ip", addr.String())
	return false
}
