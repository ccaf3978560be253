package probe

import (
	"context"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/nao1215/iprecon/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultPortTimeout bounds each port connect.
const DefaultPortTimeout = 1 * time.Second

// CommonPorts are the well-known service ports checked by PortScanner,
// in ascending order.
var CommonPorts = []uint16{21, 22, 80, 443, 3306, 5432, 6379, 8080, 8443, 27017}

// PortScanner finds which of a fixed list of ports accept TCP connections.
type PortScanner struct {
	dialer  Dialer
	ports   []uint16
	timeout time.Duration
	logger  *slog.Logger
}

// ScannerOption configures a PortScanner.
type ScannerOption func(*PortScanner)

// WithPortTimeout sets the per-port connect timeout.
func WithPortTimeout(d time.Duration) ScannerOption {
	return func(s *PortScanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPorts overrides the scanned ports.
func WithPorts(ports ...uint16) ScannerOption {
	return func(s *PortScanner) {
		s.ports = model.NormalizePorts(ports)
	}
}

// WithScannerLogger sets a custom logger.
func WithScannerLogger(logger *slog.Logger) ScannerOption {
	return func(s *PortScanner) {
		s.logger = logger
	}
}

// NewPortScanner creates a PortScanner over CommonPorts. A nil dialer
// connects directly.
func NewPortScanner(dialer Dialer, opts ...ScannerOption) *PortScanner {
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	s := &PortScanner{
		dialer:  dialer,
		ports:   CommonPorts,
		timeout: DefaultPortTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = defaultLogger(s.logger)
	return s
}

// Ports returns the scanned ports.
func (s *PortScanner) Ports() []uint16 {
	return slices.Clone(s.ports)
}

// Scan connects to every port at once and returns the ascending list of
// ports that accepted. The call takes at most about one timeout. Invalid
// addresses return an empty list without dialing.
func (s *PortScanner) Scan(ctx context.Context, addr model.Address) []uint16 {
	if !addr.Valid() {
		return []uint16{}
	}

	var (
		mu   sync.Mutex
		open = make([]uint16, 0, len(s.ports))
	)

	var g errgroup.Group
	for _, port := range s.ports {
		g.Go(func() error {
			if connect(ctx, s.dialer, addr.IP(), port, s.timeout) {
				mu.Lock()
				open = append(open, port)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // port goroutines never fail

	open = model.NormalizePorts(open)
	s.logger.Debug("port scan complete", "ip", addr.String(), "open_ports", open)
	return open
}
