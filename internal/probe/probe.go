package probe

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"time"
)

// Dialer opens TCP connections. *net.Dialer and *transport.Client satisfy it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// connect reports whether a TCP connection to ip:port succeeds within timeout.
// The connection is closed immediately.
func connect(ctx context.Context, dialer Dialer, ip netip.Addr, port uint16, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip.String(), strconv.Itoa(int(port))))
	if err != nil {
		return false
	}
	_ = conn.Close() //nolint:errcheck // connect-only probe
	return true
}

// defaultLogger returns logger or slog.Default.
func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
