package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// checkProxyTimeout bounds the SOCKS5 handshake in CheckConnection.
	checkProxyTimeout = 2 * time.Second

	// DefaultUserAgent is sent with every outbound HTTP request.
	DefaultUserAgent = "iprecon"

	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
)

// Dialer opens TCP connections. It is satisfied by *Client and *net.Dialer.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Client provides outbound connectivity, either direct or via SOCKS5.
type Client struct {
	// proxyAddress is the SOCKS5 proxy in "host:port" form; empty means direct.
	proxyAddress string

	// dialer is the SOCKS5 dialer, nil when connecting directly.
	dialer proxy.Dialer

	// direct is used when no proxy is configured.
	direct *net.Dialer

	// timeout is the whole-request timeout of the HTTP client.
	timeout time.Duration

	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithProxy routes all traffic through the SOCKS5 proxy at address.
// An empty address keeps direct connections.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithUserAgent overrides the User-Agent header of outbound HTTP requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a Client whose HTTP requests time out after timeout.
// The proxy address is validated but not contacted; call CheckConnection
// to verify it.
func NewClient(timeout time.Duration, opts ...Option) (*Client, error) {
	c := &Client{
		direct:    &net.Dialer{},
		timeout:   timeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.proxyAddress == "" {
		return c, nil
	}

	if !isValidProxyAddress(c.proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, c.direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	c.dialer = dialer

	return c, nil
}

// isValidProxyAddress checks that address is "host:port" with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// ProxyAddress returns the configured proxy address, or "" for direct mode.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// Timeout returns the HTTP request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// DialContext opens a TCP connection to address, honoring ctx for both
// cancellation and deadline.
func (c *Client) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if c.dialer == nil {
		return c.direct.DialContext(ctx, network, address)
	}

	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := c.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		go func() {
			if r := <-resultCh; r.conn != nil {
				_ = r.conn.Close() //nolint:errcheck // abandoned connection
			}
		}()
		return nil, ctx.Err()
	}
}

// HTTPClient returns an HTTP client that dials through DialContext.
func (c *Client) HTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext:         c.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			userAgent: c.userAgent,
		},
		Timeout: c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// headerInjectingTransport sets default headers on every request.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", "application/json")
	}
	return t.base.RoundTrip(clone)
}

// CheckConnection verifies that the configured proxy speaks SOCKS5 and
// accepts clients without authentication. A direct Client always reports OK.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	if c.proxyAddress == "" {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	conn, err := c.direct.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// version, one method, "no authentication"
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if resp[0] != socks5Version || resp[1] == socks5AuthNoAccept || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}
