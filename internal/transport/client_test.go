package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// serveOnce accepts a single connection and hands it to handle.
func serveOnce(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()

	return ln.Addr().String()
}

// TestNewClient tests the Client constructor.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("direct client", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(10 * time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "" {
			t.Errorf("expected empty proxy address, got %q", client.ProxyAddress())
		}
		if client.Timeout() != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", client.Timeout())
		}
	})

	t.Run("valid proxy addresses", func(t *testing.T) {
		t.Parallel()

		for _, addr := range []string{"127.0.0.1:9050", "localhost:1080", "[::1]:1080"} {
			client, err := NewClient(time.Second, WithProxy(addr))
			if err != nil {
				t.Errorf("NewClient(WithProxy(%q)) error = %v", addr, err)
				continue
			}
			if client.ProxyAddress() != addr {
				t.Errorf("ProxyAddress() = %q, want %q", client.ProxyAddress(), addr)
			}
		}
	})

	t.Run("invalid proxy addresses", func(t *testing.T) {
		t.Parallel()

		for _, addr := range []string{"127.0.0.1", ":9050", "host:0", "host:65536", "host:abc", "a:b:c"} {
			_, err := NewClient(time.Second, WithProxy(addr))
			if !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("NewClient(WithProxy(%q)) expected ErrInvalidProxyAddress, got %v", addr, err)
			}
		}
	})
}

// TestClientDialContext tests direct dialing.
func TestClientDialContext(t *testing.T) {
	t.Parallel()

	t.Run("connects to open port", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(net.Conn) {})
		client, err := NewClient(time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		conn, err := client.DialContext(context.Background(), "tcp", addr)
		if err != nil {
			t.Fatalf("DialContext() error = %v", err)
		}
		conn.Close()
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := client.DialContext(ctx, "tcp", "127.0.0.1:1"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

// TestClientHTTPClient tests default headers.
func TestClientHTTPClient(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		_, _ = io.WriteString(w, "{}")
	}))
	defer server.Close()

	client, err := NewClient(5*time.Second, WithUserAgent("iprecon-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := client.HTTPClient().Get(server.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	h := <-headers
	gotUA, gotAccept := h.Get("User-Agent"), h.Get("Accept")
	if gotUA != "iprecon-test" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "iprecon-test")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}

// TestCheckConnection tests the SOCKS5 handshake check.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("direct client is always OK", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := client.CheckConnection(context.Background()); got != ProxyStatusOK {
			t.Errorf("expected OK, got %s", got)
		}
	})

	t.Run("SOCKS5 proxy", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			if _, err := io.ReadFull(conn, buf); err != nil {
				return
			}
			_, _ = conn.Write([]byte{socks5Version, socks5AuthNone})
		})

		client, err := NewClient(time.Second, WithProxy(addr))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := client.CheckConnection(context.Background()); got != ProxyStatusOK {
			t.Errorf("expected OK, got %s", got)
		}
	})

	t.Run("not a SOCKS5 proxy", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			if _, err := io.ReadFull(conn, buf); err != nil {
				return
			}
			_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
		})

		client, err := NewClient(time.Second, WithProxy(addr))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := client.CheckConnection(context.Background())
		if got != ProxyStatusWrongType {
			t.Errorf("expected wrong type, got %s", got)
		}
		if !errors.Is(got.Error(), ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", got.Error())
		}
	})

	t.Run("closed port", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()

		client, err := NewClient(time.Second, WithProxy(addr))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := client.CheckConnection(context.Background()); got != ProxyStatusCannotConnect {
			t.Errorf("expected cannot connect, got %s", got)
		}
	})
}

// TestProxyStatusString tests status descriptions.
func TestProxyStatusString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ProxyStatus
		want   string
	}{
		{ProxyStatusOK, "OK"},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)"},
		{ProxyStatusCannotConnect, "cannot connect"},
		{ProxyStatusTimeout, "timeout"},
		{ProxyStatus(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
	if ProxyStatusOK.Error() != nil {
		t.Error("expected nil error for OK")
	}
}
