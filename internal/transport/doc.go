// Package transport provides the outbound network access shared by every
// reconnaissance pipeline: an HTTP client for geolocation providers and a
// TCP dialer for liveness and port probes.
//
// Both can optionally be routed through a SOCKS5 proxy. The Client is safe
// for concurrent use and is meant to be created once per process.
package transport
