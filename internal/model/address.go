package model

import (
	"errors"
	"net/netip"
	"strings"
)

// Address errors.
var (
	// ErrEmptyAddress is returned when the input string is empty after trimming.
	ErrEmptyAddress = errors.New("address cannot be empty")
	// ErrInvalidAddress is returned when the input is not an IPv4 or IPv6 address.
	ErrInvalidAddress = errors.New("invalid IP address")
)

// Address is an immutable value object for one input line of a batch.
// The raw string is always retained so that invalid input can still be
// reported, but only valid addresses are ever handed to network code.
type Address struct {
	raw string     // Trimmed input as supplied by the caller
	ip  netip.Addr // Parsed address; zero value when raw is not an IP
}

// ParseAddress creates an Address from a string.
// Surrounding whitespace is trimmed and IPv4-mapped IPv6 addresses are
// unmapped so that "::ffff:10.0.0.1" behaves like "10.0.0.1".
// The returned Address is usable even when err is non-nil; it keeps the
// raw string and reports Valid() == false.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Address{raw: trimmed}, ErrEmptyAddress
	}

	ip, err := netip.ParseAddr(trimmed)
	if err != nil {
		return Address{raw: trimmed}, ErrInvalidAddress
	}

	return Address{raw: trimmed, ip: ip.Unmap()}, nil
}

// MustParseAddress creates an Address or panics if the input is not an IP.
// Use only for known-valid addresses in tests or initialization.
func MustParseAddress(raw string) Address {
	a, err := ParseAddress(raw)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the address as the caller supplied it (trimmed).
func (a Address) String() string {
	return a.raw
}

// IP returns the parsed address. It is the zero netip.Addr when Valid is false.
func (a Address) IP() netip.Addr {
	return a.ip
}

// Valid reports whether the raw string parsed as an IPv4 or IPv6 address.
func (a Address) Valid() bool {
	return a.ip.IsValid()
}

// SplitLines splits newline-separated input into trimmed, non-empty entries.
// Both "\n" and "\r\n" line endings are accepted.
func SplitLines(input string) []string {
	lines := strings.Split(input, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
