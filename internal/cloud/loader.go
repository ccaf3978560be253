package cloud

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// DocumentFiles maps each provider to the file name LoadDocuments looks for.
var DocumentFiles = map[string]string{
	ProviderAWS:     "aws_ip_ranges.json",
	ProviderAzure:   "azure_ip_ranges.json",
	ProviderGoogle:  "google_cloud_ip_ranges.json",
	ProviderAlibaba: "alibaba_cloud_ip_ranges.txt",
	ProviderTencent: "tencent_cloud_ip_ranges.txt",
	ProviderHuawei:  "huawei_cloud_ip_ranges.txt",
	ProviderTianyi:  "tianyi_cloud_ip_ranges.json",
}

// parser extracts CIDR strings from a provider document.
type parser func(data []byte) ([]string, error)

// parsers holds the provider-specific formats. Providers not listed here
// use parseGeneric.
var parsers = map[string]parser{
	ProviderAWS:    parseAWS,
	ProviderAzure:  parseAzure,
	ProviderGoogle: parseGoogle,
	ProviderTianyi: parseTianyi,
}

// LoadOption configures LoadDocuments.
type LoadOption func(*loader)

type loader struct {
	logger    *slog.Logger
	providers []string
}

// WithLoadLogger sets the logger used to report skipped documents and CIDRs.
func WithLoadLogger(logger *slog.Logger) LoadOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithProviders limits loading to the given providers.
func WithProviders(providers ...string) LoadOption {
	return func(l *loader) {
		l.providers = providers
	}
}

// LoadDocuments reads every known provider document from dir.
// Missing or unreadable documents contribute zero ranges and are only logged,
// so an empty or absent directory yields an empty (but usable) range list.
func LoadDocuments(dir string, opts ...LoadOption) []Range {
	l := &loader{
		logger:    slog.Default(),
		providers: Priority,
	}
	for _, opt := range opts {
		opt(l)
	}

	var ranges []Range
	for _, provider := range l.providers {
		name, ok := DocumentFiles[provider]
		if !ok {
			l.logger.Warn("no range document registered", "provider", provider)
			continue
		}

		path := filepath.Join(dir, name)
		loaded, err := LoadDocument(provider, path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				l.logger.Debug("range document not found", "provider", provider, "path", path)
			} else {
				l.logger.Warn("failed to load range document", "provider", provider, "path", path, "error", err)
			}
			continue
		}

		l.logger.Debug("loaded range document", "provider", provider, "ranges", len(loaded))
		ranges = append(ranges, loaded...)
	}

	return ranges
}

// LoadDocument reads and parses a single provider document.
// CIDR strings that do not parse are skipped.
func LoadDocument(provider, path string) ([]Range, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Document path comes from configuration
	if err != nil {
		return nil, err
	}
	return ParseDocument(provider, data)
}

// ParseDocument parses document data in the format used by provider.
func ParseDocument(provider string, data []byte) ([]Range, error) {
	parse, ok := parsers[provider]
	if !ok {
		parse = parseGeneric
	}

	cidrs, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", provider, err)
	}

	ranges := make([]Range, 0, len(cidrs))
	for _, cidr := range cidrs {
		r, err := ParseRange(provider, strings.TrimSpace(cidr))
		if err != nil {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// parseAWS reads ip-ranges.json as published by AWS.
func parseAWS(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedDocument
	}
	out := collectStrings(gjson.GetBytes(data, "prefixes.#.ip_prefix"))
	return append(out, collectStrings(gjson.GetBytes(data, "ipv6_prefixes.#.ipv6_prefix"))...), nil
}

// parseGoogle reads cloud.json as published by Google Cloud.
func parseGoogle(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedDocument
	}
	out := collectStrings(gjson.GetBytes(data, "prefixes.#.ipv4Prefix"))
	return append(out, collectStrings(gjson.GetBytes(data, "prefixes.#.ipv6Prefix"))...), nil
}

// parseAzure reads the Azure service tags document.
func parseAzure(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedDocument
	}
	var out []string
	gjson.GetBytes(data, "values").ForEach(func(_, value gjson.Result) bool {
		out = append(out, collectStrings(value.Get("properties.addressPrefixes"))...)
		return true
	})
	return out, nil
}

// parseTianyi reads a document with a top-level "ip_ranges" string array.
func parseTianyi(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedDocument
	}
	return collectStrings(gjson.GetBytes(data, "ip_ranges")), nil
}

// parseGeneric accepts a JSON array of CIDR strings, or plain text with one
// CIDR per line. Blank lines and lines starting with '#' are ignored.
func parseGeneric(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if !gjson.ValidBytes(trimmed) {
			return nil, ErrMalformedDocument
		}
		return collectStrings(gjson.ParseBytes(trimmed)), nil
	}

	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// collectStrings returns the string elements of a gjson array result.
func collectStrings(result gjson.Result) []string {
	var out []string
	result.ForEach(func(_, value gjson.Result) bool {
		if value.Type == gjson.String {
			out = append(out, value.String())
		}
		return true
	})
	return out
}
