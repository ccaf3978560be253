package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/iprecon/internal/geo"
	"github.com/nao1215/iprecon/internal/probe"
	"github.com/nao1215/iprecon/internal/report"
	"github.com/nao1215/iprecon/internal/transport"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "iprecon"

	// DefaultConcurrency caps the number of addresses processed at once.
	// Batches of hundreds of addresses would otherwise open thousands of
	// sockets simultaneously.
	DefaultConcurrency = 64

	// DefaultGeoTimeout bounds a single geolocation request.
	DefaultGeoTimeout = geo.DefaultTimeout

	// DefaultPacing is the wait between failed geolocation providers.
	DefaultPacing = geo.DefaultPacing

	// DefaultProbeTimeout bounds each liveness connect.
	DefaultProbeTimeout = probe.DefaultLivenessTimeout

	// DefaultPortTimeout bounds each port connect.
	DefaultPortTimeout = probe.DefaultPortTimeout

	// DefaultListenAddress is where the HTTP API listens.
	DefaultListenAddress = ":3000"

	// DefaultUserAgent identifies iprecon to geolocation providers.
	DefaultUserAgent = transport.DefaultUserAgent

	// DefaultResultsDir holds the timestamped CSV files.
	DefaultResultsDir = report.DefaultResultsDir

	// DefaultCustomOutput is the CSV file used when the default output is off.
	DefaultCustomOutput = report.CustomOutputFile
)

// Config holds all configuration options for iprecon.
// It is populated once at startup and passed down explicitly.
type Config struct {
	// Targets are the addresses to scan, in order.
	Targets []string

	// Concurrency caps in-flight addresses per batch. Zero means no cap.
	Concurrency int

	// GeoTimeout bounds one geolocation provider request.
	GeoTimeout time.Duration

	// Pacing is the wait after a failed geolocation provider.
	Pacing time.Duration

	// ProbeTimeout bounds each liveness connect.
	ProbeTimeout time.Duration

	// PortTimeout bounds each port-scan connect.
	PortTimeout time.Duration

	// ProxyAddress routes all traffic through a SOCKS5 proxy when set.
	ProxyAddress string

	// UserAgent is sent to geolocation providers.
	UserAgent string

	// Providers is the geolocation provider chain, in query order.
	Providers []geo.Endpoint

	// RangesDir contains the cloud provider range documents.
	// Defaults to the XDG data directory.
	RangesDir string

	// ResultsDir receives timestamped CSV files.
	ResultsDir string

	// CustomOutput is the CSV path used when UseDefaultOutput is false.
	CustomOutput string

	// UseDefaultOutput selects the timestamped file under ResultsDir.
	UseDefaultOutput bool

	// DBDir is the directory of the SQLite archive.
	DBDir string

	// SaveToDB archives every processed batch.
	SaveToDB bool

	// ListenAddress is the HTTP API listen address.
	ListenAddress string

	// JSONReport prints the batch as JSON instead of a table.
	JSONReport bool

	// MarkdownReport prints the batch as Markdown instead of a table.
	MarkdownReport bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .iprecon is searched in the current and home directories.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Concurrency:      DefaultConcurrency,
		GeoTimeout:       DefaultGeoTimeout,
		Pacing:           DefaultPacing,
		ProbeTimeout:     DefaultProbeTimeout,
		PortTimeout:      DefaultPortTimeout,
		UserAgent:        DefaultUserAgent,
		Providers:        geo.DefaultEndpoints(),
		RangesDir:        XDGRangesDir(),
		ResultsDir:       DefaultResultsDir,
		CustomOutput:     DefaultCustomOutput,
		UseDefaultOutput: true,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
		ListenAddress:    DefaultListenAddress,
	}
}

// XDGDataDir returns the XDG data directory for iprecon.
// On Linux: ~/.local/share/iprecon
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGRangesDir returns the default directory for cloud range documents.
// On Linux: ~/.local/share/iprecon/ranges
func XDGRangesDir() string {
	return filepath.Join(XDGDataDir(), "ranges")
}

// XDGConfigDir returns the XDG config directory for iprecon.
// On Linux: ~/.config/iprecon
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.GeoTimeout <= 0 || c.ProbeTimeout <= 0 || c.PortTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}

	if c.Pacing < 0 {
		return ErrInvalidPacing
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if len(c.Providers) == 0 {
		return ErrNoProviders
	}

	if c.ListenAddress == "" {
		return ErrInvalidListenAddress
	}

	return nil
}

// ApplyFile overrides defaults with the non-zero values of f.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.Concurrency != nil {
		c.Concurrency = *f.Concurrency
	}
	if f.GeoTimeout > 0 {
		c.GeoTimeout = f.GeoTimeout
	}
	if f.Pacing != nil {
		c.Pacing = *f.Pacing
	}
	if f.ProbeTimeout > 0 {
		c.ProbeTimeout = f.ProbeTimeout
	}
	if f.PortTimeout > 0 {
		c.PortTimeout = f.PortTimeout
	}
	if f.Proxy != "" {
		c.ProxyAddress = f.Proxy
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if len(f.Providers) > 0 {
		c.Providers = f.Providers
	}
	if f.RangesDir != "" {
		c.RangesDir = f.RangesDir
	}
	if f.ResultsDir != "" {
		c.ResultsDir = f.ResultsDir
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.SaveToDB != nil {
		c.SaveToDB = *f.SaveToDB
	}
	if f.Listen != "" {
		c.ListenAddress = f.Listen
	}
}
