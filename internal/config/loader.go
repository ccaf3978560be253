package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/iprecon/internal/geo"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".iprecon"

// File represents the structure of the .iprecon configuration file.
// Absent keys keep their defaults; pointer fields distinguish an explicit
// zero from an absent key.
type File struct {
	Concurrency  *int           `yaml:"concurrency,omitempty"`
	GeoTimeout   time.Duration  `yaml:"geo_timeout,omitempty"`
	Pacing       *time.Duration `yaml:"pacing,omitempty"`
	ProbeTimeout time.Duration  `yaml:"probe_timeout,omitempty"`
	PortTimeout  time.Duration  `yaml:"port_timeout,omitempty"`
	Proxy        string         `yaml:"proxy,omitempty"`
	UserAgent    string         `yaml:"user_agent,omitempty"`
	RangesDir    string         `yaml:"ranges_dir,omitempty"`
	ResultsDir   string         `yaml:"results_dir,omitempty"`
	DBDir        string         `yaml:"db_dir,omitempty"`
	SaveToDB     *bool          `yaml:"save_to_db,omitempty"`
	Listen       string         `yaml:"listen,omitempty"`

	// Providers replaces the built-in geolocation chain when non-empty.
	Providers []geo.Endpoint `yaml:"providers,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .iprecon in the current directory
// 3. Look for .iprecon in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
