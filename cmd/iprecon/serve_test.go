package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/nao1215/iprecon/internal/config"
)

// TestNewServeCmd tests the serve command flags.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	flag := cmd.Flags().Lookup("listen")
	if flag == nil {
		t.Fatal("expected listen flag")
	}
	if flag.Shorthand != "a" {
		t.Errorf("expected shorthand 'a', got %q", flag.Shorthand)
	}
	if cmd.Flags().Lookup("config") == nil || cmd.Flags().Lookup("no-db") == nil {
		t.Error("expected config and no-db flags")
	}
}

// TestRunServeCmd_MissingConfig tests that an explicit missing config file fails fast.
func TestRunServeCmd_MissingConfig(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "", "serve", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

// TestRunServeCmd_InvalidListenAddress tests that a bad listen address is reported.
func TestRunServeCmd_InvalidListenAddress(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := execute(t, "", "serve", "-c", env.configPath, "--no-db", "-a", "127.0.0.1:99999")
	if err == nil {
		t.Error("expected error for an invalid listen address")
	}
}
