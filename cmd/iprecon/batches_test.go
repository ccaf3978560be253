package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/iprecon/internal/report"
)

// TestNewBatchesCmd tests the batches command flags.
func TestNewBatchesCmd(t *testing.T) {
	t.Parallel()

	cmd := NewBatchesCmd()
	for _, name := range []string{"limit", "show", "export", "output", "json", "markdown", "config"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if got := cmd.Flags().Lookup("limit").DefValue; got != "20" {
		t.Errorf("limit default = %q, want 20", got)
	}
}

// TestBatchesFlagValidation tests argument errors reported before the database is opened.
func TestBatchesFlagValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "show and export", args: []string{"batches", "--show", "1", "--export", "1", "-o", "x.csv"}, wantErr: "cannot be used together"},
		{name: "export without output", args: []string{"batches", "--export", "1"}, wantErr: "requires --output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestBatchesNoDatabase tests the message shown before any scan was archived.
func TestBatchesNoDatabase(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := execute(t, "", "batches", "-c", env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no archived batches") {
		t.Errorf("expected 'no archived batches' error, got %v", err)
	}
}

// TestBatchesAfterScan archives a scan and reads it back through every mode.
func TestBatchesAfterScan(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	csvPath := filepath.Join(t.TempDir(), "scan.csv")

	if _, err := execute(t, "", "scan", "-c", env.configPath, "-o", csvPath, "127.0.0.1", "bogus"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, "", "batches", "-c", env.configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Created") || !strings.Contains(out, csvPath) {
			t.Errorf("unexpected list output:\n%s", out)
		}
	})

	t.Run("show", func(t *testing.T) {
		out, err := execute(t, "", "batches", "-c", env.configPath, "--show", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"127.0.0.1", "bogus", "Test City, Testland", "Batch 1 archived at"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("show missing batch", func(t *testing.T) {
		if _, err := execute(t, "", "batches", "-c", env.configPath, "--show", "99"); err == nil {
			t.Error("expected error for a missing batch")
		}
	})

	t.Run("export", func(t *testing.T) {
		exportPath := filepath.Join(t.TempDir(), "export.csv")
		out, err := execute(t, "", "batches", "-c", env.configPath, "--export", "1", "-o", exportPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Batch 1 has been written to") {
			t.Errorf("unexpected output: %q", out)
		}

		original, err := report.ReadCSVFile(csvPath)
		if err != nil {
			t.Fatal(err)
		}
		exported, err := report.ReadCSVFile(exportPath)
		if err != nil {
			t.Fatal(err)
		}
		if len(original) != len(exported) {
			t.Fatalf("exported %d records, want %d", len(exported), len(original))
		}
		for i := range original {
			if original[i].IP != exported[i].IP ||
				original[i].Active != exported[i].Active ||
				original[i].CloudProvider != exported[i].CloudProvider ||
				original[i].JoinPorts() != exported[i].JoinPorts() {
				t.Errorf("record %d differs: %+v vs %+v", i, original[i], exported[i])
			}
		}
	})
}
