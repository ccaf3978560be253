package cloud

import (
	"net/netip"
	"testing"

	"github.com/nao1215/iprecon/internal/model"
)

func mustRange(t *testing.T, provider, cidr string) Range {
	t.Helper()
	r, err := ParseRange(provider, cidr)
	if err != nil {
		t.Fatalf("ParseRange(%q, %q) error = %v", provider, cidr, err)
	}
	return r
}

// TestParseRange tests CIDR parsing and masking.
func TestParseRange(t *testing.T) {
	t.Parallel()

	t.Run("masks host bits", func(t *testing.T) {
		t.Parallel()

		r, err := ParseRange(ProviderAWS, "10.1.2.3/8")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Prefix.String() != "10.0.0.0/8" {
			t.Errorf("expected 10.0.0.0/8, got %s", r.Prefix)
		}
		if r.Provider != ProviderAWS {
			t.Errorf("expected provider %q, got %q", ProviderAWS, r.Provider)
		}
	})

	t.Run("rejects invalid CIDR", func(t *testing.T) {
		t.Parallel()

		for _, cidr := range []string{"", "10.0.0.0", "10.0.0.0/33", "not-a-cidr"} {
			if _, err := ParseRange(ProviderAWS, cidr); err == nil {
				t.Errorf("ParseRange(%q) expected error", cidr)
			}
		}
	})
}

// TestTableClassify tests priority-ordered classification.
func TestTableClassify(t *testing.T) {
	t.Parallel()

	table, err := NewTable([]string{"Test-A", "Test-B"}, []Range{
		mustRange(t, "Test-B", "10.1.0.0/16"),
		mustRange(t, "Test-A", "10.0.0.0/8"),
		mustRange(t, "Test-B", "2001:db8::/32"),
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	tests := []struct {
		name     string
		input    string
		want     string
		wantFind bool
	}{
		{name: "overlap resolves to first provider in order", input: "10.1.2.3", want: "Test-A", wantFind: true},
		{name: "only first provider", input: "10.200.0.1", want: "Test-A", wantFind: true},
		{name: "not in any range", input: "192.168.1.1"},
		{name: "IPv6 range", input: "2001:db8::1", want: "Test-B", wantFind: true},
		{name: "IPv4-mapped IPv6", input: "::ffff:10.1.2.3", want: "Test-A", wantFind: true},
		{name: "invalid address", input: "not-an-ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			addr, _ := model.ParseAddress(tt.input) //nolint:errcheck // invalid input is part of the table
			got, ok := table.Classify(addr)
			if ok != tt.wantFind {
				t.Fatalf("Classify(%q) found = %v, want %v", tt.input, ok, tt.wantFind)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestTableOrder tests that reversing the order changes the overlap winner.
func TestTableOrder(t *testing.T) {
	t.Parallel()

	ranges := []Range{
		mustRange(t, "Test-A", "10.0.0.0/8"),
		mustRange(t, "Test-B", "10.1.0.0/16"),
	}
	table, err := NewTable([]string{"Test-B", "Test-A"}, ranges)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	got, ok := table.Classify(model.MustParseAddress("10.1.2.3"))
	if !ok || got != "Test-B" {
		t.Errorf("expected Test-B, got %q (found=%v)", got, ok)
	}
}

// TestTableHelpers tests the accessor methods.
func TestTableHelpers(t *testing.T) {
	t.Parallel()

	t.Run("ignores ranges of unknown providers", func(t *testing.T) {
		t.Parallel()

		table, err := NewDefaultTable([]Range{
			mustRange(t, "Unknown Cloud", "10.0.0.0/8"),
			mustRange(t, ProviderAzure, "20.0.0.0/8"),
		})
		if err != nil {
			t.Fatalf("NewDefaultTable() error = %v", err)
		}

		if _, ok := table.Classify(model.MustParseAddress("10.0.0.1")); ok {
			t.Error("expected unknown provider ranges to be ignored")
		}
		if table.RangeCount(ProviderAzure) != 1 {
			t.Errorf("expected 1 Azure range, got %d", table.RangeCount(ProviderAzure))
		}
		if !table.Contains(ProviderAzure, netip.MustParseAddr("20.1.2.3")) {
			t.Error("expected Azure to contain 20.1.2.3")
		}
		if table.Contains(ProviderAzure, netip.Addr{}) {
			t.Error("expected zero address to never match")
		}
	})

	t.Run("providers follow priority", func(t *testing.T) {
		t.Parallel()

		table, err := NewDefaultTable(nil)
		if err != nil {
			t.Fatalf("NewDefaultTable() error = %v", err)
		}

		got := table.Providers()
		if len(got) != len(Priority) {
			t.Fatalf("expected %d providers, got %d", len(Priority), len(got))
		}
		for i := range Priority {
			if got[i] != Priority[i] {
				t.Errorf("provider[%d] = %q, want %q", i, got[i], Priority[i])
			}
		}
	})

	t.Run("nil table never matches", func(t *testing.T) {
		t.Parallel()

		var table *Table
		if _, ok := table.Classify(model.MustParseAddress("10.0.0.1")); ok {
			t.Error("expected nil table to report no provider")
		}
	})
}
