package model

import (
	"errors"
	"testing"
)

func TestParseAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantRaw   string
		wantValid bool
		wantIs4   bool
		wantErr   error
	}{
		{
			name:      "valid IPv4",
			input:     "8.8.8.8",
			wantRaw:   "8.8.8.8",
			wantValid: true,
			wantIs4:   true,
		},
		{
			name:      "valid IPv6",
			input:     "2001:4860:4860::8888",
			wantRaw:   "2001:4860:4860::8888",
			wantValid: true,
		},
		{
			name:      "surrounding whitespace is trimmed",
			input:     "  1.1.1.1 \r",
			wantRaw:   "1.1.1.1",
			wantValid: true,
			wantIs4:   true,
		},
		{
			name:      "IPv4-mapped IPv6 is unmapped",
			input:     "::ffff:10.0.0.1",
			wantRaw:   "::ffff:10.0.0.1",
			wantValid: true,
			wantIs4:   true,
		},
		{
			name:    "hostname is rejected",
			input:   "not-an-ip",
			wantRaw: "not-an-ip",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "CIDR is rejected",
			input:   "10.0.0.0/8",
			wantRaw: "10.0.0.0/8",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "out of range octet is rejected",
			input:   "256.1.1.1",
			wantRaw: "256.1.1.1",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "empty input",
			input:   "   ",
			wantRaw: "",
			wantErr: ErrEmptyAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			addr, err := ParseAddress(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseAddress(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if addr.String() != tt.wantRaw {
				t.Errorf("String() = %q, want %q", addr.String(), tt.wantRaw)
			}
			if addr.Valid() != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", addr.Valid(), tt.wantValid)
			}
			if addr.IP().Is4() != tt.wantIs4 {
				t.Errorf("IP().Is4() = %v, want %v", addr.IP().Is4(), tt.wantIs4)
			}
		})
	}
}

func TestMustParseAddress(t *testing.T) {
	t.Parallel()

	t.Run("returns address for valid input", func(t *testing.T) {
		t.Parallel()

		addr := MustParseAddress("192.0.2.1")
		if addr.IP().String() != "192.0.2.1" {
			t.Errorf("IP() = %s, want 192.0.2.1", addr.IP())
		}
	})

	t.Run("panics for invalid input", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		MustParseAddress("bogus")
	})
}

func TestAddressZeroValue(t *testing.T) {
	t.Parallel()

	var zero Address
	if zero.Valid() {
		t.Error("zero value should not be valid")
	}
	if zero.String() != "" {
		t.Errorf("String() = %q, want empty", zero.String())
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	input := "1.1.1.1\r\n\n  8.8.8.8  \n\t\nnot-an-ip\n"
	got := SplitLines(input)

	want := []string{"1.1.1.1", "8.8.8.8", "not-an-ip"}
	if len(got) != len(want) {
		t.Fatalf("SplitLines() returned %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}

	if n := len(SplitLines("")); n != 0 {
		t.Errorf("empty input produced %d entries", n)
	}
}
