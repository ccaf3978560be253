package model

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

func TestRecordPlaceholders(t *testing.T) {
	t.Parallel()

	t.Run("empty record uses placeholders", func(t *testing.T) {
		t.Parallel()

		r := Record{IP: "192.0.2.1"}
		if r.HasLocation() {
			t.Error("expected no location")
		}
		if r.LocationOrUnknown() != UnknownLocation {
			t.Errorf("LocationOrUnknown() = %q", r.LocationOrUnknown())
		}
		if r.OnCloud() {
			t.Error("expected not on cloud")
		}
		if r.CloudProviderOrNone() != NotOnCloud {
			t.Errorf("CloudProviderOrNone() = %q", r.CloudProviderOrNone())
		}
		if r.JoinPorts() != "" {
			t.Errorf("JoinPorts() = %q, want empty", r.JoinPorts())
		}
	})

	t.Run("populated record returns values", func(t *testing.T) {
		t.Parallel()

		r := Record{
			IP:            "52.95.110.1",
			Location:      "Seattle, US",
			Active:        true,
			OpenPorts:     []uint16{22, 80, 443},
			CloudProvider: "AWS",
		}
		if r.LocationOrUnknown() != "Seattle, US" {
			t.Errorf("LocationOrUnknown() = %q", r.LocationOrUnknown())
		}
		if r.CloudProviderOrNone() != "AWS" {
			t.Errorf("CloudProviderOrNone() = %q", r.CloudProviderOrNone())
		}
		if r.JoinPorts() != "22;80;443" {
			t.Errorf("JoinPorts() = %q", r.JoinPorts())
		}
	})
}

func TestNormalizePorts(t *testing.T) {
	t.Parallel()

	in := []uint16{443, 80, 443, 22}
	got := NormalizePorts(in)

	if !slices.Equal(got, []uint16{22, 80, 443}) {
		t.Errorf("NormalizePorts() = %v", got)
	}
	if !slices.Equal(in, []uint16{443, 80, 443, 22}) {
		t.Errorf("input was modified: %v", in)
	}
	if got := NormalizePorts(nil); got == nil || len(got) != 0 {
		t.Errorf("NormalizePorts(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestParsePorts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []uint16
		wantErr bool
	}{
		{name: "empty", input: "", want: []uint16{}},
		{name: "single", input: "443", want: []uint16{443}},
		{name: "unsorted with spaces", input: "8080; 22;80", want: []uint16{22, 80, 8080}},
		{name: "not a number", input: "22;ssh", wantErr: true},
		{name: "out of range", input: "70000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePorts(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParsePorts(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRecordJSON(t *testing.T) {
	t.Parallel()

	t.Run("missing location and provider are null", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(Record{IP: "192.0.2.1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := string(data)
		want := `{"ip":"192.0.2.1","location":null,"is_active":false,"open_ports":[],"cloud_provider":null}`
		if got != want {
			t.Errorf("Marshal() = %s, want %s", got, want)
		}
	})

	t.Run("populated fields are strings", func(t *testing.T) {
		t.Parallel()

		r := Record{
			IP:            "52.95.110.1",
			Location:      "Seattle, US",
			Active:        true,
			OpenPorts:     []uint16{80, 443},
			CloudProvider: "AWS",
			Errors:        []string{"port scan: timeout"},
		}
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{`"location":"Seattle, US"`, `"cloud_provider":"AWS"`, `"open_ports":[80,443]`, `"errors":["port scan: timeout"]`} {
			if !strings.Contains(string(data), want) {
				t.Errorf("expected %s in %s", want, data)
			}
		}

		var back Record
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if back.Location != r.Location || back.CloudProvider != r.CloudProvider || !slices.Equal(back.OpenPorts, r.OpenPorts) {
			t.Errorf("Unmarshal() = %+v, want %+v", back, r)
		}
	})

	t.Run("null decodes to empty", func(t *testing.T) {
		t.Parallel()

		var r Record
		if err := json.Unmarshal([]byte(`{"ip":"192.0.2.1","location":null,"cloud_provider":null}`), &r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.HasLocation() || r.OnCloud() {
			t.Errorf("expected empty location and provider, got %+v", r)
		}
	})
}
