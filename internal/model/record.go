package model

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Placeholders used when a record is rendered to delimited text.
const (
	// UnknownLocation is written when geolocation could not be resolved.
	UnknownLocation = "Unknown"
	// NotOnCloud is written when no cloud provider owns the address.
	NotOnCloud = "Not on cloud"
	// PortSeparator joins open ports in a single field.
	PortSeparator = ";"
)

// Record is the reconnaissance result for a single input address.
// A Record is created once by the pipeline and never modified afterwards;
// consumers (aggregation, report writers, the archive) only read it.
type Record struct {
	// IP is the address exactly as supplied in the batch (trimmed).
	IP string `json:"ip"`

	// Location is the normalized "city, country" string.
	// Empty means every geolocation provider failed; JSON renders it as null.
	Location string `json:"location"`

	// Active is true if the address accepted a TCP connection on 80 or 443.
	Active bool `json:"is_active"`

	// OpenPorts lists the common ports that accepted a connection.
	// Always ascending and free of duplicates; empty when not active.
	OpenPorts []uint16 `json:"open_ports"`

	// CloudProvider is the first provider in priority order whose published
	// ranges contain the address. Empty means not on a known cloud;
	// JSON renders it as null.
	CloudProvider string `json:"cloud_provider"`

	// Errors holds step-level diagnostics collected while building the record.
	// They never affect the other fields.
	Errors []string `json:"errors,omitempty"`
}

// recordJSON is the wire form of Record. Every field is always present.
type recordJSON struct {
	IP            string   `json:"ip"`
	Location      *string  `json:"location"`
	Active        bool     `json:"is_active"`
	OpenPorts     []uint16 `json:"open_ports"`
	CloudProvider *string  `json:"cloud_provider"`
	Errors        []string `json:"errors,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	ports := r.OpenPorts
	if ports == nil {
		ports = []uint16{}
	}
	return json.Marshal(recordJSON{
		IP:            r.IP,
		Location:      optional(r.Location),
		Active:        r.Active,
		OpenPorts:     ports,
		CloudProvider: optional(r.CloudProvider),
		Errors:        r.Errors,
	})
}

// UnmarshalJSON implements json.Unmarshaler. null becomes the empty string.
func (r *Record) UnmarshalJSON(data []byte) error {
	var v recordJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Record{
		IP:        v.IP,
		Active:    v.Active,
		OpenPorts: v.OpenPorts,
		Errors:    v.Errors,
	}
	if v.Location != nil {
		r.Location = *v.Location
	}
	if v.CloudProvider != nil {
		r.CloudProvider = *v.CloudProvider
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// HasLocation reports whether geolocation succeeded for this record.
func (r Record) HasLocation() bool {
	return r.Location != ""
}

// OnCloud reports whether the address was attributed to a cloud provider.
func (r Record) OnCloud() bool {
	return r.CloudProvider != ""
}

// LocationOrUnknown returns the location or the UnknownLocation placeholder.
func (r Record) LocationOrUnknown() string {
	if r.Location == "" {
		return UnknownLocation
	}
	return r.Location
}

// CloudProviderOrNone returns the provider name or the NotOnCloud placeholder.
func (r Record) CloudProviderOrNone() string {
	if r.CloudProvider == "" {
		return NotOnCloud
	}
	return r.CloudProvider
}

// JoinPorts renders OpenPorts as a semicolon-separated list.
func (r Record) JoinPorts() string {
	parts := make([]string, len(r.OpenPorts))
	for i, p := range r.OpenPorts {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, PortSeparator)
}

// NormalizePorts returns a sorted copy of ports with duplicates removed.
// The input slice is not modified.
func NormalizePorts(ports []uint16) []uint16 {
	out := slices.Clone(ports)
	if out == nil {
		return []uint16{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ParsePorts parses a semicolon-separated port list as written by JoinPorts.
// Empty input yields an empty slice.
func ParsePorts(s string) ([]uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []uint16{}, nil
	}

	fields := strings.Split(s, PortSeparator)
	ports := make([]uint16, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(strings.TrimSpace(f), 10, 16)
		if err != nil {
			return nil, err
		}
		ports = append(ports, uint16(n))
	}
	return NormalizePorts(ports), nil
}
