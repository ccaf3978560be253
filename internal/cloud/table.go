package cloud

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/nao1215/iprecon/internal/model"
	"go4.org/netipx"
)

// Provider names.
const (
	ProviderAWS     = "AWS"
	ProviderAzure   = "Azure"
	ProviderGoogle  = "Google Cloud"
	ProviderAlibaba = "Alibaba Cloud"
	ProviderTencent = "Tencent Cloud"
	ProviderHuawei  = "Huawei Cloud"
	ProviderTianyi  = "Tianyi Cloud"
)

// Priority is the system-wide provider query order.
// It is not configurable per request.
var Priority = []string{
	ProviderAWS,
	ProviderAzure,
	ProviderGoogle,
	ProviderAlibaba,
	ProviderTencent,
	ProviderHuawei,
	ProviderTianyi,
}

// Range is a CIDR prefix owned by exactly one provider.
type Range struct {
	Provider string
	Prefix   netip.Prefix
}

// ParseRange parses a CIDR string for the given provider.
// The prefix is masked so "10.1.2.3/8" becomes "10.0.0.0/8".
func ParseRange(provider, cidr string) (Range, error) {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return Range{}, fmt.Errorf("invalid CIDR %q for %s: %w", cidr, provider, err)
	}
	return Range{Provider: provider, Prefix: p.Masked()}, nil
}

// Table maps providers to their published address sets.
// It is immutable after NewTable returns.
type Table struct {
	order  []string
	sets   map[string]*netipx.IPSet
	counts map[string]int
}

// NewTable builds a Table that queries providers in the given order.
// Ranges whose provider is not in order are ignored; providers in order
// without any range simply never match.
func NewTable(order []string, ranges []Range) (*Table, error) {
	builders := make(map[string]*netipx.IPSetBuilder, len(order))
	counts := make(map[string]int, len(order))
	for _, name := range order {
		builders[name] = &netipx.IPSetBuilder{}
		counts[name] = 0
	}

	for _, r := range ranges {
		b, ok := builders[r.Provider]
		if !ok || !r.Prefix.IsValid() {
			continue
		}
		b.AddPrefix(r.Prefix)
		counts[r.Provider]++
	}

	sets := make(map[string]*netipx.IPSet, len(builders))
	for name, b := range builders {
		set, err := b.IPSet()
		if err != nil {
			return nil, fmt.Errorf("failed to build range set for %s: %w", name, err)
		}
		sets[name] = set
	}

	return &Table{
		order:  slices.Clone(order),
		sets:   sets,
		counts: counts,
	}, nil
}

// NewDefaultTable builds a Table using the system Priority order.
func NewDefaultTable(ranges []Range) (*Table, error) {
	return NewTable(Priority, ranges)
}

// Providers returns the provider query order.
func (t *Table) Providers() []string {
	return slices.Clone(t.order)
}

// RangeCount returns how many ranges were loaded for provider.
func (t *Table) RangeCount(provider string) int {
	return t.counts[provider]
}

// Contains reports whether provider owns ip.
func (t *Table) Contains(provider string, ip netip.Addr) bool {
	set, ok := t.sets[provider]
	if !ok || !ip.IsValid() {
		return false
	}
	return set.Contains(ip.Unmap())
}

// Classify returns the first provider, in table order, whose ranges contain
// the address. Invalid addresses never match.
func (t *Table) Classify(addr model.Address) (string, bool) {
	if t == nil || !addr.Valid() {
		return "", false
	}
	for _, name := range t.order {
		if t.Contains(name, addr.IP()) {
			return name, true
		}
	}
	return "", false
}
