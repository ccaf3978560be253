package pipeline

import (
	"sync"

	"github.com/nao1215/iprecon/internal/model"
)

// Draft accumulates the results of the steps for one address.
// Lanes write to it concurrently, so every accessor is synchronized.
type Draft struct {
	mu       sync.Mutex
	addr     model.Address
	location string
	active   bool
	ports    []uint16
	provider string
	errors   []string
}

// NewDraft creates an empty Draft for addr.
func NewDraft(addr model.Address) *Draft {
	return &Draft{addr: addr}
}

// Address returns the address being processed.
func (d *Draft) Address() model.Address {
	return d.addr
}

// SetLocation records the resolved location.
func (d *Draft) SetLocation(location string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.location = location
}

// SetActive records the liveness result.
func (d *Draft) SetActive(active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = active
}

// Active reports the liveness result recorded so far.
func (d *Draft) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// SetOpenPorts records the open ports.
func (d *Draft) SetOpenPorts(ports []uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ports = model.NormalizePorts(ports)
}

// SetCloudProvider records the cloud attribution.
func (d *Draft) SetCloudProvider(provider string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.provider = provider
}

// AddError records a step diagnostic.
func (d *Draft) AddError(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, msg)
}

// Record freezes the draft into a Record. Ports are only reported for
// active hosts.
func (d *Draft) Record() model.Record {
	d.mu.Lock()
	defer d.mu.Unlock()

	ports := []uint16{}
	if d.active {
		ports = model.NormalizePorts(d.ports)
	}

	var errs []string
	if len(d.errors) > 0 {
		errs = append(errs, d.errors...)
	}

	return model.Record{
		IP:            d.addr.String(),
		Location:      d.location,
		Active:        d.active,
		OpenPorts:     ports,
		CloudProvider: d.provider,
		Errors:        errs,
	}
}
