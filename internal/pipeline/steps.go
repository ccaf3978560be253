package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/iprecon/internal/model"
)

// Locator resolves an address to a "city, country" string.
// *geo.Resolver satisfies it.
type Locator interface {
	Resolve(ctx context.Context, addr model.Address) (string, error)
}

// LivenessChecker reports whether an address is reachable.
// *probe.LivenessProbe satisfies it.
type LivenessChecker interface {
	IsAlive(ctx context.Context, addr model.Address) bool
}

// PortChecker lists the open ports of an address.
// *probe.PortScanner satisfies it.
type PortChecker interface {
	Scan(ctx context.Context, addr model.Address) []uint16
}

// Classifier attributes an address to a cloud provider.
// *cloud.Table satisfies it.
type Classifier interface {
	Classify(addr model.Address) (string, bool)
}

// GeolocationStep resolves the approximate location.
type GeolocationStep struct {
	locator Locator
}

// NewGeolocationStep creates a geolocation step.
func NewGeolocationStep(locator Locator) *GeolocationStep {
	return &GeolocationStep{locator: locator}
}

// Name returns the step name.
func (s *GeolocationStep) Name() string {
	return "geolocation"
}

// Do executes the geolocation step.
func (s *GeolocationStep) Do(ctx context.Context, draft *Draft) error {
	location, err := s.locator.Resolve(ctx, draft.Address())
	if err != nil {
		return err
	}
	draft.SetLocation(location)
	return nil
}

// LivenessStep checks whether the host answers on a web port.
type LivenessStep struct {
	checker LivenessChecker
}

// NewLivenessStep creates a liveness step.
func NewLivenessStep(checker LivenessChecker) *LivenessStep {
	return &LivenessStep{checker: checker}
}

// Name returns the step name.
func (s *LivenessStep) Name() string {
	return "liveness"
}

// Do executes the liveness step.
func (s *LivenessStep) Do(ctx context.Context, draft *Draft) error {
	draft.SetActive(s.checker.IsAlive(ctx, draft.Address()))
	return nil
}

// PortScanStep scans the common ports of an active host.
// It must run after LivenessStep in the same lane.
type PortScanStep struct {
	scanner PortChecker
	logger  *slog.Logger
}

// NewPortScanStep creates a port scan step.
func NewPortScanStep(scanner PortChecker, logger *slog.Logger) *PortScanStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortScanStep{scanner: scanner, logger: logger}
}

// Name returns the step name.
func (s *PortScanStep) Name() string {
	return "port_scan"
}

// Do executes the port scan step.
func (s *PortScanStep) Do(ctx context.Context, draft *Draft) error {
	if !draft.Active() {
		s.logger.Debug("skipping port scan for inactive host", "ip", draft.Address().String())
		return nil
	}
	draft.SetOpenPorts(s.scanner.Scan(ctx, draft.Address()))
	return nil
}

// CloudStep attributes the address to a cloud provider.
type CloudStep struct {
	classifier Classifier
}

// NewCloudStep creates a cloud classification step.
func NewCloudStep(classifier Classifier) *CloudStep {
	return &CloudStep{classifier: classifier}
}

// Name returns the step name.
func (s *CloudStep) Name() string {
	return "cloud"
}

// Do executes the cloud classification step.
func (s *CloudStep) Do(_ context.Context, draft *Draft) error {
	if s.classifier == nil {
		return nil
	}
	if provider, ok := s.classifier.Classify(draft.Address()); ok {
		draft.SetCloudProvider(provider)
	}
	return nil
}

// Components are the collaborators of the standard pipeline.
type Components struct {
	Locator    Locator
	Liveness   LivenessChecker
	Ports      PortChecker
	Classifier Classifier
}

// NewReconnaissance builds the standard pipeline: geolocation in one lane,
// and liveness, port scan and cloud classification in a second lane.
func NewReconnaissance(c Components, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddLane(NewGeolocationStep(c.Locator))
	p.AddLane(
		NewLivenessStep(c.Liveness),
		NewPortScanStep(c.Ports, p.logger),
		NewCloudStep(c.Classifier),
	)
	return p
}
