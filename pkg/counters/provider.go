package counters

import (
	"golang.org/x/sys/unix"

	"github.com/pkg/errors"
)

// registry is the closed set of event names the provider recognizes,
// grouped by the underlying component that serves them — the Go
// equivalent of original_source/tracing/papi-helpers.hpp grouping PAPI
// event codes by PAPI_get_event_component.
var registry = map[string]eventSpec{
	"instructions": {kind: KindPMU, perfType: unix.PERF_TYPE_HARDWARE, perfConfig: unix.PERF_COUNT_HW_INSTRUCTIONS},
	"cycles":       {kind: KindPMU, perfType: unix.PERF_TYPE_HARDWARE, perfConfig: unix.PERF_COUNT_HW_CPU_CYCLES},

	"energy:package": {kind: KindEnergy, zoneName: "package-0"},
	"energy:pp0":      {kind: KindEnergy, zoneName: "core"},
	"energy:dram":     {kind: KindEnergy, zoneName: "dram"},
}

// Provider is the Counter Provider of §4.1: it opens named event sets,
// binds them to a CPU, and starts/stops them, presenting one facade
// over the perf_event_open PMU backend and the sysfs RAPL backend.
type Provider struct {
	rapl *raplSource
}

// NewProvider constructs a Provider. sysfsMountPath is normally
// "/sys"; a distinct path is accepted so tests can point at a fixture
// tree instead of the real RAPL hierarchy.
func NewProvider(sysfsMountPath string) (*Provider, error) {
	rapl, err := newRAPLSource(sysfsMountPath)
	if err != nil {
		return nil, errors.Wrap(err, "init RAPL source")
	}
	return &Provider{rapl: rapl}, nil
}

// Open allocates a logical counter set containing the named events,
// preserving their order. PMU events are not bound to hardware until
// AttachToCore; energy events are resolved to a RAPL zone immediately,
// since zones are global and need no CPU binding.
func (p *Provider) Open(eventNames []string) (*CounterSet, error) {
	if len(eventNames) == 0 {
		return nil, errors.Wrap(ErrAllocationFailed, "no event names given")
	}

	set := &CounterSet{
		names:   make([]string, len(eventNames)),
		handles: make([]counterHandle, len(eventNames)),
		core:    -1,
	}
	copy(set.names, eventNames)

	for i, name := range eventNames {
		spec, ok := registry[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownEvent, "event %q", name)
		}

		switch spec.kind {
		case KindPMU:
			set.handles[i] = newPMUCounter(name, spec)
		case KindEnergy:
			zone, err := p.rapl.zone(spec.zoneName)
			if err != nil {
				return nil, err
			}
			set.handles[i] = newEnergyCounter(name, zone)
		default:
			return nil, errors.Wrapf(ErrAllocationFailed, "event %q has unknown kind", name)
		}
	}

	return set, nil
}

// AttachToCore binds set to a specific CPU before Start. Events served
// by a global component (energy) ignore the binding.
func (p *Provider) AttachToCore(set *CounterSet, core int) error {
	for _, h := range set.handles {
		if err := h.attachToCore(core); err != nil {
			return err
		}
	}
	set.core = core
	return nil
}

// Start arms every event in set.
func (p *Provider) Start(set *CounterSet) error {
	for i, h := range set.handles {
		if err := h.start(); err != nil {
			return errors.Wrapf(err, "start event %q", set.names[i])
		}
	}
	set.started = true
	return nil
}

// Stop returns cumulative counts since the most recent Start, in the
// same order as the names given to Open. As in original_source's
// read_rapl and PAPI_stop/PAPI_start usage, each Stop leaves the set
// re-armed so the next Stop yields a fresh delta.
func (p *Provider) Stop(set *CounterSet) ([]Reading, error) {
	if !set.started {
		return nil, ErrNotStarted
	}

	out := make([]Reading, len(set.handles))
	for i, h := range set.handles {
		r, err := h.stop()
		if err != nil {
			return nil, errors.Wrapf(err, "stop event %q", set.names[i])
		}
		out[i] = r
	}

	return out, nil
}

// Close releases every handle held by set.
func (p *Provider) Close(set *CounterSet) error {
	var firstErr error
	for _, h := range set.handles {
		if err := h.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
