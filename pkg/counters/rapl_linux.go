//go:build linux

package counters

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/procfs/sysfs"
)

// raplZone is the subset of github.com/prometheus/procfs/sysfs.RaplZone
// this package needs, kept as an interface so tests can substitute a
// fake zone. Modeled on
// sustainable-computing-io-kepler/internal/device/rapl_sysfs_power_meter.go,
// which wraps the same library for the same purpose.
type raplZone interface {
	Name() string
	Energy() (uint64, error) // microjoules
	MaxEnergyRangeMicrojoules() uint64
}

type sysfsRaplZone struct {
	zone sysfs.RaplZone
}

func (z sysfsRaplZone) Name() string { return z.zone.Name }

func (z sysfsRaplZone) Energy() (uint64, error) {
	return z.zone.GetEnergyMicrojoules()
}

func (z sysfsRaplZone) MaxEnergyRangeMicrojoules() uint64 {
	return uint64(z.zone.MaxMicrojoules)
}

// raplSource discovers and reads RAPL energy zones from sysfs.
type raplSource struct {
	zones map[string]raplZone // keyed by lower-cased zone name
}

func newRAPLSource(sysfsMountPath string) (*raplSource, error) {
	fs, err := sysfs.NewFS(sysfsMountPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sysfs for RAPL")
	}

	zones, err := sysfs.GetRaplZones(fs)
	if err != nil {
		return nil, errors.Wrap(err, "discover RAPL zones")
	}

	src := &raplSource{zones: make(map[string]raplZone, len(zones))}
	for _, z := range zones {
		src.zones[strings.ToLower(z.Name)] = sysfsRaplZone{zone: z}
	}

	return src, nil
}

func (s *raplSource) zone(name string) (raplZone, error) {
	z, ok := s.zones[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEvent, "RAPL zone %q not present", name)
	}
	return z, nil
}

// energyCounter adapts a raplZone to counterHandle, computing deltas
// itself (per §4.1's wraparound rule) since the underlying register is
// free-running and not hardware-resettable.
type energyCounter struct {
	name     string
	zone     raplZone
	maxValue uint64
	lastRaw  uint64
	started  bool
}

func newEnergyCounter(name string, z raplZone) *energyCounter {
	return &energyCounter{name: name, zone: z, maxValue: z.MaxEnergyRangeMicrojoules()}
}

// attachToCore is a no-op: RAPL energy zones are global (chip-wide),
// never bound to a single core.
func (c *energyCounter) attachToCore(_ int) error { return nil }

func (c *energyCounter) start() error {
	raw, err := c.zone.Energy()
	if err != nil {
		return errors.Wrapf(err, "read RAPL zone %s", c.name)
	}
	c.lastRaw = raw
	c.started = true
	return nil
}

func (c *energyCounter) stop() (Reading, error) {
	if !c.started {
		return Reading{}, ErrNotStarted
	}
	raw, err := c.zone.Energy()
	if err != nil {
		return Reading{}, errors.Wrapf(err, "read RAPL zone %s", c.name)
	}

	delta := Wraparound(c.lastRaw, raw, c.maxValue)
	c.lastRaw = raw

	return Reading{Name: c.name, Delta: int64(delta), MaxValue: c.maxValue}, nil
}

func (c *energyCounter) close() error { return nil }

// Wraparound computes the delta between two successive raw counter
// reads given the counter's maximum representable value, per §3/§8: a
// decreasing reading means the underlying register wrapped around.
//
// The modulus used for the wrapped case is maxValue+1 (the number of
// distinct representable values), which is what reconciles the
// worked example in §8 scenario 4 (max=2^32-1, previous=4294967000,
// current=1000 => delta=1296): (maxValue+1-previous)+current.
func Wraparound(previous, current, maxValue uint64) uint64 {
	if current >= previous {
		return current - previous
	}
	return (maxValue + 1 - previous) + current
}
