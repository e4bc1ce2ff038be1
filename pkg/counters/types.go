// Package counters wraps the hardware-counter library (§4.1) that the
// rest of the profiler treats as an opaque named-event provider: open a
// set of named events, optionally bind it to a CPU, start it, and read
// deltas from it. Two real backends are grouped behind one facade the
// way PAPI groups events by component in the original eaudit tooling:
// per-core instruction/cycle counters via perf_event_open, and global
// RAPL energy zones via sysfs.
package counters

// Kind identifies which underlying component serves a named event.
type Kind int

const (
	// KindPMU is served by the CPU performance-monitoring unit via
	// perf_event_open(2); these counters are genuinely resettable in
	// hardware, so Stop+Start yields a true delta with no wraparound
	// bookkeeping needed.
	KindPMU Kind = iota

	// KindEnergy is served by a RAPL energy zone read from sysfs; the
	// underlying register free-runs and wraps at a known maximum, so
	// the provider tracks the previous raw reading itself.
	KindEnergy
)

type eventSpec struct {
	kind Kind

	// PMU fields.
	perfType   uint32
	perfConfig uint64

	// Energy fields: the sysfs RAPL zone name this event name maps to.
	zoneName string
}

// Reading is one named counter's value from a Stop/ReadDelta call.
type Reading struct {
	Name  string
	Delta int64

	// MaxValue is the per-counter maximum the provider uses for
	// wraparound arithmetic; zero means the counter is not expected to
	// wrap (a 64-bit PMU counter).
	MaxValue uint64
}

// counterHandle is the per-event runtime state behind one entry of a
// CounterSet. Its Start/Stop vocabulary matches §4.1 exactly; wraparound
// handling is internal to whichever implementation needs it.
type counterHandle interface {
	start() error
	stop() (Reading, error)
	attachToCore(core int) error
	close() error
}

// CounterSet is a logical, ordered collection of named events, as
// returned by Provider.Open. The order of names is fixed for the
// lifetime of the set (§3 invariant) and Stop/ReadDelta report values
// in that same order.
type CounterSet struct {
	names   []string
	handles []counterHandle
	core    int // -1 until AttachToCore is called; -1 also means "global, unattached"
	started bool
}

// Names returns the ordered event names backing this set.
func (s *CounterSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
