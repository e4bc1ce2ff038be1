// Package sampler implements the Sampler / Attribution Engine
// (§4.5): the main control loop orchestrating the Sampling Clock, the
// Tracer, the Counter Provider and the Energy Model Evaluator on each
// tick, folding deltas into the Attribution Table.
package sampler

import "time"

// initialAssignments is the per-thread core-lookup budget before the
// cached core id is trusted without re-reading kernel state (§3).
const initialAssignments = 5

// AttributionKey identifies one bucket of the profile.
type AttributionKey struct {
	Core int
	IP   uint64
}

// AttributionEntry accumulates monotonically non-decreasing fields
// for one (core, instruction pointer) key.
type AttributionEntry struct {
	ProcessorEnergy float64
	UncoreEnergy    float64
	DRAMEnergy      float64
	WallclockTime   time.Duration
	Instructions    uint64
}

// trackedThread is the Sampler's own Tracked Thread entry (§3),
// distinct from the Tracer's internal ptrace bookkeeping.
type trackedThread struct {
	tid                  int
	lastCore             int
	assignmentsRemaining int
}

// Result is what Run returns once the target has fully exited.
type Result struct {
	Table         map[AttributionKey]*AttributionEntry
	Elapsed       time.Duration
	PhysicalCores int
}
