// Package report implements the Report Writer (§4.7): it turns a
// finished Attribution Table into the per-function and per-thread TSV
// blocks plus the global aggregate line.
package report

import "time"

// microjoulesToJoules converts this profiler's native energy unit
// (RAPL zone readings, in microjoules per github.com/prometheus/procfs/sysfs)
// to joules, done only at report time per §4.5's numeric semantics.
const microjoulesToJoules = 1e-6

// coreContribution is one core's slice of a function's totals.
type coreContribution struct {
	energy       float64 // joules
	time         time.Duration
	instructions uint64
}

func (c coreContribution) efficiency() float64 {
	if c.energy == 0 {
		return 0
	}
	return float64(c.instructions) / c.energy
}

// functionReport aggregates every (core, ip) entry that resolved to
// the same function name (§4.5: "many instruction pointers may
// resolve to the same function; their entries sum").
type functionReport struct {
	name         string
	energy       float64 // joules, sum of the three domains
	time         time.Duration
	instructions uint64
	perCore      map[int]*coreContribution
}

func (f *functionReport) efficiency() float64 {
	if f.energy == 0 {
		return 0
	}
	return float64(f.instructions) / f.energy
}

// Report is the finished, laid-out profile ready to be written.
type Report struct {
	functions []*functionReport

	globalEnergy       float64
	globalTime         time.Duration
	globalInstructions uint64
	elapsed            time.Duration

	physicalCores int
}
