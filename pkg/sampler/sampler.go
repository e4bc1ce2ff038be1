package sampler

import (
	"time"

	"github.com/pkg/errors"

	"github.com/maxgio92/eaudit/pkg/clock"
	"github.com/maxgio92/eaudit/pkg/counters"
	"github.com/maxgio92/eaudit/pkg/model"
	"github.com/maxgio92/eaudit/pkg/tracer"
)

// Sampler is the main control loop (§4.5). It owns the Attribution
// Table and the Tracked-Thread set exclusively; the Tracer, Clock and
// Counter Provider are collaborators it drives on each tick.
type Sampler struct {
	*SamplerOptions

	tracer *tracer.Tracer
	clock  *clock.Clock

	threads map[int]*trackedThread
	table   map[AttributionKey]*AttributionEntry

	perCoreEvents []string
	perCoreSets   map[int]*counters.CounterSet
	globalSet     *counters.CounterSet

	started time.Time
}

const (
	globalEventPackage = "energy:package"
	globalEventPP0     = "energy:pp0"
	globalEventDRAM    = "energy:dram"
)

// NewSampler validates configuration and wires the Clock and Tracer
// the Sampler owns internally.
func NewSampler(opts ...SamplerOpt) (*Sampler, error) {
	s := &Sampler{
		SamplerOptions: &SamplerOptions{},
		threads:        make(map[int]*trackedThread),
		table:          make(map[AttributionKey]*AttributionEntry),
		perCoreSets:    make(map[int]*counters.CounterSet),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.provider == nil {
		return nil, ErrNoProvider
	}
	if s.processorModel == nil || s.uncoreModel == nil || s.dramModel == nil {
		return nil, ErrNoModel
	}

	c, err := clock.NewClock(s.period)
	if err != nil {
		return nil, err
	}
	s.clock = c
	s.tracer = tracer.NewTracer(tracer.WithClock(c), tracer.WithLogger(s.logger))

	s.perCoreEvents = unionMetricNames(s.processorModel, s.uncoreModel, s.dramModel)

	return s, nil
}

// Attach consumes the target's initial exec-stop, opens the global
// counter set and starts the clock.
func (s *Sampler) Attach(rootPid int) error {
	if err := s.tracer.Attach(rootPid); err != nil {
		return err
	}

	global, err := s.provider.Open([]string{globalEventPackage, globalEventPP0, globalEventDRAM})
	if err != nil {
		return err
	}
	if err := s.provider.Start(global); err != nil {
		return err
	}
	s.globalSet = global

	if err := s.clock.Start(); err != nil {
		return err
	}

	s.started = time.Now()
	s.threads[rootPid] = &trackedThread{tid: rootPid, assignmentsRemaining: initialAssignments}

	return s.tracer.Resume(rootPid, 0)
}

// Run drives the event loop until the target's last thread exits.
func (s *Sampler) Run() (*Result, error) {
	for {
		ev, err := s.tracer.WaitEvent()
		if err != nil {
			return nil, err
		}

		switch ev.Kind {
		case tracer.ThreadCreated:
			s.threads[ev.Child] = &trackedThread{tid: ev.Child, assignmentsRemaining: initialAssignments}
			if err := s.tracer.Resume(ev.Parent, 0); err != nil {
				return nil, err
			}
			if err := s.tracer.Resume(ev.Child, 0); err != nil {
				return nil, err
			}

		case tracer.ThreadExiting:
			delete(s.threads, ev.Tid)
			if len(s.threads) == 0 {
				return s.finalize(), nil
			}

		case tracer.Signal:
			if err := s.tracer.Resume(ev.Tid, ev.Sig); err != nil {
				return nil, err
			}

		case tracer.TimerExpired:
			if err := s.doSample(); err != nil {
				return nil, err
			}
		}
	}
}

// doSample implements §4.5's do_sample in its eight numbered steps.
func (s *Sampler) doSample() error {
	if err := s.clock.Suspend(); err != nil {
		return err
	}

	if err := s.tracer.StopAll(); err != nil {
		return err
	}

	cores := make(map[int]struct{})
	for _, t := range s.threads {
		c, err := s.coreOf(t)
		if err != nil {
			return errors.Wrap(ErrCounterReadFail, err.Error())
		}
		cores[c] = struct{}{}
	}

	perCoreReadings := make(map[int][]counters.Reading, len(cores))
	for core := range cores {
		readings, err := s.readCore(core)
		if err != nil {
			return errors.Wrap(ErrCounterReadFail, err.Error())
		}
		perCoreReadings[core] = readings
	}

	globalReadings, err := s.provider.Stop(s.globalSet)
	if err != nil {
		return errors.Wrap(ErrCounterReadFail, err.Error())
	}
	if err := s.provider.Start(s.globalSet); err != nil {
		return err
	}

	packageDelta := lookupReading(globalReadings, globalEventPackage)
	pp0Delta := lookupReading(globalReadings, globalEventPP0)
	dramDelta := lookupReading(globalReadings, globalEventDRAM)
	uncoreDelta := packageDelta - pp0Delta
	if uncoreDelta < 0 {
		uncoreDelta = 0
	}

	orderedCores := make([]int, 0, len(cores))
	for core := range cores {
		orderedCores = append(orderedCores, core)
	}

	processorEval := make([]float64, len(orderedCores))
	uncoreEval := make([]float64, len(orderedCores))
	dramEval := make([]float64, len(orderedCores))
	for i, core := range orderedCores {
		readings := perCoreReadings[core]
		processorEval[i] = s.processorModel.Evaluate(extractInputs(s.processorModel.MetricNames, readings))
		uncoreEval[i] = s.uncoreModel.Evaluate(extractInputs(s.uncoreModel.MetricNames, readings))
		dramEval[i] = s.dramModel.Evaluate(extractInputs(s.dramModel.MetricNames, readings))
	}

	processorShares := model.Split(pp0Delta, processorEval)
	uncoreShares := model.Split(uncoreDelta, uncoreEval)
	dramShares := model.Split(dramDelta, dramEval)

	shareByCore := make(map[int]shares, len(orderedCores))
	for i, core := range orderedCores {
		shareByCore[core] = shares{
			processor:    processorShares[i],
			uncore:       uncoreShares[i],
			dram:         dramShares[i],
			instructions: lookupReading(perCoreReadings[core], "instructions"),
		}
	}

	for _, t := range s.threads {
		ip, err := s.tracer.ReadIP(t.tid)
		if err != nil {
			return err
		}
		applyShare(s.table, s.physicalCores, t.lastCore, ip, shareByCore[t.lastCore], s.period)
	}

	if err := s.tracer.ResumeAll(); err != nil {
		return err
	}

	return s.clock.Rearm()
}

type shares struct {
	processor    float64
	uncore       float64
	dram         float64
	instructions float64
}

// applyShare folds one attributing thread's shares into table, per
// §4.5 step 6. A thread observed on a core id at or beyond
// physicalCores is a secondary hardware thread and is discarded
// without error (§8 "wild core" boundary behavior).
func applyShare(table map[AttributionKey]*AttributionEntry, physicalCores, core int, ip uint64, sh shares, period time.Duration) {
	if core >= physicalCores {
		return
	}

	key := AttributionKey{Core: core, IP: ip}
	entry, ok := table[key]
	if !ok {
		entry = &AttributionEntry{}
		table[key] = entry
	}
	entry.ProcessorEnergy += sh.processor
	entry.UncoreEnergy += sh.uncore
	entry.DRAMEnergy += sh.dram
	entry.WallclockTime += period
	entry.Instructions += uint64(sh.instructions)
}

func (s *Sampler) coreOf(t *trackedThread) (int, error) {
	if t.assignmentsRemaining <= 0 {
		return t.lastCore, nil
	}
	core, err := s.tracer.CoreOf(t.tid)
	if err != nil {
		return 0, err
	}
	t.lastCore = core
	t.assignmentsRemaining--
	return core, nil
}

func (s *Sampler) readCore(core int) ([]counters.Reading, error) {
	set, ok := s.perCoreSets[core]
	if !ok {
		opened, err := s.provider.Open(s.perCoreEvents)
		if err != nil {
			return nil, err
		}
		if err := s.provider.AttachToCore(opened, core); err != nil {
			return nil, err
		}
		if err := s.provider.Start(opened); err != nil {
			return nil, err
		}
		s.perCoreSets[core] = opened

		zero := make([]counters.Reading, len(s.perCoreEvents))
		for i, name := range s.perCoreEvents {
			zero[i] = counters.Reading{Name: name}
		}
		return zero, nil
	}

	readings, err := s.provider.Stop(set)
	if err != nil {
		return nil, err
	}
	if err := s.provider.Start(set); err != nil {
		return nil, err
	}
	return readings, nil
}

func (s *Sampler) finalize() *Result {
	s.clock.Stop()

	return &Result{
		Table:         s.table,
		Elapsed:       time.Since(s.started),
		PhysicalCores: s.physicalCores,
	}
}

func lookupReading(readings []counters.Reading, name string) float64 {
	for _, r := range readings {
		if r.Name == name {
			return float64(r.Delta)
		}
	}
	return 0
}

func extractInputs(metricNames []string, readings []counters.Reading) []float64 {
	out := make([]float64, len(metricNames))
	for i, name := range metricNames {
		out[i] = lookupReading(readings, name)
	}
	return out
}

func unionMetricNames(models ...*model.Model) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range models {
		for _, name := range m.MetricNames {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

