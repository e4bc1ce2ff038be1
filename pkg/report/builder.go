package report

import (
	"sort"
	"time"

	"github.com/maxgio92/eaudit/pkg/sampler"
)

// Build folds a finished Attribution Table into a Report, resolving
// each instruction pointer to a function name with resolve.
func Build(result *sampler.Result, resolve func(ip uint64) string) *Report {
	byName := make(map[string]*functionReport)

	var globalEnergy float64
	var globalTime time.Duration
	var globalInstructions uint64

	for key, entry := range result.Table {
		name := resolve(key.IP)

		fr, ok := byName[name]
		if !ok {
			fr = &functionReport{name: name, perCore: make(map[int]*coreContribution)}
			byName[name] = fr
		}

		energy := (entry.ProcessorEnergy + entry.UncoreEnergy + entry.DRAMEnergy) * microjoulesToJoules

		fr.energy += energy
		fr.time += entry.WallclockTime
		fr.instructions += entry.Instructions

		cc, ok := fr.perCore[key.Core]
		if !ok {
			cc = &coreContribution{}
			fr.perCore[key.Core] = cc
		}
		cc.energy += energy
		cc.time += entry.WallclockTime
		cc.instructions += entry.Instructions

		globalEnergy += energy
		globalTime += entry.WallclockTime
		globalInstructions += entry.Instructions
	}

	functions := make([]*functionReport, 0, len(byName))
	for _, fr := range byName {
		functions = append(functions, fr)
	}
	sort.Slice(functions, func(i, j int) bool {
		return functions[i].energy > functions[j].energy
	})

	return &Report{
		functions:          functions,
		globalEnergy:       globalEnergy,
		globalTime:         globalTime,
		globalInstructions: globalInstructions,
		elapsed:            result.Elapsed,
		physicalCores:      result.PhysicalCores,
	}
}
