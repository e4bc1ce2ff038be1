package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maxgio92/eaudit/pkg/sampler"
)

func TestBuildSumsEntriesResolvingToSameFunction(t *testing.T) {
	result := &sampler.Result{
		Table: map[sampler.AttributionKey]*sampler.AttributionEntry{
			{Core: 0, IP: 0x1000}: {ProcessorEnergy: 1_000_000, WallclockTime: time.Millisecond, Instructions: 100},
			{Core: 0, IP: 0x1010}: {ProcessorEnergy: 1_000_000, WallclockTime: time.Millisecond, Instructions: 100},
		},
		PhysicalCores: 1,
		Elapsed:       time.Second,
	}

	r := Build(result, func(ip uint64) string { return "main.spin" })

	require.Len(t, r.functions, 1)
	require.Equal(t, "main.spin", r.functions[0].name)
	require.InDelta(t, 2.0, r.functions[0].energy, 1e-9)
	require.Equal(t, uint64(200), r.functions[0].instructions)
}

func TestBuildSortsFunctionsByEnergyDescending(t *testing.T) {
	result := &sampler.Result{
		Table: map[sampler.AttributionKey]*sampler.AttributionEntry{
			{Core: 0, IP: 1}: {ProcessorEnergy: 1_000_000},
			{Core: 0, IP: 2}: {ProcessorEnergy: 5_000_000},
		},
		PhysicalCores: 1,
	}

	names := map[uint64]string{1: "low", 2: "high"}
	r := Build(result, func(ip uint64) string { return names[ip] })

	require.Equal(t, "high", r.functions[0].name)
	require.Equal(t, "low", r.functions[1].name)
}

func TestWriteAllProducesTabSeparatedRows(t *testing.T) {
	result := &sampler.Result{
		Table: map[sampler.AttributionKey]*sampler.AttributionEntry{
			{Core: 0, IP: 0x1000}: {ProcessorEnergy: 2_000_000, WallclockTime: time.Millisecond, Instructions: 50},
		},
		PhysicalCores: 1,
		Elapsed:       time.Second,
	}
	r := Build(result, func(ip uint64) string { return "main.spin" })

	var buf strings.Builder
	require.NoError(t, r.WriteAll(&buf))

	out := buf.String()
	require.Contains(t, out, "=== PER-FUNCTION")
	require.Contains(t, out, "=== CORE 0")
	require.Contains(t, out, "=== GLOBAL")
	require.Contains(t, out, "main.spin\t")
}

func TestPercentZeroWholeIsZero(t *testing.T) {
	require.Equal(t, 0.0, percent(5, 0))
}

func TestPercentDeviationZeroReferenceIsZero(t *testing.T) {
	require.Equal(t, 0.0, percentDeviation(5, 0))
}

func TestEmptyTableProducesWellFormedEmptyReport(t *testing.T) {
	result := &sampler.Result{
		Table:         map[sampler.AttributionKey]*sampler.AttributionEntry{},
		PhysicalCores: 1,
		Elapsed:       50 * time.Microsecond,
	}
	r := Build(result, func(uint64) string { return "??" })

	var buf strings.Builder
	require.NoError(t, r.WriteAll(&buf))
	require.Contains(t, buf.String(), "=== GLOBAL")
	require.Empty(t, r.functions)
}
