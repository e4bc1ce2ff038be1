package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// WriteFunctionBlock writes the per-function block, sorted by total
// energy descending: function name, total energy, total time,
// efficiency, then per-core tuples of (energy, time, efficiency,
// % of function energy, % of function time, % efficiency deviation).
func (r *Report) WriteFunctionBlock(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "=== PER-FUNCTION"); err != nil {
		return errors.Wrap(ErrWriteFailed, err.Error())
	}

	for _, fr := range r.functions {
		row := []string{
			fr.name,
			formatFloat(fr.energy),
			formatDuration(fr.time),
			formatFloat(fr.efficiency()),
		}

		for core := 0; core < r.physicalCores; core++ {
			cc, ok := fr.perCore[core]
			if !ok {
				row = append(row, "0", "0", "0", "0", "0", "0")
				continue
			}

			pctEnergy := percent(cc.energy, fr.energy)
			pctTime := percent(float64(cc.time), float64(fr.time))
			effDeviation := percentDeviation(cc.efficiency(), fr.efficiency())

			row = append(row,
				formatFloat(cc.energy),
				formatDuration(cc.time),
				formatFloat(cc.efficiency()),
				formatFloat(pctEnergy),
				formatFloat(pctTime),
				formatFloat(effDeviation),
			)
		}

		if err := writeTSVRow(w, row); err != nil {
			return err
		}
	}

	return nil
}

// WriteThreadBlock writes the per-core block: each core's functions
// sorted by per-core energy descending, with shares relative to the
// core and to the global totals.
func (r *Report) WriteThreadBlock(w io.Writer) error {
	for core := 0; core < r.physicalCores; core++ {
		if _, err := fmt.Fprintf(w, "=== CORE %d\n", core); err != nil {
			return errors.Wrap(ErrWriteFailed, err.Error())
		}

		type row struct {
			name string
			cc   *coreContribution
		}
		var rows []row
		var coreEnergy float64
		for _, fr := range r.functions {
			cc, ok := fr.perCore[core]
			if !ok {
				continue
			}
			rows = append(rows, row{name: fr.name, cc: cc})
			coreEnergy += cc.energy
		}

		sort.SliceStable(rows, func(a, b int) bool {
			return rows[a].cc.energy > rows[b].cc.energy
		})

		for _, rr := range rows {
			pctOfCore := percent(rr.cc.energy, coreEnergy)
			pctOfGlobal := percent(rr.cc.energy, r.globalEnergy)

			if err := writeTSVRow(w, []string{
				rr.name,
				formatFloat(rr.cc.energy),
				formatDuration(rr.cc.time),
				formatFloat(rr.cc.efficiency()),
				formatFloat(pctOfCore),
				formatFloat(pctOfGlobal),
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

// WriteGlobal writes the single aggregate line: total energy (three
// domains already summed), total attributed time, efficiency, and
// wall-clock elapsed time.
func (r *Report) WriteGlobal(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "=== GLOBAL"); err != nil {
		return errors.Wrap(ErrWriteFailed, err.Error())
	}

	globalEfficiency := float64(0)
	if r.globalEnergy != 0 {
		globalEfficiency = float64(r.globalInstructions) / r.globalEnergy
	}

	return writeTSVRow(w, []string{
		formatFloat(r.globalEnergy),
		formatDuration(r.globalTime),
		formatFloat(globalEfficiency),
		formatDuration(r.elapsed),
	})
}

// WriteAll writes the per-function block, the per-thread block, and
// the global line, in that order, matching the single-TSV-file
// persisted-state contract.
func (r *Report) WriteAll(w io.Writer) error {
	if err := r.WriteFunctionBlock(w); err != nil {
		return err
	}
	if err := r.WriteThreadBlock(w); err != nil {
		return err
	}
	return r.WriteGlobal(w)
}

func writeTSVRow(w io.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := io.WriteString(w, "\t"); err != nil {
				return errors.Wrap(ErrWriteFailed, err.Error())
			}
		}
		if _, err := io.WriteString(w, f); err != nil {
			return errors.Wrap(ErrWriteFailed, err.Error())
		}
	}
	_, err := io.WriteString(w, "\n")
	if err != nil {
		return errors.Wrap(ErrWriteFailed, err.Error())
	}
	return nil
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * part / whole
}

func percentDeviation(value, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	return 100 * (value - reference) / reference
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.6f", d.Seconds())
}
