// Package symbolize implements the Symbolizer Adapter (§4.6): it
// shells out to addr2line to turn an instruction pointer into a
// "function at file" string, the way original_source/tracing/eaudit.cpp
// pipes through the same tool via popen.
package symbolize

import (
	"fmt"
	"os/exec"
	"strings"

	log "github.com/rs/zerolog"
)

// unresolved is returned for any instruction pointer addr2line cannot
// resolve. Symbolization failure is never fatal (§7).
const unresolved = "??"

// Symbolizer resolves instruction pointers against one executable.
type Symbolizer struct {
	exePath string
	logger  *log.Logger
}

func NewSymbolizer(exePath string, logger *log.Logger) *Symbolizer {
	return &Symbolizer{exePath: exePath, logger: logger}
}

// Resolve returns "function at file" for ip, or the literal "??" if
// addr2line fails or returns unresolvable names.
func (s *Symbolizer) Resolve(ip uint64) string {
	out, err := exec.Command("addr2line", "-f", "-s", "-C", "-e", s.exePath, fmt.Sprintf("0x%x", ip)).Output()
	if err != nil {
		if s.logger != nil {
			s.logger.Debug().Err(err).Uint64("ip", ip).Msg("addr2line failed")
		}
		return unresolved
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) < 2 {
		return unresolved
	}

	function := strings.TrimSpace(lines[0])
	file := stripLocation(lines[1])

	if function == unresolved || file == unresolved {
		return unresolved
	}

	return fmt.Sprintf("%s at %s", function, file)
}

// stripLocation drops the trailing ":<line>" and any "(discriminator
// N)" annotation addr2line appends to a file:line pair.
func stripLocation(fileLine string) string {
	fileLine = strings.TrimSpace(fileLine)

	if idx := strings.Index(fileLine, " ("); idx >= 0 {
		fileLine = fileLine[:idx]
	}
	if idx := strings.LastIndex(fileLine, ":"); idx >= 0 {
		fileLine = fileLine[:idx]
	}

	return fileLine
}
