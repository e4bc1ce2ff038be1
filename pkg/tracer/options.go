package tracer

import (
	log "github.com/rs/zerolog"

	"github.com/maxgio92/eaudit/pkg/clock"
)

type TracerOptions struct {
	logger *log.Logger
	clock  *clock.Clock
}

type TracerOpt func(*Tracer)

func WithLogger(logger *log.Logger) TracerOpt {
	return func(t *Tracer) {
		t.logger = logger
	}
}

// WithClock wires the Sampling Clock the Tracer consults to
// synthesize TimerExpired when a blocking wait returns EINTR.
func WithClock(c *clock.Clock) TracerOpt {
	return func(t *Tracer) {
		t.clock = c
	}
}
