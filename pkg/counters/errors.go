package counters

import "github.com/pkg/errors"

var (
	// ErrUnknownEvent is returned by Open when a requested event name is
	// not recognized by the provider.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrAllocationFailed is returned when the provider refuses to
	// allocate the underlying counter set.
	ErrAllocationFailed = errors.New("counter set allocation failed")

	// ErrAttachRefused is returned by AttachToCore when the provider
	// cannot bind a set to the requested CPU.
	ErrAttachRefused = errors.New("attach to core refused")

	// ErrNotStarted is returned by Stop/ReadDelta when called on a set
	// that was never started.
	ErrNotStarted = errors.New("counter set not started")

	// ErrCounterDecreased is returned when a 64-bit counter (for which
	// wraparound is not expected) reports a value lower than the
	// previous read.
	ErrCounterDecreased = errors.New("64-bit counter decreased without wraparound support")
)
