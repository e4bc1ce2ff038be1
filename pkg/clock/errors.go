package clock

import "github.com/pkg/errors"

var (
	// ErrPeriodTooShort is returned by NewClock when the requested
	// period is below the floor that keeps samples above the
	// energy-counter update cadence.
	ErrPeriodTooShort = errors.New("sample period below floor of 500 microseconds")

	ErrSetitimerFailed = errors.New("failed to arm interval timer")
)
