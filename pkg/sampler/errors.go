package sampler

import "github.com/pkg/errors"

var (
	ErrNoModel         = errors.New("no energy model configured")
	ErrNoProvider      = errors.New("no counter provider configured")
	ErrCounterReadFail = errors.New("counter read failed mid-sample")
)
