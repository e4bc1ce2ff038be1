package config

import "github.com/pkg/errors"

var (
	ErrNoTarget          = errors.New("no target executable given")
	ErrNoProcessorModel  = errors.New("no processor-plane model file given")
	ErrPeriodTooShort    = errors.New("sample period below floor of 500 microseconds")
)
