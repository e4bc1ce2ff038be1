// Package config holds the CLI-level configuration (§6) and wires it
// to the model loader. Flag parsing itself lives in pkg/cmd; this
// package only validates the resulting values and loads the model
// files they name.
package config

import (
	"time"

	"github.com/pkg/errors"

	"github.com/maxgio92/eaudit/pkg/model"
)

const DefaultPeriod = 1000 * time.Microsecond

const DefaultOutputPrefix = "eaudit"

// Config mirrors the CLI flags of §6.
type Config struct {
	Period       time.Duration
	OutputPrefix string

	ProcessorModelPath string
	UncoreModelPath    string
	DRAMModelPath      string

	TargetPath string
	TargetArgs []string
}

// Validate checks configuration-time-only invariants, before any
// target process is created (§7 ConfigurationError).
func (c *Config) Validate() error {
	if c.TargetPath == "" {
		return ErrNoTarget
	}
	if c.Period < 500*time.Microsecond {
		return errors.Wrapf(ErrPeriodTooShort, "got %s", c.Period)
	}
	if c.ProcessorModelPath == "" {
		return ErrNoProcessorModel
	}
	return nil
}

// Models are the three loaded Energy Models named by Config, falling
// back to the processor-plane model when a plane-specific path was
// not given (§9: "the three models may be identical or distinct").
type Models struct {
	Processor *model.Model
	Uncore    *model.Model
	DRAM      *model.Model
}

// LoadModels loads the model files c names, reusing the processor
// model for any plane whose path was left unset.
func LoadModels(c *Config) (*Models, error) {
	processor, err := model.Load(c.ProcessorModelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "loading processor-plane model from %q", c.ProcessorModelPath)
	}

	uncore := processor
	if c.UncoreModelPath != "" {
		uncore, err = model.Load(c.UncoreModelPath)
		if err != nil {
			return nil, errors.Wrapf(err, "loading uncore-plane model from %q", c.UncoreModelPath)
		}
	}

	dram := processor
	if c.DRAMModelPath != "" {
		dram, err = model.Load(c.DRAMModelPath)
		if err != nil {
			return nil, errors.Wrapf(err, "loading DRAM-plane model from %q", c.DRAMModelPath)
		}
	}

	return &Models{Processor: processor, Uncore: uncore, DRAM: dram}, nil
}
