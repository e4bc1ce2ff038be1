package sampler

import (
	"time"

	log "github.com/rs/zerolog"

	"github.com/maxgio92/eaudit/pkg/counters"
	"github.com/maxgio92/eaudit/pkg/model"
)

type SamplerOptions struct {
	period        time.Duration
	physicalCores int

	provider *counters.Provider

	processorModel *model.Model
	uncoreModel    *model.Model
	dramModel      *model.Model

	logger *log.Logger
}

type SamplerOpt func(*Sampler)

func WithPeriod(period time.Duration) SamplerOpt {
	return func(s *Sampler) {
		s.period = period
	}
}

func WithPhysicalCores(n int) SamplerOpt {
	return func(s *Sampler) {
		s.physicalCores = n
	}
}

func WithProvider(p *counters.Provider) SamplerOpt {
	return func(s *Sampler) {
		s.provider = p
	}
}

func WithProcessorModel(m *model.Model) SamplerOpt {
	return func(s *Sampler) {
		s.processorModel = m
	}
}

func WithUncoreModel(m *model.Model) SamplerOpt {
	return func(s *Sampler) {
		s.uncoreModel = m
	}
}

func WithDRAMModel(m *model.Model) SamplerOpt {
	return func(s *Sampler) {
		s.dramModel = m
	}
}

func WithLogger(logger *log.Logger) SamplerOpt {
	return func(s *Sampler) {
		s.logger = logger
	}
}
