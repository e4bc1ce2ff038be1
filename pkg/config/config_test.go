package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateRejectsMissingTarget(t *testing.T) {
	c := &Config{Period: DefaultPeriod, ProcessorModelPath: "model.json"}
	require.ErrorIs(t, c.Validate(), ErrNoTarget)
}

func TestValidateRejectsShortPeriod(t *testing.T) {
	c := &Config{Period: 100 * time.Microsecond, TargetPath: "/bin/true", ProcessorModelPath: "model.json"}
	require.ErrorIs(t, c.Validate(), ErrPeriodTooShort)
}

func TestValidateRejectsMissingProcessorModel(t *testing.T) {
	c := &Config{Period: DefaultPeriod, TargetPath: "/bin/true"}
	require.ErrorIs(t, c.Validate(), ErrNoProcessorModel)
}

func TestValidateAcceptsFloorPeriod(t *testing.T) {
	c := &Config{Period: 500 * time.Microsecond, TargetPath: "/bin/true", ProcessorModelPath: "model.json"}
	require.NoError(t, c.Validate())
}

func TestLoadModelsMissingFile(t *testing.T) {
	c := &Config{ProcessorModelPath: "/no/such/model.json"}
	_, err := LoadModels(c)
	require.Error(t, err)
}
