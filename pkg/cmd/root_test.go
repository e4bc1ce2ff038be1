package cmd

import (
	"context"
	"testing"

	log "github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmdFlagDefaults(t *testing.T) {
	opts := NewCommonOptions(WithContext(context.Background()), WithLogger(log.Nop()))
	root := NewRootCmd(opts)

	period, err := root.Flags().GetInt64("period")
	require.NoError(t, err)
	require.EqualValues(t, 1000, period)

	output, err := root.Flags().GetString("output")
	require.NoError(t, err)
	require.Equal(t, "eaudit", output)
}

func TestNewRootCmdCoreModelAliasesModel(t *testing.T) {
	opts := NewCommonOptions(WithContext(context.Background()), WithLogger(log.Nop()))
	root := NewRootCmd(opts)

	require.NoError(t, root.Flags().Set("core-model", "processor.json"))

	got, err := root.Flags().GetString("model")
	require.NoError(t, err)
	require.Equal(t, "processor.json", got)
}

func TestPhysicalCoresAtLeastOne(t *testing.T) {
	require.GreaterOrEqual(t, physicalCores(), 1)
}
