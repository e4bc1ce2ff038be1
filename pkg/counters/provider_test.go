package counters

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenUnknownEvent(t *testing.T) {
	p := &Provider{}

	_, err := p.Open([]string{"not-a-real-event"})
	require.ErrorIs(t, err, ErrUnknownEvent)
}

func TestOpenEmptyEventList(t *testing.T) {
	p := &Provider{}

	_, err := p.Open(nil)
	require.ErrorIs(t, err, ErrAllocationFailed)
}

func TestOpenPreservesOrder(t *testing.T) {
	p := &Provider{}

	set, err := p.Open([]string{"cycles", "instructions"})
	require.NoError(t, err)
	require.Equal(t, []string{"cycles", "instructions"}, set.Names())
}

func TestStopBeforeStartedErrors(t *testing.T) {
	p := &Provider{}
	set, err := p.Open([]string{"instructions"})
	require.NoError(t, err)

	_, err = p.Stop(set)
	require.ErrorIs(t, err, ErrNotStarted)
}
