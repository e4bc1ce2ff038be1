//go:build linux && amd64

package tracer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func stoppedStatus(sig int, event int) unix.WaitStatus {
	raw := ((sig | (event << 8)) << 8) | 0x7f
	return unix.WaitStatus(raw)
}

func TestHandleStopNonTrapSignalPassesThrough(t *testing.T) {
	tr := NewTracer()
	ws := stoppedStatus(int(unix.SIGSTOP), 0)

	ev, err := tr.handleStop(123, ws)
	require.NoError(t, err)
	require.Equal(t, Signal, ev.Kind)
	require.Equal(t, 123, ev.Tid)
	require.Equal(t, int(unix.SIGSTOP), ev.Sig)
}

func TestHandleStopPlainTrapMarksTraced(t *testing.T) {
	tr := NewTracer()
	tr.threads[42] = stateCreated
	ws := stoppedStatus(int(unix.SIGTRAP), 0)

	ev, err := tr.handleStop(42, ws)
	require.NoError(t, err)
	require.Equal(t, Signal, ev.Kind)
	require.Equal(t, stateTraced, tr.threads[42])
}

func TestHandleStopExitEventRemovesThread(t *testing.T) {
	tr := NewTracer()
	tr.threads[7] = stateTraced
	ws := stoppedStatus(int(unix.SIGTRAP), unix.PTRACE_EVENT_EXIT)

	ev, err := tr.handleStop(7, ws)
	require.NoError(t, err)
	require.Equal(t, ThreadExiting, ev.Kind)
	require.Equal(t, 7, ev.Tid)
	_, tracked := tr.threads[7]
	require.False(t, tracked)
}

func TestEmptyReportsNoTrackedThreads(t *testing.T) {
	tr := NewTracer()
	require.True(t, tr.Empty())

	tr.threads[1] = stateTraced
	require.False(t, tr.Empty())
}

func TestTracked(t *testing.T) {
	tr := NewTracer()
	tr.threads[5] = stateTraced

	require.True(t, tr.Tracked(5))
	require.False(t, tr.Tracked(6))
}
