package clock

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClockRejectsPeriodBelowFloor(t *testing.T) {
	_, err := NewClock(100 * time.Microsecond)
	require.ErrorIs(t, err, ErrPeriodTooShort)
}

func TestNewClockAcceptsFloor(t *testing.T) {
	c, err := NewClock(MinPeriod)
	require.NoError(t, err)
	require.Equal(t, MinPeriod, c.period)
}

// TestFiredChanReceivesOnSignal demonstrates the actual fix: a
// delivered SIGALRM must reach FiredChan even though the observer
// here never touches a blocking syscall, let alone relies on it
// returning EINTR.
func TestFiredChanReceivesOnSignal(t *testing.T) {
	c, err := NewClock(MinPeriod)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	defer c.Stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGALRM))

	select {
	case <-c.FiredChan():
	case <-time.After(time.Second):
		t.Fatal("timer edge was not observed on FiredChan")
	}
}

func TestFiredChanCoalescesBurstsWithoutBlocking(t *testing.T) {
	c, err := NewClock(MinPeriod)
	require.NoError(t, err)

	c.firedCh <- struct{}{} // pre-fill the buffer, as Start's goroutine would

	select {
	case c.firedCh <- struct{}{}:
		t.Fatal("a second pending edge must not block the handler goroutine")
	default:
	}
}

func TestDurationToTimevalZeroDisarms(t *testing.T) {
	tv := durationToTimeval(0)
	require.EqualValues(t, 0, tv.Sec)
	require.EqualValues(t, 0, tv.Usec)
}

func TestDurationToTimevalSplitsMicroseconds(t *testing.T) {
	tv := durationToTimeval(1500 * time.Microsecond)
	require.EqualValues(t, 0, tv.Sec)
	require.EqualValues(t, 1500, tv.Usec)
}
