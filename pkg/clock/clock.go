// Package clock implements the Sampling Clock (§4.3): a periodic
// real-time interval timer whose only observable effect is to wake
// the Tracer's blocking wait.
//
// The SIGALRM handler itself does no profiling work. Per the design
// note on signal-handler reentrancy, the goroutine it wakes is only
// permitted to forward the edge onward; everything else happens on
// the main control path.
package clock

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MinPeriod is the floor below which a configured sample period is
// rejected, to stay below the energy-counter update cadence.
const MinPeriod = 500 * time.Microsecond

// Clock arms and disarms a single SIGALRM interval timer and forwards
// each firing onto FiredChan.
//
// The original design (and an earlier revision of this package)
// assumed the Tracer could observe a firing by having its blocking
// wait4 return EINTR. It never does: Go's runtime installs signal
// handlers with SA_RESTART, so a restartable syscall like wait4 is
// transparently restarted by the kernel on signal delivery and never
// surfaces EINTR to the caller. FiredChan sidesteps the syscall
// entirely — the goroutine below is woken directly by signal.Notify's
// delivery (which does not go through the restarted syscall at all)
// and forwards the edge to a channel the Tracer selects on alongside
// its own wait result channel, so the firing is observed independent
// of whatever the kernel does with any in-flight syscall.
type Clock struct {
	period time.Duration

	sigCh   chan os.Signal
	doneCh  chan struct{}
	firedCh chan struct{}
}

// NewClock validates period and returns a Clock armed for that
// interval. period below MinPeriod is a configuration error.
func NewClock(period time.Duration) (*Clock, error) {
	if period < MinPeriod {
		return nil, errors.Wrapf(ErrPeriodTooShort, "got %s", period)
	}

	return &Clock{period: period, firedCh: make(chan struct{}, 1)}, nil
}

// Start installs the SIGALRM handler and arms the interval timer. The
// handler goroutine's only job is to relay the edge onto firedCh; it
// never touches tracer or counter state.
func (c *Clock) Start() error {
	c.sigCh = make(chan os.Signal, 1)
	c.doneCh = make(chan struct{})
	signal.Notify(c.sigCh, syscall.SIGALRM)

	go func() {
		for {
			select {
			case <-c.sigCh:
				select {
				case c.firedCh <- struct{}{}:
				default:
					// A firing is already pending; the Tracer hasn't
					// consumed it yet, so this edge is coalesced with
					// that one rather than blocking the handler
					// goroutine.
				}
			case <-c.doneCh:
				return
			}
		}
	}()

	return c.arm(c.period)
}

// Stop disarms the timer and stops signal delivery. Idempotent.
func (c *Clock) Stop() {
	_ = c.arm(0)
	if c.doneCh != nil {
		select {
		case <-c.doneCh:
		default:
			close(c.doneCh)
		}
	}
	signal.Stop(c.sigCh)
}

// Suspend disarms the timer without tearing down the signal handler,
// for the duration of a sample tick (§4.5 do_sample step 1).
func (c *Clock) Suspend() error {
	return c.arm(0)
}

// Rearm re-enables the periodic timer after a sample tick completes
// (§4.5 do_sample step 8).
func (c *Clock) Rearm() error {
	return c.arm(c.period)
}

// FiredChan is the channel the Tracer selects against, alongside its
// own wait-result channel, to observe a timer edge without depending
// on EINTR.
func (c *Clock) FiredChan() <-chan struct{} {
	return c.firedCh
}

func (c *Clock) arm(period time.Duration) error {
	val := unix.Itimerval{
		Value:    durationToTimeval(period),
		Interval: durationToTimeval(period),
	}
	if _, err := unix.Setitimer(unix.ITIMER_REAL, val); err != nil {
		return errors.Wrap(ErrSetitimerFailed, err.Error())
	}
	return nil
}

func durationToTimeval(d time.Duration) unix.Timeval {
	usec := d.Microseconds()
	return unix.Timeval{
		Sec:  usec / 1e6,
		Usec: usec % 1e6,
	}
}
