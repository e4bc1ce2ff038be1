//go:build linux

package counters

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// perf_event ioctl request numbers, from <linux/perf_event.h>. Modeled
// on other_examples/acln0-perf__perf.go, which defines the identical
// ioctls (there via acln.ro/ioctl's _IO helper) because golang.org/x/sys/unix
// does not export them.
const (
	perfEventIocEnable = 0x2400 // _IO('$', 0)
	perfEventIocDisable = 0x2401 // _IO('$', 1)
	perfEventIocReset   = 0x2403 // _IO('$', 3)
)

// pmuCounter wraps one perf_event_open(2) file descriptor. Modeled on
// acln.ro/perf's Event (see other_examples/acln0-perf__perf.go), which
// wraps the identical syscall from the same golang.org/x/sys/unix
// package this profiler already depends on for ptrace.
type pmuCounter struct {
	spec eventSpec
	name string
	fd   int
}

func newPMUCounter(name string, spec eventSpec) *pmuCounter {
	return &pmuCounter{spec: spec, name: name, fd: -1}
}

func (c *pmuCounter) attachToCore(core int) error {
	if c.fd >= 0 {
		unix.Close(c.fd)
	}

	attr := &unix.PerfEventAttr{
		Type:   c.spec.perfType,
		Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
		Config: c.spec.perfConfig,
		Bits:   unix.PerfBitDisabled,
	}

	// pid=-1, cpu=core counts every thread scheduled on that physical
	// core, matching the design's "per-core" aggregate reading; the
	// Sampler attributes the resulting delta to whichever tracked
	// thread last ran there.
	fd, err := unix.PerfEventOpen(attr, -1, core, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return errors.Wrapf(ErrAttachRefused, "perf_event_open core=%d event=%s: %v", core, c.name, err)
	}
	c.fd = fd

	return nil
}

func (c *pmuCounter) start() error {
	if c.fd < 0 {
		return errors.Wrapf(ErrAllocationFailed, "pmu counter %s not attached to a core", c.name)
	}
	if err := ioctl(c.fd, perfEventIocReset); err != nil {
		return errors.Wrapf(err, "reset pmu counter %s", c.name)
	}
	if err := ioctl(c.fd, perfEventIocEnable); err != nil {
		return errors.Wrapf(err, "enable pmu counter %s", c.name)
	}
	return nil
}

// stop reads the cumulative count since the last start, then
// immediately resets and re-enables the counter so that the next
// stop+start pair yields a fresh delta, per §4.1 ("successive stop+start
// yields deltas").
func (c *pmuCounter) stop() (Reading, error) {
	if c.fd < 0 {
		return Reading{}, ErrNotStarted
	}
	if err := ioctl(c.fd, perfEventIocDisable); err != nil {
		return Reading{}, errors.Wrapf(err, "disable pmu counter %s", c.name)
	}

	var buf [8]byte
	n, err := unix.Read(c.fd, buf[:])
	if err != nil || n != 8 {
		return Reading{}, errors.Wrapf(errors.New("short read"), "read pmu counter %s", c.name)
	}
	value := le64(buf)

	if err := ioctl(c.fd, perfEventIocReset); err != nil {
		return Reading{}, errors.Wrapf(err, "reset pmu counter %s", c.name)
	}
	if err := ioctl(c.fd, perfEventIocEnable); err != nil {
		return Reading{}, errors.Wrapf(err, "enable pmu counter %s", c.name)
	}

	return Reading{Name: c.name, Delta: int64(value)}, nil
}

func (c *pmuCounter) close() error {
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}

func le64(b [8]byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func ioctl(fd int, req uint) error {
	return unix.IoctlSetInt(fd, req, 0)
}
