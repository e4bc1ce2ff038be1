//go:build linux && amd64

package tracer

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
)

const ptraceOptions = unix.PTRACE_O_EXITKILL | unix.PTRACE_O_TRACECLONE | unix.PTRACE_O_TRACEEXIT

// waitResult is one wait4(-1, ...) outcome, relayed from waitLoop to
// WaitEvent over a channel rather than returned directly, so WaitEvent
// can select on it alongside the Sampling Clock's FiredChan instead of
// depending on the syscall itself being interruptible.
type waitResult struct {
	wpid int
	ws   unix.WaitStatus
	err  error
}

// Tracer owns the target process tree via ptrace (§4.4).
type Tracer struct {
	*TracerOptions

	// threads is the Tracer's own bookkeeping of tids known to the
	// kernel, used by StopAll/ResumeAll. It is a separate structure
	// from the Sampler's Tracked-Thread set, which additionally
	// caches per-thread core ids (§3 Ownership).
	threads map[int]threadState

	waitCh chan waitResult
}

func NewTracer(opts ...TracerOpt) *Tracer {
	t := &Tracer{
		TracerOptions: &TracerOptions{},
		threads:       make(map[int]threadState),
		waitCh:        make(chan waitResult),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Launch starts path under ptrace, stopped at the first instruction
// after exec. The caller must Attach the resulting pid before
// resuming it.
func Launch(path string, args []string) (*exec.Cmd, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(ErrAttachFailed, err.Error())
	}
	return cmd, nil
}

// Attach consumes the exec-stop delivered to a process started with
// Launch and enables clone/exit tracing on it.
func (t *Tracer) Attach(rootPid int) error {
	var ws unix.WaitStatus
	if _, err := unix.Wait4(rootPid, &ws, 0, nil); err != nil {
		return errors.Wrapf(ErrAttachFailed, "waiting for initial stop: %s", err)
	}
	if !ws.Stopped() {
		return errors.Wrap(ErrAttachFailed, "root process not stopped at attach time")
	}

	if err := unix.PtraceSetOptions(rootPid, ptraceOptions); err != nil {
		return errors.Wrap(ErrAttachFailed, err.Error())
	}

	t.threads[rootPid] = stateTraced

	go t.waitLoop()

	return nil
}

// waitLoop runs wait4(-1, ...) in its own goroutine for the lifetime
// of the traced process tree, relaying each outcome over waitCh. This
// is what lets WaitEvent observe the Sampling Clock's edge without
// depending on wait4 itself returning EINTR: Go's runtime installs
// signal handlers with SA_RESTART, so the kernel transparently
// restarts a blocked wait4 across a delivered signal instead of
// returning EINTR for it. Running the wait in its own goroutine and
// selecting on a channel sidesteps that — this goroutine can stay
// blocked in the kernel indefinitely while WaitEvent's select still
// observes the clock's firing the moment it happens.
func (t *Tracer) waitLoop() {
	for {
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(-1, &ws, unix.WALL, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}

		t.waitCh <- waitResult{wpid: wpid, ws: ws, err: err}

		if errors.Is(err, unix.ECHILD) {
			// No children left to wait for; nothing further will ever
			// be observable, so this goroutine is done.
			return
		}
	}
}

// WaitEvent blocks until a thread lifecycle event, a delivered
// signal, or the Sampling Clock's edge is observed.
func (t *Tracer) WaitEvent() (Event, error) {
	var firedCh <-chan struct{}
	if t.clock != nil {
		firedCh = t.clock.FiredChan()
	}

	for {
		select {
		case r := <-t.waitCh:
			if r.err != nil {
				if errors.Is(r.err, unix.ECHILD) {
					// waitLoop has exited; only the clock's edge
					// remains observable.
					continue
				}
				return Event{}, errors.Wrapf(ErrUnexpectedStatus, "wait4: %s", r.err)
			}

			switch {
			case r.ws.Exited(), r.ws.Signaled():
				delete(t.threads, r.wpid)
				continue

			case r.ws.Stopped():
				return t.handleStop(r.wpid, r.ws)

			default:
				continue
			}

		case <-firedCh:
			return Event{Kind: TimerExpired}, nil
		}
	}
}

func (t *Tracer) handleStop(wpid int, ws unix.WaitStatus) (Event, error) {
	sig := ws.StopSignal()
	if sig != unix.SIGTRAP {
		return Event{Kind: Signal, Tid: wpid, Sig: int(sig)}, nil
	}

	cause := int(ws) >> 8
	switch cause >> 8 {
	case unix.PTRACE_EVENT_CLONE:
		msg, err := unix.PtraceGetEventMsg(wpid)
		if err != nil {
			return Event{}, errors.Wrapf(ErrUnexpectedStatus, "getting clone event msg: %s", err)
		}
		child := int(msg)

		if err := unix.PtraceSetOptions(child, ptraceOptions); err != nil {
			return Event{}, errors.Wrapf(ErrUnexpectedStatus, "setting options on new thread %d: %s", child, err)
		}
		t.threads[child] = stateCreated

		return Event{Kind: ThreadCreated, Parent: wpid, Child: child}, nil

	case unix.PTRACE_EVENT_EXIT:
		delete(t.threads, wpid)
		// The thread is still stopped at the exit notification; let
		// it proceed to actually terminate. Nothing further is
		// observable about it, so no explicit Resume is required of
		// the caller.
		_ = unix.PtraceCont(wpid, 0)

		return Event{Kind: ThreadExiting, Tid: wpid}, nil

	default:
		if t.threads[wpid] == stateCreated {
			t.threads[wpid] = stateTraced
		}
		return Event{Kind: Signal, Tid: wpid, Sig: int(sig)}, nil
	}
}

// Resume continues a single stopped thread, passing through sig (0
// for none).
func (t *Tracer) Resume(tid int, sig int) error {
	if err := unix.PtraceCont(tid, sig); err != nil {
		return errors.Wrapf(ErrUnexpectedStatus, "resuming %d: %s", tid, err)
	}
	t.threads[tid] = stateTraced
	return nil
}

// StopAll suspends every tracked thread and blocks until each has
// actually stopped, so that ReadIP/CoreOf observe a quiescent thread.
// Idempotent: threads already stopped are skipped.
func (t *Tracer) StopAll() error {
	for tid, state := range t.threads {
		if state == stateStopped {
			continue
		}
		if err := unix.Kill(tid, unix.SIGSTOP); err != nil {
			if err == unix.ESRCH {
				continue
			}
			return errors.Wrapf(ErrUnexpectedStatus, "stopping %d: %s", tid, err)
		}

		var ws unix.WaitStatus
		if _, err := unix.Wait4(tid, &ws, 0, nil); err != nil {
			return errors.Wrapf(ErrUnexpectedStatus, "waiting for %d to stop: %s", tid, err)
		}
		t.threads[tid] = stateStopped
	}
	return nil
}

// ResumeAll continues every stopped tracked thread. Idempotent.
func (t *Tracer) ResumeAll() error {
	for tid, state := range t.threads {
		if state != stateStopped {
			continue
		}
		if err := unix.PtraceCont(tid, 0); err != nil {
			return errors.Wrapf(ErrUnexpectedStatus, "resuming %d: %s", tid, err)
		}
		t.threads[tid] = stateTraced
	}
	return nil
}

// ReadIP reads the architectural instruction pointer of a stopped
// thread.
func (t *Tracer) ReadIP(tid int) (uint64, error) {
	var regs unix.PtraceRegs
	if err := unix.PtraceGetRegs(tid, &regs); err != nil {
		return 0, errors.Wrapf(ErrReadRegistersFail, "tid %d: %s", tid, err)
	}
	return regs.Rip, nil
}

// CoreOf reads the kernel's "last CPU scheduled on" field for tid
// from /proc/<tid>/stat, assuming the thread is currently stopped.
func (t *Tracer) CoreOf(tid int) (int, error) {
	proc, err := procfs.NewProc(tid)
	if err != nil {
		return 0, errors.Wrapf(ErrUnexpectedStatus, "opening /proc/%d: %s", tid, err)
	}
	stat, err := proc.Stat()
	if err != nil {
		return 0, errors.Wrapf(ErrUnexpectedStatus, "reading /proc/%d/stat: %s", tid, err)
	}
	return int(stat.Processor), nil
}

// Tracked reports whether the tracer still considers tid live.
func (t *Tracer) Tracked(tid int) bool {
	_, ok := t.threads[tid]
	return ok
}

// Empty reports whether no thread remains tracked, i.e. AllExited.
func (t *Tracer) Empty() bool {
	return len(t.threads) == 0
}
