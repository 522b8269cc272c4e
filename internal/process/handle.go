package process

import (
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Handle is the kill/wait capability for a running sidecar process. It is
// produced by Launch and destroyed by Stop, which terminates the child and
// reaps it. A Handle is meant to be owned by exactly one actor at a time;
// use Slot to transfer ownership atomically.
type Handle struct {
	cmd      *exec.Cmd
	pid      int
	waitDone <-chan error    // receives the cmd.Wait result; consumed once by Stop
	exited   <-chan struct{} // closed when the process exits
	name     string
	stderr   *os.File // optional stderr log file, closed by Stop
	log      *slog.Logger
}

// Pid returns the operating system process identifier of the child.
func (h *Handle) Pid() int {
	return h.pid
}

// Exited returns a channel that is closed when the process exits. It is
// safe to select on from any number of goroutines.
func (h *Handle) Exited() <-chan struct{} {
	return h.exited
}

// Stop terminates the process with the given timeout and reaps it, then
// closes the stderr log file if one was attached. Exit statuses caused by
// the termination signals are not reported as errors. Stop must be called
// at most once; Slot guarantees that only one actor ever holds the handle.
func (h *Handle) Stop(timeout time.Duration) error {
	err := terminate(h.cmd, h.waitDone, timeout, h.name)
	if err != nil {
		h.log.Warn("sidecar stop failed; process may be orphaned",
			"process", h.name, "pid", h.pid, "error", err)
	}
	if h.stderr != nil {
		_ = h.stderr.Close()
		h.stderr = nil
	}
	return err
}

// Slot holds at most one Handle and supports a one-time atomic take.
// Whichever actor takes the handle (the supervisor's fatal-failure path or
// its termination path) becomes solely responsible for stopping it; every
// other actor observes an empty slot and does nothing. This is what makes
// termination idempotent and rules out a double-kill race.
//
// The zero value is an empty Slot ready for use.
type Slot struct {
	mu sync.Mutex
	h  *Handle
}

// Put stores a handle in the slot. It returns false without storing if the
// slot already holds one; at most one handle ever exists per supervisor
// lifetime, so an occupied slot is a programmer error the caller surfaces.
func (s *Slot) Put(h *Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.h != nil {
		return false
	}
	s.h = h
	return true
}

// Take removes and returns the handle, or nil if the slot is empty or the
// handle was already taken.
func (s *Slot) Take() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.h
	s.h = nil
	return h
}

// Held reports whether the slot currently holds a handle.
func (s *Slot) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h != nil
}
