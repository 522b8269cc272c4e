package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/almready/sidecar/internal/handshake"
	"github.com/almready/sidecar/internal/probe"
	"github.com/almready/sidecar/internal/process"
	"github.com/almready/sidecar/internal/registry"
)

// LockFileName is the flock file created in the data directory. It is
// never removed; see releaseDataDirLock.
const LockFileName = "sidecar.lock"

// RegistryFileName is the SQLite PID registry file in the data directory.
const RegistryFileName = "sidecars.db"

// Supervisor owns the sidecar lifecycle: launch, port handshake, health
// probe, readiness signal, and guaranteed teardown. It runs exactly one
// sidecar per lifetime; there is no restart of a crashed sidecar.
//
// The only shared mutable resource is the process handle, held in a Slot
// so that the fatal-failure path and the termination path can race for it
// safely: whichever takes it performs the kill, the other observes an
// empty slot and does nothing further.
type Supervisor struct {
	cfg  Config
	log  *slog.Logger
	exit func(code int)

	started atomic.Bool

	mu    sync.Mutex
	state State
	port  uint16
	lock  *flock.Flock
	reg   *registry.Registry

	slot process.Slot
}

// New creates a Supervisor. It performs no I/O; all side effects are
// deferred to Start. Returns an error if any required Config field is
// missing or invalid.
func New(cfg Config) (*Supervisor, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid supervisor config: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	exit := cfg.Exit
	if exit == nil {
		exit = os.Exit
	}
	return &Supervisor{cfg: cfg, log: log, exit: exit}, nil
}

// State returns the supervisor's current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Port returns the announced sidecar port. The boolean is false until the
// supervisor reaches StateReady.
func (s *Supervisor) Port() (uint16, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return 0, false
	}
	return s.port, true
}

// Start runs the startup sequence to completion: preflight, launch, port
// handshake, health probe, readiness callback. It blocks until the
// supervisor reaches a startup-terminal state.
//
// Outcomes:
//   - nil: StateReady, the readiness callback has been invoked.
//   - ErrSidecarUnavailable (wrapped): StateFallback, the binary could not
//     be launched; the caller should use its externally managed backend.
//   - ErrHandshakeFailed / ErrHealthTimeout: StateFailed. These normally
//     never return because the configured Exit terminates the process
//     after the child has been killed and reaped.
//   - ErrTerminated: an external Terminate won the race against startup.
//   - other errors: preflight failed (lock contention, registry damage).
//
// There is deliberately no timeout on the handshake await: a child that
// stays alive without ever writing to stdout blocks Start until the
// context is canceled or Terminate is called.
func (s *Supervisor) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if s.State() == StateTerminated {
		return ErrTerminated
	}

	stderrLog, err := s.preflight(ctx)
	if err != nil {
		s.mu.Lock()
		if s.state != StateTerminated {
			s.state = StateFailed
		}
		s.mu.Unlock()
		return fmt.Errorf("supervisor preflight: %w", err)
	}

	h, stdout, err := process.Launch(process.Config{
		Binary:  s.cfg.Binary,
		DataDir: s.cfg.DataDir,
		Env:     s.cfg.environment(),
		Name:    s.cfg.ProcessName,
		Stderr:  stderrLog,
		Logger:  s.log,
	})
	if err != nil {
		// Recoverable by design: in local development the packaged binary
		// does not exist and an externally started backend serves on a
		// well-known port. The caller owns that fallback.
		s.log.Warn("sidecar launch failed; deferring to an externally managed backend",
			"binary", s.cfg.Binary, "error", err)
		s.mu.Lock()
		if s.state == StateTerminated {
			s.mu.Unlock()
			return ErrTerminated
		}
		s.state = StateFallback
		s.mu.Unlock()
		return fmt.Errorf("launch sidecar: %w", errors.Join(ErrSidecarUnavailable, err))
	}

	// Storing the handle must be synchronized with Terminate's state write:
	// if termination already happened, the slot must stay empty and this
	// path still owns the child, so it stops it itself.
	s.mu.Lock()
	if s.state == StateTerminated {
		s.mu.Unlock()
		_ = h.Stop(s.cfg.StopTimeout)
		_ = stdout.Close()
		return ErrTerminated
	}
	s.slot.Put(h)
	s.state = StateAwaitingHandshake
	s.mu.Unlock()

	if err := s.reg.Record(ctx, h.Pid(), s.cfg.Binary); err != nil {
		// The registry is a crash-recovery aid; a failed write must not
		// block startup.
		s.log.Warn("record sidecar pid", "pid", h.Pid(), "error", err)
	}
	s.log.Info("sidecar launched, awaiting port announcement", "pid", h.Pid())

	// The scan blocks on pipe reads, so it runs on its own goroutine and
	// delivers over a single-use channel.
	portCh := handshake.Start(stdout, s.log)

	var port uint16
	select {
	case port = <-portCh:
	case <-ctx.Done():
		s.Terminate()
		_ = stdout.Close()
		return fmt.Errorf("awaiting port announcement: %w", ctx.Err())
	}
	// The reader is done with the stream. Closing it means a sidecar that
	// keeps chattering on stdout gets broken-pipe writes instead of
	// eventually filling the pipe buffer and blocking.
	_ = stdout.Close()

	if port == handshake.NoPort {
		return s.failFatal("sidecar exited without announcing a port", ErrHandshakeFailed)
	}

	s.mu.Lock()
	if s.state == StateTerminated {
		s.mu.Unlock()
		return ErrTerminated
	}
	s.state = StateProbing
	s.mu.Unlock()
	s.log.Info("sidecar announced port, probing health", "port", port)

	ok, probeErr := probe.Wait(ctx, probe.Config{
		Port:     port,
		Attempts: s.cfg.HealthAttempts,
		Interval: s.cfg.HealthInterval,
		Exited:   h.Exited(),
		Logger:   s.log,
	})
	if probeErr != nil {
		return s.failFatal("health probe failed: "+probeErr.Error(), ErrHealthTimeout)
	}
	if !ok {
		if ctx.Err() != nil {
			s.Terminate()
			return fmt.Errorf("health probe: %w", ctx.Err())
		}
		return s.failFatal("sidecar never accepted a connection within the probe budget", ErrHealthTimeout)
	}

	s.mu.Lock()
	if s.state == StateTerminated {
		s.mu.Unlock()
		return ErrTerminated
	}
	s.state = StateReady
	s.port = port
	s.mu.Unlock()
	s.log.Info("sidecar ready", "port", port)

	if s.cfg.OnReady != nil {
		if err := s.cfg.OnReady(port); err != nil {
			// Presentation failures stay local: the backend is healthy and
			// keeps running.
			s.log.Error("readiness callback failed; sidecar keeps running",
				"port", port, "error", err)
		}
	}
	return nil
}

// Terminate reacts to an external shutdown signal: it takes ownership of
// the sidecar handle, kills the process, and waits for it to exit so the
// OS releases its resources. Safe to invoke at any lifecycle point, safe
// to invoke twice, and safe to race with the fatal-failure path — the
// one-time slot take decides which actor performs the kill. If no handle
// exists (still launching, fallback mode, or already terminated), only
// the state flips.
func (s *Supervisor) Terminate() {
	s.mu.Lock()
	already := s.state == StateTerminated
	s.state = StateTerminated
	s.mu.Unlock()

	h := s.slot.Take()
	if h == nil {
		if !already {
			s.log.Debug("termination requested with no sidecar handle; nothing to kill")
		}
		s.cleanup()
		return
	}

	s.log.Info("terminating sidecar", "pid", h.Pid())
	_ = h.Stop(s.cfg.StopTimeout)
	s.unregister(h.Pid())
	s.cleanup()
}

// preflight prepares the data directory before launch: creates it, takes
// the cross-process lock, opens the PID registry, reaps orphans left by a
// crashed supervisor, and (optionally) creates the stderr log file. The
// registry work and the log-file work are independent I/O, run in
// parallel; each goroutine writes a distinct local, and g.Wait provides
// the happens-before for the assignments below.
func (s *Supervisor) preflight(ctx context.Context) (*os.File, error) {
	if err := os.MkdirAll(s.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", s.cfg.DataDir, err)
	}

	fl, err := acquireDataDirLock(filepath.Join(s.cfg.DataDir, LockFileName))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.lock = fl
	s.mu.Unlock()

	var (
		reg       *registry.Registry
		stderrLog *os.File
	)
	var g errgroup.Group
	g.Go(func() error {
		r, err := registry.Open(filepath.Join(s.cfg.DataDir, RegistryFileName), s.log)
		if err != nil {
			return err
		}
		reg = r
		// Reaping runs under the data-dir lock, so every listed PID
		// belongs to a supervisor that is no longer running.
		reaped, err := r.ReapOrphans(ctx)
		if err != nil {
			s.log.Warn("orphan reaping incomplete", "error", err)
		}
		if reaped > 0 {
			s.log.Info("reaped orphaned sidecars from previous runs", "count", reaped)
		}
		return nil
	})
	g.Go(func() error {
		if !s.cfg.CaptureStderr {
			return nil
		}
		f, err := process.OpenStderrLog(s.cfg.DataDir, s.cfg.ProcessName)
		if err != nil {
			return err
		}
		stderrLog = f
		return nil
	})
	if err := g.Wait(); err != nil {
		if stderrLog != nil {
			_ = stderrLog.Close()
		}
		if reg != nil {
			_ = reg.Close()
		}
		s.cleanup()
		return nil, err
	}

	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()
	return stderrLog, nil
}

// unregister removes a stopped sidecar's PID from the registry. Uses a
// background context: removal must be attempted even when the caller's
// context is already canceled.
func (s *Supervisor) unregister(pid int) {
	s.mu.Lock()
	reg := s.reg
	s.mu.Unlock()
	if reg == nil {
		return
	}
	if err := reg.Remove(context.Background(), pid); err != nil {
		s.log.Warn("remove sidecar pid from registry", "pid", pid, "error", err)
	}
}

// failFatal handles the unrecoverable startup failures: a launched sidecar
// that never announced a port, or one that never passed the health probe.
// It kills and reaps the child (unless termination already took it), then
// terminates the whole supervising process with a non-zero status via the
// configured exit func. The sentinel is returned for callers whose Exit
// does not actually exit (tests).
func (s *Supervisor) failFatal(reason string, sentErr error) error {
	s.mu.Lock()
	if s.state == StateTerminated {
		// Termination won the race; it owns (or already stopped) the
		// child, and a user-requested shutdown is not a fatal failure.
		s.mu.Unlock()
		return ErrTerminated
	}
	s.state = StateFailed
	s.mu.Unlock()

	s.log.Error("fatal sidecar failure", "reason", reason)
	if h := s.slot.Take(); h != nil {
		_ = h.Stop(s.cfg.StopTimeout)
		s.unregister(h.Pid())
	}
	s.cleanup()
	s.exit(1)
	return sentErr
}

// cleanup releases the data-dir lock and closes the registry. Idempotent:
// the fields are cleared under the mutex so a second call finds nothing.
func (s *Supervisor) cleanup() {
	s.mu.Lock()
	reg := s.reg
	fl := s.lock
	s.reg = nil
	s.lock = nil
	s.mu.Unlock()

	if reg != nil {
		if err := reg.Close(); err != nil {
			s.log.Debug("close sidecar registry", "error", err)
		}
	}
	releaseDataDirLock(s.log, fl)
}
