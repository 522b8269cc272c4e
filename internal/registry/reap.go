package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// orphanExitPollInterval is the interval between liveness checks after an
// orphan has been sent SIGTERM.
const orphanExitPollInterval = 50 * time.Millisecond

// orphanExitTimeout bounds the graceful-exit wait per orphan before
// escalating to SIGKILL. Orphans have no supervisor left to talk to, so a
// short grace period is enough for the backend to flush and go.
const orphanExitTimeout = 5 * time.Second

// ReapOrphans terminates every recorded sidecar that is still running and
// clears the registry. It is called during supervisor preflight, under the
// data-directory lock, so no live supervisor's sidecar can be listed here.
//
// Each live orphan gets SIGTERM, a polled grace window to exit, then
// SIGKILL if it is still around. Orphans are reparented to init, which
// reaps them on exit; the poll only confirms the PID is gone. Rows are
// removed even when the kill fails — a PID that cannot be signaled is
// either already gone or no longer ours to manage.
//
// Returns the number of processes that were still alive and got
// terminated. Per-orphan failures are joined rather than aborting the
// sweep, so one stubborn PID does not shield the rest.
func (r *Registry) ReapOrphans(ctx context.Context) (int, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list orphan candidates: %w", err)
	}

	reaped := 0
	var errs []error
	for _, e := range entries {
		if processAlive(e.PID) {
			r.log.Warn("terminating orphaned sidecar from a previous run",
				"pid", e.PID, "binary", e.Binary, "started_at", e.StartedAt)
			if err := r.reapOne(ctx, e.PID); err != nil {
				errs = append(errs, err)
			} else {
				reaped++
			}
		}
		if err := r.Remove(ctx, e.PID); err != nil {
			errs = append(errs, err)
		}
	}

	return reaped, errors.Join(errs...)
}

// reapOne sends SIGTERM to pid, polls until the process disappears, and
// escalates to SIGKILL when the grace window closes.
func (r *Registry) reapOne(ctx context.Context, pid int) error {
	signalTerm(pid)

	err := wait.PollUntilContextTimeout(ctx, orphanExitPollInterval, orphanExitTimeout, true,
		func(context.Context) (bool, error) {
			return !processAlive(pid), nil
		})
	if err == nil {
		return nil
	}

	signalKill(pid)

	// One more grace window for the kernel to tear the process down.
	// SIGKILL cannot be caught, so a PID that survives this poll points at
	// something pathological (uninterruptible I/O, a PID we cannot signal).
	err = wait.PollUntilContextTimeout(ctx, orphanExitPollInterval, orphanExitTimeout, true,
		func(context.Context) (bool, error) {
			return !processAlive(pid), nil
		})
	if err != nil {
		return fmt.Errorf("orphaned sidecar pid %d survived SIGKILL: %w", pid, err)
	}
	return nil
}
