package core

import (
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"
)

// acquireDataDirLock takes an exclusive lock on the given file path,
// failing immediately with ErrDataDirLocked when another supervisor holds
// it. There is no retry: a held lock means a live supervisor owns this
// data directory, and waiting for it would violate the one-sidecar
// assumption rather than resolve anything.
func acquireDataDirLock(lockPath string) (*flock.Flock, error) {
	fl := flock.New(lockPath)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire data dir lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire data dir lock %s: %w", lockPath, ErrDataDirLocked)
	}

	return fl, nil
}

// releaseDataDirLock releases the lock and closes its file descriptor. The
// lock file is intentionally left on disk: removing it could invalidate a
// lock concurrently acquired by another process. Close() unlocks
// internally, so no explicit Unlock is needed. Best-effort cleanup; errors
// are logged at debug level.
func releaseDataDirLock(logger *slog.Logger, fl *flock.Flock) {
	if fl != nil {
		if err := fl.Close(); err != nil {
			logger.Debug("failed to release data dir lock", "path", fl.Path(), "err", err)
		}
	}
}
