// Package sidecar supervises a backend server process that a desktop
// application ships as a separate executable.
//
// The supervisor launches the backend, waits for it to announce its
// listening port on stdout (a single "PORT:<digits>" line), probes the
// port over TCP until the backend accepts connections, and then hands
// the port to the embedding application. On shutdown it kills the
// backend and waits for it to exit, so no orphan keeps the port or the
// data directory busy.
//
// # Basic Usage
//
//	import "github.com/almready/sidecar"
//
//	sup, err := sidecar.New(
//	    sidecar.WithBinary("/opt/myapp/"+sidecar.ExecutableName("myapp-backend")),
//	    sidecar.WithDataDir(dataDir),
//	    sidecar.WithOnReady(func(port uint16) error {
//	        return window.Emit("backend-ready", port)
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	go func() {
//	    if err := sup.Start(ctx); err != nil {
//	        if errors.Is(err, sidecar.ErrSidecarUnavailable) {
//	            // Development mode: talk to an externally started backend.
//	            return
//	        }
//	        log.Print(err)
//	    }
//	}()
//
//	// On application exit:
//	sup.Terminate()
//
// # Failure Model
//
// A binary that cannot be launched is a recoverable condition: Start
// returns an error wrapping ErrSidecarUnavailable and the caller falls
// back to an externally managed backend (the local development setup).
// A binary that launches but never becomes usable — no port
// announcement, or a health probe that never connects — is fatal: the
// supervisor kills the child and then terminates the whole process,
// because a desktop app without its backend has nothing to offer.
//
// # One Sidecar Per Data Directory
//
// The supervisor takes a file lock in the data directory before
// launching, so two application instances cannot run two backends
// against the same state. Launched PIDs are recorded in a small SQLite
// registry inside the data directory; on the next startup, entries left
// behind by a crashed supervisor are killed and cleared before the new
// sidecar starts.
package sidecar
