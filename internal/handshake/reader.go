package handshake

import (
	"bufio"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Prefix is the literal marker the sidecar prints in front of its port.
// No other line format is recognized.
const Prefix = "PORT:"

// NoPort is the absence sentinel delivered when the stream ends before a
// valid announcement line appears (the sidecar exited or closed its
// stdout without ever announcing a port).
const NoPort uint16 = 0

// ParseLine extracts a port announcement from a single line. The line must
// start with Prefix; the remainder, with surrounding whitespace trimmed,
// must parse as an unsigned 16-bit decimal. Lines that carry the prefix
// but fail to parse report ok=false so scanning continues, matching the
// sidecar contract that exactly one well-formed line will appear among
// arbitrary other output.
func ParseLine(line string) (port uint16, ok bool) {
	rest, found := strings.CutPrefix(line, Prefix)
	if !found {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

// Scan consumes r line by line until the first parseable announcement and
// returns its port. Scanning stops immediately on a match; later lines are
// never read. If the stream ends without a match, Scan returns NoPort.
// A malformed or missing handshake is a data condition, not an error.
func Scan(r io.Reader) uint16 {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if port, ok := ParseLine(sc.Text()); ok {
			return port
		}
	}
	// Stream ended (child exited or closed stdout) with no announcement.
	// Read errors land here too; they are indistinguishable from a silent
	// exit as far as the supervisor is concerned.
	return NoPort
}

// Start runs Scan on its own goroutine and returns a single-use channel
// that delivers exactly one value: the announced port, or NoPort. The
// channel is buffered so the reader goroutine never blocks on delivery,
// and closed after the send. The reader is not restartable.
func Start(r io.Reader, log *slog.Logger) <-chan uint16 {
	if log == nil {
		log = slog.Default()
	}
	ch := make(chan uint16, 1)
	go func() {
		port := Scan(r)
		if port == NoPort {
			log.Debug("stdout stream ended without a port announcement")
		} else {
			log.Debug("sidecar announced port", "port", port)
		}
		ch <- port
		close(ch)
	}()
	return ch
}
