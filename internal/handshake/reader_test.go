package handshake

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		line     string
		wantPort uint16
		wantOK   bool
	}{
		"minimum port": {
			line:     "PORT:0",
			wantPort: 0,
			wantOK:   true,
		},
		"typical port": {
			line:     "PORT:54321",
			wantPort: 54321,
			wantOK:   true,
		},
		"maximum port": {
			line:     "PORT:65535",
			wantPort: 65535,
			wantOK:   true,
		},
		"whitespace around digits": {
			line:     "PORT:  8080  ",
			wantPort: 8080,
			wantOK:   true,
		},
		"above 16-bit range": {
			line:   "PORT:65536",
			wantOK: false,
		},
		"negative": {
			line:   "PORT:-1",
			wantOK: false,
		},
		"non-numeric suffix": {
			line:   "PORT:12ab",
			wantOK: false,
		},
		"no digits": {
			line:   "PORT:",
			wantOK: false,
		},
		"lowercase prefix": {
			line:   "port:1234",
			wantOK: false,
		},
		"prefix not at start": {
			line:   "listening PORT:1234",
			wantOK: false,
		},
		"unrelated line": {
			line:   "INFO: application startup complete",
			wantOK: false,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			port, ok := ParseLine(tc.line)
			if ok != tc.wantOK {
				t.Fatalf("ParseLine(%q) ok = %v, want %v", tc.line, ok, tc.wantOK)
			}
			if ok && port != tc.wantPort {
				t.Errorf("ParseLine(%q) port = %d, want %d", tc.line, port, tc.wantPort)
			}
		})
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input string
		want  uint16
	}{
		"announcement among noise": {
			input: "uvicorn starting\nPORT:9123\nready\n",
			want:  9123,
		},
		"first parseable line wins": {
			input: "PORT:1111\nPORT:2222\n",
			want:  1111,
		},
		"malformed line is skipped": {
			input: "PORT:99999\nPORT:4242\n",
			want:  4242,
		},
		"stream ends without announcement": {
			input: "some log line\nanother log line\n",
			want:  NoPort,
		},
		"empty stream": {
			input: "",
			want:  NoPort,
		},
		"only malformed announcements": {
			input: "PORT:abc\nPORT:\n",
			want:  NoPort,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := Scan(strings.NewReader(tc.input)); got != tc.want {
				t.Errorf("Scan() = %d, want %d", got, tc.want)
			}
		})
	}
}

// stuckReader yields its payload, then blocks forever on the next Read.
// If Scan kept reading past the announcement line, the test would hang
// and fail on the suite timeout.
type stuckReader struct {
	payload io.Reader
	block   chan struct{}
}

func (r *stuckReader) Read(p []byte) (int, error) {
	n, err := r.payload.Read(p)
	if n > 0 || err != io.EOF {
		return n, err
	}
	<-r.block
	return 0, io.EOF
}

func TestScan_StopsAtFirstAnnouncement(t *testing.T) {
	t.Parallel()

	r := &stuckReader{
		payload: strings.NewReader("noise\nPORT:4242\n"),
		block:   make(chan struct{}),
	}

	done := make(chan uint16, 1)
	go func() { done <- Scan(r) }()

	select {
	case got := <-done:
		if got != 4242 {
			t.Fatalf("Scan() = %d, want 4242", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Scan did not stop after finding the announcement")
	}
}

func TestStart_DeliversExactlyOnce(t *testing.T) {
	t.Parallel()

	ch := Start(strings.NewReader("PORT:7777\n"), nil)

	select {
	case got := <-ch:
		if got != 7777 {
			t.Fatalf("delivered port = %d, want 7777", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery from handshake reader")
	}

	// The channel is closed after the single delivery; a second receive
	// yields the zero value with ok=false rather than blocking.
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("received a second value from a one-shot channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after delivery")
	}
}

func TestStart_SentinelOnSilentExit(t *testing.T) {
	t.Parallel()

	ch := Start(strings.NewReader(""), nil)

	select {
	case got, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before delivering the sentinel")
		}
		if got != NoPort {
			t.Fatalf("delivered %d, want the absence sentinel", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no sentinel delivery on stream end")
	}
}
