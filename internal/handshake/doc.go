// Package handshake discovers the sidecar's listen port from its stdout.
//
// The sidecar announces its dynamically chosen port by printing a single
// "PORT:<digits>" line. The reader scans the stream on a dedicated
// goroutine (line-oriented reads block) and delivers the port, or an
// absence sentinel when the stream ends first, over a single-use channel.
package handshake
