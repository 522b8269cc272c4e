// Package sentinel provides a const-declarable error type for sentinel errors.
//
// Sentinels declared with errors.New are package vars that could be
// reassigned. The Error type here is a string-backed error that can be
// declared const, while remaining compatible with errors.Is matching
// through wrapped error chains.
package sentinel
