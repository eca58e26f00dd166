// Package outcome implements the result convention shared by every bind
// operation: a combinable set of flags describing what went wrong and how the
// accompanying message should be presented.
package outcome

import "strings"

// Code is a bitmask of outcome flags. Codes from several bind attempts are
// combined with a bitwise OR.
type Code uint8

const (
	// None reports success, nothing to display.
	None Code = 0
	// Retryable reports a failure that may vanish on retry (eg: port in use).
	Retryable Code = 0x01
	// Fatal reports a non-recoverable error.
	Fatal Code = 0x02
	// Abort tells the batch driver that trying other listeners is pointless.
	Abort Code = 0x04
	// Warn means the message must be displayed as a warning.
	Warn Code = 0x08
	// Alert means the message must be displayed as an alert.
	Alert Code = 0x10
)

const (
	kindMask  = Retryable | Fatal | Abort
	levelMask = Warn | Alert
)

// Kind returns the error kind part of the code.
func (c Code) Kind() Code {
	return c & kindMask
}

// Level returns the presentation part of the code.
func (c Code) Level() Code {
	return c & levelMask
}

// Has reports whether all the flags in f are set.
func (c Code) Has(f Code) bool {
	return f != 0 && c&f == f
}

// Failed reports whether the code carries an error kind.
func (c Code) Failed() bool {
	return c.Kind() != None
}

func (c Code) String() string {
	if c == None {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		code Code
		name string
	}{
		{Retryable, "retryable"},
		{Fatal, "fatal"},
		{Abort, "abort"},
		{Warn, "warn"},
		{Alert, "alert"},
	} {
		if c&f.code != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}
