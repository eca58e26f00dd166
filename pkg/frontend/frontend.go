// Package frontend describes the proxies owning listeners, as far as the
// transports need to know about them.
package frontend

import (
	"errors"
	"strings"
)

var (
	ErrUnknownMode = errors.New("frontend: unknown mode")
)

// Mode is the operating mode of a frontend.
type Mode int

const (
	ModeTCP Mode = iota
	ModeHTTP
	ModeSyslog
	ModeCLI
	ModePeers
)

var modeNames = map[Mode]string{
	ModeTCP:    "tcp",
	ModeHTTP:   "http",
	ModeSyslog: "syslog",
	ModeCLI:    "cli",
	ModePeers:  "peers",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, ErrUnknownMode
}

// Frontend is a proxy section accepting traffic through its listeners.
type Frontend struct {
	Name string
	Mode Mode
}
