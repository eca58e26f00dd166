package logger

import "sync/atomic"

var defaultLogger atomic.Value

func init() {
	SetDefault(NewLogger())
}

// Default returns the process wide logger.
func Default() Logger {
	return defaultLogger.Load().(*holder).Logger
}

func SetDefault(l Logger) {
	if l == nil {
		l = Nop()
	}
	defaultLogger.Store(&holder{l})
}

type holder struct {
	Logger
}
