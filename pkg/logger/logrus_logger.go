package logger

import (
	"github.com/sirupsen/logrus"
)

var (
	_ Logger = (*logger)(nil)
)

type logger struct {
	logger *logrus.Entry
}

// WithFields adds new fields to log.
func (l *logger) WithFields(fields map[string]any) Logger {
	return &logger{
		logger: l.logger.WithFields(logrus.Fields(fields)),
	}
}

// Debug logs a message at level Debug.
func (l *logger) Debug(args ...any) {
	l.logger.Debug(args...)
}

// Debugf logs a message at level Debug.
func (l *logger) Debugf(format string, args ...any) {
	l.logger.Debugf(format, args...)
}

// Info logs a message at level Info.
func (l *logger) Info(args ...any) {
	l.logger.Info(args...)
}

// Infof logs a message at level Info.
func (l *logger) Infof(format string, args ...any) {
	l.logger.Infof(format, args...)
}

// Warn logs a message at level Warn.
func (l *logger) Warn(args ...any) {
	l.logger.Warn(args...)
}

// Warnf logs a message at level Warn.
func (l *logger) Warnf(format string, args ...any) {
	l.logger.Warnf(format, args...)
}

// Error logs a message at level Error.
func (l *logger) Error(args ...any) {
	l.logger.Error(args...)
}

// Errorf logs a message at level Error.
func (l *logger) Errorf(format string, args ...any) {
	l.logger.Errorf(format, args...)
}

// Fatal logs a message at level Fatal then the process will exit with status set to 1.
func (l *logger) Fatal(args ...any) {
	l.logger.Fatal(args...)
}

// Fatalf logs a message at level Fatal then the process will exit with status set to 1.
func (l *logger) Fatalf(format string, args ...any) {
	l.logger.Fatalf(format, args...)
}

func (l *logger) GetLevel() LogLevel {
	return LogLevel(l.logger.Logger.GetLevel().String())
}

func (l *logger) IsLevelEnabled(level LogLevel) bool {
	lvl, err := logrus.ParseLevel(string(level))
	if err != nil {
		return false
	}
	return l.logger.Logger.IsLevelEnabled(lvl)
}
