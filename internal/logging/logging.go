// Package logging builds the zap loggers used across the organizer.
package logging

import "go.uber.org/zap"

// New returns a zap logger. When debug is true it uses the development
// config (console output, debug level); otherwise the production config
// (JSON, info level).
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// OrNop returns logger, or a no-op logger when it is nil
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
