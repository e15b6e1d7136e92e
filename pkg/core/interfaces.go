package core

import "errors"

// ErrInvalidConfig is wrapped by every construction-time validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards all output
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(string, ...interface{}) {}
