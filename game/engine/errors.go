package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidUniverse = errors.New("invalid universe")
	ErrInvalidOptions  = errors.New("invalid search options")
	ErrNoResult        = errors.New("no search result yet")
	ErrNoSolution      = errors.New("search found no solution")
	ErrSolutionIndex   = errors.New("solution index out of range")
	ErrOutOfBounds     = errors.New("coordinate out of bounds")
)

// ConfigurationError reports a malformed universe. It is raised once at load time.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidUniverse
}

func configErrorf(field, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
