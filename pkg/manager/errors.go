package manager

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an unknown manager id is referenced from
	// CLI selection or configuration.
	ErrNotFound = errors.New("unknown manager")

	// ErrDuplicate is returned when an id registers more than once.
	ErrDuplicate = errors.New("manager already registered")
)

// ParseError reports that an external tool produced output the manager's
// translation function could not understand. It is treated as an invocation
// failure rather than being guessed around.
type ParseError struct {
	Manager string
	Output  string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unparseable tool output: %v", e.Manager, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
