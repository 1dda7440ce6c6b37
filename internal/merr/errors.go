// Package merr defines the error kinds raised while loading an Open-PSA MEF
// model, and the source-location wrapper used to render them.
package merr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Call sites wrap one of these with fmt.Errorf("...: %w", ...)
// so that callers can classify a failure with errors.Is without parsing strings.
var (
	// ErrIO marks a missing or unreadable input file.
	ErrIO = errors.New("io error")
	// ErrDuplicateArgument marks a duplicate canonical input path, or a
	// duplicate member added to a CCF group.
	ErrDuplicateArgument = errors.New("duplicate argument")
	// ErrValidation marks schema failures, undefined references, arity
	// mismatches, unit mismatches, vote-threshold violations, invalid
	// distributions, and missing basic-event expressions.
	ErrValidation = errors.New("validation error")
	// ErrCycle marks a cycle in the gate, parameter, or named-branch graphs.
	ErrCycle = errors.New("cycle error")
	// ErrInvalidArgument marks a wrong argument count for an expression
	// constructor, before it has been annotated with a source location.
	ErrInvalidArgument = errors.New("invalid argument")
)

// SourceError wraps an error with the file and (optionally) the line at
// which it occurred, rendering spec's "In file '<path>', At line <N>, "
// diagnostic prefix.
type SourceError struct {
	File string // empty if unknown
	Line int    // 0 if unknown
	Err  error
}

func (e *SourceError) Error() string {
	prefix := ""
	if e.File != "" {
		prefix += fmt.Sprintf("In file '%s', ", e.File)
	}
	if e.Line > 0 {
		prefix += fmt.Sprintf("At line %d, ", e.Line)
	}
	return prefix + e.Err.Error()
}

func (e *SourceError) Unwrap() error { return e.Err }

// AtLine wraps err with a line number, leaving the file unset. Use WithFile
// to add the file once it is known (e.g. when a deferred work item is
// resolved after its originating file went out of scope).
func AtLine(line int, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Line: line, Err: err}
}

// WithFile attaches a file path to err. If err is already a *SourceError,
// its File field is set in place (preserving the line); otherwise a new
// SourceError is created.
func WithFile(file string, err error) error {
	if err == nil {
		return nil
	}
	var se *SourceError
	if errors.As(err, &se) {
		se.File = file
		return err
	}
	return &SourceError{File: file, Err: err}
}
