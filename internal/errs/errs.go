// Package errs holds the error kinds shared by the scaffolding and test
// invocation pipelines.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad input: unknown function, unsupported runtime,
	// malformed handler. Nothing has been mutated when it is returned.
	ErrValidation = errors.New("validation error")

	// ErrConflict marks a refusal to overwrite an existing file or function.
	ErrConflict = errors.New("conflict")
)

// Validationf returns an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Conflictf returns an error wrapping ErrConflict.
func Conflictf(format string, args ...any) error {
	return &kindError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// kindError keeps the message free of the kind prefix so CLI output reads
// like the original message.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
