package types

import (
	"errors"
	"fmt"
)

// ErrInputMissing indicates a precondition for merging or exporting is not met.
var ErrInputMissing = errors.New("input missing")

// ParseError represents a failure to read a spreadsheet container.
type ParseError struct {
	File      string
	Sheet     string
	Component string // "grid", "outline"
	Err       error
}

func (e *ParseError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("parse error in %q (%s): %v", e.File, e.Component, e.Err)
	}
	return fmt.Sprintf("parse error in %q sheet %q (%s): %v", e.File, e.Sheet, e.Component, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(file, sheet, component string, err error) *ParseError {
	return &ParseError{
		File:      file,
		Sheet:     sheet,
		Component: component,
		Err:       err,
	}
}
