// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// Pipeline errors. Both are recoverable: the session stays
	// interactive and downstream sections are withheld or skipped.
	ErrEmptySelection = errors.New("no columns selected")
	ErrNoColourColumn = errors.New("no colour column found")
)

// LoadError is fatal: an input file could not be read or parsed.
// No partial output is produced after one.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError wraps a read or parse failure for the given input path.
func NewLoadError(path string, err error) error {
	return &LoadError{Path: path, Err: err}
}

// SchemaError is fatal: a mapping file is parseable but lacks one or
// both of its required columns.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("mapping file %s is missing required column(s): %s",
		e.Path, strings.Join(e.Missing, ", "))
}
