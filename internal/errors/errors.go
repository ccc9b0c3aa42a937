// Package errors defines the pipeline's error taxonomy and the API error
// responses rendered by the dashboard's HTTP surface.
package errors

import (
	"fmt"
)

// LoadError indicates the raw input could not be read: the file is missing,
// unreadable, or the header lacks a required column.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError creates a LoadError for the given input path
func NewLoadError(path string, err error) *LoadError {
	return &LoadError{Path: path, Err: err}
}

// ParseError indicates a date or time field could not be parsed after
// imputation. Parse failures are fatal for the whole load, there is no
// row-level recovery.
type ParseError struct {
	Column string
	Value  string
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse column %q value %q: %v", e.Column, e.Value, e.Err)
}

// Unwrap returns the underlying cause
func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError for the given column and cell value
func NewParseError(column, value string, err error) *ParseError {
	return &ParseError{Column: column, Value: value, Err: err}
}

// RenderError indicates a static chart could not be constructed, for
// example a degenerate or empty grouping. Charts already written before the
// failure remain on disk.
type RenderError struct {
	Chart string
	Err   error
}

// Error implements the error interface
func (e *RenderError) Error() string {
	return fmt.Sprintf("render chart %s: %v", e.Chart, e.Err)
}

// Unwrap returns the underlying cause
func (e *RenderError) Unwrap() error { return e.Err }

// NewRenderError creates a RenderError for the named chart
func NewRenderError(chart string, err error) *RenderError {
	return &RenderError{Chart: chart, Err: err}
}

// ExportError indicates a filtered export could not be written.
type ExportError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *ExportError) Unwrap() error { return e.Err }

// NewExportError creates an ExportError for the given output path
func NewExportError(path string, err error) *ExportError {
	return &ExportError{Path: path, Err: err}
}
