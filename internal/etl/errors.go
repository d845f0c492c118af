package etl

import (
	"fmt"
	"strings"
)

// Structural load failures. Any of these aborts the whole load; no
// partial data is ever returned alongside them. Callers distinguish the
// cases with errors.As.

// SourceUnavailableError indicates the input file could not be opened
// or read at all.
type SourceUnavailableError struct {
	Path string
	Err  error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source unavailable: %s: %v", e.Path, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// MissingMandatoryColumnsError indicates the header lacks one or more
// mandatory columns.
type MissingMandatoryColumnsError struct {
	Columns []string
}

func (e *MissingMandatoryColumnsError) Error() string {
	return fmt.Sprintf("missing mandatory columns: %s", strings.Join(e.Columns, ", "))
}

// WrongColumnCountError indicates a data line whose field count differs
// from the header's. Line is 1-based; the header is line 1.
type WrongColumnCountError struct {
	Line     int
	Expected int
	Actual   int
}

func (e *WrongColumnCountError) Error() string {
	return fmt.Sprintf("wrong column count at line %d: expected %d, got %d", e.Line, e.Expected, e.Actual)
}

// EmptyRowError indicates a data line all of whose fields are empty.
type EmptyRowError struct {
	Line int
}

func (e *EmptyRowError) Error() string {
	return fmt.Sprintf("empty row detected at line %d", e.Line)
}

// LoadError wraps any other failure encountered while parsing the file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
