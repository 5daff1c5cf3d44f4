package compiler

import "fmt"

// MalformedInputError reports a structurally invalid composition: a missing
// required field, a non-positive tempo, unparseable JSON, and so on. It is
// recoverable from the caller's point of view; no file is produced.
type MalformedInputError struct {
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Field == "" {
		return "malformed input: " + e.Reason
	}
	return fmt.Sprintf("malformed input: field %q: %s", e.Field, e.Reason)
}

// UnsupportedValueError reports a value the normalizer cannot map onto a
// legal MIDI value and has no safe default for, such as an unresolvable
// note name. Out-of-range numbers never produce this error; they are
// clamped instead.
type UnsupportedValueError struct {
	Field string
	Value string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported value for %s: %q", e.Field, e.Value)
}

// IOError reports a failed directory creation or file write, carrying the
// attempted path. A failed write never leaves a partial file behind.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("i/o failure at %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
