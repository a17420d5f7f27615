// Package diag defines the single error currency used across the
// compiler: every fatal condition described in spec.md §7 is
// rendered through one Error type so a caller never has to sniff
// error strings to tell a shape mismatch from a witness error.
package diag

import (
	"fmt"
)

// Kind identifies one of the fatal error categories of spec.md §7.
type Kind string

const (
	KindResolve    Kind = "resolve"
	KindParse      Kind = "parse"
	KindName       Kind = "name"
	KindShape      Kind = "shape"
	KindLocation   Kind = "location"
	KindWitness    Kind = "witness"
	KindArithmetic Kind = "arithmetic"
	KindR1CS       Kind = "r1cs"
)

// Error is the one diagnostic type every package returns for a fatal
// condition. A Signal of -1 (what Errorf and Wrap set) means "not
// applicable".
type Error struct {
	Kind     Kind
	Message  string
	File     string
	Function string
	Signal   int
	Wrapped  error
}

func (e *Error) Error() string { return e.Render() }

// Render produces the single diagnostic line required by spec.md §7:
// the kind, the message, and whatever location fields are set.
func (e *Error) Render() string {
	loc := ""
	if e.File != "" {
		loc += " file=" + e.File
	}
	if e.Function != "" {
		loc += " fn=" + e.Function
	}
	if e.Signal >= 0 {
		loc += fmt.Sprintf(" signal=x%d", e.Signal)
	}
	return fmt.Sprintf("%s error: %s%s", e.Kind, e.Message, loc)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Errorf builds a located-less Error. Use WithLocation to attach
// file/function/signal context once it is known to the caller.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Signal: -1}
}

// Wrap attaches kind and message to an underlying error, preserving it
// for errors.Unwrap/errors.Is chains.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Signal: -1, Wrapped: err}
}

// WithLocation returns a copy of e with file/function/signal context
// attached, leaving e itself untouched.
func (e *Error) WithLocation(file, function string, signal int) *Error {
	c := *e
	c.File = file
	c.Function = function
	c.Signal = signal
	return &c
}
