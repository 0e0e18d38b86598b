package pawian

import (
	"errors"
	"fmt"
)

// Error is the interface all errors of this library implement. Decorate
// adds information to the error as it travels up the call stack, without
// changing its type, and returns the accumulated decoration slice. An
// empty string only retrieves the current value.
type Error interface {
	error
	Decorate(string) []string
}

// Sentinel errors for queries on a set that lacks the queried column.
// They may come wrapped with context; test with errors.Is.
var (
	ErrNoWeights       = errors.New("set carries no weights")
	ErrUnknownParticle = errors.New("unknown particle")
)

// ParseError reports a momentum-tuple file that can't be interpreted:
// lines with the wrong number of fields, a particle count that can't be
// determined or contradicts the caller, or a row total that doesn't
// divide into whole events.
type ParseError struct {
	message  string
	filename string
	deco     []string
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("pawian: file %s: %s", err.filename, err.message)
}

// Decorate adds new information to the error.
func (err *ParseError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file that could not be parsed.
func (err *ParseError) FileName() string { return err.filename }

// SchemaError reports a table whose structure doesn't follow the
// four-momentum column convention: blocks without the four component
// columns, empty or repeated particle names, or weights whose length
// disagrees with the event count.
type SchemaError struct {
	message string
	deco    []string
}

func (err *SchemaError) Error() string {
	return "pawian: " + err.message
}

// Decorate adds new information to the error.
func (err *SchemaError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// errDecorate asserts that err implements Error and decorates it with
// the caller's name before returning it. It panics on any other error
// type, so only use it on errors produced by this package.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}
