// Package stage defines the error kinds of a fitting run and tags errors
// with the pipeline stage that produced them.
package stage

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the fitting packages wraps one of them.
var (
	ErrInput    = errors.New("input error")
	ErrConfig   = errors.New("configuration error")
	ErrOptimize = errors.New("optimization failure")
)

// Name of a pipeline stage.
type Name string

const (
	Load     Name = "load"
	Validate Name = "validate"
	Optimize Name = "optimize"
	Report   Name = "report"
)

// Error is an error tagged with the stage that failed.
type Error struct {
	Stage Name
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with stage s. A nil err stays nil.
func Wrap(s Name, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}

	return &Error{Stage: s, Err: err}
}

// Of returns the stage recorded on err, or "" if err carries none.
func Of(err error) Name {
	var se *Error
	if errors.As(err, &se) {
		return se.Stage
	}

	return ""
}
