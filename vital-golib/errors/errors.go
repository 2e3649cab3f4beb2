package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Errorf is fmt.Errorf; it does not record a stack.
var Errorf = fmt.Errorf

// New builds a plain error from a format string.
var New = Errorf

// Sentinel creates a comparable error value meant for package-level `var ErrXxx = ...` declarations.
func Sentinel(msg string) error {
	return stderrors.New(msg)
}

// WrapfOrNil annotates err with a formatted message, or returns nil when err is nil.
func WrapfOrNil(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, fmt.Sprintf(format, args...))
}

// Wrapf never returns nil: a nil err becomes a fresh error carrying the message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return Errorf(format, args...)
	}
	return WrapfOrNil(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
var As = errors.As
