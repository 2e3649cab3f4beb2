package errors

import (
	"bytes"
	"fmt"
)

// Errors is a non-empty list of errors. A nil Errors means "no error", so callers compare against nil
// exactly as they would with a single error.
type Errors interface {
	error
	// Slice returns a copy of the underlying errors.
	Slice() []error
	// Len is always > 0.
	Len() int

	sliceNoCopy() []error
	append(e error) Errors
}

type errorSlice []error

func (m errorSlice) append(e error) Errors {
	return errorSlice(append(m, e))
}

func (m errorSlice) sliceNoCopy() []error {
	return []error(m)
}

func (m errorSlice) Slice() []error {
	return append([]error(nil), m...)
}

func (m errorSlice) Len() int {
	return len(m)
}

func (m errorSlice) Error() string {
	if len(m) == 1 {
		return m[0].Error()
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d errors:", len(m))
	for _, err := range m {
		fmt.Fprintf(&b, "\n  %v", err)
	}
	return b.String()
}

// Append adds err (which may itself be an Errors, or nil) to errs (which may be nil).
func Append(errs Errors, err error) Errors {
	if err == nil {
		return errs
	}
	if errs == nil {
		errs = errorSlice(nil)
	}
	if multi, ok := err.(Errors); ok && multi != nil {
		for _, e := range multi.sliceNoCopy() {
			errs = errs.append(e)
		}
		return errs
	}
	return errs.append(err)
}

// AsError converts errs to a plain error, mapping a nil Errors to a nil error.
func AsError(errs Errors) error {
	return toError(errs)
}

func toError(errs Errors) error {
	if errs == nil || errs.Len() == 0 {
		return nil
	}
	return errs
}
