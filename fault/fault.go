// Package fault carries the error kinds surfaced by arangotools.
//
// Invalid input is reported before any I/O happens. Errors coming back from
// the database driver are normally returned untouched; Upstream exists for
// the few places (structure provisioning) that need to tag them.
package fault

import (
	"errors"
	"fmt"
)

type Code string

const (
	InvalidInputCode Code = "invalid_input"
	NotFoundCode     Code = "not_found"
	UpstreamCode     Code = "upstream"
)

type Fault struct {
	code     Code
	message  string
	metadata any
	original error
}

func New(code Code, message string) Fault {
	return Fault{
		code:    code,
		message: message,
	}
}

// InvalidInput is shorthand for New(InvalidInputCode, message).
func InvalidInput(message string) Fault {
	return New(InvalidInputCode, message)
}

// Upstream tags an error returned by the database driver.
func Upstream(message string, original error) Fault {
	return New(UpstreamCode, message).WithOriginal(original)
}

func (f Fault) WithMetadata(metadata any) Fault {
	e := f
	e.metadata = metadata
	return e
}

func (f Fault) WithOriginal(original error) Fault {
	e := f
	e.original = original
	return e
}

func (f Fault) Code() Code {
	return f.code
}

func (f Fault) Message() string {
	return f.message
}

func (f Fault) Metadata() any {
	return f.metadata
}

func (f Fault) Original() error {
	return f.original
}

func (f Fault) Unwrap() error {
	return f.original
}

func (f Fault) Error() string {
	if f.original != nil {
		return fmt.Sprintf("%s: %v", f.message, f.original)
	}
	return f.message
}

// HasCode reports whether err, or anything it wraps, is a Fault with code.
func HasCode(err error, code Code) bool {
	var f Fault
	if errors.As(err, &f) {
		return f.code == code
	}
	return false
}

func IsInvalidInput(err error) bool { return HasCode(err, InvalidInputCode) }
func IsNotFound(err error) bool     { return HasCode(err, NotFoundCode) }
