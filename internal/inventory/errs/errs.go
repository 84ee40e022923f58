// Package errs defines the failure kinds returned by the inventory core.
//
// Every error produced by the core matches exactly one of the sentinel kinds
// below through errors.Is, so transports can map them without string checks.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrTechnical         = errors.New("technical error")
	ErrBusiness          = errors.New("business error")
	ErrDuplicateRequest  = errors.New("duplicate request")
)

// Error carries a kind and a human readable message, optionally wrapping a
// lower level cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(msg string, cause error) error {
	return &Error{Kind: ErrConflict, Msg: msg, Err: cause}
}

// StockError reports an outcome that cannot be served from stock on hand.
// Missing is set when no record exists for the identity at all.
type StockError struct {
	Category       string
	AttributeValue float64
	Quantity       int
	Missing        bool
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock outcome error - the required items are not in stock (category: %s, attribute value: %f, quantity: %d)",
		e.Category, e.AttributeValue, e.Quantity)
}

func (e *StockError) Is(target error) bool {
	if target == ErrInsufficientStock {
		return true
	}
	return e.Missing && target == ErrNotFound
}

// LineError attributes a batch import failure to one raw input line.
// Kind is ErrTechnical for unreadable or unparsable input and ErrBusiness for
// a rule violation raised while applying the line.
type LineError struct {
	Kind   error
	LineNo int
	Line   string
	Err    error
}

const lineFormat = "{category string, attribute value float, quantity int}"

func (e *LineError) Error() string {
	if e.Kind == ErrBusiness {
		return fmt.Sprintf("error adding stock from batch on line %d %q: %v", e.LineNo, e.Line, e.Err)
	}
	if e.Line == "" && e.LineNo == 0 {
		return fmt.Sprintf("error reading batch input: %v", e.Err)
	}
	return fmt.Sprintf("error parsing batch on line %d %q, line format: %s", e.LineNo, e.Line, lineFormat)
}

func (e *LineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
