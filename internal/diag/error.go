package diag

import (
	"errors"
	"fmt"

	"husk/internal/source"
)

// Origin tells whether an error is the first observation of a problem or
// a consequence of an earlier one.
type Origin uint8

const (
	OriginOriginal Origin = iota
	OriginDerived
)

func (o Origin) String() string {
	if o == OriginDerived {
		return "derived"
	}
	return "original"
}

// Error is the value every semantic query stores in place of a result.
// Only Original errors are surfaced as user diagnostics.
type Error struct {
	Origin  Origin
	Code    Code
	Span    source.Span
	Message string
	Cause   *Error
}

// Original records a problem first observed at span.
func Original(code Code, span source.Span, format string, args ...any) *Error {
	return &Error{
		Origin:  OriginOriginal,
		Code:    code,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	}
}

// Derived records that resolution was abandoned because cause already failed.
// The message never repeats the cause.
func Derived(cause error) *Error {
	var root *Error
	if errors.As(cause, &root) {
		return &Error{
			Origin:  OriginDerived,
			Code:    root.Code,
			Span:    root.Span,
			Message: "abandoned after earlier error",
			Cause:   root,
		}
	}
	return &Error{
		Origin:  OriginDerived,
		Code:    InferAbandoned,
		Message: "abandoned after earlier error",
	}
}

// DerivedAt records an abandoned resolution with its own code and no upstream cause,
// e.g. a list literal whose element type nothing constrains.
func DerivedAt(code Code, span source.Span, format string, args ...any) *Error {
	return &Error{
		Origin:  OriginDerived,
		Code:    code,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Origin == OriginDerived {
		return fmt.Sprintf("%s (derived): %s", e.Code.Title(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code.Title(), e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil || e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Root follows the Cause chain to the Original error, if any.
func (e *Error) Root() *Error {
	cur := e
	for cur != nil && cur.Cause != nil {
		cur = cur.Cause
	}
	return cur
}

// Diagnostic converts an Original error into a user diagnostic.
func (e *Error) Diagnostic() Diagnostic {
	d := NewError(e.Code, e.Span, e.Message)
	d.Origin = e.Origin
	if e.Origin == OriginDerived {
		d.Severity = SevInfo
	}
	return d
}

func IsDerived(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Origin == OriginDerived
}

func IsOriginal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Origin == OriginOriginal
}

// Propagate turns any upstream failure into a Derived error for the caller.
// A nil error stays nil.
func Propagate(err error) *Error {
	if err == nil {
		return nil
	}
	return Derived(err)
}

// InternalError is raised with panic when an invariant of the pipeline is broken.
// It is never reported as a user diagnostic.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Msg
}

// Internalf builds an InternalError for panic.
func Internalf(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// Sink collects semantic errors in emission order, keeping Original and Derived apart.
type Sink struct {
	errs []*Error
}

func (s *Sink) Push(err *Error) {
	if err == nil {
		return
	}
	s.errs = append(s.errs, err)
}

func (s *Sink) All() []*Error {
	return s.errs
}

func (s *Sink) Originals() []*Error {
	out := make([]*Error, 0, len(s.errs))
	for _, e := range s.errs {
		if e.Origin == OriginOriginal {
			out = append(out, e)
		}
	}
	return out
}

func (s *Sink) Len() int {
	return len(s.errs)
}

// Flush reports Original errors to r. Derived ones are reported as info only when withDerived is set.
func (s *Sink) Flush(r Reporter, withDerived bool) {
	if r == nil {
		return
	}
	for _, e := range s.errs {
		switch e.Origin {
		case OriginOriginal:
			r.Report(e.Code, SevError, e.Span, e.Message, nil)
		case OriginDerived:
			if withDerived {
				r.Report(e.Code, SevInfo, e.Span, "(derived) "+e.Message, nil)
			}
		}
	}
}
