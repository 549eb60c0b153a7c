package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which layer raised the error
type Phase string

const (
	PhaseAlloc   Phase = "alloc"   // allocator shim and backends
	PhaseString  Phase = "string"  // owned strings and views
	PhaseValue   Phase = "value"   // tagged values
	PhaseStack   Phase = "stack"   // bounded stack
	PhaseFormat  Phase = "format"  // numeric formatting
	PhaseConfig  Phase = "config"  // configuration loading
	PhaseRuntime Phase = "runtime" // session wiring
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation      Kind = "allocation"
	KindOverflow        Kind = "overflow"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindInvalidSize     Kind = "invalid_size"
	KindInvalidVariant  Kind = "invalid_variant"
	KindInvalidInput    Kind = "invalid_input"
	KindUseAfterRelease Kind = "use_after_release"
	KindDoubleRelease   Kind = "double_release"
	KindLengthMismatch  Kind = "length_mismatch"
	KindNotFound        Kind = "not_found"
	KindClosed          Kind = "closed"
	KindLeak            Kind = "leak"
	KindIO              Kind = "io"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// HasKind reports whether err is, or wraps, an *Error of the given kind.
// Causes of matching *Error values are searched as well.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Violation raises a contract violation. It never returns.
func Violation(err error) {
	panic(err)
}

// Convenience constructors for common error patterns

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
	}
}

// InvalidSize creates an error for a non-positive or unrepresentable size
func InvalidSize(phase Phase, size int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidSize,
		Detail: fmt.Sprintf("size %d must be positive", size),
		Value:  size,
	}
}

// InvalidDiscriminant creates an invalid discriminant error for tagged values
func InvalidDiscriminant(phase Phase, disc uint32, maxValid uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidVariant,
		Detail: fmt.Sprintf("discriminant %d out of range (max %d)", disc, maxValid),
		Value:  disc,
	}
}

// UseAfterRelease creates an error for access to a released resource
func UseAfterRelease(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUseAfterRelease,
		Detail: what + " used after release",
	}
}

// DoubleRelease creates an error for a second release of the same resource
func DoubleRelease(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDoubleRelease,
		Detail: what + " released twice",
	}
}

// LengthMismatch creates an error for a write that disagrees with its measurement
func LengthMismatch(phase Phase, measured, written int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLengthMismatch,
		Detail: fmt.Sprintf("measured %d bytes, wrote %d", measured, written),
		Value:  written,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// StackOverflow creates an error for a push past capacity
func StackOverflow(capacity int) *Error {
	return &Error{
		Phase:  PhaseStack,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("stack capacity %d exceeded", capacity),
		Value:  capacity,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Closed creates an error for use of a closed component
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: what + " is closed",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Leak creates an error for blocks still outstanding at shutdown
func Leak(phase Phase, live int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLeak,
		Detail: fmt.Sprintf("%d blocks still live", live),
		Value:  live,
	}
}
