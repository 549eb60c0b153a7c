// Package errors provides structured error types for the value runtime.
//
// Errors are categorized by Phase (which layer raised it) and Kind (error category).
// The Error type carries a detail message, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAlloc, errors.KindAllocation).
//		Value(size).
//		Detail("linear memory cannot grow past %d pages", max).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.AllocationFailed(errors.PhaseAlloc, 4096)
//	err := errors.StackOverflow(stack.Capacity)
//
// Contract violations (programmer errors such as reading a released string) are not
// returned. They are raised with panic(*Error) so that the stack trace points at the
// offending caller; see Violation.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
