// Package valueruntime is a minimal runtime value layer: tagged scalar values, an
// owned NUL-terminated string type backed by a pluggable allocator, a bounded value
// stack and numeric-to-string formatting.
//
// # Architecture Overview
//
//	valueruntime/
//	├── value/           Tagged Int32/Float32 values and literal parsing
//	├── str/             Owned strings with one-time release, borrowed views
//	├── stack/           Fixed-capacity LIFO of values
//	├── alloc/           Allocator with abort/propagate policy over heap or wazero memory
//	├── format/          Two-pass integer and fixed-point float formatting
//	├── runtime/         Session config and wiring, drain-and-print
//	├── errors/          Structured error types and contract violations
//	└── cmd/stackcalc/   Demo and interactive stack session
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, runtime.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	rt.Push(value.Int32(87))
//	rt.Push(value.Int32(-32))
//	rt.Push(value.Float32(345.75))
//	rt.Drain(os.Stdout)
//	// 345.750000
//	// -32
//	// 87
//
// # Ownership
//
// A *str.Owned is released exactly once. After Release, or after Move hands its
// buffer to a new owner, the string is dead: accessors panic with an *errors.Error
// of kind use_after_release and a second Release panics with double_release.
// A str.View borrows a string and panics the same way once its owner is released.
//
// # Allocation Policy
//
// alloc.PolicyAbort logs the failure and exits with alloc.ExitOutOfMemory.
// alloc.PolicyPropagate returns an *errors.Error of kind allocation instead.
package valueruntime
