// Package alloc provides the allocation primitive behind owned strings.
//
// An Allocator hands out Blocks from a Backend and applies the process-wide policy for
// memory exhaustion:
//
//	PolicyAbort     - log and terminate the process with ExitOutOfMemory (default)
//	PolicyPropagate - return an allocation error to the caller
//
// Under PolicyAbort, Allocate never returns an error, so callers do not need to check.
//
// # Backends
//
// HeapBackend keeps blocks as Go slices in a handle table. LinearBackend carves blocks
// out of a WebAssembly linear memory instantiated with wazero; the memory grows one
// page at a time up to a configured maximum, and a refused grow is exhaustion.
//
//	backend, err := alloc.NewLinearBackend(ctx, alloc.LinearConfig{MaxPages: 16})
//	a := alloc.New(backend, alloc.WithPolicy(alloc.PolicyPropagate))
//	defer a.Close()
//
//	b, err := a.Allocate(32)
//	buf := a.Bytes(b)
//	a.Release(b)
//
// # Contract Violations
//
// Allocating zero or fewer bytes, releasing a block twice, releasing a block the
// allocator never produced and reading a released block are programmer errors. They
// panic with an *errors.Error instead of returning.
//
// Blocks carry a generation so that a stale Block is detected even after its slot or
// address has been reused.
//
// An Allocator is not safe for concurrent use.
package alloc
