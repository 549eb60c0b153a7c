// Package wasmbin encodes the minimal WebAssembly module that backs the linear-memory
// allocator: a single memory with explicit page limits, exported under a fixed name.
//
//	bin := wasmbin.MemoryModule(1, 16)
//	compiled, err := rt.CompileModule(ctx, bin)
//
// This package is internal to the allocator and should not be used directly.
package wasmbin
