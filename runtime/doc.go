// Package runtime wires the value runtime into a session.
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
//	rt.Push(value.Float32(345.75))
//	rt.Drain(os.Stdout) // "345.750000\n87\n"
//
// # Configuration
//
// A session is described by Config, either built in code or loaded from YAML with
// LoadConfig. The backend is "heap" (Go-managed handle table) or "linear" (a wazero
// linear memory); the policy is "abort" (log and exit with alloc.ExitOutOfMemory) or
// "propagate" (return the allocation error).
//
// # Output
//
// Every value is printed by formatting it into an owned string, writing the string's
// content and a newline, then releasing the string. Drain pops top first; Print walks
// bottom first and leaves the stack untouched.
//
// # Shutdown
//
// Close reports blocks still live as an errors.KindLeak error, combined with any
// backend close error.
package runtime
