// Package str provides length-tracked, NUL-terminated byte strings with explicit
// ownership.
//
// An *Owned string exclusively owns one allocator block. Its length counts the trailing
// NUL sentinel, so a live string always has Len() > 0 and Data()[Len()-1] == 0. The owner
// must call Release exactly once; afterwards the string is reset to a dead state (null
// block, zero length) and any further use panics instead of reading freed memory.
//
// Owned strings are move-only. Handle them through the *Owned pointer and hand ownership
// over with Move, which leaves the source dead. Copying the struct itself is flagged by
// go vet.
//
// A View is a non-owning (block, length) pair. It has no release duty and is valid only
// while its owner is alive; reading a view of a released string panics.
//
//	s, err := str.FromInt64(a, -32)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(s.String()) // "-32"
//	s.Release()
package str
