package str

import (
	"github.com/wippyai/value-runtime/alloc"
	"github.com/wippyai/value-runtime/errors"
)

// View is a borrowed, read-only reference to an owned string's buffer.
// The zero View is invalid.
type View struct {
	alloc *alloc.Allocator
	block alloc.Block
	len   int64
}

// Data returns the buffer, sentinel included.
// Reading a view whose owner has been released is a contract violation.
func (v View) Data() []byte {
	if v.block.IsNil() || v.len <= 0 {
		errors.Violation(errors.UseAfterRelease(errors.PhaseString, "string view"))
	}
	return v.alloc.Bytes(v.block)
}

// Len returns the length in bytes, sentinel included.
func (v View) Len() int64 {
	_ = v.Data()
	return v.len
}

// String returns the content read as a NUL-terminated sequence.
func (v View) String() string {
	return cstring(v.Data())
}
