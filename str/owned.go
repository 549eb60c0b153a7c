package str

import (
	"bytes"

	"github.com/wippyai/value-runtime/alloc"
	"github.com/wippyai/value-runtime/errors"
	"github.com/wippyai/value-runtime/format"
)

// noCopy makes go vet report copies of the struct that embeds it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Owned is a uniquely held string backed by an allocator block.
//
// The zero Owned is dead.
type Owned struct {
	noCopy noCopy

	alloc *alloc.Allocator
	block alloc.Block
	len   int64
}

// Alloc allocates a string of n bytes including the sentinel, which is written at
// index n-1. The content bytes before it are zero until the caller fills them.
// n must be positive.
func Alloc(a *alloc.Allocator, n int64) (*Owned, error) {
	if n <= 0 {
		errors.Violation(errors.InvalidSize(errors.PhaseString, n))
	}

	blk, err := a.Allocate(n)
	if err != nil {
		return nil, err
	}
	a.Bytes(blk)[n-1] = 0

	return &Owned{alloc: a, block: blk, len: n}, nil
}

// Release frees the buffer and resets s to the dead state.
// Releasing a dead string is a contract violation.
func (s *Owned) Release() {
	if s.IsDead() {
		errors.Violation(errors.DoubleRelease(errors.PhaseString, "owned string"))
	}

	s.alloc.Release(s.block)

	s.alloc = nil
	s.block = alloc.Block{}
	s.len = 0
}

// IsDead reports whether s has been released or moved from.
func (s *Owned) IsDead() bool {
	return s.block.IsNil() || s.len <= 0
}

// Move transfers ownership to the returned string and leaves s dead.
func (s *Owned) Move() *Owned {
	s.mustBeAlive()

	moved := &Owned{alloc: s.alloc, block: s.block, len: s.len}
	s.alloc = nil
	s.block = alloc.Block{}
	s.len = 0
	return moved
}

// Data returns the whole buffer, sentinel included. The slice may be written to and
// is valid while s is alive and no other string is allocated from the same
// linear-memory allocator.
func (s *Owned) Data() []byte {
	s.mustBeAlive()
	return s.alloc.Bytes(s.block)
}

// Len returns the length in bytes, sentinel included.
func (s *Owned) Len() int64 {
	s.mustBeAlive()
	return s.len
}

// Content returns the bytes before the sentinel.
func (s *Owned) Content() []byte {
	return s.Data()[:s.len-1]
}

// String returns the content read as a NUL-terminated sequence.
func (s *Owned) String() string {
	return cstring(s.Data())
}

// View borrows s without taking ownership.
func (s *Owned) View() View {
	s.mustBeAlive()
	return View{alloc: s.alloc, block: s.block, len: s.len}
}

func (s *Owned) mustBeAlive() {
	if s.IsDead() {
		errors.Violation(errors.UseAfterRelease(errors.PhaseString, "owned string"))
	}
}

// FromInt64 formats x in base 10 into a string sized exactly to fit.
func FromInt64(a *alloc.Allocator, x int64) (*Owned, error) {
	return formatted(a, format.MeasureInt(x), func(dst []byte) (int, error) {
		return format.WriteInt(dst, x)
	})
}

// FromFloat64 formats x in fixed-point notation with six decimals into a string
// sized exactly to fit.
func FromFloat64(a *alloc.Allocator, x float64) (*Owned, error) {
	return formatted(a, format.MeasureFloat(x), func(dst []byte) (int, error) {
		return format.WriteFloat(dst, x)
	})
}

// formatted allocates measured+1 bytes and runs the write pass into them. The write
// pass must produce exactly the measured number of bytes.
func formatted(a *alloc.Allocator, measured int, write func(dst []byte) (int, error)) (*Owned, error) {
	s, err := Alloc(a, int64(measured)+1)
	if err != nil {
		return nil, err
	}

	written, err := write(s.Data()[:measured])
	if err != nil || written != measured {
		s.Release()
		errors.Violation(errors.LengthMismatch(errors.PhaseString, measured, written))
	}
	return s, nil
}

func cstring(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}
