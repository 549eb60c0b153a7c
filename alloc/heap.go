package alloc

import (
	"fmt"
	"math"
	"sync"

	"github.com/wippyai/value-runtime/errors"
)

// HeapBackend keeps blocks as Go slices in a handle table with slot reuse.
type HeapBackend struct {
	entries  []heapEntry
	freeList []uint32
	limit    int64
	used     int64
	gen      uint32
	mu       sync.Mutex
	closed   bool
}

type heapEntry struct {
	buf   []byte
	gen   uint32
	valid bool
}

// HeapOption configures a HeapBackend.
type HeapOption func(*HeapBackend)

// WithHeapLimit caps the total number of live bytes. Zero means no cap.
func WithHeapLimit(bytes int64) HeapOption {
	return func(b *HeapBackend) { b.limit = bytes }
}

// NewHeapBackend creates an in-memory backend.
func NewHeapBackend(opts ...HeapOption) *HeapBackend {
	b := &HeapBackend{
		entries:  make([]heapEntry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Alloc stores a fresh zeroed slice and returns its block.
func (b *HeapBackend) Alloc(size int64) (Block, error) {
	if size <= 0 {
		return Block{}, errors.InvalidSize(errors.PhaseAlloc, size)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return Block{}, errors.Closed(errors.PhaseAlloc, "heap backend")
	}
	if size > math.MaxInt32 || (b.limit > 0 && b.used+size > b.limit) {
		return Block{}, errors.AllocationFailed(errors.PhaseAlloc, size)
	}

	b.gen++
	e := heapEntry{
		buf:   make([]byte, size),
		gen:   b.gen,
		valid: true,
	}
	b.used += size

	if len(b.freeList) > 0 {
		addr := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[addr-1] = e
		return Block{Addr: addr, Gen: e.gen, Size: size}, nil
	}

	b.entries = append(b.entries, e)
	return Block{Addr: uint32(len(b.entries)), Gen: e.gen, Size: size}, nil
}

// Free invalidates the block's slot and makes it available for reuse.
func (b *HeapBackend) Free(blk Block) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, err := b.lookup(blk)
	if err != nil {
		if errors.HasKind(err, errors.KindUseAfterRelease) {
			return errors.DoubleRelease(errors.PhaseAlloc, blockName(blk))
		}
		return err
	}

	b.used -= int64(len(e.buf))
	e.valid = false
	e.buf = nil
	b.freeList = append(b.freeList, blk.Addr)
	return nil
}

// Bytes returns the block's slice.
func (b *HeapBackend) Bytes(blk Block) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, err := b.lookup(blk)
	if err != nil {
		return nil, err
	}
	return e.buf, nil
}

// lookup returns the live entry for blk. Must be called with mu held.
func (b *HeapBackend) lookup(blk Block) (*heapEntry, error) {
	if b.closed {
		return nil, errors.Closed(errors.PhaseAlloc, "heap backend")
	}
	if blk.IsNil() || int(blk.Addr) > len(b.entries) {
		return nil, errors.NotFound(errors.PhaseAlloc, "block", blockName(blk))
	}

	e := &b.entries[blk.Addr-1]
	if !e.valid || e.gen != blk.Gen {
		return nil, errors.UseAfterRelease(errors.PhaseAlloc, "block "+blockName(blk))
	}
	if int64(len(e.buf)) != blk.Size {
		return nil, errors.New(errors.PhaseAlloc, errors.KindInvalidSize).
			Value(blk.Size).
			Detail("block %s has %d bytes, not %d", blockName(blk), len(e.buf), blk.Size).
			Build()
	}
	return e, nil
}

// Live returns the number of outstanding blocks.
func (b *HeapBackend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Used returns the number of live bytes.
func (b *HeapBackend) Used() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Close drops every block.
func (b *HeapBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.entries = nil
	b.freeList = nil
	b.used = 0
	return nil
}

func blockName(b Block) string {
	return fmt.Sprintf("%#x/%d", b.Addr, b.Gen)
}
