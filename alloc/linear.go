package alloc

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/value-runtime/errors"
	"github.com/wippyai/value-runtime/internal/wasmbin"
)

// blockAlign is the alignment of every block in linear memory.
const blockAlign = 8

// LinearConfig sizes the linear memory behind a LinearBackend.
type LinearConfig struct {
	// InitialPages is the memory size at instantiation. Zero means one page.
	InitialPages uint32 `yaml:"initial_pages"`
	// MaxPages caps growth. Zero means the 32-bit limit of 65536 pages.
	MaxPages uint32 `yaml:"max_pages"`
}

// LinearBackend carves blocks out of a wazero linear memory.
//
// Slices returned by Bytes alias the memory and stay valid only until the next Alloc,
// which may grow and move it.
type LinearBackend struct {
	ctx      context.Context
	rt       wazero.Runtime
	mod      api.Module
	mem      api.Memory
	live     map[uint32]linearBlock
	freed    map[uint32]struct{}
	buckets  map[uint32][]uint32
	next     uint32
	gen      uint32
	maxPages uint32
	closed   bool
}

type linearBlock struct {
	size int64
	gen  uint32
}

// NewLinearBackend instantiates a memory-only module and allocates from its memory.
func NewLinearBackend(ctx context.Context, cfg LinearConfig) (*LinearBackend, error) {
	initial := cfg.InitialPages
	if initial == 0 {
		initial = 1
	}
	maxPages := cfg.MaxPages
	if maxPages == 0 {
		maxPages = wasmbin.MaxPages
	}
	if initial > maxPages || maxPages > wasmbin.MaxPages {
		return nil, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Detail("invalid page limits: initial %d, max %d", initial, maxPages).
			Build()
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(maxPages))

	compiled, err := rt.CompileModule(ctx, wasmbin.MemoryModule(initial, maxPages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseAlloc, errors.KindInvalidInput, err, "compile memory module")
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseAlloc, errors.KindInvalidInput, err, "instantiate memory module")
	}

	mem := mod.ExportedMemory(wasmbin.MemoryExport)
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseAlloc, "memory export", wasmbin.MemoryExport)
	}

	return &LinearBackend{
		ctx:      ctx,
		rt:       rt,
		mod:      mod,
		mem:      mem,
		live:     make(map[uint32]linearBlock),
		freed:    make(map[uint32]struct{}),
		buckets:  make(map[uint32][]uint32),
		next:     blockAlign, // address 0 is the null block
		maxPages: maxPages,
	}, nil
}

// Alloc reuses a freed block of the same aligned size or bumps into fresh memory,
// growing the memory when needed.
func (l *LinearBackend) Alloc(size int64) (Block, error) {
	if size <= 0 {
		return Block{}, errors.InvalidSize(errors.PhaseAlloc, size)
	}
	if l.closed {
		return Block{}, errors.Closed(errors.PhaseAlloc, "linear backend")
	}
	if size > math.MaxUint32-blockAlign {
		return Block{}, errors.AllocationFailed(errors.PhaseAlloc, size)
	}

	aligned := alignTo(uint32(size), blockAlign)

	if addrs := l.buckets[aligned]; len(addrs) > 0 {
		addr := addrs[len(addrs)-1]
		l.buckets[aligned] = addrs[:len(addrs)-1]
		delete(l.freed, addr)

		buf, ok := l.mem.Read(addr, aligned)
		if !ok {
			return Block{}, errors.OutOfBounds(errors.PhaseAlloc, int(addr), int(l.mem.Size()))
		}
		clear(buf)
		return l.track(addr, size), nil
	}

	addr := l.next
	end := uint64(addr) + uint64(aligned)
	if end >= math.MaxUint32 {
		return Block{}, errors.AllocationFailed(errors.PhaseAlloc, size)
	}
	if end > uint64(l.mem.Size()) {
		delta := uint32((end - uint64(l.mem.Size()) + wasmbin.PageSize - 1) / wasmbin.PageSize)
		if _, ok := l.mem.Grow(delta); !ok {
			return Block{}, errors.New(errors.PhaseAlloc, errors.KindAllocation).
				Value(size).
				Detail("failed to allocate %d bytes: linear memory cannot grow by %d pages past %d",
					size, delta, l.mem.Size()/wasmbin.PageSize).
				Build()
		}
	}
	l.next = uint32(end)
	return l.track(addr, size), nil
}

func (l *LinearBackend) track(addr uint32, size int64) Block {
	l.gen++
	l.live[addr] = linearBlock{size: size, gen: l.gen}
	return Block{Addr: addr, Gen: l.gen, Size: size}
}

// Free returns the block's memory to its size bucket.
func (l *LinearBackend) Free(b Block) error {
	if err := l.check(b); err != nil {
		if errors.HasKind(err, errors.KindUseAfterRelease) {
			return errors.DoubleRelease(errors.PhaseAlloc, blockName(b))
		}
		return err
	}

	delete(l.live, b.Addr)
	l.freed[b.Addr] = struct{}{}
	aligned := alignTo(uint32(b.Size), blockAlign)
	l.buckets[aligned] = append(l.buckets[aligned], b.Addr)
	return nil
}

// Bytes returns a view of the block inside linear memory.
func (l *LinearBackend) Bytes(b Block) ([]byte, error) {
	if err := l.check(b); err != nil {
		return nil, err
	}
	buf, ok := l.mem.Read(b.Addr, uint32(b.Size))
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseAlloc, int(b.Addr), int(l.mem.Size()))
	}
	return buf, nil
}

func (l *LinearBackend) check(b Block) error {
	if l.closed {
		return errors.Closed(errors.PhaseAlloc, "linear backend")
	}
	lb, ok := l.live[b.Addr]
	switch {
	case ok && lb.gen == b.Gen && lb.size == b.Size:
		return nil
	case ok && lb.gen != b.Gen:
		return errors.UseAfterRelease(errors.PhaseAlloc, "block "+blockName(b))
	case ok:
		return errors.New(errors.PhaseAlloc, errors.KindInvalidSize).
			Value(b.Size).
			Detail("block %s has %d bytes, not %d", blockName(b), lb.size, b.Size).
			Build()
	}
	if _, wasFreed := l.freed[b.Addr]; wasFreed {
		return errors.UseAfterRelease(errors.PhaseAlloc, "block "+blockName(b))
	}
	return errors.NotFound(errors.PhaseAlloc, "block", blockName(b))
}

// Live returns the number of outstanding blocks.
func (l *LinearBackend) Live() int {
	return len(l.live)
}

// Pages returns the current memory size in pages.
func (l *LinearBackend) Pages() uint32 {
	if l.closed {
		return 0
	}
	return l.mem.Size() / wasmbin.PageSize
}

// MaxPages returns the page limit.
func (l *LinearBackend) MaxPages() uint32 {
	return l.maxPages
}

// Close tears down the module and its runtime.
func (l *LinearBackend) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.live = nil
	l.freed = nil
	l.buckets = nil
	return l.rt.Close(l.ctx)
}

func alignTo(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}
