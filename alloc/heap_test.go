package alloc

import (
	"sync"
	"testing"

	"github.com/wippyai/value-runtime/errors"
)

func TestHeapBackend_Basic(t *testing.T) {
	b := NewHeapBackend()

	blk, err := b.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if blk.IsNil() {
		t.Fatal("Expected non-nil block")
	}
	if blk.Size != 16 {
		t.Fatalf("Expected size 16, got %d", blk.Size)
	}

	buf, err := b.Bytes(blk)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if len(buf) != 16 {
		t.Fatalf("Expected 16 bytes, got %d", len(buf))
	}
	for i, c := range buf {
		if c != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, c)
		}
	}

	if err := b.Free(blk); err != nil {
		t.Fatalf("Free failed: %v", err)
	}
	if _, err := b.Bytes(blk); !errors.HasKind(err, errors.KindUseAfterRelease) {
		t.Fatalf("Bytes after Free: err = %v, want use_after_release", err)
	}
}

func TestHeapBackend_DoubleFree(t *testing.T) {
	b := NewHeapBackend()
	blk, _ := b.Alloc(8)

	if err := b.Free(blk); err != nil {
		t.Fatalf("first Free failed: %v", err)
	}
	if err := b.Free(blk); !errors.HasKind(err, errors.KindDoubleRelease) {
		t.Fatalf("second Free: err = %v, want double_release", err)
	}
}

func TestHeapBackend_StaleBlockAfterReuse(t *testing.T) {
	b := NewHeapBackend()

	old, _ := b.Alloc(8)
	_ = b.Free(old)
	reused, _ := b.Alloc(8)

	if reused.Addr != old.Addr {
		t.Fatalf("expected slot reuse, got %#x then %#x", old.Addr, reused.Addr)
	}
	if reused.Gen == old.Gen {
		t.Fatal("reused slot must carry a new generation")
	}
	if _, err := b.Bytes(old); !errors.HasKind(err, errors.KindUseAfterRelease) {
		t.Fatalf("stale Bytes: err = %v, want use_after_release", err)
	}
	if err := b.Free(old); !errors.HasKind(err, errors.KindDoubleRelease) {
		t.Fatalf("stale Free: err = %v, want double_release", err)
	}
	if _, err := b.Bytes(reused); err != nil {
		t.Fatalf("reused block should stay valid: %v", err)
	}
}

func TestHeapBackend_ForeignBlock(t *testing.T) {
	b := NewHeapBackend()

	tests := []struct {
		name string
		blk  Block
	}{
		{"nil block", Block{}},
		{"unknown addr", Block{Addr: 99, Gen: 1, Size: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.Free(tt.blk); !errors.HasKind(err, errors.KindNotFound) {
				t.Errorf("Free: err = %v, want not_found", err)
			}
			if _, err := b.Bytes(tt.blk); !errors.HasKind(err, errors.KindNotFound) {
				t.Errorf("Bytes: err = %v, want not_found", err)
			}
		})
	}
}

func TestHeapBackend_Limit(t *testing.T) {
	b := NewHeapBackend(WithHeapLimit(32))

	first, err := b.Alloc(24)
	if err != nil {
		t.Fatalf("Alloc within limit failed: %v", err)
	}
	if _, err := b.Alloc(16); !errors.HasKind(err, errors.KindAllocation) {
		t.Fatalf("Alloc past limit: err = %v, want allocation", err)
	}
	if b.Used() != 24 {
		t.Fatalf("Used() = %d, want 24", b.Used())
	}

	_ = b.Free(first)
	if _, err := b.Alloc(32); err != nil {
		t.Fatalf("Alloc after Free should fit: %v", err)
	}
}

func TestHeapBackend_InvalidSize(t *testing.T) {
	b := NewHeapBackend()
	for _, size := range []int64{0, -1} {
		if _, err := b.Alloc(size); !errors.HasKind(err, errors.KindInvalidSize) {
			t.Errorf("Alloc(%d): err = %v, want invalid_size", size, err)
		}
	}
}

func TestHeapBackend_Close(t *testing.T) {
	b := NewHeapBackend()
	_, _ = b.Alloc(4)

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := b.Alloc(4); !errors.HasKind(err, errors.KindClosed) {
		t.Fatalf("Alloc after Close: err = %v, want closed", err)
	}
	if b.Live() != 0 {
		t.Fatalf("Live() after Close = %d", b.Live())
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestHeapBackend_Live(t *testing.T) {
	b := NewHeapBackend()

	if b.Live() != 0 {
		t.Fatal("Expected Live() == 0 initially")
	}

	b1, _ := b.Alloc(1)
	_, _ = b.Alloc(2)
	_, _ = b.Alloc(3)
	if b.Live() != 3 {
		t.Fatalf("Expected Live() == 3, got %d", b.Live())
	}

	_ = b.Free(b1)
	if b.Live() != 2 {
		t.Fatalf("Expected Live() == 2, got %d", b.Live())
	}
}

func TestHeapBackend_Concurrent(t *testing.T) {
	b := NewHeapBackend()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(size int64) {
			defer wg.Done()
			blk, err := b.Alloc(size)
			if err != nil {
				t.Errorf("Alloc: %v", err)
				return
			}
			if _, err := b.Bytes(blk); err != nil {
				t.Errorf("Bytes: %v", err)
			}
			if err := b.Free(blk); err != nil {
				t.Errorf("Free: %v", err)
			}
		}(int64(i + 1))
	}

	wg.Wait()
	if b.Live() != 0 {
		t.Fatalf("Live() = %d after all frees", b.Live())
	}
}
