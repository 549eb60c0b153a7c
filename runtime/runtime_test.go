package runtime

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/value-runtime/alloc"
	"github.com/wippyai/value-runtime/errors"
	"github.com/wippyai/value-runtime/stack"
	"github.com/wippyai/value-runtime/value"
)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func configs() map[string]Config {
	heap := DefaultConfig()

	linear := DefaultConfig()
	linear.Backend = BackendLinear
	linear.Linear = alloc.LinearConfig{InitialPages: 1, MaxPages: 2}

	return map[string]Config{"heap": heap, "linear": linear}
}

func newRuntime(t *testing.T, cfg Config, opts ...Option) *Runtime {
	t.Helper()
	ctx := context.Background()
	r, err := New(ctx, cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := r.Close(ctx); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return r
}

func TestDemo(t *testing.T) {
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			r := newRuntime(t, cfg)

			var out bytes.Buffer
			if err := r.Demo(&out); err != nil {
				t.Fatalf("Demo: %v", err)
			}
			newGolden(t).Assert(t, "demo", out.Bytes())

			if r.Stack().Height() != 0 {
				t.Errorf("stack height %d after demo", r.Stack().Height())
			}
			if r.Allocator().Live() != 0 {
				t.Errorf("%d blocks live after demo", r.Allocator().Live())
			}
		})
	}
}

func TestPrint_BottomFirst(t *testing.T) {
	r := newRuntime(t, DefaultConfig())
	for _, v := range DemoValues {
		if err := r.Push(v); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	if err := r.Print(&out); err != nil {
		t.Fatalf("Print: %v", err)
	}
	newGolden(t).Assert(t, "print", out.Bytes())

	if r.Stack().Height() != len(DemoValues) {
		t.Errorf("Print changed height to %d", r.Stack().Height())
	}
	r.Reset()
}

func TestDrain_Extremes(t *testing.T) {
	r := newRuntime(t, DefaultConfig())
	err := r.Stack().Extend(
		value.Int32(math.MaxInt32),
		value.Int32(math.MinInt32),
		value.Float32(-0.5),
		value.Float32(1e10),
		value.Float32(float32(math.NaN())),
	)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := r.Drain(&out); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	newGolden(t).Assert(t, "extremes", out.Bytes())
}

func TestPushLiteral(t *testing.T) {
	r := newRuntime(t, DefaultConfig())

	v, err := r.PushLiteral("345.75")
	if err != nil {
		t.Fatalf("PushLiteral: %v", err)
	}
	if !v.Is(value.TagFloat32) {
		t.Errorf("tag = %s, want f32", v.Tag())
	}

	if _, err := r.PushLiteral("abc"); !errors.HasKind(err, errors.KindInvalidInput) {
		t.Errorf("err = %v, want invalid_input", err)
	}
	if r.Stack().Height() != 1 {
		t.Errorf("height = %d, rejected literal must not push", r.Stack().Height())
	}
	r.Reset()
}

func TestPush_Overflow(t *testing.T) {
	r := newRuntime(t, DefaultConfig())
	for i := 0; i < stack.Capacity; i++ {
		if err := r.Push(value.Int32(1)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := r.Push(value.Int32(1)); !errors.HasKind(err, errors.KindOverflow) {
		t.Fatalf("err = %v, want overflow", err)
	}
	r.Reset()
}

func TestFormat(t *testing.T) {
	r := newRuntime(t, DefaultConfig())
	tests := []struct {
		v    value.Value
		want string
	}{
		{value.Int32(87), "87"},
		{value.Int32(-32), "-32"},
		{value.Float32(345.75), "345.750000"},
		{value.Float32(0), "0.000000"},
	}
	for _, tt := range tests {
		got, err := r.Format(tt.v)
		if err != nil {
			t.Fatalf("Format(%s): %v", tt.v, err)
		}
		if got != tt.want {
			t.Errorf("Format(%s) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestPropagate_Exhaustion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = "propagate"
	cfg.HeapLimit = 8
	r := newRuntime(t, cfg)

	if _, err := r.Format(value.Float32(345.75)); !errors.HasKind(err, errors.KindAllocation) {
		t.Fatalf("err = %v, want allocation", err)
	}
	if got, err := r.Format(value.Int32(87)); err != nil || got != "87" {
		t.Fatalf("Format after exhaustion = %q, %v", got, err)
	}
}

type exitCalled struct{ code int }

func TestAbort_Exhaustion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeapLimit = 4

	core, logs := observer.New(zap.ErrorLevel)
	exit := func(code int) { panic(exitCalled{code}) }
	r := newRuntime(t, cfg, WithExit(exit), WithLogger(zap.New(core)))

	defer func() {
		got, ok := recover().(exitCalled)
		if !ok {
			t.Fatal("exit hook not called")
		}
		if got.code != alloc.ExitOutOfMemory {
			t.Errorf("exit code = %d, want %d", got.code, alloc.ExitOutOfMemory)
		}
		if logs.FilterMessage("out of memory, aborting").Len() != 1 {
			t.Errorf("abort not logged: %v", logs.All())
		}
	}()
	_ = r.Demo(&bytes.Buffer{})
}

func TestDrain_PropagateKeepsFailingValue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = "propagate"
	cfg.HeapLimit = 8
	r := newRuntime(t, cfg)
	_ = r.Stack().Extend(value.Int32(87), value.Float32(345.75))

	var out bytes.Buffer
	if err := r.Drain(&out); !errors.HasKind(err, errors.KindAllocation) {
		t.Fatalf("err = %v, want allocation", err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}
	if top, _ := r.Stack().Peek(); r.Stack().Height() != 2 || top != value.Float32(345.75) {
		t.Fatalf("height = %d top = %s, want the failing value back on top", r.Stack().Height(), top)
	}
	r.Reset()
}

func TestPopFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = "propagate"
	cfg.HeapLimit = 8
	r := newRuntime(t, cfg)

	if _, ok, err := r.PopFormat(); ok || err != nil {
		t.Fatalf("PopFormat on empty = ok %v, err %v", ok, err)
	}

	_ = r.Stack().Extend(value.Int32(87), value.Float32(345.75))
	if _, ok, err := r.PopFormat(); !ok || !errors.HasKind(err, errors.KindAllocation) {
		t.Fatalf("PopFormat = ok %v, err %v; want allocation error", ok, err)
	}
	if r.Stack().Height() != 2 {
		t.Fatalf("height = %d after failed PopFormat, want 2", r.Stack().Height())
	}

	top, _ := r.Stack().Pop()
	if top != value.Float32(345.75) {
		t.Fatalf("top = %s, want f32(345.75)", top)
	}
	s, ok, err := r.PopFormat()
	if !ok || err != nil || s != "87" {
		t.Fatalf("PopFormat = %q, %v, %v; want \"87\"", s, ok, err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.Closed(errors.PhaseRuntime, "writer") }

func TestDrain_WriteError(t *testing.T) {
	r := newRuntime(t, DefaultConfig())
	_ = r.Stack().Extend(DemoValues...)

	err := r.Drain(failingWriter{})
	if !errors.HasKind(err, errors.KindIO) {
		t.Fatalf("err = %v, want io", err)
	}
	if r.Stack().Height() != len(DemoValues) {
		t.Errorf("height = %d, failing value must stay on the stack", r.Stack().Height())
	}
	if r.Allocator().Live() != 0 {
		t.Errorf("failed write leaked %d blocks", r.Allocator().Live())
	}
	r.Reset()
}

func TestClose_ReportsLeak(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Allocator().Allocate(16); err != nil {
		t.Fatal(err)
	}

	err = r.Close(ctx)
	if !errors.HasKind(err, errors.KindLeak) {
		t.Fatalf("err = %v, want leak", err)
	}
	if n := len(multierr.Errors(err)); n != 1 {
		t.Errorf("got %d combined errors, want 1", n)
	}
	if err := r.Close(ctx); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "disk"
	if _, err := New(context.Background(), cfg); !errors.HasKind(err, errors.KindInvalidInput) {
		t.Fatalf("err = %v, want invalid_input", err)
	}
}
