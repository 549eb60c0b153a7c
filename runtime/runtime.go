package runtime

import (
	"context"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/value-runtime/alloc"
	"github.com/wippyai/value-runtime/errors"
	"github.com/wippyai/value-runtime/stack"
	"github.com/wippyai/value-runtime/str"
	"github.com/wippyai/value-runtime/value"
)

// DemoValues are pushed, in order, by Demo.
var DemoValues = []value.Value{
	value.Int32(87),
	value.Int32(-32),
	value.Float32(345.75),
}

// Runtime is one session: an allocator, a value stack and the formatting path
// between them. It is not safe for concurrent use.
type Runtime struct {
	alloc  *alloc.Allocator
	stack  *stack.Stack
	log    *zap.Logger
	cfg    Config
	closed bool
}

type options struct {
	exit   func(code int)
	logger *zap.Logger
}

// Option configures a Runtime.
type Option func(*options)

// WithExit replaces os.Exit as the abort-policy termination hook.
func WithExit(exit func(code int)) Option { return func(o *options) { o.exit = exit } }

// WithLogger sets the session logger. The allocator logs through it as well.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// New validates cfg and builds the allocator backend and an empty stack.
func New(ctx context.Context, cfg Config, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindAllocation, err, "create "+cfg.Backend+" backend")
	}

	policy, _ := alloc.ParsePolicy(cfg.Policy)
	allocOpts := []alloc.Option{alloc.WithPolicy(policy), alloc.WithLogger(log)}
	if o.exit != nil {
		allocOpts = append(allocOpts, alloc.WithExit(o.exit))
	}

	log.Debug("runtime created",
		zap.String("backend", cfg.Backend),
		zap.Stringer("policy", policy),
		zap.Int("stack_capacity", stack.Capacity))

	return &Runtime{
		alloc: alloc.New(backend, allocOpts...),
		stack: stack.New(),
		log:   log,
		cfg:   cfg,
	}, nil
}

func newBackend(ctx context.Context, cfg Config) (alloc.Backend, error) {
	if cfg.Backend == BackendLinear {
		return alloc.NewLinearBackend(ctx, cfg.Linear)
	}
	var opts []alloc.HeapOption
	if cfg.HeapLimit > 0 {
		opts = append(opts, alloc.WithHeapLimit(cfg.HeapLimit))
	}
	return alloc.NewHeapBackend(opts...), nil
}

// Config returns the configuration the session was built from.
func (r *Runtime) Config() Config {
	return r.cfg
}

// Allocator returns the session allocator.
func (r *Runtime) Allocator() *alloc.Allocator {
	return r.alloc
}

// Stack returns the session value stack.
func (r *Runtime) Stack() *stack.Stack {
	return r.stack
}

// Push pushes v, returning an overflow error when the stack is full.
func (r *Runtime) Push(v value.Value) error {
	if !r.stack.Push(v) {
		return errors.StackOverflow(stack.Capacity)
	}
	return nil
}

// PushLiteral parses a numeric literal and pushes the resulting value.
func (r *Runtime) PushLiteral(lit string) (value.Value, error) {
	v, err := value.ParseLiteral(lit)
	if err != nil {
		return value.Value{}, err
	}
	return v, r.Push(v)
}

// Pop removes the top value. It returns false when the stack is empty.
func (r *Runtime) Pop() (value.Value, bool) {
	return r.stack.Pop()
}

// Format renders v through an owned string and returns a Go copy of its content.
func (r *Runtime) Format(v value.Value) (string, error) {
	s, err := value.ToString(r.alloc, v)
	if err != nil {
		return "", err
	}
	defer s.Release()
	return s.String(), nil
}

// WriteValue renders v followed by a newline to w. The owned string is released
// before WriteValue returns, including when the write fails.
func (r *Runtime) WriteValue(w io.Writer, v value.Value) error {
	s, err := value.ToString(r.alloc, v)
	if err != nil {
		return err
	}
	defer s.Release()
	return writeLine(w, s)
}

func writeLine(w io.Writer, s *str.Owned) error {
	if _, err := w.Write(s.Content()); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindIO, err, "write value")
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindIO, err, "write value")
	}
	return nil
}

// Drain pops every value and writes it to w, one per line, top first. It stops
// at the first error with the failing value back on top of the stack.
func (r *Runtime) Drain(w io.Writer) error {
	for {
		v, ok := r.stack.Pop()
		if !ok {
			return nil
		}
		if err := r.WriteValue(w, v); err != nil {
			r.stack.Push(v)
			return err
		}
	}
}

// PopFormat pops the top value and formats it. ok is false when the stack is empty.
// When formatting fails the value is pushed back and the stack is unchanged.
func (r *Runtime) PopFormat() (s string, ok bool, err error) {
	v, ok := r.stack.Pop()
	if !ok {
		return "", false, nil
	}
	if s, err = r.Format(v); err != nil {
		r.stack.Push(v)
		return "", true, err
	}
	return s, true, nil
}

// Print writes the stack contents to w, bottom first, without popping.
func (r *Runtime) Print(w io.Writer) error {
	for v := range r.stack.All() {
		if err := r.WriteValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

// Reset empties the stack.
func (r *Runtime) Reset() {
	r.log.Debug("stack cleared", zap.Int("height", r.stack.Height()))
	r.stack.Clear()
}

// Demo pushes DemoValues and drains the stack to w.
func (r *Runtime) Demo(w io.Writer) error {
	if err := r.stack.Extend(DemoValues...); err != nil {
		return err
	}
	return r.Drain(w)
}

// Close releases the allocator backend. Blocks still live at this point are
// reported as a leak error alongside any backend close error.
func (r *Runtime) Close(ctx context.Context) error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if live := r.alloc.Live(); live > 0 {
		err = multierr.Append(err, errors.Leak(errors.PhaseRuntime, live))
	}
	err = multierr.Append(err, r.alloc.Close())

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = multierr.Append(err, errors.Wrap(errors.PhaseRuntime, errors.KindClosed, ctxErr, "close"))
	}

	r.log.Debug("runtime closed", zap.Int("remaining", r.stack.Height()), zap.Error(err))
	return err
}
