package alloc

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/value-runtime/errors"
)

// ExitOutOfMemory is the process exit status used by PolicyAbort.
const ExitOutOfMemory = 1

// Policy selects how an Allocator reacts to memory exhaustion.
type Policy uint8

const (
	// PolicyAbort terminates the process. Allocate never returns an error.
	PolicyAbort Policy = iota
	// PolicyPropagate returns an allocation error to the caller.
	PolicyPropagate
)

func (p Policy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicyPropagate:
		return "propagate"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a policy name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return PolicyAbort, nil
	case "propagate":
		return PolicyPropagate, nil
	}
	return 0, errors.InvalidInput(errors.PhaseAlloc, "unknown allocation policy "+s)
}

// Allocator applies the exhaustion policy on top of a Backend.
type Allocator struct {
	backend Backend
	exit    func(code int)
	log     *zap.Logger
	policy  Policy
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithPolicy sets the exhaustion policy.
func WithPolicy(p Policy) Option { return func(a *Allocator) { a.policy = p } }

// WithExit replaces os.Exit as the termination hook of PolicyAbort.
func WithExit(exit func(code int)) Option { return func(a *Allocator) { a.exit = exit } }

// WithLogger sets the logger used for exhaustion and misuse reports.
func WithLogger(l *zap.Logger) Option { return func(a *Allocator) { a.log = l } }

// New creates an Allocator over backend.
func New(backend Backend, opts ...Option) *Allocator {
	a := &Allocator{
		backend: backend,
		exit:    os.Exit,
		policy:  PolicyAbort,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = Logger()
	}
	return a
}

// NewHeap creates an Allocator over a fresh HeapBackend.
func NewHeap(opts ...Option) *Allocator {
	return New(NewHeapBackend(), opts...)
}

// Allocate returns a zeroed block of exactly size bytes. size must be positive.
//
// On exhaustion, PolicyAbort terminates the process and PolicyPropagate returns the
// allocation error.
func (a *Allocator) Allocate(size int64) (Block, error) {
	if size <= 0 {
		errors.Violation(errors.InvalidSize(errors.PhaseAlloc, size))
	}

	b, err := a.backend.Alloc(size)
	if err == nil {
		return b, nil
	}
	if !errors.HasKind(err, errors.KindAllocation) {
		errors.Violation(err)
	}

	if a.policy == PolicyPropagate {
		a.log.Debug("allocation failed", zap.Int64("size", size), zap.Error(err))
		return Block{}, err
	}

	a.log.Error("out of memory, aborting",
		zap.Int64("size", size),
		zap.Int("live_blocks", a.backend.Live()),
		zap.Error(err))
	_ = a.log.Sync()
	a.exit(ExitOutOfMemory)

	// Only reachable when the exit hook returns.
	panic(err)
}

// Release frees a block obtained from Allocate. Releasing it twice is a
// contract violation.
func (a *Allocator) Release(b Block) {
	if err := a.backend.Free(b); err != nil {
		a.log.Error("invalid release", zap.Uint32("addr", b.Addr), zap.Uint32("gen", b.Gen), zap.Error(err))
		errors.Violation(err)
	}
}

// Bytes returns the contents of a live block.
func (a *Allocator) Bytes(b Block) []byte {
	buf, err := a.backend.Bytes(b)
	if err != nil {
		errors.Violation(err)
	}
	return buf
}

// Live returns the number of outstanding blocks.
func (a *Allocator) Live() int {
	return a.backend.Live()
}

// Policy returns the exhaustion policy.
func (a *Allocator) Policy() Policy {
	return a.policy
}

// Backend returns the underlying backend.
func (a *Allocator) Backend() Backend {
	return a.backend
}

// Close releases the backend. Outstanding blocks are reported as leaks.
func (a *Allocator) Close() error {
	if n := a.backend.Live(); n > 0 {
		a.log.Warn("closing allocator with live blocks", zap.Int("live_blocks", n))
	}
	return a.backend.Close()
}
