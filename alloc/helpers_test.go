package alloc

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/value-runtime/errors"
)

// expectViolation runs fn and fails unless it panics with an *errors.Error of kind.
func expectViolation(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected %s violation, got none", kind)
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("recovered %T (%v), want error", r, r)
		}
		var e *errors.Error
		if !stderrors.As(err, &e) {
			t.Fatalf("recovered %v, want *errors.Error", err)
		}
		if e.Kind != kind {
			t.Fatalf("violation kind = %s, want %s (%v)", e.Kind, kind, e)
		}
	}()
	fn()
}
