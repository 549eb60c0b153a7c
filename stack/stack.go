// Package stack provides the fixed-capacity LIFO container of runtime values.
//
// A Stack never grows and never allocates after creation. Push reports a full stack
// by returning false; Pop reports an empty stack by returning false, which is the
// normal way to end a draining loop:
//
//	for {
//	    v, ok := s.Pop()
//	    if !ok {
//	        break
//	    }
//	    ...
//	}
//
// A Stack is not safe for concurrent use.
package stack

import (
	"iter"

	"go.uber.org/zap"

	"github.com/wippyai/value-runtime/errors"
	"github.com/wippyai/value-runtime/value"
)

// Capacity is the fixed number of slots in every Stack.
const Capacity = 4096

// Stack is a bounded LIFO of values. The zero Stack is empty and ready to use.
type Stack struct {
	elements [Capacity]value.Value
	height   int
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{}
}

// Push stores v on top. It returns false, leaving the stack unchanged, when the
// stack is full.
func (s *Stack) Push(v value.Value) bool {
	if s.height == Capacity {
		Logger().Debug("push rejected, stack full", zap.Int("capacity", Capacity), zap.Stringer("value", v))
		return false
	}
	s.elements[s.height] = v
	s.height++
	return true
}

// Pop removes and returns the top value. It returns false when the stack is empty.
func (s *Stack) Pop() (value.Value, bool) {
	if s.height == 0 {
		return value.Value{}, false
	}
	s.height--
	return s.elements[s.height], true
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (value.Value, bool) {
	return s.PeekN(0)
}

// PeekN returns the value n positions below the top; PeekN(0) is the top.
func (s *Stack) PeekN(n int) (value.Value, bool) {
	if n < 0 || n >= s.height {
		return value.Value{}, false
	}
	return s.elements[s.height-1-n], true
}

// Extend pushes vs in order, so the last element ends on top. Nothing is pushed
// when vs does not fit.
func (s *Stack) Extend(vs ...value.Value) error {
	if len(vs) > Capacity-s.height {
		return errors.New(errors.PhaseStack, errors.KindOverflow).
			Value(len(vs)).
			Detail("cannot push %d values onto %d of %d slots", len(vs), s.height, Capacity).
			Build()
	}
	s.height += copy(s.elements[s.height:], vs)
	return nil
}

// Height returns the number of values on the stack.
func (s *Stack) Height() int {
	return s.height
}

// Cap returns the fixed capacity.
func (s *Stack) Cap() int {
	return Capacity
}

// IsEmpty reports whether the stack holds no values.
func (s *Stack) IsEmpty() bool {
	return s.height == 0
}

// IsFull reports whether a Push would be rejected.
func (s *Stack) IsFull() bool {
	return s.height == Capacity
}

// Clear removes every value.
func (s *Stack) Clear() {
	s.height = 0
}

// All yields the values from bottom to top without removing them.
func (s *Stack) All() iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		for i := 0; i < s.height; i++ {
			if !yield(s.elements[i]) {
				return
			}
		}
	}
}

// Drain pops and yields values from top to bottom until the stack is empty or the
// loop stops.
func (s *Stack) Drain() iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		for {
			v, ok := s.Pop()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
