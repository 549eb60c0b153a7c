// Package value defines the tagged scalar values handled by the runtime.
package value

import (
	"fmt"
	"math"

	"github.com/wippyai/value-runtime/alloc"
	"github.com/wippyai/value-runtime/errors"
	"github.com/wippyai/value-runtime/str"
)

// Tag identifies which variant a Value holds.
type Tag uint8

const (
	TagInt32 Tag = iota
	TagFloat32

	tagCount
)

func (t Tag) String() string {
	switch t {
	case TagInt32:
		return "i32"
	case TagFloat32:
		return "f32"
	default:
		return fmt.Sprintf("unknown_tag_%d", uint8(t))
	}
}

// Valid reports whether t is one of the defined variants.
func (t Tag) Valid() bool {
	return t < tagCount
}

// Tags returns every defined variant in declaration order.
func Tags() []Tag {
	tags := make([]Tag, 0, tagCount)
	for t := Tag(0); t < tagCount; t++ {
		tags = append(tags, t)
	}
	return tags
}

// Value holds one 32-bit integer or one 32-bit float. Values are immutable, own no
// resources and are copied freely.
//
// The payload is stored inline so that a Value never needs a heap allocation.
type Value struct {
	bits uint32
	tag  Tag
}

// Int32 returns a Value holding x.
func Int32(x int32) Value {
	return Value{tag: TagInt32, bits: uint32(x)}
}

// Float32 returns a Value holding x.
func Float32(x float32) Value {
	return Value{tag: TagFloat32, bits: math.Float32bits(x)}
}

// Tag returns the variant held by v.
func (v Value) Tag() Tag {
	return v.tag
}

// Is reports whether v holds the given variant.
func (v Value) Is(t Tag) bool {
	return v.tag == t
}

// Int32Value returns the integer payload and whether v holds one.
func (v Value) Int32Value() (int32, bool) {
	if v.tag != TagInt32 {
		return 0, false
	}
	return int32(v.bits), true
}

// Float32Value returns the float payload and whether v holds one.
func (v Value) Float32Value() (float32, bool) {
	if v.tag != TagFloat32 {
		return 0, false
	}
	return math.Float32frombits(v.bits), true
}

// String renders v for logs and debugging. Use ToString for owned output.
func (v Value) String() string {
	switch v.tag {
	case TagInt32:
		return fmt.Sprintf("%s(%d)", v.tag, int32(v.bits))
	case TagFloat32:
		return fmt.Sprintf("%s(%g)", v.tag, math.Float32frombits(v.bits))
	default:
		return v.tag.String()
	}
}

// ToString formats v into a freshly allocated owned string. Int32 is widened to
// int64 and Float32 to float64 before formatting. A Value with an unknown tag is a
// contract violation.
func ToString(a *alloc.Allocator, v Value) (*str.Owned, error) {
	switch v.tag {
	case TagInt32:
		return str.FromInt64(a, int64(int32(v.bits)))
	case TagFloat32:
		return str.FromFloat64(a, float64(math.Float32frombits(v.bits)))
	}
	errors.Violation(errors.InvalidDiscriminant(errors.PhaseValue, uint32(v.tag), uint32(tagCount-1)))
	panic("unreachable")
}
