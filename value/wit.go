package value

import "go.bytecodealliance.org/wit"

// WIT returns the WIT primitive with the same representation as t, or nil for an
// unknown tag.
func (t Tag) WIT() wit.Type {
	switch t {
	case TagInt32:
		return wit.S32{}
	case TagFloat32:
		return wit.F32{}
	}
	return nil
}

// WITName returns the WIT spelling of t ("s32", "f32"). Unknown tags fall back to
// String.
func (t Tag) WITName() string {
	if w := t.WIT(); w != nil {
		return w.WIT(nil, "")
	}
	return t.String()
}

// Bits returns the payload width in bits, taken from the canonical ABI size of the
// tag's WIT type. Unknown tags have width 0.
func (t Tag) Bits() int {
	if w := t.WIT(); w != nil {
		return int(w.Size()) * 8
	}
	return 0
}
