// Package format provides the numeric-to-text primitives behind owned strings.
//
// Every conversion comes in two passes. The measure pass reports how many bytes the
// text needs and writes nothing; the write pass renders into a caller-supplied buffer:
//
//	n := format.MeasureInt(x)
//	buf := make([]byte, n)
//	written, err := format.WriteInt(buf, x)
//
// Integers are rendered in canonical base 10. Floats use fixed-point notation with six
// decimal places; NaN and the infinities render as "nan", "inf" and "-inf".
//
// Rendering is locale independent.
package format
