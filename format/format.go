package format

import (
	"math"
	"strconv"

	"github.com/wippyai/value-runtime/errors"
)

// FloatPrecision is the number of digits written after the decimal point.
const FloatPrecision = 6

// maxFloatLen covers the longest fixed-point float64: sign, 309 integer digits,
// point and FloatPrecision fraction digits.
const maxFloatLen = 1 + 309 + 1 + FloatPrecision

// MeasureInt returns the number of bytes needed to render x.
func MeasureInt(x int64) int {
	n := 1
	u := uint64(x)
	if x < 0 {
		n++
		u = -u
	}
	for u >= 10 {
		u /= 10
		n++
	}
	return n
}

// WriteInt renders x into dst and returns the number of bytes written.
func WriteInt(dst []byte, x int64) (int, error) {
	need := MeasureInt(x)
	if len(dst) < need {
		return 0, errors.OutOfBounds(errors.PhaseFormat, need, len(dst))
	}
	return len(strconv.AppendInt(dst[:0], x, 10)), nil
}

// MeasureFloat returns the number of bytes needed to render x.
func MeasureFloat(x float64) int {
	if s, ok := special(x); ok {
		return len(s)
	}
	var scratch [maxFloatLen]byte
	return len(strconv.AppendFloat(scratch[:0], x, 'f', FloatPrecision, 64))
}

// WriteFloat renders x into dst and returns the number of bytes written.
func WriteFloat(dst []byte, x float64) (int, error) {
	need := MeasureFloat(x)
	if len(dst) < need {
		return 0, errors.OutOfBounds(errors.PhaseFormat, need, len(dst))
	}
	if s, ok := special(x); ok {
		return copy(dst, s), nil
	}
	return len(strconv.AppendFloat(dst[:0], x, 'f', FloatPrecision, 64)), nil
}

// special returns the C-style spelling of NaN and the infinities.
func special(x float64) (string, bool) {
	switch {
	case math.IsNaN(x):
		return "nan", true
	case math.IsInf(x, 1):
		return "inf", true
	case math.IsInf(x, -1):
		return "-inf", true
	}
	return "", false
}
