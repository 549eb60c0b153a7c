package value

import (
	"strconv"
	"strings"

	"github.com/wippyai/value-runtime/errors"
)

// ParseLiteral converts a numeric literal to a Value. Literals without a decimal
// point or exponent become Int32; all other numeric literals become Float32.
func ParseLiteral(s string) (Value, error) {
	lit := strings.TrimSpace(s)
	if lit == "" {
		return Value{}, errors.InvalidInput(errors.PhaseValue, "empty literal")
	}

	if !strings.ContainsAny(lit, ".eE") {
		x, err := strconv.ParseInt(lit, 10, TagInt32.Bits())
		if err != nil {
			return Value{}, errors.Wrap(errors.PhaseValue, errors.KindInvalidInput, err,
				"invalid "+TagInt32.WITName()+" literal "+strconv.Quote(lit))
		}
		return Int32(int32(x)), nil
	}

	if strings.ContainsAny(lit, "xXpP_") {
		return Value{}, errors.InvalidInput(errors.PhaseValue, "invalid "+TagFloat32.WITName()+" literal "+strconv.Quote(lit))
	}
	x, err := strconv.ParseFloat(lit, TagFloat32.Bits())
	if err != nil {
		return Value{}, errors.Wrap(errors.PhaseValue, errors.KindInvalidInput, err,
			"invalid "+TagFloat32.WITName()+" literal "+strconv.Quote(lit))
	}
	return Float32(float32(x)), nil
}
