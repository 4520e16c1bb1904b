package core

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// ErrNotFinite is returned for NaN and infinite decimal tokens.
var ErrNotFinite = errors.New("decimal is not finite")

// maxExactMagnitude is the bound below which one float64 ulp is smaller than
// 1e-8. Larger values keep their relative precision but not 8 decimal places.
const maxExactMagnitude = 1 << 26

// ParseNumber decodes an exchange decimal string such as "1.00000000" into a
// float64. The token is parsed as an exact decimal first and then rounded once
// to the nearest float64, so values below maxExactMagnitude with up to 8
// fractional digits come back within 1e-8 of the original.
func ParseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty decimal")
	}

	d, _, err := apd.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return 0, fmt.Errorf("invalid decimal %q: %w", s, ErrNotFinite)
	}

	f, err := d.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return f, nil
}

// FormatDecimal renders v with exactly places fractional digits, rounding half
// to even, for use as an outbound request parameter.
func FormatDecimal(v float64, places int32) (string, error) {
	var d apd.Decimal
	if _, err := d.SetFloat64(v); err != nil {
		return "", fmt.Errorf("format decimal: %w", err)
	}
	if d.Form != apd.Finite {
		return "", fmt.Errorf("format decimal: %w", ErrNotFinite)
	}

	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfEven
	var out apd.Decimal
	if _, err := ctx.Quantize(&out, &d, -places); err != nil {
		return "", fmt.Errorf("format decimal: %w", err)
	}
	return out.Text('f'), nil
}
