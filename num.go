package svgscale

import (
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/parse/v2/strconv"
)

// Dec formats f as a plain decimal rounded to prec digits, with trailing
// zeros and a trailing dot stripped. Rounding is round-half-to-even, the
// behavior of fmt's %f verb. Scientific notation is never emitted.
func Dec(f float64, prec int) string {
	if prec < 0 {
		prec = 0
	}
	// %f already rounds to prec decimals; Decimal with prec 0 only strips
	// superfluous zeros and must not round again
	s := string(minify.Decimal([]byte(fmt.Sprintf("%.*f", prec, f)), 0))
	switch {
	case s == "-0":
		s = "0"
	case strings.HasPrefix(s, "."):
		s = "0" + s
	case strings.HasPrefix(s, "-."):
		s = "-0" + s[1:]
	}
	return s
}

// ParseNumber parses a decimal number with an optional sign, fraction and
// e/E exponent. The whole input must be consumed.
func ParseNumber(s string) (float64, error) {
	f, n := strconv.ParseFloat([]byte(s))
	if n != len(s) || !hasDigit(s) {
		return 0.0, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	} else if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0.0, fmt.Errorf("%w: %q", ErrNumericOverflow, s)
	}
	return f, nil
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if '0' <= s[i] && s[i] <= '9' {
			return true
		}
	}
	return false
}
