package svgscale

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/strconv"
)

// Unit is the unit suffix of an SVG length.
type Unit uint8

const (
	None Unit = iota
	Px
	Pt
	Pc
	Mm
	Cm
	In
	Percent
)

func (u Unit) String() string {
	switch u {
	case Px:
		return "px"
	case Pt:
		return "pt"
	case Pc:
		return "pc"
	case Mm:
		return "mm"
	case Cm:
		return "cm"
	case In:
		return "in"
	case Percent:
		return "%"
	}
	return ""
}

// ParseLength splits a textual length into its number and unit. No unit
// conversion is performed; percentages keep their numeric value relative to
// whatever box resolves them.
func ParseLength(s string) (float64, Unit, error) {
	n, _ := parse.Dimension([]byte(s))
	if n == 0 {
		return 0.0, None, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	f, _ := strconv.ParseFloat([]byte(s[:n]))
	unit, err := parseUnit(s[n:])
	if err != nil {
		return 0.0, None, err
	}
	return f, unit, nil
}

func parseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "":
		return None, nil
	case "px":
		return Px, nil
	case "pt":
		return Pt, nil
	case "pc":
		return Pc, nil
	case "mm":
		return Mm, nil
	case "cm":
		return Cm, nil
	case "in":
		return In, nil
	case "%":
		return Percent, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}
