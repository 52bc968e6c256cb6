package svgscale

import (
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"
)

// PathCommand is one command of an SVG path data string. Each variant keeps
// its authored relative/absolute form so that serialization reproduces the
// input structure.
type PathCommand interface {
	scaled(k float64) PathCommand
	appendSVG(b []byte, prec int) []byte
}

type MoveTo struct {
	Rel  bool
	X, Y float64
}

type LineTo struct {
	Rel  bool
	X, Y float64
}

type HLineTo struct {
	Rel bool
	X   float64
}

type VLineTo struct {
	Rel bool
	Y   float64
}

type CubeTo struct {
	Rel                  bool
	X1, Y1, X2, Y2, X, Y float64
}

type SmoothCubeTo struct {
	Rel          bool
	X2, Y2, X, Y float64
}

type QuadTo struct {
	Rel          bool
	X1, Y1, X, Y float64
}

type SmoothQuadTo struct {
	Rel  bool
	X, Y float64
}

// ArcTo is an elliptical arc. Large and Sweep are the single-digit flags of
// the arc grammar; Rotation is the x-axis rotation in degrees.
type ArcTo struct {
	Rel          bool
	Rx, Ry       float64
	Rotation     float64
	Large, Sweep bool
	X, Y         float64
}

type Close struct {
	Rel bool
}

// Path is a parsed SVG path data string.
type Path []PathCommand

func skipCommaWhitespace(path []byte) int {
	i := 0
	for i < len(path) && (path[i] == ' ' || path[i] == ',' || path[i] == '\n' || path[i] == '\r' || path[i] == '\t') {
		i++
	}
	return i
}

func parsePathNum(path []byte, i int) (float64, int, error) {
	i += skipCommaWhitespace(path[i:])
	f, n := strconv.ParseFloat(path[i:])
	if n == 0 {
		return 0.0, i, fmt.Errorf("%w at position %d", ErrMalformedOperand, i)
	}
	return f, i + n, nil
}

// parsePathFlag reads an arc flag: exactly one character that must be '0' or
// '1', even when run together with the digits of the next operand.
func parsePathFlag(path []byte, i int) (bool, int, error) {
	i += skipCommaWhitespace(path[i:])
	if i < len(path) && (path[i] == '0' || path[i] == '1') {
		return path[i] == '1', i + 1, nil
	}
	return false, i, fmt.Errorf("%w at position %d: expected arc flag", ErrMalformedOperand, i)
}

func isPathCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'Z', 'z', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a':
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z'
}

// ParsePath parses SVG path data into its commands. Operands may run
// together without separators when unambiguous; a command letter followed by
// several operand groups repeats the command, where a repeated moveto turns
// into a lineto.
func ParsePath(d string) (Path, error) {
	path := []byte(d)
	p := Path{}

	var prevCmd byte
	i := skipCommaWhitespace(path)
	for i < len(path) {
		cmd := prevCmd
		if isPathCommand(path[i]) {
			cmd = path[i]
			i++
		} else if isLetter(path[i]) {
			return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownCommand, path[i], i)
		} else if cmd == 0 {
			return nil, fmt.Errorf("%w: path must start with a command", ErrUnknownCommand)
		}

		rel := 'a' <= cmd && cmd <= 'z'
		var err error
		var nums [6]float64
		read := func(k int) {
			for j := 0; j < k && err == nil; j++ {
				nums[j], i, err = parsePathNum(path, i)
			}
		}

		switch cmd {
		case 'M', 'm':
			read(2)
			p = append(p, MoveTo{rel, nums[0], nums[1]})
		case 'Z', 'z':
			p = append(p, Close{rel})
		case 'L', 'l':
			read(2)
			p = append(p, LineTo{rel, nums[0], nums[1]})
		case 'H', 'h':
			read(1)
			p = append(p, HLineTo{rel, nums[0]})
		case 'V', 'v':
			read(1)
			p = append(p, VLineTo{rel, nums[0]})
		case 'C', 'c':
			read(6)
			p = append(p, CubeTo{rel, nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]})
		case 'S', 's':
			read(4)
			p = append(p, SmoothCubeTo{rel, nums[0], nums[1], nums[2], nums[3]})
		case 'Q', 'q':
			read(4)
			p = append(p, QuadTo{rel, nums[0], nums[1], nums[2], nums[3]})
		case 'T', 't':
			read(2)
			p = append(p, SmoothQuadTo{rel, nums[0], nums[1]})
		case 'A', 'a':
			var large, sweep bool
			read(3)
			if err == nil {
				large, i, err = parsePathFlag(path, i)
			}
			if err == nil {
				sweep, i, err = parsePathFlag(path, i)
			}
			if err == nil {
				nums[3], i, err = parsePathNum(path, i)
			}
			if err == nil {
				nums[4], i, err = parsePathNum(path, i)
			}
			p = append(p, ArcTo{rel, nums[0], nums[1], nums[2], large, sweep, nums[3], nums[4]})
		}
		if err != nil {
			return nil, err
		}

		// a command letter repeats for further operand groups, except that
		// moveto repeats as lineto
		switch cmd {
		case 'M':
			prevCmd = 'L'
		case 'm':
			prevCmd = 'l'
		case 'Z', 'z':
			prevCmd = 0
		default:
			prevCmd = cmd
		}
		i += skipCommaWhitespace(path[i:])
	}
	return p, nil
}

// Scale multiplies every coordinate and dimension operand by k. Arc rotation
// and flags are scale-invariant and are left unchanged.
func (p Path) Scale(k float64) Path {
	q := make(Path, len(p))
	for i, cmd := range p {
		q[i] = cmd.scaled(k)
	}
	return q
}

// ToSVG serializes the path back to path data, using prec decimal digits for
// every operand. It is the inverse of ParsePath up to numeric formatting.
func (p Path) ToSVG(prec int) string {
	var b []byte
	for _, cmd := range p {
		b = cmd.appendSVG(b, prec)
	}
	return string(b)
}

func cmdLetter(abs byte, rel bool) byte {
	if rel {
		return abs + 'a' - 'A'
	}
	return abs
}

func appendNums(b []byte, prec int, nums ...float64) []byte {
	for i, f := range nums {
		if i != 0 {
			b = append(b, ' ')
		}
		b = append(b, Dec(f, prec)...)
	}
	return b
}

func flagDigit(f bool) byte {
	if f {
		return '1'
	}
	return '0'
}

func (c MoveTo) scaled(k float64) PathCommand {
	return MoveTo{c.Rel, c.X * k, c.Y * k}
}

func (c MoveTo) appendSVG(b []byte, prec int) []byte {
	b = append(b, cmdLetter('M', c.Rel))
	return appendNums(b, prec, c.X, c.Y)
}

func (c LineTo) scaled(k float64) PathCommand {
	return LineTo{c.Rel, c.X * k, c.Y * k}
}

func (c LineTo) appendSVG(b []byte, prec int) []byte {
	b = append(b, cmdLetter('L', c.Rel))
	return appendNums(b, prec, c.X, c.Y)
}

func (c HLineTo) scaled(k float64) PathCommand {
	return HLineTo{c.Rel, c.X * k}
}

func (c HLineTo) appendSVG(b []byte, prec int) []byte {
	b = append(b, cmdLetter('H', c.Rel))
	return appendNums(b, prec, c.X)
}

func (c VLineTo) scaled(k float64) PathCommand {
	return VLineTo{c.Rel, c.Y * k}
}

func (c VLineTo) appendSVG(b []byte, prec int) []byte {
	b = append(b, cmdLetter('V', c.Rel))
	return appendNums(b, prec, c.Y)
}

func (c CubeTo) scaled(k float64) PathCommand {
	return CubeTo{c.Rel, c.X1 * k, c.Y1 * k, c.X2 * k, c.Y2 * k, c.X * k, c.Y * k}
}

func (c CubeTo) appendSVG(b []byte, prec int) []byte {
	b = append(b, cmdLetter('C', c.Rel))
	return appendNums(b, prec, c.X1, c.Y1, c.X2, c.Y2, c.X, c.Y)
}

func (c SmoothCubeTo) scaled(k float64) PathCommand {
	return SmoothCubeTo{c.Rel, c.X2 * k, c.Y2 * k, c.X * k, c.Y * k}
}

func (c SmoothCubeTo) appendSVG(b []byte, prec int) []byte {
	b = append(b, cmdLetter('S', c.Rel))
	return appendNums(b, prec, c.X2, c.Y2, c.X, c.Y)
}

func (c QuadTo) scaled(k float64) PathCommand {
	return QuadTo{c.Rel, c.X1 * k, c.Y1 * k, c.X * k, c.Y * k}
}

func (c QuadTo) appendSVG(b []byte, prec int) []byte {
	b = append(b, cmdLetter('Q', c.Rel))
	return appendNums(b, prec, c.X1, c.Y1, c.X, c.Y)
}

func (c SmoothQuadTo) scaled(k float64) PathCommand {
	return SmoothQuadTo{c.Rel, c.X * k, c.Y * k}
}

func (c SmoothQuadTo) appendSVG(b []byte, prec int) []byte {
	b = append(b, cmdLetter('T', c.Rel))
	return appendNums(b, prec, c.X, c.Y)
}

func (c ArcTo) scaled(k float64) PathCommand {
	return ArcTo{c.Rel, c.Rx * k, c.Ry * k, c.Rotation, c.Large, c.Sweep, c.X * k, c.Y * k}
}

func (c ArcTo) appendSVG(b []byte, prec int) []byte {
	b = append(b, cmdLetter('A', c.Rel))
	b = appendNums(b, prec, c.Rx, c.Ry, c.Rotation)
	b = append(b, ' ', flagDigit(c.Large), ' ', flagDigit(c.Sweep), ' ')
	return appendNums(b, prec, c.X, c.Y)
}

func (c Close) scaled(float64) PathCommand {
	return c
}

func (c Close) appendSVG(b []byte, prec int) []byte {
	return append(b, cmdLetter('Z', c.Rel))
}

// overflows reports whether any coordinate operand became non-finite, which
// only happens on extreme inputs.
func (p Path) overflows() bool {
	for _, cmd := range p {
		switch c := cmd.(type) {
		case MoveTo:
			if nonFinite(c.X, c.Y) {
				return true
			}
		case LineTo:
			if nonFinite(c.X, c.Y) {
				return true
			}
		case HLineTo:
			if nonFinite(c.X) {
				return true
			}
		case VLineTo:
			if nonFinite(c.Y) {
				return true
			}
		case CubeTo:
			if nonFinite(c.X1, c.Y1, c.X2, c.Y2, c.X, c.Y) {
				return true
			}
		case SmoothCubeTo:
			if nonFinite(c.X2, c.Y2, c.X, c.Y) {
				return true
			}
		case QuadTo:
			if nonFinite(c.X1, c.Y1, c.X, c.Y) {
				return true
			}
		case SmoothQuadTo:
			if nonFinite(c.X, c.Y) {
				return true
			}
		case ArcTo:
			if nonFinite(c.Rx, c.Ry, c.X, c.Y) {
				return true
			}
		}
	}
	return false
}

func nonFinite(fs ...float64) bool {
	for _, f := range fs {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return true
		}
	}
	return false
}
