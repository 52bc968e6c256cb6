package svgscale

import (
	"fmt"

	"github.com/tdewolff/parse/v2/strconv"
)

// TransformOp is one function call of an SVG transform list. Rescaling by a
// uniform factor multiplies the operands that carry a unit of length
// (translation vectors, matrix translation column, rotation centers) and
// leaves the dimensionless ones (angles, scale factors, matrix a..d)
// unchanged.
type TransformOp interface {
	rescaled(k float64) TransformOp
	appendSVG(b []byte, prec int) []byte
}

// Translate is translate(tx) or translate(tx,ty); HasY records whether ty
// was written so the authored single-argument form is preserved.
type Translate struct {
	Tx, Ty float64
	HasY   bool
}

// Rotate is rotate(a) or rotate(a,cx,cy).
type Rotate struct {
	Angle  float64
	Cx, Cy float64
	Center bool
}

// Scale is scale(s) or scale(sx,sy).
type Scale struct {
	Sx, Sy float64
	HasY   bool
}

// Matrix is matrix(a,b,c,d,e,f); e and f are the translation column.
type Matrix struct {
	A, B, C, D, E, F float64
}

type SkewX struct {
	Angle float64
}

type SkewY struct {
	Angle float64
}

// Transform is an ordered transform list; ops compose left to right as
// applied.
type Transform []TransformOp

// ParseTransform parses a comma/whitespace-separated list of transform
// function calls.
func ParseTransform(s string) (Transform, error) {
	b := []byte(s)
	t := Transform{}

	i := skipCommaWhitespace(b)
	for i < len(b) {
		j := i
		for j < len(b) && isLetter(b[j]) {
			j++
		}
		name := s[i:j]
		if name == "" {
			return nil, fmt.Errorf("%w: expected function name at position %d", ErrMalformedTransform, i)
		}
		i = j + skipCommaWhitespace(b[j:])
		if i == len(b) || b[i] != '(' {
			return nil, fmt.Errorf("%w: expected '(' after %s", ErrMalformedTransform, name)
		}
		i++

		var args []float64
		for {
			i += skipCommaWhitespace(b[i:])
			if i == len(b) {
				return nil, fmt.Errorf("%w: unterminated %s", ErrMalformedTransform, name)
			} else if b[i] == ')' {
				i++
				break
			}
			f, n := strconv.ParseFloat(b[i:])
			if n == 0 {
				return nil, fmt.Errorf("%w: bad argument in %s at position %d", ErrMalformedTransform, name, i)
			}
			args = append(args, f)
			i += n
		}

		op, err := newTransformOp(name, args)
		if err != nil {
			return nil, err
		}
		t = append(t, op)
		i += skipCommaWhitespace(b[i:])
	}
	return t, nil
}

func newTransformOp(name string, args []float64) (TransformOp, error) {
	switch name {
	case "translate":
		switch len(args) {
		case 1:
			return Translate{Tx: args[0]}, nil
		case 2:
			return Translate{args[0], args[1], true}, nil
		}
	case "scale":
		switch len(args) {
		case 1:
			return Scale{Sx: args[0], Sy: args[0]}, nil
		case 2:
			return Scale{args[0], args[1], true}, nil
		}
	case "rotate":
		switch len(args) {
		case 1:
			return Rotate{Angle: args[0]}, nil
		case 3:
			return Rotate{args[0], args[1], args[2], true}, nil
		}
	case "matrix":
		if len(args) == 6 {
			return Matrix{args[0], args[1], args[2], args[3], args[4], args[5]}, nil
		}
	case "skewX":
		if len(args) == 1 {
			return SkewX{args[0]}, nil
		}
	case "skewY":
		if len(args) == 1 {
			return SkewY{args[0]}, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return nil, fmt.Errorf("%w: %s with %d arguments", ErrArityMismatch, name, len(args))
}

// Rescale applies a uniform scale k as a prefix to the transform chain.
// Rotation and shear coefficients are dimensionless and stay put; only
// translation-carrying terms scale.
func (t Transform) Rescale(k float64) Transform {
	u := make(Transform, len(t))
	for i, op := range t {
		u[i] = op.rescaled(k)
	}
	return u
}

// ToSVG serializes the transform list in its original function forms; a
// chain is never collapsed to a single matrix.
func (t Transform) ToSVG(prec int) string {
	var b []byte
	for i, op := range t {
		if i != 0 {
			b = append(b, ' ')
		}
		b = op.appendSVG(b, prec)
	}
	return string(b)
}

func appendCall(b []byte, name string, prec int, args ...float64) []byte {
	b = append(b, name...)
	b = append(b, '(')
	for i, f := range args {
		if i != 0 {
			b = append(b, ',')
		}
		b = append(b, Dec(f, prec)...)
	}
	return append(b, ')')
}

func (op Translate) rescaled(k float64) TransformOp {
	return Translate{op.Tx * k, op.Ty * k, op.HasY}
}

func (op Translate) appendSVG(b []byte, prec int) []byte {
	if !op.HasY {
		return appendCall(b, "translate", prec, op.Tx)
	}
	return appendCall(b, "translate", prec, op.Tx, op.Ty)
}

func (op Rotate) rescaled(k float64) TransformOp {
	return Rotate{op.Angle, op.Cx * k, op.Cy * k, op.Center}
}

func (op Rotate) appendSVG(b []byte, prec int) []byte {
	if !op.Center {
		return appendCall(b, "rotate", prec, op.Angle)
	}
	return appendCall(b, "rotate", prec, op.Angle, op.Cx, op.Cy)
}

func (op Scale) rescaled(float64) TransformOp {
	return op
}

func (op Scale) appendSVG(b []byte, prec int) []byte {
	if !op.HasY {
		return appendCall(b, "scale", prec, op.Sx)
	}
	return appendCall(b, "scale", prec, op.Sx, op.Sy)
}

func (op Matrix) rescaled(k float64) TransformOp {
	return Matrix{op.A, op.B, op.C, op.D, op.E * k, op.F * k}
}

func (op Matrix) appendSVG(b []byte, prec int) []byte {
	return appendCall(b, "matrix", prec, op.A, op.B, op.C, op.D, op.E, op.F)
}

func (op SkewX) rescaled(float64) TransformOp {
	return op
}

func (op SkewX) appendSVG(b []byte, prec int) []byte {
	return appendCall(b, "skewX", prec, op.Angle)
}

func (op SkewY) rescaled(float64) TransformOp {
	return op
}

func (op SkewY) appendSVG(b []byte, prec int) []byte {
	return appendCall(b, "skewY", prec, op.Angle)
}
