package svgscale

import (
	"errors"
	"testing"

	"github.com/tdewolff/test"
)

func TestParseTransform(t *testing.T) {
	var tests = []struct {
		s    string
		want Transform
	}{
		{"translate(10)", Transform{Translate{Tx: 10}}},
		{"translate(10,20)", Transform{Translate{10, 20, true}}},
		{"translate( 10 , 20 )", Transform{Translate{10, 20, true}}},
		{"scale(2)", Transform{Scale{2, 2, false}}},
		{"scale(2 3)", Transform{Scale{2, 3, true}}},
		{"rotate(45)", Transform{Rotate{Angle: 45}}},
		{"rotate(45,10,10)", Transform{Rotate{45, 10, 10, true}}},
		{"matrix(1,0,0,1,5,6)", Transform{Matrix{1, 0, 0, 1, 5, 6}}},
		{"skewX(10)", Transform{SkewX{10}}},
		{"skewY(-10)", Transform{SkewY{-10}}},
		{"translate(1 2)rotate(3)", Transform{Translate{1, 2, true}, Rotate{Angle: 3}}},
		{"translate(1,2), scale(3)", Transform{Translate{1, 2, true}, Scale{3, 3, false}}},
		{"", Transform{}},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			tr, err := ParseTransform(tt.s)
			test.Error(t, err)
			test.T(t, tr, tt.want)
		})
	}
}

func TestParseTransformError(t *testing.T) {
	var tests = []struct {
		s   string
		err error
	}{
		{"spin(1)", ErrUnknownFunction},
		{"rotate(1,2)", ErrArityMismatch},
		{"translate()", ErrArityMismatch},
		{"translate(1,2,3)", ErrArityMismatch},
		{"matrix(1,2,3)", ErrArityMismatch},
		{"translate(1", ErrMalformedTransform},
		{"translate 10", ErrMalformedTransform},
		{"rotate(a)", ErrMalformedTransform},
		{"(1,2)", ErrMalformedTransform},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			_, err := ParseTransform(tt.s)
			test.That(t, errors.Is(err, tt.err), "expected", tt.err, "got", err)
		})
	}
}

func TestTransformRescale(t *testing.T) {
	var tests = []struct {
		s    string
		k    float64
		want string
	}{
		{"translate(10,20)", 2.0, "translate(20,40)"},
		{"translate(10)", 2.0, "translate(20)"},
		{"rotate(45,10,10)", 2.0, "rotate(45,20,20)"},
		{"rotate(45)", 2.0, "rotate(45)"},
		{"scale(2 3)", 10.0, "scale(2,3)"},
		{"scale(2)", 10.0, "scale(2)"},
		{"matrix(1,0,0,1,5,6)", 2.0, "matrix(1,0,0,1,10,12)"},
		{"skewX(10) skewY(20)", 2.0, "skewX(10) skewY(20)"},
		{"translate(5,5) rotate(90) translate(-5,-5)", 0.5, "translate(2.5,2.5) rotate(90) translate(-2.5,-2.5)"},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			tr, err := ParseTransform(tt.s)
			test.Error(t, err)
			test.String(t, tr.Rescale(tt.k).ToSVG(4), tt.want)
		})
	}
}
