package svgscale

import (
	"errors"
	"testing"

	"github.com/tdewolff/test"
)

func TestParseLength(t *testing.T) {
	var tests = []struct {
		s    string
		f    float64
		unit Unit
	}{
		{"10", 10.0, None},
		{"-4.5", -4.5, None},
		{"10px", 10.0, Px},
		{"10PX", 10.0, Px},
		{"2.54cm", 2.54, Cm},
		{"25.4mm", 25.4, Mm},
		{"1in", 1.0, In},
		{"12pt", 12.0, Pt},
		{"1pc", 1.0, Pc},
		{"50%", 50.0, Percent},
		{"1e2px", 100.0, Px},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			f, unit, err := ParseLength(tt.s)
			test.Error(t, err)
			test.Float(t, f, tt.f)
			test.T(t, unit, tt.unit)
		})
	}
}

func TestParseLengthError(t *testing.T) {
	var tests = []struct {
		s   string
		err error
	}{
		{"", ErrMalformedNumber},
		{"px", ErrMalformedNumber},
		{"auto", ErrMalformedNumber},
		{"10em", ErrUnknownUnit},
		{"10foo", ErrUnknownUnit},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			_, _, err := ParseLength(tt.s)
			test.That(t, errors.Is(err, tt.err), "expected", tt.err, "got", err)
		})
	}
}
