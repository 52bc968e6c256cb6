package svgscale

import (
	"errors"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestScaleDocument(t *testing.T) {
	var tests = []struct {
		name string
		svg  string
		want string
	}{
		{
			"shapes",
			`<svg width="24" height="24" viewBox="0 0 24 24"><rect x="1" y="2" width="3" height="4" rx="0.5"/><circle cx="12" cy="12" r="10"/><line x1="0" y1="0" x2="24" y2="24"/></svg>`,
			`<svg width="48" height="48" viewBox="0 0 48 48"><rect x="2" y="4" width="6" height="8" rx="1"/><circle cx="24" cy="24" r="20"/><line x1="0" y1="0" x2="48" y2="48"/></svg>`,
		},
		{
			"path data",
			`<svg><path d="M10,0 L20,10 a5,5 0 0110 0z"/></svg>`,
			`<svg><path d="M20 0L40 20a10 10 0 0 1 20 0z"/></svg>`,
		},
		{
			"percentages and units",
			`<svg><rect width="50%" height="2px" x="1em" y="1in"/></svg>`,
			`<svg><rect width="50%" height="4px" x="1em" y="2in"/></svg>`,
		},
		{
			"value lists",
			`<svg><polyline points="0,0 10,5" stroke-dasharray="4 2" stroke-dashoffset="1"/><path stroke-dasharray="none" d="M0 0"/></svg>`,
			`<svg><polyline points="0,0 20,10" stroke-dasharray="8 4" stroke-dashoffset="2"/><path stroke-dasharray="none" d="M0 0"/></svg>`,
		},
		{
			"text positions",
			`<svg><text x="5 10" dx="1 2" font-size="16" letter-spacing="2">hi</text></svg>`,
			`<svg><text x="10 20" dx="2 4" font-size="32" letter-spacing="4">hi</text></svg>`,
		},
		{
			"transforms",
			`<svg><g transform="translate(5,5) rotate(45,1,1) scale(2)"><rect width="1"/></g></svg>`,
			`<svg><g transform="translate(10,10) rotate(45,2,2) scale(2)"><rect width="2"/></g></svg>`,
		},
		{
			"non-scaling stroke",
			`<svg><rect stroke-width="2" vector-effect="non-scaling-stroke" width="10"/></svg>`,
			`<svg><rect stroke-width="2" vector-effect="non-scaling-stroke" width="20"/></svg>`,
		},
		{
			"gradient object bounding box",
			`<svg><linearGradient x1="0" y1="0" x2="1" y2="1" gradientTransform="translate(1,1)"/></svg>`,
			`<svg><linearGradient x1="0" y1="0" x2="1" y2="1" gradientTransform="translate(1,1)"/></svg>`,
		},
		{
			"gradient user space",
			`<svg><radialGradient gradientUnits="userSpaceOnUse" cx="10" cy="10" r="5" gradientTransform="translate(2,2)"/></svg>`,
			`<svg><radialGradient gradientUnits="userSpaceOnUse" cx="20" cy="20" r="10" gradientTransform="translate(4,4)"/></svg>`,
		},
		{
			"pattern user space",
			`<svg><pattern patternUnits="userSpaceOnUse" x="1" y="1" width="4" height="4" patternTransform="translate(1,1)"><rect width="4"/></pattern></svg>`,
			`<svg><pattern patternUnits="userSpaceOnUse" x="2" y="2" width="8" height="8" patternTransform="translate(2,2)"><rect width="8"/></pattern></svg>`,
		},
		{
			"pattern content exemption",
			`<svg><pattern patternContentUnits="objectBoundingBox"><g><rect width="0.1"/></g></pattern></svg>`,
			`<svg><pattern patternContentUnits="objectBoundingBox"><g><rect width="0.1"/></g></pattern></svg>`,
		},
		{
			"mask region default",
			`<svg><mask x="0" y="0" width="1" height="1"><rect width="5"/></mask></svg>`,
			`<svg><mask x="0" y="0" width="1" height="1"><rect width="10"/></mask></svg>`,
		},
		{
			"clip path object bounding box",
			`<svg><clipPath clipPathUnits="objectBoundingBox"><rect width="0.5"/></clipPath></svg>`,
			`<svg><clipPath clipPathUnits="objectBoundingBox"><rect width="0.5"/></clipPath></svg>`,
		},
		{
			"clip path user space",
			`<svg><clipPath><rect width="5"/></clipPath></svg>`,
			`<svg><clipPath><rect width="10"/></clipPath></svg>`,
		},
		{
			"filter region and primitives",
			`<svg><filter x="0" y="0" width="1" height="1"><feGaussianBlur stdDeviation="2"/><feOffset dx="1" dy="2"/><fePointLight x="5" y="5" z="5"/></filter></svg>`,
			`<svg><filter x="0" y="0" width="1" height="1"><feGaussianBlur stdDeviation="4"/><feOffset dx="2" dy="4"/><fePointLight x="10" y="10" z="10"/></filter></svg>`,
		},
		{
			"filter user space region",
			`<svg><filter filterUnits="userSpaceOnUse" x="1" y="1" width="4" height="4"/></svg>`,
			`<svg><filter filterUnits="userSpaceOnUse" x="2" y="2" width="8" height="8"/></svg>`,
		},
		{
			"filter primitive exemption",
			`<svg><filter primitiveUnits="objectBoundingBox"><feGaussianBlur stdDeviation="0.1"/></filter></svg>`,
			`<svg><filter primitiveUnits="objectBoundingBox"><feGaussianBlur stdDeviation="0.1"/></filter></svg>`,
		},
		{
			"marker stroke width units",
			`<svg><marker refX="3" refY="3" markerWidth="6" markerHeight="6" viewBox="0 0 6 6"><path d="M0 0L6 3"/></marker></svg>`,
			`<svg><marker refX="6" refY="6" markerWidth="6" markerHeight="6" viewBox="0 0 12 12"><path d="M0 0L12 6"/></marker></svg>`,
		},
		{
			"marker user space units",
			`<svg><marker markerUnits="userSpaceOnUse" markerWidth="6" markerHeight="6"/></svg>`,
			`<svg><marker markerUnits="userSpaceOnUse" markerWidth="12" markerHeight="12"/></svg>`,
		},
		{
			"inline style",
			`<svg><rect style="stroke-width:2;fill:red" width="10"/></svg>`,
			`<svg><rect style="stroke-width:4;fill:red" width="20"/></svg>`,
		},
		{
			"stylesheet effective source only",
			`<svg><style>circle{r:10}circle.big{r:20}</style><circle class="big" r="5"/><circle/></svg>`,
			`<svg><style>circle{r:20}circle.big{r:20}</style><circle class="big" r="10"/><circle/></svg>`,
		},
		{
			"stylesheet declaration scales once",
			`<svg><style>rect{x:2}</style><rect/><rect/></svg>`,
			`<svg><style>rect{x:4}</style><rect/><rect/></svg>`,
		},
		{
			"comments and raw content survive",
			`<?xml version="1.0"?><!-- icon --><svg><rect width="1"/></svg>`,
			`<?xml version="1.0"?><!-- icon --><svg><rect width="2"/></svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.svg)
			err := ScaleDocument(doc, Options{Scale: 2.0, Precision: 4})
			test.Error(t, err)
			test.String(t, doc.String(), tt.want)
		})
	}
}

func TestScaleDocumentFixStroke(t *testing.T) {
	doc := parseDoc(t, `<svg><rect stroke-width="2" vector-effect="non-scaling-stroke" width="10"/></svg>`)
	err := ScaleDocument(doc, Options{Scale: 2.0, Precision: 4, FixStroke: true})
	test.Error(t, err)
	test.String(t, doc.String(), `<svg><rect stroke-width="4" width="20"/></svg>`)

	// the inline style form is fixed up too; the emptied attribute is dropped
	doc = parseDoc(t, `<svg><rect style="vector-effect:non-scaling-stroke" stroke-width="2"/></svg>`)
	err = ScaleDocument(doc, Options{Scale: 2.0, Precision: 4, FixStroke: true})
	test.Error(t, err)
	test.String(t, doc.String(), `<svg><rect stroke-width="4"/></svg>`)

	// other declarations keep the attribute alive
	doc = parseDoc(t, `<svg><rect style="vector-effect:non-scaling-stroke;fill:red" stroke-width="2"/></svg>`)
	err = ScaleDocument(doc, Options{Scale: 2.0, Precision: 4, FixStroke: true})
	test.Error(t, err)
	test.String(t, doc.String(), `<svg><rect style="fill:red" stroke-width="4"/></svg>`)
}

func TestScaleDocumentError(t *testing.T) {
	var tests = []struct {
		name string
		svg  string
		attr string
		err  error
	}{
		{"bad path", `<svg><path id="p" d="M10"/></svg>`, "d", ErrMalformedOperand},
		{"bad transform", `<svg><g id="g" transform="spin(3)"><rect/></g></svg>`, "transform", ErrUnknownFunction},
		{"bad arc flag", `<svg><path id="p" d="M0 0A1 1 0 5 0 1 1"/></svg>`, "d", ErrMalformedOperand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.svg)
			err := ScaleDocument(doc, Options{Scale: 2.0, Precision: 4})
			test.That(t, errors.Is(err, tt.err), "expected", tt.err, "got", err)

			var attrErr *AttrError
			test.That(t, errors.As(err, &attrErr))
			test.String(t, attrErr.Attr, tt.attr)
			test.That(t, attrErr.ID != "")
		})
	}
}

func TestScaleDocumentOverflow(t *testing.T) {
	doc := parseDoc(t, `<svg><rect width="1e308"/></svg>`)
	err := ScaleDocument(doc, Options{Scale: 1e10, Precision: 4})
	test.That(t, errors.Is(err, ErrNumericOverflow), "got", err)
}

func TestScaleDocumentBadFactor(t *testing.T) {
	for _, k := range []float64{0.0, -1.0} {
		doc := parseDoc(t, `<svg/>`)
		err := ScaleDocument(doc, Options{Scale: k, Precision: 4})
		test.That(t, err != nil, "expected error for factor", k)
	}
}

func TestRescale(t *testing.T) {
	sb := &strings.Builder{}
	err := Rescale(sb, strings.NewReader(`<svg width="24"><circle r="10"/></svg>`), Options{Scale: 0.5, Precision: 4})
	test.Error(t, err)
	test.String(t, sb.String(), `<svg width="12"><circle r="5"/></svg>`)
}
