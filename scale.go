package svgscale

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/strconv"
)

// Options configures one rescaling run: the uniform scale factor (must be
// positive), the decimal precision of rewritten numbers, and whether
// non-scaling strokes are fixed up (scaled, with their vector-effect
// removed).
type Options struct {
	Scale     float64
	Precision int
	FixStroke bool
}

// Rescale parses SVG text from r, scales every geometry-carrying number by
// o.Scale and writes the result to w.
func Rescale(w io.Writer, r io.Reader, o Options) error {
	doc, err := ParseDocument(r)
	if err != nil {
		return err
	}
	if err := ScaleDocument(doc, o); err != nil {
		return err
	}
	_, err = doc.WriteTo(w)
	return err
}

// ScaleDocument rewrites the document in place. Geometry is scaled per
// element category; percentages and objectBoundingBox-relative values are
// exempt. A malformed path or transform on an element that must be scaled
// aborts the run.
func ScaleDocument(doc *Document, o Options) error {
	if !(0 < o.Scale) || math.IsInf(o.Scale, 0) {
		return fmt.Errorf("scale factor must be positive, got %v", o.Scale)
	}
	s := &scaler{
		doc:    doc,
		o:      o,
		inline: map[int][]*Declaration{},
		dirty:  map[int]bool{},
	}
	if err := s.collectSheets(); err != nil {
		return err
	}
	for _, i := range doc.roots {
		if doc.nodes[i].Type == ElementNode {
			if err := s.element(i, false); err != nil {
				return err
			}
		}
	}
	s.flush()
	return nil
}

type docSheet struct {
	node  int
	sheet *StyleSheet
	dirty bool
}

type scaler struct {
	doc *Document
	o   Options

	sheets []*docSheet
	inline map[int][]*Declaration
	dirty  map[int]bool
}

// element categories; a closed set keyed by tag name
type category uint8

const (
	catShape category = iota
	catGradient
	catPattern
	catMask
	catClipPath
	catFilter
	catPrimitive
	catLight
	catMarker
)

func categoryOf(tag string) category {
	switch tag {
	case "linearGradient", "radialGradient":
		return catGradient
	case "pattern":
		return catPattern
	case "mask":
		return catMask
	case "clipPath":
		return catClipPath
	case "filter":
		return catFilter
	case "marker":
		return catMarker
	case "feDistantLight", "fePointLight", "feSpotLight":
		return catLight
	}
	if strings.HasPrefix(tag, "fe") {
		return catPrimitive
	}
	return catShape
}

// presentation attributes of shapes that double as CSS properties and go
// through the cascade
var shapeProps = []string{
	"x", "y", "cx", "cy", "r", "rx", "ry",
	"x1", "y1", "x2", "y2", "width", "height",
	"dx", "dy", "font-size", "letter-spacing",
	"stroke-dashoffset",
}

var gradientAttrs = []string{"x1", "y1", "x2", "y2", "cx", "cy", "r", "fx", "fy"}

var primitiveAttrs = []string{
	"x", "y", "width", "height", "dx", "dy",
	"stdDeviation", "radius", "scale", "surfaceScale", "kernelUnitLength",
}

var lightAttrs = []string{"x", "y", "z", "pointsAtX", "pointsAtY", "pointsAtZ"}

// attributes whose values may hold several numbers; rewritten in place so
// authored separators survive
func isListAttr(name string) bool {
	switch name {
	case "points", "viewBox", "stroke-dasharray",
		"stdDeviation", "radius", "kernelUnitLength",
		"x", "y", "dx", "dy":
		return true
	}
	return false
}

func (s *scaler) collectSheets() error {
	for i := range s.doc.nodes {
		n := &s.doc.nodes[i]
		if n.Type != ElementNode || n.Tag != "style" {
			continue
		}
		text := ""
		for _, c := range n.Children {
			if s.doc.nodes[c].Type == TextNode {
				text += s.doc.nodes[c].Text
			}
		}
		sheet, err := ParseStyleSheet(text)
		if err != nil {
			return s.attrErr(i, "style", err)
		}
		s.sheets = append(s.sheets, &docSheet{node: i, sheet: sheet})
	}
	return nil
}

func (s *scaler) attrErr(i int, attr string, err error) error {
	id, _ := s.doc.Attr(i, "id")
	return &AttrError{Tag: s.doc.nodes[i].Tag, ID: id, Attr: attr, Err: err}
}

// units resolves a *Units attribute against its SVG default.
func (s *scaler) units(i int, name, def string) string {
	if v, ok := s.doc.Attr(i, name); ok {
		return v
	}
	return def
}

func (s *scaler) element(i int, exempt bool) error {
	n := &s.doc.nodes[i]
	cat := categoryOf(n.Tag)

	if !exempt {
		if err := s.scaleElement(i, cat); err != nil {
			return err
		}
	}

	childExempt := exempt
	switch cat {
	case catClipPath:
		if s.units(i, "clipPathUnits", "userSpaceOnUse") == "objectBoundingBox" {
			childExempt = true
		}
	case catMask:
		if s.units(i, "maskContentUnits", "userSpaceOnUse") == "objectBoundingBox" {
			childExempt = true
		}
	case catPattern:
		if s.units(i, "patternContentUnits", "userSpaceOnUse") == "objectBoundingBox" {
			childExempt = true
		}
	case catFilter:
		if s.units(i, "primitiveUnits", "userSpaceOnUse") == "objectBoundingBox" {
			childExempt = true
		}
	}

	for _, c := range s.doc.nodes[i].Children {
		if s.doc.nodes[c].Type == ElementNode {
			if err := s.element(c, childExempt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *scaler) scaleElement(i int, cat category) error {
	switch cat {
	case catShape:
		return s.scaleShape(i)
	case catGradient:
		if s.units(i, "gradientUnits", "objectBoundingBox") == "objectBoundingBox" {
			return nil
		}
		for _, a := range gradientAttrs {
			if err := s.scaleAttr(i, a); err != nil {
				return err
			}
		}
		return s.scaleTransformAttr(i, "gradientTransform")
	case catPattern:
		if s.units(i, "patternUnits", "objectBoundingBox") == "objectBoundingBox" {
			return nil
		}
		for _, a := range []string{"x", "y", "width", "height", "viewBox"} {
			if err := s.scaleAttr(i, a); err != nil {
				return err
			}
		}
		return s.scaleTransformAttr(i, "patternTransform")
	case catMask:
		if s.units(i, "maskUnits", "objectBoundingBox") != "objectBoundingBox" {
			for _, a := range []string{"x", "y", "width", "height"} {
				if err := s.scaleAttr(i, a); err != nil {
					return err
				}
			}
		}
		return s.scaleTransformAttr(i, "transform")
	case catClipPath:
		return s.scaleTransformAttr(i, "transform")
	case catFilter:
		if s.units(i, "filterUnits", "objectBoundingBox") != "objectBoundingBox" {
			for _, a := range []string{"x", "y", "width", "height"} {
				if err := s.scaleAttr(i, a); err != nil {
					return err
				}
			}
		}
		return nil
	case catPrimitive:
		for _, a := range primitiveAttrs {
			if err := s.scaleAttr(i, a); err != nil {
				return err
			}
		}
		return nil
	case catLight:
		for _, a := range lightAttrs {
			if err := s.scaleAttr(i, a); err != nil {
				return err
			}
		}
		return nil
	case catMarker:
		if s.units(i, "markerUnits", "strokeWidth") != "strokeWidth" {
			for _, a := range []string{"markerWidth", "markerHeight"} {
				if err := s.scaleAttr(i, a); err != nil {
					return err
				}
			}
		}
		for _, a := range []string{"refX", "refY", "viewBox"} {
			if err := s.scaleAttr(i, a); err != nil {
				return err
			}
		}
		return s.scaleTransformAttr(i, "transform")
	}
	return nil
}

func (s *scaler) scaleShape(i int) error {
	for _, p := range shapeProps {
		if err := s.scaleProp(i, p); err != nil {
			return err
		}
	}
	if err := s.scaleStrokeWidth(i); err != nil {
		return err
	}
	if err := s.scaleProp(i, "stroke-dasharray"); err != nil {
		return err
	}
	for _, a := range []string{"points", "viewBox"} {
		if err := s.scaleAttr(i, a); err != nil {
			return err
		}
	}
	if err := s.scalePathAttr(i); err != nil {
		return err
	}
	return s.scaleTransformAttr(i, "transform")
}

// scaleStrokeWidth honors vector-effect="non-scaling-stroke": the width is
// left alone, unless FixStroke is set, in which case the width is scaled and
// the vector-effect dropped.
func (s *scaler) scaleStrokeWidth(i int) error {
	effect, _ := s.doc.Attr(i, "vector-effect")
	if d := lastDecl(s.inlineStyle(i), "vector-effect"); d != nil {
		effect = d.Value
	}
	if effect == "non-scaling-stroke" {
		if !s.o.FixStroke {
			return nil
		}
		s.doc.RemoveAttr(i, "vector-effect")
		s.removeInlineDecl(i, "vector-effect")
	}
	return s.scaleProp(i, "stroke-width")
}

// scaleProp scales a CSS-cascaded numeric property. Only the effective
// source is rewritten: the inline style wins over the presentation
// attribute, which wins over stylesheet rules; shadowed declarations are
// left as authored.
func (s *scaler) scaleProp(i int, prop string) error {
	if d := lastDecl(s.inlineStyle(i), prop); d != nil {
		nv, err := s.scaleValue(d.Value, isListAttr(prop))
		if err != nil {
			return s.attrErr(i, "style", err)
		}
		if nv != d.Value {
			d.Value = nv
			s.dirty[i] = true
		}
		return nil
	}
	if _, ok := s.doc.Attr(i, prop); ok {
		return s.scaleAttr(i, prop)
	}
	if d, sheet := s.winningDecl(i, prop); d != nil && !d.scaled {
		d.scaled = true
		nv, err := s.scaleValue(d.Value, isListAttr(prop))
		if err != nil {
			return s.attrErr(i, prop, err)
		}
		if nv != d.Value {
			d.Value = nv
			sheet.dirty = true
		}
	}
	return nil
}

// winningDecl resolves the stylesheet declaration supplying prop for element
// i across all <style> blocks; later blocks win specificity ties.
func (s *scaler) winningDecl(i int, prop string) (*Declaration, *docSheet) {
	var best *Declaration
	var bestSheet *docSheet
	var bestSpec [3]int
	for _, ds := range s.sheets {
		if d, sp, _ := ds.sheet.winning(s.doc, i, prop); d != nil {
			if best == nil || !specLess(sp, bestSpec) {
				best, bestSheet, bestSpec = d, ds, sp
			}
		}
	}
	return best, bestSheet
}

func (s *scaler) scaleAttr(i int, name string) error {
	v, ok := s.doc.Attr(i, name)
	if !ok {
		return nil
	}
	nv, err := s.scaleValue(v, isListAttr(name))
	if err != nil {
		return s.attrErr(i, name, err)
	}
	if nv != v {
		s.doc.SetAttr(i, name, nv)
	}
	return nil
}

func (s *scaler) scalePathAttr(i int) error {
	v, ok := s.doc.Attr(i, "d")
	if !ok {
		return nil
	}
	p, err := ParsePath(v)
	if err != nil {
		return s.attrErr(i, "d", err)
	}
	p = p.Scale(s.o.Scale)
	if p.overflows() {
		return s.attrErr(i, "d", ErrNumericOverflow)
	}
	s.doc.SetAttr(i, "d", p.ToSVG(s.o.Precision))
	return nil
}

func (s *scaler) scaleTransformAttr(i int, name string) error {
	v, ok := s.doc.Attr(i, name)
	if !ok {
		return nil
	}
	t, err := ParseTransform(v)
	if err != nil {
		return s.attrErr(i, name, err)
	}
	s.doc.SetAttr(i, name, t.Rescale(s.o.Scale).ToSVG(s.o.Precision))
	return nil
}

// scaleValue rewrites a single numeric or length value, or with list set
// every number embedded in the value. Percentages keep their number; unit
// suffixes are preserved verbatim; a value that is neither number nor
// recognized length is left untouched.
func (s *scaler) scaleValue(v string, list bool) (string, error) {
	if f, err := ParseNumber(v); err == nil {
		return s.format(f)
	}
	if f, u, err := ParseLength(v); err == nil {
		if u == Percent {
			return v, nil
		}
		n, _ := parse.Dimension([]byte(v))
		nv, err := s.format(f)
		if err != nil {
			return "", err
		}
		return nv + v[n:], nil
	}
	if list {
		return s.scaleNumberList(v)
	}
	return v, nil
}

func (s *scaler) format(f float64) (string, error) {
	f *= s.o.Scale
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", ErrNumericOverflow
	}
	return Dec(f, s.o.Precision), nil
}

// scaleNumberList scales every number of a list value in place, keeping the
// authored separators. A number followed by '%' or an unrecognized unit is
// left as written.
func (s *scaler) scaleNumberList(v string) (string, error) {
	b := []byte(v)
	var out []byte
	i := 0
	for i < len(b) {
		c := b[i]
		if c != '+' && c != '-' && c != '.' && (c < '0' || '9' < c) {
			out = append(out, c)
			i++
			continue
		}
		f, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			out = append(out, c)
			i++
			continue
		}
		j := i + n
		for j < len(b) && (isLetter(b[j]) || b[j] == '%') {
			j++
		}
		suffix := v[i+n : j]
		if _, err := parseUnit(suffix); err != nil || suffix == "%" {
			// unknown unit or percentage: keep as authored
			out = append(out, b[i:j]...)
		} else {
			nv, err := s.format(f)
			if err != nil {
				return "", err
			}
			out = append(out, nv...)
			out = append(out, suffix...)
		}
		i = j
	}
	return string(out), nil
}

func (s *scaler) inlineStyle(i int) []*Declaration {
	if decls, ok := s.inline[i]; ok {
		return decls
	}
	var decls []*Declaration
	if v, ok := s.doc.Attr(i, "style"); ok {
		decls = parseInlineStyle(v)
	}
	s.inline[i] = decls
	return decls
}

func (s *scaler) removeInlineDecl(i int, prop string) {
	decls := s.inlineStyle(i)
	for j := 0; j < len(decls); {
		if decls[j].Property == prop {
			decls = append(decls[:j], decls[j+1:]...)
			s.dirty[i] = true
		} else {
			j++
		}
	}
	s.inline[i] = decls
}

// flush writes modified inline styles and stylesheets back into the tree.
// An inline style whose declarations were all removed drops its attribute.
func (s *scaler) flush() {
	for i, dirty := range s.dirty {
		if !dirty {
			continue
		}
		if len(s.inline[i]) == 0 {
			s.doc.RemoveAttr(i, "style")
		} else {
			s.doc.SetAttr(i, "style", serializeInlineStyle(s.inline[i]))
		}
	}
	for _, ds := range s.sheets {
		if ds.dirty {
			s.doc.setTextContent(ds.node, ds.sheet.String())
		}
	}
}
