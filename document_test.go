package svgscale

import (
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func parseDoc(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(s))
	test.Error(t, err)
	return doc
}

func findID(doc *Document, id string) int {
	for i := range doc.nodes {
		if doc.nodes[i].Type == ElementNode {
			if v, ok := doc.Attr(i, "id"); ok && v == id {
				return i
			}
		}
	}
	return -1
}

func TestDocumentRoundTrip(t *testing.T) {
	var tests = []string{
		`<svg width="24" height="24"><rect x="1"/></svg>`,
		`<?xml version="1.0" encoding="UTF-8"?><svg/>`,
		`<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "svg11.dtd"><svg/>`,
		`<!-- comment --><svg><!-- inner --></svg>`,
		`<svg><defs></defs><![CDATA[a < b]]></svg>`,
		`<svg viewBox='0 0 1 1'><g fill="red"><path d="M0 0"/></g></svg>`,
		`<svg>
	<circle r="5"/>
</svg>`,
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			doc := parseDoc(t, tt)
			test.String(t, doc.String(), tt)
		})
	}
}

func TestDocumentParseError(t *testing.T) {
	var tests = []string{
		`<svg>`,
		`<svg><g></svg>`,
		`</svg>`,
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, err := ParseDocument(strings.NewReader(tt))
			test.That(t, err != nil, "expected parse error")
		})
	}
}

func TestDocumentAttrs(t *testing.T) {
	doc := parseDoc(t, `<svg><rect id="r" x="1" y="2"/></svg>`)
	i := findID(doc, "r")
	test.That(t, i != -1)

	v, ok := doc.Attr(i, "x")
	test.That(t, ok)
	test.String(t, v, "1")

	_, ok = doc.Attr(i, "width")
	test.That(t, !ok)

	doc.SetAttr(i, "x", "10")
	doc.SetAttr(i, "width", "5")
	doc.RemoveAttr(i, "y")
	test.String(t, doc.String(), `<svg><rect id="r" x="10" width="5"/></svg>`)
}

func TestDocumentRoot(t *testing.T) {
	doc := parseDoc(t, `<?xml version="1.0"?><!-- c --><svg id="root"/>`)
	test.T(t, doc.Root(), findID(doc, "root"))

	doc = parseDoc(t, `<!-- only a comment -->`)
	test.T(t, doc.Root(), -1)
}
