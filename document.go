package svgscale

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// NodeType discriminates the nodes of a Document.
type NodeType uint8

const (
	// ElementNode is a tag with attributes and children.
	ElementNode NodeType = iota
	// TextNode is character data, kept verbatim.
	TextNode
	// RawNode is opaque markup passed through byte-identically: comments,
	// CDATA, DOCTYPE and processing instructions.
	RawNode
)

// Attr is one attribute with its authored quote character.
type Attr struct {
	Key   string
	Val   string
	Quote byte
}

// Node is one node of the document tree. Elements keep their attributes in
// authored order; Parent is a back-reference into the arena for ancestor
// lookups.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Text     string
	Void     bool
	Parent   int
	Children []int
}

// Document is an ordered tree of nodes stored in an arena and addressed by
// index; roots lists the top-level nodes in document order.
type Document struct {
	nodes []Node
	roots []int
}

// ParseDocument parses an XML document into an element tree, preserving
// attribute order, quote style, text, comments, CDATA sections, DOCTYPEs and
// processing instructions for re-emission.
func ParseDocument(r io.Reader) (*Document, error) {
	z := parse.NewInput(r)
	defer z.Restore()

	doc := &Document{}
	l := xml.NewLexer(z)
	stack := []int{}

	appendNode := func(n Node) int {
		i := len(doc.nodes)
		n.Parent = -1
		if 0 < len(stack) {
			n.Parent = stack[len(stack)-1]
			parent := &doc.nodes[n.Parent]
			parent.Children = append(parent.Children, i)
		} else {
			doc.roots = append(doc.roots, i)
		}
		doc.nodes = append(doc.nodes, n)
		return i
	}

	for {
		tt, data := l.Next()
		switch tt {
		case xml.ErrorToken:
			if l.Err() != io.EOF {
				return nil, l.Err()
			}
			if 0 < len(stack) {
				return nil, fmt.Errorf("unexpected EOF: <%s> not closed", doc.nodes[stack[len(stack)-1]].Tag)
			}
			return doc, nil
		case xml.StartTagToken:
			n := Node{Type: ElementNode, Tag: string(data[1:])}
			for {
				tt, _ = l.Next()
				if tt != xml.AttributeToken {
					break
				}
				val := l.AttrVal()
				quote := byte('"')
				if 0 < len(val) && (val[0] == '"' || val[0] == '\'') {
					quote = val[0]
					val = val[1 : len(val)-1]
				}
				n.Attrs = append(n.Attrs, Attr{string(l.Text()), string(val), quote})
			}
			n.Void = tt == xml.StartTagCloseVoidToken
			i := appendNode(n)
			if !n.Void {
				stack = append(stack, i)
			}
		case xml.EndTagToken:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected end tag %s", string(data))
			}
			tag := strings.TrimSuffix(string(data[2:]), ">")
			tag = strings.TrimSpace(tag)
			if open := doc.nodes[stack[len(stack)-1]].Tag; open != tag {
				return nil, fmt.Errorf("unexpected end tag </%s>: <%s> is open", tag, open)
			}
			stack = stack[:len(stack)-1]
		case xml.StartTagPIToken:
			raw := []byte(data)
			for {
				tt, _ = l.Next()
				if tt == xml.AttributeToken {
					raw = append(raw, ' ')
					raw = append(raw, l.Text()...)
					raw = append(raw, '=')
					raw = append(raw, l.AttrVal()...)
				} else {
					break
				}
			}
			raw = append(raw, "?>"...)
			appendNode(Node{Type: RawNode, Text: string(raw)})
		case xml.TextToken:
			appendNode(Node{Type: TextNode, Text: string(data)})
		case xml.CommentToken, xml.CDATAToken, xml.DOCTYPEToken:
			appendNode(Node{Type: RawNode, Text: string(data)})
		}
	}
}

// Root returns the index of the document's root element, or -1 when the
// document has none.
func (doc *Document) Root() int {
	for _, i := range doc.roots {
		if doc.nodes[i].Type == ElementNode {
			return i
		}
	}
	return -1
}

// Attr returns the value of the named attribute of element i.
func (doc *Document) Attr(i int, key string) (string, bool) {
	for _, a := range doc.nodes[i].Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr rewrites the named attribute in place; a new attribute is appended
// after the existing ones.
func (doc *Document) SetAttr(i int, key, val string) {
	n := &doc.nodes[i]
	for j := range n.Attrs {
		if n.Attrs[j].Key == key {
			n.Attrs[j].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{key, val, '"'})
}

// RemoveAttr deletes the named attribute, keeping the order of the others.
func (doc *Document) RemoveAttr(i int, key string) {
	n := &doc.nodes[i]
	for j := range n.Attrs {
		if n.Attrs[j].Key == key {
			n.Attrs = append(n.Attrs[:j], n.Attrs[j+1:]...)
			return
		}
	}
}

// setTextContent replaces the children of element i with a single text node.
func (doc *Document) setTextContent(i int, text string) {
	n := &doc.nodes[i]
	for _, c := range n.Children {
		if doc.nodes[c].Type == TextNode {
			doc.nodes[c].Text = text
			n.Children = []int{c}
			return
		}
	}
	j := len(doc.nodes)
	doc.nodes = append(doc.nodes, Node{Type: TextNode, Text: text, Parent: i})
	doc.nodes[i].Children = append(doc.nodes[i].Children, j)
}

func (doc *Document) appendTo(b []byte, i int) []byte {
	n := &doc.nodes[i]
	switch n.Type {
	case TextNode, RawNode:
		return append(b, n.Text...)
	}
	b = append(b, '<')
	b = append(b, n.Tag...)
	for _, a := range n.Attrs {
		b = append(b, ' ')
		b = append(b, a.Key...)
		b = append(b, '=', a.Quote)
		b = append(b, a.Val...)
		b = append(b, a.Quote)
	}
	if n.Void {
		return append(b, '/', '>')
	}
	b = append(b, '>')
	for _, c := range n.Children {
		b = doc.appendTo(b, c)
	}
	b = append(b, '<', '/')
	b = append(b, n.Tag...)
	return append(b, '>')
}

// WriteTo serializes the document. Unmodified content round-trips except for
// insignificant whitespace inside start tags.
func (doc *Document) WriteTo(w io.Writer) (int64, error) {
	var b []byte
	for _, i := range doc.roots {
		b = doc.appendTo(b, i)
	}
	n, err := w.Write(b)
	return int64(n), err
}

func (doc *Document) String() string {
	sb := &strings.Builder{}
	doc.WriteTo(sb)
	return sb.String()
}
