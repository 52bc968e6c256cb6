package svgscale

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is one property:value pair of a style rule or a style
// attribute.
type Declaration struct {
	Property string
	Value    string

	scaled bool
}

// compound is one compound selector: an optional type filter plus any number
// of class and id filters.
type compound struct {
	Tag     string
	ID      string
	Classes []string
}

// Selector is the supported selector grammar: one compound selector,
// optionally preceded by one compound ancestor constraint (descendant or
// direct child). Anything richer is unsupported and the owning rule never
// matches.
type Selector struct {
	Subject  compound
	Ancestor *compound
	Child    bool
}

// StyleRule pairs a selector with the declarations of its ruleset; rules
// from one ruleset share the declaration block. Specificity and source order
// implement the cascade tie-break.
type StyleRule struct {
	SelectorText string
	Selector     Selector
	Supported    bool
	Decls        []*Declaration

	order int
}

// ruleset groups the rules of one selector list so the stylesheet can be
// re-serialized with its shared declaration block intact.
type ruleset struct {
	rules []*StyleRule
	decls []*Declaration
}

// StyleSheet is a parsed <style> block. Unsupported rules and at-rules are
// preserved for re-emission but never match.
type StyleSheet struct {
	sets  []*ruleset
	parts []part
}

type part struct {
	set *ruleset
	raw string
}

// ParseStyleSheet parses stylesheet text. Selectors outside the supported
// grammar do not fail the parse; their rules keep their authored bytes and
// are treated as non-matching. At-rules are preserved verbatim.
func ParseStyleSheet(s string) (*StyleSheet, error) {
	ss := &StyleSheet{}
	l := css.NewLexer(parse.NewInputString(s))
	order := 0

	// prelude collects the raw bytes before a block or semicolon: a selector
	// list or an at-rule head
	var prelude []byte
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if raw := strings.TrimSpace(string(prelude)); raw != "" {
				ss.parts = append(ss.parts, part{raw: raw})
			}
			return ss, nil
		case css.LeftBraceToken:
			raw := strings.TrimSpace(string(prelude))
			prelude = prelude[:0]
			if strings.HasPrefix(raw, "@") {
				ss.parts = append(ss.parts, part{raw: rawAtRule(l, raw)})
			} else {
				ss.parseRuleset(l, raw, &order)
			}
		case css.SemicolonToken:
			if raw := strings.TrimSpace(string(prelude)); raw != "" {
				ss.parts = append(ss.parts, part{raw: raw + ";"})
			}
			prelude = prelude[:0]
		default:
			prelude = append(prelude, data...)
		}
	}
}

// rawAtRule copies an at-rule block byte for byte up to its matching closing
// brace.
func rawAtRule(l *css.Lexer, head string) string {
	b := append([]byte(head), '{')
	depth := 1
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return string(b)
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			if depth == 0 {
				return string(append(b, '}'))
			}
		}
		b = append(b, data...)
	}
}

// parseRuleset reads the declarations of one block and pairs them with the
// rules of the comma-separated selector list.
func (ss *StyleSheet) parseRuleset(l *css.Lexer, selectors string, order *int) {
	set := &ruleset{}
	for _, text := range strings.Split(selectors, ",") {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		r := &StyleRule{SelectorText: text, order: *order}
		*order++
		if sel, err := parseSelector(text); err == nil {
			r.Selector = sel
			r.Supported = true
		}
		set.rules = append(set.rules, r)
	}

	var prop, val []byte
	inVal := false
	flush := func() {
		p, v := strings.TrimSpace(string(prop)), strings.TrimSpace(string(val))
		if inVal && p != "" {
			set.decls = append(set.decls, &Declaration{Property: p, Value: v})
		}
		prop, val, inVal = prop[:0], val[:0], false
	}
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken, css.RightBraceToken:
			flush()
			for _, r := range set.rules {
				r.Decls = set.decls
			}
			ss.sets = append(ss.sets, set)
			ss.parts = append(ss.parts, part{set: set})
			return
		case css.ColonToken:
			if inVal {
				val = append(val, data...)
			} else {
				inVal = true
			}
		case css.SemicolonToken:
			flush()
		default:
			if inVal {
				val = append(val, data...)
			} else {
				prop = append(prop, data...)
			}
		}
	}
}

// parseSelector parses `Type? ('.'Class | '#'Id)*` optionally followed by
// one descendant or child combinator and a second compound selector.
func parseSelector(s string) (Selector, error) {
	var comps []compound
	child := false

	rest := strings.TrimSpace(s)
	for rest != "" {
		i := strings.IndexAny(rest, " >")
		var text string
		if i == -1 {
			text, rest = rest, ""
		} else {
			text = rest[:i]
			if rest[i] == '>' || strings.HasPrefix(strings.TrimSpace(rest[i:]), ">") {
				if child || len(comps) != 0 {
					return Selector{}, fmt.Errorf("%w: %q", ErrUnsupportedSelector, s)
				}
				child = true
				rest = strings.TrimPrefix(strings.TrimSpace(rest[i:]), ">")
			} else {
				rest = rest[i:]
			}
			rest = strings.TrimSpace(rest)
			if text == "" {
				continue
			}
		}
		c, err := parseCompound(text)
		if err != nil {
			return Selector{}, err
		}
		comps = append(comps, c)
	}

	switch len(comps) {
	case 1:
		if child {
			return Selector{}, fmt.Errorf("%w: %q", ErrUnsupportedSelector, s)
		}
		return Selector{Subject: comps[0]}, nil
	case 2:
		return Selector{Subject: comps[1], Ancestor: &comps[0], Child: child}, nil
	}
	return Selector{}, fmt.Errorf("%w: %q", ErrUnsupportedSelector, s)
}

func parseCompound(s string) (compound, error) {
	c := compound{}
	i := 0
	for i < len(s) && s[i] != '.' && s[i] != '#' {
		i++
	}
	if tag := s[:i]; tag == "*" {
		c.Tag = ""
	} else {
		for j := 0; j < len(tag); j++ {
			if !isLetter(tag[j]) && tag[j] != '-' && !('0' <= tag[j] && tag[j] <= '9') {
				return c, fmt.Errorf("%w: %q", ErrUnsupportedSelector, s)
			}
		}
		c.Tag = tag
	}
	for i < len(s) {
		kind := s[i]
		i++
		j := i
		for j < len(s) && s[j] != '.' && s[j] != '#' {
			j++
		}
		name := s[i:j]
		if name == "" {
			return c, fmt.Errorf("%w: %q", ErrUnsupportedSelector, s)
		}
		for k := 0; k < len(name); k++ {
			if !isLetter(name[k]) && name[k] != '-' && name[k] != '_' && !('0' <= name[k] && name[k] <= '9') {
				return c, fmt.Errorf("%w: %q", ErrUnsupportedSelector, s)
			}
		}
		if kind == '.' {
			c.Classes = append(c.Classes, name)
		} else if c.ID != "" {
			return c, fmt.Errorf("%w: %q", ErrUnsupportedSelector, s)
		} else {
			c.ID = name
		}
		i = j
	}
	return c, nil
}

// specificity is the (id, class, type) counting tuple of the cascade.
func (sel Selector) specificity() [3]int {
	var sp [3]int
	for _, c := range []*compound{&sel.Subject, sel.Ancestor} {
		if c == nil {
			continue
		}
		if c.ID != "" {
			sp[0]++
		}
		sp[1] += len(c.Classes)
		if c.Tag != "" {
			sp[2]++
		}
	}
	return sp
}

func specLess(a, b [3]int) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	} else if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

func (c *compound) matches(doc *Document, i int) bool {
	n := &doc.nodes[i]
	if c.Tag != "" && c.Tag != n.Tag {
		return false
	}
	if c.ID != "" {
		if id, ok := doc.Attr(i, "id"); !ok || id != c.ID {
			return false
		}
	}
	if 0 < len(c.Classes) {
		attr, _ := doc.Attr(i, "class")
		classes := strings.Fields(attr)
		for _, want := range c.Classes {
			found := false
			for _, have := range classes {
				if have == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// Match reports whether the selector matches element i, consulting ancestors
// through the arena's parent links.
func (sel Selector) Match(doc *Document, i int) bool {
	if !sel.Subject.matches(doc, i) {
		return false
	}
	if sel.Ancestor == nil {
		return true
	}
	parent := doc.nodes[i].Parent
	if sel.Child {
		return parent != -1 && sel.Ancestor.matches(doc, parent)
	}
	for j := parent; j != -1; j = doc.nodes[j].Parent {
		if sel.Ancestor.matches(doc, j) {
			return true
		}
	}
	return false
}

// winningDecl resolves the stylesheet declaration that supplies prop for
// element i: highest specificity first, later source order breaking ties.
// The last declaration of a block wins within the block.
func (ss *StyleSheet) winningDecl(doc *Document, i int, prop string) *Declaration {
	d, _, _ := ss.winning(doc, i, prop)
	return d
}

// winning additionally reports the specificity and source order of the
// winning rule, so several stylesheets can be cascaded against each other.
func (ss *StyleSheet) winning(doc *Document, i int, prop string) (*Declaration, [3]int, int) {
	var best *Declaration
	var bestSpec [3]int
	bestOrder := -1
	for _, set := range ss.sets {
		var d *Declaration
		for _, decl := range set.decls {
			if decl.Property == prop {
				d = decl
			}
		}
		if d == nil {
			continue
		}
		for _, r := range set.rules {
			if !r.Supported || !r.Selector.Match(doc, i) {
				continue
			}
			sp := r.Selector.specificity()
			if best == nil || specLess(bestSpec, sp) || bestSpec == sp && bestOrder < r.order {
				best, bestSpec, bestOrder = d, sp, r.order
			}
		}
	}
	return best, bestSpec, bestOrder
}

// Effective resolves the value of a numeric CSS property for element i:
// inline style wins over the presentation attribute of the same name, which
// wins over matching stylesheet rules.
func (ss *StyleSheet) Effective(doc *Document, i int, prop string) (string, bool) {
	if style, ok := doc.Attr(i, "style"); ok {
		if d := lastDecl(parseInlineStyle(style), prop); d != nil {
			return d.Value, true
		}
	}
	if v, ok := doc.Attr(i, prop); ok {
		return v, true
	}
	if d := ss.winningDecl(doc, i, prop); d != nil {
		return d.Value, true
	}
	return "", false
}

func (ss *StyleSheet) String() string {
	sb := &strings.Builder{}
	for _, p := range ss.parts {
		if p.set == nil {
			sb.WriteString(p.raw)
			continue
		}
		for i, r := range p.set.rules {
			if i != 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(r.SelectorText)
		}
		sb.WriteByte('{')
		for i, d := range p.set.decls {
			if i != 0 {
				sb.WriteByte(';')
			}
			sb.WriteString(d.Property)
			sb.WriteByte(':')
			sb.WriteString(d.Value)
		}
		sb.WriteByte('}')
	}
	return sb.String()
}

// parseInlineStyle splits a style="" attribute into declarations, keeping
// their order.
func parseInlineStyle(s string) []*Declaration {
	decls := []*Declaration{}
	for _, item := range strings.Split(s, ";") {
		if keyVal := strings.SplitN(item, ":", 2); len(keyVal) == 2 {
			decls = append(decls, &Declaration{
				Property: strings.TrimSpace(keyVal[0]),
				Value:    strings.TrimSpace(keyVal[1]),
			})
		}
	}
	return decls
}

func serializeInlineStyle(decls []*Declaration) string {
	sb := &strings.Builder{}
	for i, d := range decls {
		if i != 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(d.Property)
		sb.WriteByte(':')
		sb.WriteString(d.Value)
	}
	return sb.String()
}

func lastDecl(decls []*Declaration, prop string) *Declaration {
	var d *Declaration
	for _, decl := range decls {
		if decl.Property == prop {
			d = decl
		}
	}
	return d
}
