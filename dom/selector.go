package dom

import (
	"fmt"
	"log"
	"strings"
)

// Selector is a compiled selector list. The supported language covers
// what delegated-event maps and queries need: comma groups, descendant
// and child combinators, and compound simple selectors of tag, #id,
// .class, [attr], [attr=val] and *.
type Selector struct {
	source string
	chains []selChain
}

type selChain struct {
	parts []selPart
}

// selPart is one compound plus its relation to the following compound:
// '>' for child, ' ' for descendant, 0 on the final compound.
type selPart struct {
	sel        simpleSel
	combinator byte
}

type simpleSel struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	key    string
	val    string
	hasVal bool
}

// ParseSelector compiles a selector list.
func ParseSelector(source string) (*Selector, error) {
	groups, err := splitTopLevel(source, ',')
	if err != nil {
		return nil, err
	}
	s := &Selector{source: source}
	for _, group := range groups {
		chain, err := parseChain(group)
		if err != nil {
			return nil, err
		}
		s.chains = append(s.chains, chain)
	}
	if len(s.chains) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	return s, nil
}

// MustSelector is ParseSelector for selectors known at compile time;
// it panics on a bad selector.
func MustSelector(source string) *Selector {
	s, err := ParseSelector(source)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Selector) String() string {
	return s.source
}

// Matches reports whether el matches any group of the selector.
func (s *Selector) Matches(el *Element) bool {
	if el == nil || el.IsText() {
		return false
	}
	for _, c := range s.chains {
		if matchChain(el, c.parts) {
			return true
		}
	}
	return false
}

// FindAll returns el's descendants matching the selector, in tree
// order. The search does not descend into shadow roots and never
// matches the search root itself.
func (s *Selector) FindAll(root *Element) []*Element {
	var out []*Element
	walkMatches(root, s, func(el *Element) bool {
		out = append(out, el)
		return true
	})
	return out
}

// FindOne returns the first descendant matching the selector, or nil.
func (s *Selector) FindOne(root *Element) *Element {
	var found *Element
	walkMatches(root, s, func(el *Element) bool {
		found = el
		return false
	})
	return found
}

// FindAll compiles selector and searches root's subtree. A bad selector
// is a logged diagnostic and an empty result, matching the tolerant
// posture of the runtime's other platform helpers.
func FindAll(root *Element, selector string) []*Element {
	sel, err := ParseSelector(selector)
	if err != nil {
		log.Printf("dom: bad selector %q: %v", selector, err)
		return nil
	}
	return sel.FindAll(root)
}

// FindOne compiles selector and returns the first match under root, or
// nil.
func FindOne(root *Element, selector string) *Element {
	sel, err := ParseSelector(selector)
	if err != nil {
		log.Printf("dom: bad selector %q: %v", selector, err)
		return nil
	}
	return sel.FindOne(root)
}

func walkMatches(root *Element, s *Selector, visit func(*Element) bool) {
	if root == nil {
		return
	}
	var walk func(el *Element) bool
	walk = func(el *Element) bool {
		for _, c := range el.children {
			if c.IsText() {
				continue
			}
			if s.Matches(c) && !visit(c) {
				return false
			}
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}

func matchChain(el *Element, parts []selPart) bool {
	if !matchSimple(el, parts[len(parts)-1].sel) {
		return false
	}
	if len(parts) == 1 {
		return true
	}
	rest := parts[:len(parts)-1]
	comb := rest[len(rest)-1].combinator
	p := parentElement(el)
	if comb == '>' {
		return p != nil && matchChain(p, rest)
	}
	for ; p != nil; p = parentElement(p) {
		if matchChain(p, rest) {
			return true
		}
	}
	return false
}

// parentElement walks one structural level up, stopping at shadow and
// document boundaries: selectors never match across them.
func parentElement(el *Element) *Element {
	p := el.parent
	if p == nil || p.isRoot || p.Tag == ShadowTag {
		return nil
	}
	return p
}

func matchSimple(el *Element, sp simpleSel) bool {
	if sp.tag != "" && sp.tag != "*" && el.Tag != sp.tag {
		return false
	}
	if sp.id != "" && el.ID() != sp.id {
		return false
	}
	for _, class := range sp.classes {
		if !el.HasClass(class) {
			return false
		}
	}
	for _, am := range sp.attrs {
		v, ok := el.Attr(am.key)
		if !ok {
			return false
		}
		if am.hasVal && v != am.val {
			return false
		}
	}
	return true
}

// splitTopLevel splits on sep outside brackets and quotes.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			if depth == 0 {
				return nil, fmt.Errorf("unmatched ']' in selector %q", s)
			}
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unmatched quote in selector %q", s)
	}
	if depth != 0 {
		return nil, fmt.Errorf("unmatched '[' in selector %q", s)
	}
	parts = append(parts, s[start:])
	return parts, nil
}

// parseChain tokenizes one comma group into compounds joined by
// combinators.
func parseChain(group string) (selChain, error) {
	var chain selChain
	var current strings.Builder
	depth := 0
	var quote byte
	pendingComb := byte(0)
	sawSpace := false

	flush := func() error {
		if current.Len() == 0 {
			return nil
		}
		sp, err := parseCompound(current.String())
		if err != nil {
			return err
		}
		if len(chain.parts) > 0 {
			comb := pendingComb
			if comb == 0 {
				comb = ' '
			}
			chain.parts[len(chain.parts)-1].combinator = comb
		} else if pendingComb == '>' {
			return fmt.Errorf("selector %q starts with '>'", group)
		}
		chain.parts = append(chain.parts, selPart{sel: sp})
		current.Reset()
		pendingComb = 0
		sawSpace = false
		return nil
	}

	for i := 0; i < len(group); i++ {
		c := group[i]
		switch {
		case quote != 0:
			current.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			current.WriteByte(c)
		case c == '[':
			depth++
			current.WriteByte(c)
		case c == ']':
			depth--
			current.WriteByte(c)
		case depth == 0 && (c == ' ' || c == '\t' || c == '\n'):
			if current.Len() > 0 {
				if err := flush(); err != nil {
					return chain, err
				}
			}
			sawSpace = true
		case depth == 0 && c == '>':
			if current.Len() > 0 {
				if err := flush(); err != nil {
					return chain, err
				}
			}
			if pendingComb == '>' {
				return chain, fmt.Errorf("doubled '>' in selector %q", group)
			}
			pendingComb = '>'
			sawSpace = false
		default:
			if sawSpace && current.Len() == 0 && pendingComb == 0 {
				pendingComb = ' '
			}
			current.WriteByte(c)
		}
	}
	if err := flush(); err != nil {
		return chain, err
	}
	if pendingComb == '>' {
		return chain, fmt.Errorf("selector %q ends with '>'", group)
	}
	if len(chain.parts) == 0 {
		return chain, fmt.Errorf("empty selector")
	}
	return chain, nil
}

func parseCompound(s string) (simpleSel, error) {
	var sp simpleSel
	i := 0
	if i < len(s) && s[i] != '#' && s[i] != '.' && s[i] != '[' {
		start := i
		for i < len(s) && s[i] != '#' && s[i] != '.' && s[i] != '[' {
			i++
		}
		sp.tag = s[start:i]
	}
	for i < len(s) {
		switch s[i] {
		case '#':
			name, next, err := readName(s, i+1)
			if err != nil {
				return sp, fmt.Errorf("bad id in selector %q: %w", s, err)
			}
			sp.id = name
			i = next
		case '.':
			name, next, err := readName(s, i+1)
			if err != nil {
				return sp, fmt.Errorf("bad class in selector %q: %w", s, err)
			}
			sp.classes = append(sp.classes, name)
			i = next
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return sp, fmt.Errorf("unterminated '[' in selector %q", s)
			}
			inner := s[i+1 : i+end]
			am, err := parseAttrMatch(inner)
			if err != nil {
				return sp, err
			}
			sp.attrs = append(sp.attrs, am)
			i += end + 1
		default:
			return sp, fmt.Errorf("unexpected %q in selector %q", string(s[i]), s)
		}
	}
	if sp.tag == "" && sp.id == "" && len(sp.classes) == 0 && len(sp.attrs) == 0 {
		return sp, fmt.Errorf("empty compound selector")
	}
	return sp, nil
}

func readName(s string, from int) (string, int, error) {
	i := from
	for i < len(s) && s[i] != '#' && s[i] != '.' && s[i] != '[' {
		i++
	}
	if i == from {
		return "", 0, fmt.Errorf("empty name")
	}
	return s[from:i], i, nil
}

func parseAttrMatch(inner string) (attrMatch, error) {
	eq := strings.IndexByte(inner, '=')
	if eq < 0 {
		key := strings.TrimSpace(inner)
		if key == "" {
			return attrMatch{}, fmt.Errorf("empty attribute selector")
		}
		return attrMatch{key: key}, nil
	}
	key := strings.TrimSpace(inner[:eq])
	val := strings.TrimSpace(inner[eq+1:])
	if key == "" {
		return attrMatch{}, fmt.Errorf("empty attribute name in [%s]", inner)
	}
	if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
		val = val[1 : len(val)-1]
	}
	return attrMatch{key: key, val: val, hasVal: true}, nil
}
