// Package dom implements the headless element tree the component
// runtime drives: element construction and custom-element upgrade,
// attribute mutation callbacks, connect/disconnect propagation, selector
// queries, event dispatch with listener cleanups, markup parsing, and
// HTML serialization.
//
// The package plays the role the browser platform plays for the
// declarative layer in the root package. Structural mutation of a
// document-owned tree is serialized by the owning Document; lifecycle
// callbacks always run outside that lock, so callbacks may freely
// mutate the tree again.
package dom

import (
	"strings"
	"sync"

	"github.com/germtb/golem/css"
	"github.com/germtb/golem/util"
)

// Attr is one attribute. Order is preserved as authored.
type Attr struct {
	Key string
	Val string
}

// Element is a node in the tree: a regular element, a text node
// (Tag == TextTag, content in Text), a shadow root (Tag == ShadowTag),
// or the document root (Tag == RootTag).
type Element struct {
	Tag  string
	Text string

	attrs    []Attr
	children []*Element
	parent   *Element
	shadow   *Element
	host     *Element

	doc       *Document
	lifecycle Lifecycle
	observed  map[string]bool
	isRoot    bool

	lmu       sync.Mutex
	listeners map[string][]*listenerEntry

	sheets []*css.Stylesheet
}

// NewElement builds a detached element with the given attributes.
// Detached trees carry no document; they upgrade when inserted into one.
func NewElement(tag string, attrs ...Attr) *Element {
	return &Element{Tag: tag, attrs: attrs}
}

// NewText builds a detached text node.
func NewText(text string) *Element {
	return &Element{Tag: TextTag, Text: text}
}

// IsText reports whether e is a text node.
func (e *Element) IsText() bool {
	return e.Tag == TextTag
}

// Parent returns the parent element, nil at a tree root. The parent of
// shadow content is the shadow root; use Host to cross that boundary.
func (e *Element) Parent() *Element {
	return e.parent
}

// Host returns the host element when e is a shadow root.
func (e *Element) Host() *Element {
	return e.host
}

// ShadowRoot returns e's shadow root, or nil.
func (e *Element) ShadowRoot() *Element {
	return e.shadow
}

// Document returns the owning document, nil for detached trees.
func (e *Element) Document() *Document {
	return e.doc
}

// Lifecycle returns the custom-element binding attached at upgrade, nil
// for ordinary elements.
func (e *Element) Lifecycle() Lifecycle {
	return e.lifecycle
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// FirstChild returns the first child, or nil.
func (e *Element) FirstChild() *Element {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// Attrs returns a copy of the attribute list in authored order.
func (e *Element) Attrs() []Attr {
	out := make([]Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports attribute presence.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// ID returns the id attribute.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Classes returns the class attribute split on whitespace, duplicates
// removed in first-seen order.
func (e *Element) Classes() []string {
	cls, _ := e.Attr("class")
	return util.Unique(strings.Fields(cls))
}

// HasClass reports whether class is present in the class attribute.
func (e *Element) HasClass(class string) bool {
	return util.Contains(e.Classes(), class)
}

// TextContent concatenates the text of e's subtree, not descending into
// shadow roots.
func (e *Element) TextContent() string {
	if e.IsText() {
		return e.Text
	}
	var b strings.Builder
	for _, c := range e.children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Connected reports whether e's ancestor chain, crossing shadow
// boundaries, reaches a document root.
func (e *Element) Connected() bool {
	return e.root().isRoot
}

func (e *Element) root() *Element {
	cur := e
	for {
		switch {
		case cur.parent != nil:
			cur = cur.parent
		case cur.host != nil:
			cur = cur.host
		default:
			return cur
		}
	}
}

// SetAttr sets an attribute, preserving authored order for existing
// keys. On a document-owned element, changing a schema-observed
// attribute fires the element's AttributeChangedCallback; setting an
// attribute to its current value does not.
func (e *Element) SetAttr(name, val string) {
	if e.doc != nil {
		e.doc.setAttr(e, name, val)
		return
	}
	e.setAttrRaw(name, val)
}

// RemoveAttr removes an attribute; removing an observed attribute fires
// the callback with present=false.
func (e *Element) RemoveAttr(name string) {
	if e.doc != nil {
		e.doc.removeAttr(e, name)
		return
	}
	e.removeAttrRaw(name)
}

func (e *Element) setAttrRaw(name, val string) (old string, oldPresent bool) {
	for i, a := range e.attrs {
		if a.Key == name {
			e.attrs[i].Val = val
			return a.Val, true
		}
	}
	e.attrs = append(e.attrs, Attr{Key: name, Val: val})
	return "", false
}

func (e *Element) removeAttrRaw(name string) (old string, oldPresent bool) {
	for i, a := range e.attrs {
		if a.Key == name {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			return a.Val, true
		}
	}
	return "", false
}

// Append adds child to the end of e's children, detaching it from any
// previous parent. On a document-owned tree this may upgrade and
// connect the entering subtree.
func (e *Element) Append(child *Element) {
	if e.doc != nil {
		e.doc.append(e, child)
		return
	}
	child.detachRaw()
	child.parent = e
	e.children = append(e.children, child)
}

// Remove removes child from e. Unrelated elements are a no-op.
func (e *Element) Remove(child *Element) {
	if e.doc != nil {
		e.doc.remove(e, child)
		return
	}
	if child.parent == e {
		child.detachRaw()
	}
}

// ReplaceChildren removes every current child and appends kids in
// order. This is the commit primitive the renderer uses.
func (e *Element) ReplaceChildren(kids ...*Element) {
	if e.doc != nil {
		e.doc.replaceChildren(e, kids)
		return
	}
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
	for _, c := range kids {
		c.detachRaw()
		c.parent = e
		e.children = append(e.children, c)
	}
}

func (e *Element) detachRaw() {
	p := e.parent
	if p == nil {
		return
	}
	if i := util.IndexOf(p.children, e); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	e.parent = nil
}

// AttachShadow creates the element's shadow root, returning the
// existing one on repeat calls. Shadow content is connected whenever
// the host is; queries from outside the host do not descend into it.
func (e *Element) AttachShadow() *Element {
	if e.doc != nil {
		return e.doc.attachShadow(e)
	}
	return e.attachShadowRaw()
}

func (e *Element) attachShadowRaw() *Element {
	if e.shadow == nil {
		e.shadow = &Element{Tag: ShadowTag, host: e, doc: e.doc}
	}
	return e.shadow
}

// SetAdoptedSheets replaces the compiled stylesheets adopted by a
// shadow root.
func (e *Element) SetAdoptedSheets(sheets []*css.Stylesheet) {
	e.sheets = sheets
}

// AdoptedSheets returns the adopted stylesheets.
func (e *Element) AdoptedSheets() []*css.Stylesheet {
	return e.sheets
}
