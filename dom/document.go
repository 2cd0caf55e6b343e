package dom

import (
	"sync"
)

// Lifecycle is the custom-element contract. The document invokes these
// callbacks as the element moves through the tree: ConnectedCallback on
// every insertion into the document (including re-insertion),
// DisconnectedCallback on removal, and AttributeChangedCallback when an
// observed attribute changes on an upgraded element, connected or not.
// present reports whether the attribute exists after the change.
type Lifecycle interface {
	ConnectedCallback()
	DisconnectedCallback()
	AttributeChangedCallback(name, old, val string, present bool)
	ObservedAttributes() []string
}

// Upgrader is how a document asks the component layer about custom
// tags. Upgrade is called once per element, outside the document's
// structural lock; it must not mutate the tree.
type Upgrader interface {
	Defined(tag string) bool
	Upgrade(doc *Document, el *Element) Lifecycle
}

// Options configures a document.
type Options struct {
	Upgrader Upgrader
}

// Document owns an element tree. Structural mutation (insertion,
// removal, attribute changes) is serialized under an internal lock;
// lifecycle callbacks run after the mutation with the lock released, so
// callbacks may mutate the tree re-entrantly.
type Document struct {
	mu       sync.Mutex
	root     *Element
	upgrader Upgrader
	pending  sync.WaitGroup
}

// NewDocument creates an empty document.
func NewDocument(opts Options) *Document {
	d := &Document{upgrader: opts.Upgrader}
	d.root = &Element{Tag: RootTag, isRoot: true}
	d.root.doc = d
	return d
}

// Root returns the document root element.
func (d *Document) Root() *Element {
	return d.root
}

// CreateElement constructs a document-owned element. A tag the upgrader
// defines is upgraded immediately: its lifecycle binding is created
// before the element is returned.
func (d *Document) CreateElement(tag string, attrs ...Attr) *Element {
	el := &Element{Tag: tag, attrs: attrs, doc: d}
	d.bindLifecycle(el)
	return el
}

// CreateText constructs a document-owned text node.
func (d *Document) CreateText(text string) *Element {
	return &Element{Tag: TextTag, Text: text, doc: d}
}

// Mount appends el to the document root, connecting its subtree.
func (d *Document) Mount(el *Element) {
	d.append(d.root, el)
}

// SetHTML parses markup and replaces el's children with the result.
func (d *Document) SetHTML(el *Element, markup string) error {
	kids, err := Parse(markup)
	if err != nil {
		return err
	}
	el.ReplaceChildren(kids...)
	return nil
}

// RunAsync runs fn on its own goroutine, tracked so WaitIdle can wait
// for it. The renderer uses this for style resolution that cannot
// complete synchronously.
func (d *Document) RunAsync(fn func()) {
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		fn()
	}()
}

// WaitIdle blocks until every tracked asynchronous task has finished.
// Tests use this to observe the settled tree.
func (d *Document) WaitIdle() {
	d.pending.Wait()
}

// bindLifecycle upgrades el if the upgrader defines its tag. Runs
// outside the structural lock.
func (d *Document) bindLifecycle(el *Element) {
	if d.upgrader == nil || el.lifecycle != nil || el.IsText() || !d.upgrader.Defined(el.Tag) {
		return
	}
	lc := d.upgrader.Upgrade(d, el)
	if lc == nil {
		return
	}
	el.lifecycle = lc
	el.observed = make(map[string]bool)
	for _, name := range lc.ObservedAttributes() {
		el.observed[name] = true
	}
}

func (d *Document) setAttr(e *Element, name, val string) {
	d.mu.Lock()
	old, oldPresent := e.setAttrRaw(name, val)
	fire := (!oldPresent || old != val) && e.lifecycle != nil && e.observed[name]
	d.mu.Unlock()
	if fire {
		e.lifecycle.AttributeChangedCallback(name, old, val, true)
	}
}

func (d *Document) removeAttr(e *Element, name string) {
	d.mu.Lock()
	old, oldPresent := e.removeAttrRaw(name)
	fire := oldPresent && e.lifecycle != nil && e.observed[name]
	d.mu.Unlock()
	if fire {
		e.lifecycle.AttributeChangedCallback(name, old, "", false)
	}
}

func (d *Document) append(parent, child *Element) {
	d.mu.Lock()
	var leave []*Element
	if child.Connected() {
		leave = collectTree(child)
	}
	child.detachRaw()
	child.parent = parent
	parent.children = append(parent.children, child)
	adopt(child, d)
	var enter []*Element
	if parent.Connected() {
		enter = collectTree(child)
	}
	d.mu.Unlock()

	runDisconnects(leave)
	d.runUpgrades(enter)
	runConnects(enter)
}

func (d *Document) remove(parent, child *Element) {
	d.mu.Lock()
	if child.parent != parent {
		d.mu.Unlock()
		return
	}
	var leave []*Element
	if child.Connected() {
		leave = collectTree(child)
	}
	child.detachRaw()
	d.mu.Unlock()

	runDisconnects(leave)
}

func (d *Document) replaceChildren(e *Element, kids []*Element) {
	d.mu.Lock()
	connected := e.Connected()
	var leave []*Element
	if connected {
		for _, c := range e.children {
			leave = append(leave, collectTree(c)...)
		}
	}
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
	for _, c := range kids {
		if c.Connected() {
			leave = append(leave, collectTree(c)...)
		}
		c.detachRaw()
		c.parent = e
		e.children = append(e.children, c)
		adopt(c, d)
	}
	var enter []*Element
	if connected {
		for _, c := range kids {
			enter = append(enter, collectTree(c)...)
		}
	}
	d.mu.Unlock()

	runDisconnects(leave)
	d.runUpgrades(enter)
	runConnects(enter)
}

func (d *Document) attachShadow(e *Element) *Element {
	d.mu.Lock()
	sr := e.attachShadowRaw()
	sr.doc = d
	d.mu.Unlock()
	return sr
}

// adopt points every element of the subtree, shadow content included,
// at doc.
func adopt(el *Element, doc *Document) {
	el.doc = doc
	if el.shadow != nil {
		adopt(el.shadow, doc)
	}
	for _, c := range el.children {
		adopt(c, doc)
	}
}

// collectTree gathers the subtree's non-text elements in tree order,
// descending into shadow roots.
func collectTree(el *Element) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(cur *Element) {
		if !cur.IsText() {
			out = append(out, cur)
		}
		if cur.shadow != nil {
			walk(cur.shadow)
		}
		for _, c := range cur.children {
			walk(c)
		}
	}
	walk(el)
	return out
}

func (d *Document) runUpgrades(els []*Element) {
	for _, el := range els {
		d.bindLifecycle(el)
	}
}

// runConnects fires ConnectedCallback in tree order, re-checking
// liveness: an earlier callback may have detached a later element.
func runConnects(els []*Element) {
	for _, el := range els {
		if el.lifecycle != nil && el.Connected() {
			el.lifecycle.ConnectedCallback()
		}
	}
}

func runDisconnects(els []*Element) {
	for _, el := range els {
		if el.lifecycle != nil {
			el.lifecycle.DisconnectedCallback()
		}
	}
}
