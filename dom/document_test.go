package dom

import (
	"fmt"
	"testing"
	"time"
)

// testLifecycle records lifecycle callbacks into a shared log.
type testLifecycle struct {
	el       *Element
	log      *[]string
	observed []string
}

func (l *testLifecycle) ConnectedCallback() {
	*l.log = append(*l.log, l.el.Tag+" connect")
}

func (l *testLifecycle) DisconnectedCallback() {
	*l.log = append(*l.log, l.el.Tag+" disconnect")
}

func (l *testLifecycle) AttributeChangedCallback(name, old, val string, present bool) {
	*l.log = append(*l.log, fmt.Sprintf("%s attr %s %q->%q present=%v", l.el.Tag, name, old, val, present))
}

func (l *testLifecycle) ObservedAttributes() []string {
	return l.observed
}

// testUpgrader upgrades the tags it was given, binding testLifecycles.
type testUpgrader struct {
	tags map[string][]string
	log  []string
}

func newTestUpgrader(tags map[string][]string) *testUpgrader {
	return &testUpgrader{tags: tags}
}

func (u *testUpgrader) Defined(tag string) bool {
	_, ok := u.tags[tag]
	return ok
}

func (u *testUpgrader) Upgrade(doc *Document, el *Element) Lifecycle {
	return &testLifecycle{el: el, log: &u.log, observed: u.tags[el.Tag]}
}

func TestCreateElementUpgradesDefinedTags(t *testing.T) {
	up := newTestUpgrader(map[string][]string{"x-item": nil})
	doc := NewDocument(Options{Upgrader: up})

	el := doc.CreateElement("x-item")
	if el.Lifecycle() == nil {
		t.Fatal("defined tag should upgrade at creation")
	}
	plain := doc.CreateElement("div")
	if plain.Lifecycle() != nil {
		t.Error("undefined tag must not upgrade")
	}
	if len(up.log) != 0 {
		t.Errorf("no callbacks should fire before insertion, got %v", up.log)
	}
}

func TestMountConnectsSubtreeInTreeOrder(t *testing.T) {
	up := newTestUpgrader(map[string][]string{"x-outer": nil, "x-inner": nil})
	doc := NewDocument(Options{Upgrader: up})

	outer := doc.CreateElement("x-outer")
	mid := doc.CreateElement("div")
	inner := doc.CreateElement("x-inner")
	outer.Append(mid)
	mid.Append(inner)

	doc.Mount(outer)

	want := []string{"x-outer connect", "x-inner connect"}
	if len(up.log) != 2 || up.log[0] != want[0] || up.log[1] != want[1] {
		t.Errorf("log = %v, want %v", up.log, want)
	}
	if !inner.Connected() {
		t.Error("inner should be connected")
	}
}

func TestInsertionUpgradesParsedElements(t *testing.T) {
	up := newTestUpgrader(map[string][]string{"x-late": nil})
	doc := NewDocument(Options{Upgrader: up})

	roots, err := Parse(`<div><x-late></x-late></div>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	late := roots[0].FirstChild()
	if late.Lifecycle() != nil {
		t.Fatal("detached parse result must not be upgraded")
	}

	doc.Mount(roots[0])

	if late.Lifecycle() == nil {
		t.Fatal("insertion should upgrade the element")
	}
	if len(up.log) != 1 || up.log[0] != "x-late connect" {
		t.Errorf("log = %v", up.log)
	}
}

func TestRemoveDisconnectsSubtree(t *testing.T) {
	up := newTestUpgrader(map[string][]string{"x-a": nil, "x-b": nil})
	doc := NewDocument(Options{Upgrader: up})

	a := doc.CreateElement("x-a")
	b := doc.CreateElement("x-b")
	a.Append(b)
	doc.Mount(a)
	up.log = nil

	doc.Root().Remove(a)

	want := []string{"x-a disconnect", "x-b disconnect"}
	if len(up.log) != 2 || up.log[0] != want[0] || up.log[1] != want[1] {
		t.Errorf("log = %v, want %v", up.log, want)
	}
	if a.Connected() || b.Connected() {
		t.Error("removed elements should be disconnected")
	}
}

func TestMovingConnectedElementReconnects(t *testing.T) {
	up := newTestUpgrader(map[string][]string{"x-m": nil})
	doc := NewDocument(Options{Upgrader: up})

	left := doc.CreateElement("div")
	right := doc.CreateElement("div")
	doc.Mount(left)
	doc.Mount(right)

	m := doc.CreateElement("x-m")
	left.Append(m)
	up.log = nil

	right.Append(m)

	want := []string{"x-m disconnect", "x-m connect"}
	if len(up.log) != 2 || up.log[0] != want[0] || up.log[1] != want[1] {
		t.Errorf("log = %v, want %v", up.log, want)
	}
	if m.Parent() != right {
		t.Error("element should have moved")
	}
}

func TestShadowContentConnectsWithHost(t *testing.T) {
	up := newTestUpgrader(map[string][]string{"x-host": nil, "x-shadowed": nil})
	doc := NewDocument(Options{Upgrader: up})

	host := doc.CreateElement("x-host")
	sr := host.AttachShadow()
	sr.Append(doc.CreateElement("x-shadowed"))

	doc.Mount(host)

	want := []string{"x-host connect", "x-shadowed connect"}
	if len(up.log) != 2 || up.log[0] != want[0] || up.log[1] != want[1] {
		t.Errorf("log = %v, want %v", up.log, want)
	}

	up.log = nil
	doc.Root().Remove(host)
	want = []string{"x-host disconnect", "x-shadowed disconnect"}
	if len(up.log) != 2 || up.log[0] != want[0] || up.log[1] != want[1] {
		t.Errorf("log after remove = %v, want %v", up.log, want)
	}
}

func TestObservedAttributeCallbacks(t *testing.T) {
	up := newTestUpgrader(map[string][]string{"x-w": {"variant"}})
	doc := NewDocument(Options{Upgrader: up})
	el := doc.CreateElement("x-w")
	doc.Mount(el)
	up.log = nil

	el.SetAttr("variant", "primary")
	el.SetAttr("variant", "primary") // unchanged: no callback
	el.SetAttr("other", "x")         // unobserved: no callback
	el.RemoveAttr("variant")
	el.RemoveAttr("variant") // already absent: no callback

	want := []string{
		`x-w attr variant ""->"primary" present=true`,
		`x-w attr variant "primary"->"" present=false`,
	}
	if len(up.log) != 2 || up.log[0] != want[0] || up.log[1] != want[1] {
		t.Errorf("log = %v, want %v", up.log, want)
	}
}

func TestAttributeCallbackFiresWhileDisconnected(t *testing.T) {
	up := newTestUpgrader(map[string][]string{"x-d": {"k"}})
	doc := NewDocument(Options{Upgrader: up})
	el := doc.CreateElement("x-d")

	el.SetAttr("k", "v")

	if len(up.log) != 1 {
		t.Fatalf("log = %v, want one attribute callback", up.log)
	}
}

func TestReplaceChildrenSwapsConnections(t *testing.T) {
	up := newTestUpgrader(map[string][]string{"x-old": nil, "x-new": nil})
	doc := NewDocument(Options{Upgrader: up})

	parent := doc.CreateElement("div")
	doc.Mount(parent)
	oldKid := doc.CreateElement("x-old")
	parent.Append(oldKid)
	up.log = nil

	newKid := doc.CreateElement("x-new")
	parent.ReplaceChildren(newKid)

	want := []string{"x-old disconnect", "x-new connect"}
	if len(up.log) != 2 || up.log[0] != want[0] || up.log[1] != want[1] {
		t.Errorf("log = %v, want %v", up.log, want)
	}
	kids := parent.Children()
	if len(kids) != 1 || kids[0] != newKid {
		t.Errorf("children = %v", kids)
	}
}

func TestSetHTMLReplacesContent(t *testing.T) {
	doc := NewDocument(Options{})
	host := doc.CreateElement("div")
	doc.Mount(host)

	if err := doc.SetHTML(host, `<span>one</span><span>two</span>`); err != nil {
		t.Fatalf("SetHTML: %v", err)
	}
	if got := len(host.Children()); got != 2 {
		t.Fatalf("children = %d, want 2", got)
	}
	if err := doc.SetHTML(host, `<em>only</em>`); err != nil {
		t.Fatalf("SetHTML: %v", err)
	}
	kids := host.Children()
	if len(kids) != 1 || kids[0].Tag != "em" {
		t.Errorf("children after second SetHTML = %v", kids)
	}
}

func TestWaitIdleWaitsForAsyncWork(t *testing.T) {
	doc := NewDocument(Options{})
	done := false
	doc.RunAsync(func() {
		time.Sleep(10 * time.Millisecond)
		done = true
	})
	doc.WaitIdle()
	if !done {
		t.Error("WaitIdle returned before tracked work finished")
	}
}

// appendOnConnect grows the tree from inside its own connect callback.
type appendOnConnect struct {
	doc   *Document
	el    *Element
	child *Element
}

func (a *appendOnConnect) ConnectedCallback() {
	a.child = a.doc.CreateElement("span")
	a.el.Append(a.child)
}

func (a *appendOnConnect) DisconnectedCallback() {}

func (a *appendOnConnect) AttributeChangedCallback(string, string, string, bool) {}

func (a *appendOnConnect) ObservedAttributes() []string { return nil }

type appendingUpgrader struct {
	last *appendOnConnect
}

func (u *appendingUpgrader) Defined(tag string) bool { return tag == "x-grow" }

func (u *appendingUpgrader) Upgrade(doc *Document, el *Element) Lifecycle {
	u.last = &appendOnConnect{doc: doc, el: el}
	return u.last
}

func TestConnectCallbackMayMutateTheTree(t *testing.T) {
	up := &appendingUpgrader{}
	doc := NewDocument(Options{Upgrader: up})

	el := doc.CreateElement("x-grow")
	doc.Mount(el)

	if up.last == nil || up.last.child == nil {
		t.Fatal("connect callback did not run")
	}
	if !up.last.child.Connected() {
		t.Error("child appended during connect should itself be connected")
	}
	if up.last.child.Parent() != el {
		t.Error("child should hang off the upgraded element")
	}
}
