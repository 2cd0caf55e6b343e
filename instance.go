package golem

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/germtb/golem/attrs"
	"github.com/germtb/golem/dom"
	"github.com/germtb/golem/state"
	"github.com/germtb/golem/util"
)

// Instance is the runtime binding between one host element and its
// definition: the typed property table, the state store, the delegated
// listener cleanups, and the render machinery. The document drives it
// through the dom.Lifecycle callbacks; component methods and hooks
// receive it as their handle to the element.
type Instance struct {
	id  string
	el  *dom.Element
	doc *dom.Document
	def *Definition
	reg *Registry

	mu         sync.Mutex
	props      map[string]any
	connected  bool
	stateInit  bool
	reflecting bool
	store      *state.Store[any]
	unsub      func()
	cleanups   []func()
	seq        uint64
	committing bool
	pending    *renderPayload
}

func newInstance(reg *Registry, doc *dom.Document, el *dom.Element, def *Definition) *Instance {
	inst := &Instance{
		id:    uuid.New().String(),
		el:    el,
		doc:   doc,
		def:   def,
		reg:   reg,
		props: make(map[string]any, len(def.entries)),
	}
	for i := range def.entries {
		e := &def.entries[i]
		inst.props[e.name] = e.defaultValue()
	}
	return inst
}

// InstanceOf returns the component instance bound to el, if el has been
// upgraded by a registry from this package.
func InstanceOf(el *dom.Element) (*Instance, bool) {
	inst, ok := el.Lifecycle().(*Instance)
	return inst, ok
}

// ID returns the instance's unique id.
func (inst *Instance) ID() string { return inst.id }

// Element returns the host element.
func (inst *Instance) Element() *dom.Element { return inst.el }

// Document returns the owning document.
func (inst *Instance) Document() *dom.Document { return inst.doc }

// Definition returns the definition the instance was built from.
func (inst *Instance) Definition() *Definition { return inst.def }

// Connected reports whether the host element is currently in its
// document tree.
func (inst *Instance) Connected() bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.connected
}

// ObservedAttributes implements dom.Lifecycle.
func (inst *Instance) ObservedAttributes() []string {
	return inst.def.ObservedAttributes()
}

// ConnectedCallback implements dom.Lifecycle. It runs on every
// insertion: reconcile host attributes with the property table, seed
// the state store (first connection only), re-establish the render
// subscription, run the OnConnect hook, render.
func (inst *Instance) ConnectedCallback() {
	inst.mu.Lock()
	inst.connected = true
	inst.mu.Unlock()

	inst.reconcileAttributes()
	inst.initState()
	inst.subscribeStore()
	if inst.def.SnapshotState {
		inst.writeSnapshot(inst.StateValue())
	}
	inst.runHook("OnConnect", inst.def.OnConnect)
	inst.Render()
}

// DisconnectedCallback implements dom.Lifecycle. State survives for a
// later reconnection; the subscription and listeners do not.
func (inst *Instance) DisconnectedCallback() {
	inst.mu.Lock()
	inst.connected = false
	unsub := inst.unsub
	inst.unsub = nil
	cleanups := inst.cleanups
	inst.cleanups = nil
	inst.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	for _, fn := range cleanups {
		fn()
	}
	inst.runHook("OnDisconnect", inst.def.OnDisconnect)
}

// AttributeChangedCallback implements dom.Lifecycle. The document fires
// it for schema-observed attributes only. The decoded value lands in
// the property table without reflecting back, then takes the
// property-change path; writes the instance itself made while
// reflecting are ignored to break the echo loop.
func (inst *Instance) AttributeChangedCallback(name, old, val string, present bool) {
	inst.mu.Lock()
	if inst.reflecting {
		inst.mu.Unlock()
		return
	}
	e, ok := inst.def.byAttr[name]
	if !ok {
		inst.mu.Unlock()
		return
	}
	decoded := attrs.Decode(val, present, e.prop.Kind)
	prev := inst.props[e.name]
	if e.prop.Kind != attrs.JSON && scalarEqual(prev, decoded) {
		inst.mu.Unlock()
		return
	}
	inst.props[e.name] = decoded
	inst.mu.Unlock()

	inst.propertyChanged(e.name, prev, decoded)
}

// reconcileAttributes aligns the property table with the host's
// attributes at connection time: a present attribute decodes over the
// default, and a reflected property whose value encodes to a present
// attribute gets written out, so defaults become visible in the tree.
func (inst *Instance) reconcileAttributes() {
	type reflectWrite struct {
		attr  string
		value string
	}
	var writes []reflectWrite

	inst.mu.Lock()
	for i := range inst.def.entries {
		e := &inst.def.entries[i]
		if raw, present := inst.el.Attr(e.attr); present {
			inst.props[e.name] = attrs.Decode(raw, true, e.prop.Kind)
			continue
		}
		if !e.prop.Reflect {
			continue
		}
		if value, remove := attrs.Encode(inst.props[e.name], e.prop.Kind); !remove {
			writes = append(writes, reflectWrite{attr: e.attr, value: value})
		}
	}
	inst.mu.Unlock()

	for _, w := range writes {
		inst.withReflect(func() { inst.el.SetAttr(w.attr, w.value) })
	}
}

// initState seeds the store on the first connection only. When the
// definition opts into snapshots and the host carries one, the snapshot
// is consumed (removed from the host) and wins over the definition
// seed; an undecodable snapshot degrades to the definition seed with a
// diagnostic.
func (inst *Instance) initState() {
	inst.mu.Lock()
	done := inst.stateInit
	inst.mu.Unlock()
	if done {
		return
	}

	var seed any
	seeded := false
	if inst.def.SnapshotState {
		if raw, ok := inst.el.Attr(snapshotAttr); ok {
			inst.el.RemoveAttr(snapshotAttr)
			v, err := decodeSnapshot(raw)
			if err != nil {
				log.Printf("golem: <%s> dropping undecodable state snapshot: %v", inst.def.tag, err)
			} else {
				seed = v
				seeded = true
			}
		}
	}
	if !seeded {
		if fn := inst.def.InitialStateFunc; fn != nil {
			seed = fn(inst.Props())
		} else {
			seed = inst.def.InitialState
		}
	}

	inst.mu.Lock()
	if !inst.stateInit {
		inst.stateInit = true
		inst.store = state.NewStore[any](seed)
	}
	inst.mu.Unlock()
}

// subscribeStore establishes the render subscription for the current
// connected span. Reconnection re-subscribes; the store itself is never
// re-created.
func (inst *Instance) subscribeStore() {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.store == nil || inst.unsub != nil {
		return
	}
	inst.unsub = inst.store.Subscribe(inst.onStateWrite)
}

func (inst *Instance) onStateWrite(v any) {
	if inst.def.SnapshotState {
		inst.writeSnapshot(v)
	}
	inst.Render()
}

// writeSnapshot reflects the state value into the host's snapshot
// attribute so serialized output can rehydrate it.
func (inst *Instance) writeSnapshot(v any) {
	raw, err := encodeSnapshot(v)
	if err != nil {
		log.Printf("golem: <%s> cannot snapshot state: %v", inst.def.tag, err)
		return
	}
	inst.el.SetAttr(snapshotAttr, raw)
}

// Get returns the named property's current value; nil for names outside
// the schema.
func (inst *Instance) Get(name string) any {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.props[name]
}

// GetBool returns the named property as a bool, false when it holds
// anything else.
func (inst *Instance) GetBool(name string) bool {
	b, _ := inst.Get(name).(bool)
	return b
}

// GetString returns the named property as a string, "" when it holds
// anything else.
func (inst *Instance) GetString(name string) string {
	s, _ := inst.Get(name).(string)
	return s
}

// GetNumber returns the named property as a float64. Non-numeric values
// yield NaN, the codec's visible error value.
func (inst *Instance) GetNumber(name string) float64 {
	if f, ok := attrs.AsNumber(inst.Get(name)); ok {
		return f
	}
	return math.NaN()
}

// Props returns a copy of the current property table.
func (inst *Instance) Props() map[string]any {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return util.MergeMaps(inst.props)
}

// Set assigns a property. Unknown names are a logged no-op. Assigning a
// scalar-equal value is a no-op with no render; otherwise the table is
// updated, the attribute reflected when the schema says so, and — while
// connected — the change takes the property-change path.
func (inst *Instance) Set(name string, v any) {
	e, ok := inst.def.byProp[name]
	if !ok {
		log.Printf("golem: <%s> has no property %q", inst.def.tag, name)
		return
	}
	if e.prop.Kind == attrs.Number {
		if f, numeric := attrs.AsNumber(v); numeric {
			v = f
		}
	}

	inst.mu.Lock()
	old := inst.props[e.name]
	if e.prop.Kind != attrs.JSON && scalarEqual(old, v) {
		inst.mu.Unlock()
		return
	}
	inst.props[e.name] = v
	connected := inst.connected
	inst.mu.Unlock()

	if e.prop.Reflect {
		value, remove := attrs.Encode(v, e.prop.Kind)
		inst.withReflect(func() {
			if remove {
				inst.el.RemoveAttr(e.attr)
			} else {
				inst.el.SetAttr(e.attr, value)
			}
		})
	}
	if !connected {
		return
	}
	inst.propertyChanged(e.name, old, v)
}

// propertyChanged runs the OnPropertyChange hook; unless the hook
// reports the change handled, the instance renders.
func (inst *Instance) propertyChanged(name string, old, v any) {
	if hook := inst.def.OnPropertyChange; hook != nil {
		handled := false
		func() {
			defer func() {
				_ = util.PanicHandler(fmt.Sprintf("<%s> OnPropertyChange(%s)", inst.def.tag, name), recover())
			}()
			handled = hook(inst, name, old, v)
		}()
		if handled {
			return
		}
	}
	inst.Render()
}

// State returns the instance's store; nil before the first connection.
func (inst *Instance) State() *state.Store[any] {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.store
}

// StateValue returns the current state value; nil before the first
// connection.
func (inst *Instance) StateValue() any {
	if s := inst.State(); s != nil {
		return s.Get()
	}
	return nil
}

// SetState replaces the state value, notifying subscribers. Before the
// first connection there is no store yet; the write is a logged no-op.
func (inst *Instance) SetState(v any) {
	s := inst.State()
	if s == nil {
		log.Printf("golem: <%s> state write before first connection", inst.def.tag)
		return
	}
	s.Set(v)
}

// UpdateState replaces the state value with fn(previous).
func (inst *Instance) UpdateState(fn func(any) any) {
	s := inst.State()
	if s == nil {
		log.Printf("golem: <%s> state write before first connection", inst.def.tag)
		return
	}
	s.Update(fn)
}

// runHook invokes a lifecycle hook behind the runtime's panic guard.
func (inst *Instance) runHook(name string, hook func(*Instance)) {
	if hook == nil {
		return
	}
	defer func() {
		_ = util.PanicHandler(fmt.Sprintf("<%s> %s", inst.def.tag, name), recover())
	}()
	hook(inst)
}

// withReflect runs fn with attribute-change echo suppression: attribute
// writes the instance itself makes must not loop back through the
// decode path. Callbacks fire on the writing goroutine, so the flag
// covers exactly the span of fn.
func (inst *Instance) withReflect(fn func()) {
	inst.mu.Lock()
	inst.reflecting = true
	inst.mu.Unlock()
	fn()
	inst.mu.Lock()
	inst.reflecting = false
	inst.mu.Unlock()
}

// scalarEqual compares property values of the scalar kinds. Only
// like-typed comparable scalars compare equal; mixed or structured
// values always count as changed. NaN compares unequal to itself, so
// assigning NaN registers as a change every time.
func scalarEqual(a, b any) bool {
	switch x := a.(type) {
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case nil:
		return b == nil
	}
	if xf, ok := attrs.AsNumber(a); ok {
		if yf, ok := attrs.AsNumber(b); ok {
			return xf == yf
		}
	}
	return false
}
