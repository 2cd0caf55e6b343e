// Package golem turns declarative component definitions into live custom
// elements. A Definition describes an element kind — property schema,
// template, styles, initial state, delegated events, lifecycle hooks —
// and Define derives the full element lifecycle from it: attribute and
// property synchronization with type coercion and reflection, a reactive
// per-instance state store whose writes re-render, cached adoption of a
// shared stylesheet plus per-component styles into the element's shadow
// root, and event delegation rewired on every render.
package golem

import (
	"fmt"

	"github.com/a-h/templ"
	"github.com/germtb/golem/attrs"
	"github.com/germtb/golem/dom"
	"github.com/germtb/golem/util"
	"github.com/germtb/gox"
)

// Kind identifies how a property coerces to and from its attribute.
type Kind = attrs.Kind

// Property kinds, re-exported so definitions read without importing attrs.
const (
	Bool   = attrs.Bool
	Number = attrs.Number
	String = attrs.String
	JSON   = attrs.JSON
)

// Prop is one property schema entry. Default may be a plain value or a
// func() any evaluated fresh at every element construction, so mutable
// defaults are never shared across instances. Reflect opts the property
// into attribute reflection: assignments write the encoded value back to
// the attribute (false booleans and nil values remove it).
type Prop struct {
	Kind    Kind
	Default any
	Reflect bool
}

// Method is a named behavior on a component. Delegated event listeners
// resolve to methods by name and invoke them with the triggering event
// and the element the selector matched.
type Method func(inst *Instance, ev *dom.Event, matched *dom.Element)

// Definition is the declarative input to Define. Exactly one template
// form must be set; at most one styles form and one state form.
type Definition struct {
	// Props maps camelCase property names to their schema entries. The
	// kebab-case forms of these names are the element's observed
	// attributes.
	Props map[string]Prop

	// Template renders markup text, parsed into the shadow tree.
	Template func(state any, props map[string]any) string
	// TemplateNodes renders a gox element tree. Component-function nodes
	// are expanded and fragments flattened before conversion.
	TemplateNodes func(state any, props map[string]any) gox.VNode
	// TemplateHTML renders a templ component, written to text and parsed.
	TemplateHTML func(state any, props map[string]any) templ.Component

	// Styles is static component style text, compiled and adopted into
	// the shadow root on every render. StylesFunc is the dynamic form.
	Styles     string
	StylesFunc func(state any, props map[string]any) string

	// StylesheetURL names a shared stylesheet ensured through the
	// process-wide cache; a fetch or compile failure degrades to
	// rendering without it.
	StylesheetURL string

	// InitialState seeds the state store on first connection.
	// InitialStateFunc is the derived form; it receives the property
	// snapshot at connect time.
	InitialState     any
	InitialStateFunc func(props map[string]any) any

	// Events maps CSS selectors to event-type-to-method-name tables.
	// After every committed render, each selector is matched against the
	// new shadow content and listeners are attached to every match.
	Events map[string]map[string]string

	// Methods holds the named behaviors Events refers to.
	Methods map[string]Method

	// Lifecycle hooks. OnPropertyChange returning true means the change
	// was handled: the automatic re-render is suppressed.
	OnConnect        func(inst *Instance)
	OnDisconnect     func(inst *Instance)
	OnPropertyChange func(inst *Instance, name string, old, val any) bool

	// SnapshotState carries the state value through a host attribute:
	// serialized on every state write, consumed to seed the store when a
	// server-rendered element connects.
	SnapshotState bool

	tag      string
	entries  []schemaEntry
	byProp   map[string]*schemaEntry
	byAttr   map[string]*schemaEntry
	observed []string
	wirings  []eventWiring
}

// schemaEntry is a normalized schema row: the property name, its
// attribute form, and the declared Prop. Computed once per definition.
type schemaEntry struct {
	name string
	attr string
	prop Prop
}

// eventWiring is one compiled Events row.
type eventWiring struct {
	selector *dom.Selector
	event    string
	method   string
}

// Tag returns the custom-element name the definition was registered
// under; empty before registration.
func (d *Definition) Tag() string {
	return d.tag
}

// ObservedAttributes returns the attribute names derived from the
// property schema, in sorted order.
func (d *Definition) ObservedAttributes() []string {
	out := make([]string, len(d.observed))
	copy(out, d.observed)
	return out
}

// defaultValue materializes the entry's default for a new instance.
// Function defaults run here, once per construction; nil defaults become
// the kind's zero value.
func (e *schemaEntry) defaultValue() any {
	d := e.prop.Default
	if fn, ok := d.(func() any); ok {
		d = fn()
	}
	if d == nil {
		switch e.prop.Kind {
		case attrs.Bool:
			return false
		case attrs.Number:
			return float64(0)
		case attrs.String:
			return ""
		}
	}
	return d
}

// normalize validates def eagerly and computes the per-definition
// tables: the schema accessor rows, the observed-attribute list, and
// the compiled event wirings. Malformed definitions are rejected here,
// before any instance can be constructed.
func (d *Definition) normalize(tag string) error {
	d.tag = tag

	templates := 0
	if d.Template != nil {
		templates++
	}
	if d.TemplateNodes != nil {
		templates++
	}
	if d.TemplateHTML != nil {
		templates++
	}
	if templates != 1 {
		return fmt.Errorf("definition needs exactly one template form, has %d", templates)
	}
	if d.Styles != "" && d.StylesFunc != nil {
		return fmt.Errorf("definition sets both Styles and StylesFunc")
	}
	if d.InitialState != nil && d.InitialStateFunc != nil {
		return fmt.Errorf("definition sets both InitialState and InitialStateFunc")
	}

	d.byProp = make(map[string]*schemaEntry, len(d.Props))
	d.byAttr = make(map[string]*schemaEntry, len(d.Props))
	for _, name := range util.OrderedKeys(d.Props) {
		prop := d.Props[name]
		if !attrs.ValidKind(prop.Kind) {
			return fmt.Errorf("property %q has unknown kind %q", name, prop.Kind)
		}
		if name == "" || name[0] < 'a' || name[0] > 'z' {
			return fmt.Errorf("property name %q must start with a lowercase letter", name)
		}
		d.entries = append(d.entries, schemaEntry{name: name, attr: attrs.ToAttr(name), prop: prop})
	}
	for i := range d.entries {
		e := &d.entries[i]
		d.byProp[e.name] = e
		d.byAttr[e.attr] = e
		d.observed = append(d.observed, e.attr)
	}

	for name, m := range d.Methods {
		if m == nil {
			return fmt.Errorf("method %q is nil", name)
		}
	}

	// Wirings are compiled in sorted order so listeners attach
	// deterministically on every render.
	for _, selector := range util.OrderedKeys(d.Events) {
		table := d.Events[selector]
		sel, err := dom.ParseSelector(selector)
		if err != nil {
			return fmt.Errorf("bad event selector %q: %w", selector, err)
		}
		for _, event := range util.OrderedKeys(table) {
			if event == "" {
				return fmt.Errorf("empty event type under selector %q", selector)
			}
			d.wirings = append(d.wirings, eventWiring{selector: sel, event: event, method: table[event]})
		}
	}
	return nil
}
