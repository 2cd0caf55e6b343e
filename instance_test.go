package golem

import (
	"fmt"
	"math"
	"testing"

	"github.com/germtb/golem/dom"
)

func mustDefine(t *testing.T, r *Registry, tag string, def Definition) *Definition {
	t.Helper()
	d, err := r.Define(tag, def)
	if err != nil {
		t.Fatalf("Define(%s): %v", tag, err)
	}
	return d
}

func mountNew(t *testing.T, r *Registry, tag string) (*dom.Document, *dom.Element, *Instance) {
	t.Helper()
	doc := r.NewDocument()
	el := doc.CreateElement(tag)
	doc.Mount(el)
	inst, ok := InstanceOf(el)
	if !ok {
		t.Fatalf("<%s> did not upgrade", tag)
	}
	return doc, el, inst
}

func shadowHTML(t *testing.T, el *dom.Element) string {
	t.Helper()
	sr := el.ShadowRoot()
	if sr == nil {
		t.Fatal("element has no shadow root")
	}
	return dom.InnerHTML(sr)
}

func TestDefaultsSeedProperties(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-def", Definition{
		Template: textTemplate("<p></p>"),
		Props: map[string]Prop{
			"variant": {Kind: String, Default: "plain"},
			"count":   {Kind: Number, Default: 3},
			"flag":    {Kind: Bool},
			"label":   {Kind: String},
		},
	})
	_, _, inst := mountNew(t, r, "x-def")

	if got := inst.GetString("variant"); got != "plain" {
		t.Errorf("variant = %q, want %q", got, "plain")
	}
	if got := inst.GetNumber("count"); got != 3 {
		t.Errorf("count = %v, want 3", got)
	}
	if inst.GetBool("flag") {
		t.Error("bool default should be false")
	}
	if got := inst.GetString("label"); got != "" {
		t.Errorf("string default = %q, want empty", got)
	}
}

func TestFuncDefaultsRunPerInstance(t *testing.T) {
	r := NewRegistry()
	calls := 0
	mustDefine(t, r, "x-fresh", Definition{
		Template: textTemplate("<p></p>"),
		Props: map[string]Prop{
			"items": {Kind: JSON, Default: func() any {
				calls++
				return map[string]any{}
			}},
		},
	})
	doc := r.NewDocument()
	a := doc.CreateElement("x-fresh")
	b := doc.CreateElement("x-fresh")
	if calls != 2 {
		t.Fatalf("default func ran %d times, want 2", calls)
	}

	instA, _ := InstanceOf(a)
	instB, _ := InstanceOf(b)
	mapA, _ := instA.Get("items").(map[string]any)
	mapB, _ := instB.Get("items").(map[string]any)
	if mapA == nil || mapB == nil {
		t.Fatal("JSON default should materialize as a map")
	}
	mapA["k"] = 1
	if _, shared := mapB["k"]; shared {
		t.Error("instances must not share a mutable default")
	}
}

func TestConnectReconcilesHostAttributes(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-recon", Definition{
		Template: textTemplate("<p></p>"),
		Props: map[string]Prop{
			"variant": {Kind: String, Default: "plain"},
			"count":   {Kind: Number, Default: 3},
			"flag":    {Kind: Bool},
		},
	})
	doc := r.NewDocument()
	roots, err := dom.Parse(`<x-recon variant="primary" count="5" flag></x-recon>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	doc.Mount(roots[0])

	inst, ok := InstanceOf(roots[0])
	if !ok {
		t.Fatal("parsed element did not upgrade on insertion")
	}
	if got := inst.GetString("variant"); got != "primary" {
		t.Errorf("variant = %q, want %q", got, "primary")
	}
	if got := inst.GetNumber("count"); got != 5 {
		t.Errorf("count = %v, want 5", got)
	}
	if !inst.GetBool("flag") {
		t.Error("present boolean attribute should decode true")
	}
}

func TestReflectedDefaultsBecomeAttributes(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-refl", Definition{
		Template: textTemplate("<p></p>"),
		Props: map[string]Prop{
			"variant": {Kind: String, Default: "plain", Reflect: true},
			"count":   {Kind: Number, Default: 3, Reflect: true},
			"flag":    {Kind: Bool, Reflect: true},
			"quiet":   {Kind: String, Default: "hidden"},
		},
	})
	_, el, _ := mountNew(t, r, "x-refl")

	if got, ok := el.Attr("variant"); !ok || got != "plain" {
		t.Errorf(`variant attr = %q, %v; want "plain", true`, got, ok)
	}
	if got, ok := el.Attr("count"); !ok || got != "3" {
		t.Errorf(`count attr = %q, %v; want "3", true`, got, ok)
	}
	if _, ok := el.Attr("flag"); ok {
		t.Error("false boolean must not reflect an attribute")
	}
	if _, ok := el.Attr("quiet"); ok {
		t.Error("unreflected property must not appear as an attribute")
	}
}

func TestReconcilePrefersHostAttributeOverReflectedDefault(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-pref", Definition{
		Template: textTemplate("<p></p>"),
		Props:    map[string]Prop{"variant": {Kind: String, Default: "plain", Reflect: true}},
	})
	doc := r.NewDocument()
	roots, err := dom.Parse(`<x-pref variant="primary"></x-pref>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	doc.Mount(roots[0])

	inst, _ := InstanceOf(roots[0])
	if got := inst.GetString("variant"); got != "primary" {
		t.Errorf("variant = %q, want %q", got, "primary")
	}
	if got, _ := roots[0].Attr("variant"); got != "primary" {
		t.Errorf("attr = %q; reconciliation must not clobber it", got)
	}
}

func TestAttributeChangeRerenders(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-attr", Definition{
		Template: func(state any, props map[string]any) string {
			return fmt.Sprintf("<p>%v</p>", props["variant"])
		},
		Props: map[string]Prop{"variant": {Kind: String, Default: "plain"}},
	})
	_, el, _ := mountNew(t, r, "x-attr")

	if got := shadowHTML(t, el); got != "<p>plain</p>" {
		t.Fatalf("initial shadow = %q", got)
	}
	el.SetAttr("variant", "danger")
	if got := shadowHTML(t, el); got != "<p>danger</p>" {
		t.Errorf("shadow after attribute change = %q, want %q", got, "<p>danger</p>")
	}
}

func TestEquivalentAttributeTextDoesNotRerender(t *testing.T) {
	r := NewRegistry()
	renders := 0
	mustDefine(t, r, "x-eq", Definition{
		Template: func(state any, props map[string]any) string {
			renders++
			return "<p></p>"
		},
		Props: map[string]Prop{"count": {Kind: Number, Default: 5}},
	})
	_, el, inst := mountNew(t, r, "x-eq")
	base := renders

	// "05" is new attribute text but decodes to the value already held.
	el.SetAttr("count", "05")
	if renders != base {
		t.Errorf("renders = %d, want %d (equal decoded value)", renders, base)
	}
	if got := inst.GetNumber("count"); got != 5 {
		t.Errorf("count = %v, want 5", got)
	}

	el.SetAttr("count", "6")
	if renders != base+1 {
		t.Errorf("renders = %d, want %d after a real change", renders, base+1)
	}
}

func TestAttributeRemovalMakesNumberNaN(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-rm", Definition{
		Template: textTemplate("<p></p>"),
		Props:    map[string]Prop{"count": {Kind: Number, Default: 5}},
	})
	_, el, inst := mountNew(t, r, "x-rm")

	el.SetAttr("count", "9")
	el.RemoveAttr("count")
	if got := inst.GetNumber("count"); !math.IsNaN(got) {
		t.Errorf("count after removal = %v, want NaN", got)
	}
}

func TestSetUpdatesRendersAndReflects(t *testing.T) {
	r := NewRegistry()
	renders := 0
	mustDefine(t, r, "x-set", Definition{
		Template: func(state any, props map[string]any) string {
			renders++
			return "<p></p>"
		},
		Props: map[string]Prop{
			"variant": {Kind: String, Default: "plain", Reflect: true},
			"flag":    {Kind: Bool, Reflect: true},
		},
	})
	_, el, inst := mountNew(t, r, "x-set")
	base := renders

	inst.Set("variant", "danger")
	if got, _ := el.Attr("variant"); got != "danger" {
		t.Errorf("variant attr = %q, want %q", got, "danger")
	}
	if renders != base+1 {
		t.Errorf("renders = %d, want %d", renders, base+1)
	}

	inst.Set("variant", "danger") // scalar-equal: no-op
	if renders != base+1 {
		t.Errorf("equal assignment must not render, renders = %d", renders)
	}

	inst.Set("flag", true)
	if got, ok := el.Attr("flag"); !ok || got != "" {
		t.Errorf(`flag attr = %q, %v; want "", true`, got, ok)
	}
	inst.Set("flag", false)
	if _, ok := el.Attr("flag"); ok {
		t.Error("false boolean assignment should remove the attribute")
	}
}

func TestSetUnknownPropertyIsNoOp(t *testing.T) {
	r := NewRegistry()
	renders := 0
	mustDefine(t, r, "x-unk", Definition{
		Template: func(state any, props map[string]any) string {
			renders++
			return "<p></p>"
		},
	})
	_, _, inst := mountNew(t, r, "x-unk")
	base := renders

	inst.Set("nope", 1)
	if renders != base {
		t.Errorf("unknown property must not render, renders = %d", renders)
	}
	if inst.Get("nope") != nil {
		t.Error("unknown property must not be stored")
	}
}

func TestNaNAssignmentAlwaysRenders(t *testing.T) {
	r := NewRegistry()
	renders := 0
	mustDefine(t, r, "x-nan", Definition{
		Template: func(state any, props map[string]any) string {
			renders++
			return "<p></p>"
		},
		Props: map[string]Prop{"count": {Kind: Number, Default: 1}},
	})
	_, _, inst := mountNew(t, r, "x-nan")
	base := renders

	inst.Set("count", math.NaN())
	inst.Set("count", math.NaN())
	if renders != base+2 {
		t.Errorf("renders = %d, want %d: NaN never compares equal", renders, base+2)
	}
}

func TestJSONAssignmentAlwaysRenders(t *testing.T) {
	r := NewRegistry()
	renders := 0
	mustDefine(t, r, "x-json", Definition{
		Template: func(state any, props map[string]any) string {
			renders++
			return "<p></p>"
		},
		Props: map[string]Prop{"data": {Kind: JSON}},
	})
	_, _, inst := mountNew(t, r, "x-json")
	base := renders

	v := map[string]any{"k": 1}
	inst.Set("data", v)
	inst.Set("data", v)
	if renders != base+2 {
		t.Errorf("renders = %d, want %d: structured values always count as changed", renders, base+2)
	}
}

func TestReflectionDoesNotEchoThroughTheAttributePath(t *testing.T) {
	r := NewRegistry()
	var changes []string
	renders := 0
	mustDefine(t, r, "x-echo", Definition{
		Template: func(state any, props map[string]any) string {
			renders++
			return "<p></p>"
		},
		Props: map[string]Prop{"data": {Kind: JSON, Reflect: true}},
		OnPropertyChange: func(inst *Instance, name string, old, v any) bool {
			changes = append(changes, name)
			return false
		},
	})
	_, el, inst := mountNew(t, r, "x-echo")
	base := renders

	inst.Set("data", map[string]any{"k": 1})
	if got, _ := el.Attr("data"); got != `{"k":1}` {
		t.Errorf("data attr = %q", got)
	}
	// One change, one render: the reflected attribute write must not
	// re-enter through the decode path.
	if len(changes) != 1 || changes[0] != "data" {
		t.Errorf("changes = %v, want one %q", changes, "data")
	}
	if renders != base+1 {
		t.Errorf("renders = %d, want %d", renders, base+1)
	}
}

func TestOnPropertyChangeVetoesRender(t *testing.T) {
	r := NewRegistry()
	renders := 0
	mustDefine(t, r, "x-veto", Definition{
		Template: func(state any, props map[string]any) string {
			renders++
			return "<p></p>"
		},
		Props: map[string]Prop{
			"muted": {Kind: String},
			"loud":  {Kind: String},
		},
		OnPropertyChange: func(inst *Instance, name string, old, v any) bool {
			return name == "muted"
		},
	})
	_, _, inst := mountNew(t, r, "x-veto")
	base := renders

	inst.Set("muted", "x")
	if renders != base {
		t.Errorf("handled change must not render, renders = %d", renders)
	}
	if got := inst.GetString("muted"); got != "x" {
		t.Errorf("vetoed render must still store the value, got %q", got)
	}

	inst.Set("loud", "y")
	if renders != base+1 {
		t.Errorf("unhandled change should render, renders = %d", renders)
	}
}

func TestInitialStateFuncSeesReconciledProps(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-seed", Definition{
		Template: textTemplate("<p></p>"),
		Props:    map[string]Prop{"count": {Kind: Number, Default: 4}},
		InitialStateFunc: func(props map[string]any) any {
			return props["count"]
		},
	})
	doc := r.NewDocument()
	roots, err := dom.Parse(`<x-seed count="7"></x-seed>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	doc.Mount(roots[0])

	inst, _ := InstanceOf(roots[0])
	if got := inst.StateValue(); got != float64(7) {
		t.Errorf("state = %v, want 7", got)
	}
}

func TestStateSurvivesReconnection(t *testing.T) {
	r := NewRegistry()
	renders := 0
	mustDefine(t, r, "x-surv", Definition{
		Template: func(state any, props map[string]any) string {
			renders++
			return fmt.Sprintf("<p>%v</p>", state)
		},
		InitialState: float64(1),
	})
	doc, el, inst := mountNew(t, r, "x-surv")

	inst.SetState(float64(42))
	if got := shadowHTML(t, el); got != "<p>42</p>" {
		t.Fatalf("shadow = %q", got)
	}

	doc.Root().Remove(el)
	base := renders
	inst.SetState(float64(43))
	if renders != base {
		t.Errorf("disconnected state write must not render, renders = %d", renders)
	}

	doc.Mount(el)
	if got := inst.StateValue(); got != float64(43) {
		t.Errorf("state after reconnect = %v, want 43 (not re-seeded)", got)
	}
	if got := shadowHTML(t, el); got != "<p>43</p>" {
		t.Errorf("shadow after reconnect = %q", got)
	}

	// The subscription is live again.
	inst.SetState(float64(44))
	if got := shadowHTML(t, el); got != "<p>44</p>" {
		t.Errorf("shadow after post-reconnect write = %q", got)
	}
}

func TestStateWriteBeforeFirstConnection(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-early", Definition{
		Template:     textTemplate("<p></p>"),
		InitialState: float64(1),
	})
	doc := r.NewDocument()
	el := doc.CreateElement("x-early")
	inst, _ := InstanceOf(el)

	inst.SetState(float64(9)) // no store yet: logged no-op
	if inst.State() != nil {
		t.Error("store must not exist before first connection")
	}

	doc.Mount(el)
	if got := inst.StateValue(); got != float64(1) {
		t.Errorf("state = %v, want the definition seed", got)
	}
}

func TestLifecycleHookOrder(t *testing.T) {
	r := NewRegistry()
	var events []string
	mustDefine(t, r, "x-hooks", Definition{
		Template: func(state any, props map[string]any) string {
			events = append(events, "render")
			return "<p></p>"
		},
		InitialState: float64(0),
		OnConnect: func(inst *Instance) {
			events = append(events, fmt.Sprintf("connect state=%v", inst.StateValue()))
		},
		OnDisconnect: func(inst *Instance) {
			events = append(events, "disconnect")
		},
	})
	doc, el, _ := mountNew(t, r, "x-hooks")
	doc.Root().Remove(el)

	want := []string{"connect state=0", "render", "disconnect"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestPanickingHooksAreContained(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-panic", Definition{
		Template: textTemplate("<p>ok</p>"),
		OnConnect: func(inst *Instance) {
			panic("connect hook exploded")
		},
		OnPropertyChange: func(inst *Instance, name string, old, v any) bool {
			panic("change hook exploded")
		},
		Props: map[string]Prop{"variant": {Kind: String}},
	})
	_, el, inst := mountNew(t, r, "x-panic")

	// The connect hook panicked, yet the render still happened.
	if got := shadowHTML(t, el); got != "<p>ok</p>" {
		t.Errorf("shadow = %q", got)
	}
	// A panicking change hook counts as unhandled: the render proceeds.
	inst.Set("variant", "x")
	if got := inst.GetString("variant"); got != "x" {
		t.Errorf("variant = %q", got)
	}
}

func TestGetNumberIsNaNForNonNumeric(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-num", Definition{
		Template: textTemplate("<p></p>"),
		Props:    map[string]Prop{"label": {Kind: String, Default: "hi"}},
	})
	_, _, inst := mountNew(t, r, "x-num")

	if got := inst.GetNumber("label"); !math.IsNaN(got) {
		t.Errorf("GetNumber on a string = %v, want NaN", got)
	}
}

func TestPropsReturnsACopy(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-copy", Definition{
		Template: textTemplate("<p></p>"),
		Props:    map[string]Prop{"variant": {Kind: String, Default: "plain"}},
	})
	_, _, inst := mountNew(t, r, "x-copy")

	snapshot := inst.Props()
	snapshot["variant"] = "mutated"
	if got := inst.GetString("variant"); got != "plain" {
		t.Errorf("mutating the snapshot leaked into the instance: %q", got)
	}
}

func TestInstanceIDsAreUnique(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-id", Definition{Template: textTemplate("<p></p>")})
	doc := r.NewDocument()
	a, _ := InstanceOf(doc.CreateElement("x-id"))
	b, _ := InstanceOf(doc.CreateElement("x-id"))

	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("ids %q and %q should be distinct and non-empty", a.ID(), b.ID())
	}
}
