package dom

import (
	"testing"
)

func TestDispatchBubbles(t *testing.T) {
	outer := NewElement("div")
	mid := NewElement("section")
	inner := NewElement("button")
	outer.Append(mid)
	mid.Append(inner)

	var order []string
	Attach(inner, ClickEvent, func(ev *Event) { order = append(order, "inner") })
	Attach(mid, ClickEvent, func(ev *Event) { order = append(order, "mid") })
	Attach(outer, ClickEvent, func(ev *Event) { order = append(order, "outer") })

	ev := NewEvent(ClickEvent, nil)
	Dispatch(inner, ev)

	want := []string{"inner", "mid", "outer"}
	if len(order) != 3 || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Errorf("order = %v, want %v", order, want)
	}
	if ev.Target != inner {
		t.Error("Target should stay the dispatch origin")
	}
}

func TestDispatchCurrentTargetTracksBubbling(t *testing.T) {
	parent := NewElement("div")
	child := NewElement("button")
	parent.Append(child)

	var targets, currents []*Element
	record := func(ev *Event) {
		targets = append(targets, ev.Target)
		currents = append(currents, ev.CurrentTarget)
	}
	Attach(child, ClickEvent, record)
	Attach(parent, ClickEvent, record)

	Dispatch(child, NewEvent(ClickEvent, nil))

	if targets[0] != child || targets[1] != child {
		t.Error("Target changed during bubbling")
	}
	if currents[0] != child || currents[1] != parent {
		t.Error("CurrentTarget should follow the bubbling element")
	}
}

func TestStopPropagation(t *testing.T) {
	parent := NewElement("div")
	child := NewElement("button")
	parent.Append(child)

	parentRuns := 0
	Attach(child, ClickEvent, func(ev *Event) { ev.StopPropagation() })
	Attach(parent, ClickEvent, func(ev *Event) { parentRuns++ })

	Dispatch(child, NewEvent(ClickEvent, nil))

	if parentRuns != 0 {
		t.Errorf("parent listener ran %d times after StopPropagation", parentRuns)
	}
}

func TestDispatchCrossesShadowToHost(t *testing.T) {
	doc := NewDocument(Options{})
	host := doc.CreateElement("x-panel")
	doc.Mount(host)
	sr := host.AttachShadow()
	btn := doc.CreateElement("button")
	sr.Append(btn)

	var order []string
	Attach(btn, ClickEvent, func(ev *Event) { order = append(order, "button") })
	Attach(host, ClickEvent, func(ev *Event) { order = append(order, "host") })
	Attach(doc.Root(), ClickEvent, func(ev *Event) { order = append(order, "root") })

	Dispatch(btn, NewEvent(ClickEvent, nil))

	if len(order) != 3 || order[0] != "button" || order[1] != "host" || order[2] != "root" {
		t.Errorf("order = %v, want [button host root]", order)
	}
}

func TestAttachCleanupIsIdempotent(t *testing.T) {
	el := NewElement("button")
	aRuns, bRuns := 0, 0
	cleanupA := Attach(el, ClickEvent, func(ev *Event) { aRuns++ })
	Attach(el, ClickEvent, func(ev *Event) { bRuns++ })

	cleanupA()
	cleanupA() // must not disturb the remaining listener

	Dispatch(el, NewEvent(ClickEvent, nil))

	if aRuns != 0 {
		t.Errorf("removed listener ran %d times", aRuns)
	}
	if bRuns != 1 {
		t.Errorf("remaining listener ran %d times, want 1", bRuns)
	}
}

func TestDetachDuringDispatch(t *testing.T) {
	el := NewElement("button")
	var cleanupB func()
	aRuns, bRuns := 0, 0
	Attach(el, ClickEvent, func(ev *Event) {
		aRuns++
		cleanupB()
	})
	cleanupB = Attach(el, ClickEvent, func(ev *Event) { bRuns++ })

	Dispatch(el, NewEvent(ClickEvent, nil))

	if aRuns != 1 {
		t.Errorf("first listener ran %d times", aRuns)
	}
	if bRuns != 0 {
		t.Errorf("listener detached mid-pass still ran %d times", bRuns)
	}
}

func TestPreventDefault(t *testing.T) {
	el := NewElement("form")
	Attach(el, SubmitEvent, func(ev *Event) { ev.PreventDefault() })

	ev := NewEvent(SubmitEvent, nil)
	Dispatch(el, ev)

	if !ev.DefaultPrevented() {
		t.Error("DefaultPrevented should be true")
	}
}

func TestDispatchCarriesDetail(t *testing.T) {
	el := NewElement("button")
	var got any
	Attach(el, "custom", func(ev *Event) { got = ev.Detail })

	Dispatch(el, NewEvent("custom", 42))

	if got != 42 {
		t.Errorf("Detail = %v, want 42", got)
	}
}
