package dom

import (
	"sync/atomic"
)

// Event is a dispatched occurrence. Target is the element it was
// dispatched on; CurrentTarget is the element whose listener is
// currently running as the event bubbles.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element
	Detail        any

	stopped          bool
	defaultPrevented bool
}

// NewEvent creates an event carrying detail.
func NewEvent(eventType string, detail any) *Event {
	return &Event{Type: eventType, Detail: detail}
}

// StopPropagation prevents the event from bubbling past the current
// element. Listeners already attached to the current element still run.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

// PreventDefault marks the event's default action as suppressed.
func (ev *Event) PreventDefault() {
	ev.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

// Handler is an event listener.
type Handler func(ev *Event)

type listenerEntry struct {
	fn      Handler
	removed atomic.Bool
}

// Attach registers fn for the given event type on el and returns a
// cleanup function. The cleanup is idempotent: calling it twice is a
// no-op and never disturbs other listeners.
func Attach(el *Element, eventType string, fn Handler) func() {
	entry := &listenerEntry{fn: fn}
	el.lmu.Lock()
	if el.listeners == nil {
		el.listeners = make(map[string][]*listenerEntry)
	}
	el.listeners[eventType] = append(el.listeners[eventType], entry)
	el.lmu.Unlock()

	return func() {
		if !entry.removed.CompareAndSwap(false, true) {
			return
		}
		el.lmu.Lock()
		entries := el.listeners[eventType]
		for i, cur := range entries {
			if cur == entry {
				el.listeners[eventType] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		el.lmu.Unlock()
	}
}

// Dispatch delivers ev to el's listeners and bubbles it up the tree,
// crossing shadow boundaries to the host, until the root is reached or
// a listener stops propagation. The listener list of each element is
// snapshotted before delivery, so a listener detaching itself (or its
// peers detaching it) does not disturb the in-flight pass.
func Dispatch(el *Element, ev *Event) {
	if ev.Target == nil {
		ev.Target = el
	}
	cur := el
	for cur != nil {
		cur.deliver(ev)
		if ev.stopped {
			return
		}
		switch {
		case cur.parent != nil:
			cur = cur.parent
		case cur.host != nil:
			cur = cur.host
		default:
			cur = nil
		}
	}
}

func (e *Element) deliver(ev *Event) {
	e.lmu.Lock()
	entries := append([]*listenerEntry(nil), e.listeners[ev.Type]...)
	e.lmu.Unlock()

	ev.CurrentTarget = e
	for _, entry := range entries {
		if entry.removed.Load() {
			continue
		}
		entry.fn(ev)
	}
}
