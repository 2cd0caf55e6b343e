package golem

import (
	"context"
	"fmt"
	"log"

	"github.com/germtb/golem/css"
	"github.com/germtb/golem/dom"
	"github.com/germtb/golem/util"
)

// renderPayload is the immutable product of the preparation phase: the
// parsed content, the style text, and the sequence number that decides
// whether the payload is still the latest by commit time.
type renderPayload struct {
	seq       uint64
	nodes     []*dom.Element
	styleText string
	sheets    []*css.Stylesheet
}

// Render evaluates the template against current state and properties
// and replaces the shadow content with the result. Safe to call any
// number of times while connected; on a disconnected instance it is a
// no-op.
//
// Rendering is two-phase. Preparation runs synchronously on the calling
// goroutine: it bumps the instance's render sequence, snapshots state
// and properties, evaluates the template and style text, and detaches
// the previous render's delegated listeners. The commit replaces the
// shadow content, adopts stylesheets, and attaches listeners — but only
// if the instance is still connected and no newer render has started in
// between. When the shared stylesheet is already cached (or none is
// declared) both phases run synchronously; a cache miss moves the
// commit behind the fetch on a document-tracked goroutine.
func (inst *Instance) Render() {
	p, ok := inst.prepare()
	if !ok {
		return
	}

	url := inst.def.StylesheetURL
	if url == "" {
		inst.resolveSheets(p, nil)
		inst.commit(p)
		return
	}

	mgr := inst.reg.sheetManager()
	if sheet, hit := mgr.Peek(url); hit {
		inst.resolveSheets(p, sheet)
		inst.commit(p)
		return
	}
	inst.doc.RunAsync(func() {
		// A failed fetch is logged by the cache and degrades to
		// rendering without the shared sheet.
		sheet, _ := mgr.Ensure(context.Background(), url)
		inst.resolveSheets(p, sheet)
		inst.commit(p)
	})
}

// prepare is the synchronous phase. It returns false when the instance
// cannot render: disconnected, state not yet initialized, or the
// template panicked (logged; the previous content stays up).
func (inst *Instance) prepare() (*renderPayload, bool) {
	inst.mu.Lock()
	if !inst.connected || inst.store == nil {
		inst.mu.Unlock()
		return nil, false
	}
	inst.seq++
	p := &renderPayload{seq: inst.seq}
	inst.mu.Unlock()

	stateVal := inst.store.Get()
	props := inst.Props()

	nodes, err := inst.evalTemplate(stateVal, props)
	if err != nil {
		return nil, false
	}
	p.nodes = nodes
	p.styleText = inst.evalStyles(stateVal, props)

	inst.mu.Lock()
	cleanups := inst.cleanups
	inst.cleanups = nil
	inst.mu.Unlock()
	for _, fn := range cleanups {
		fn()
	}
	return p, true
}

// resolveSheets fills the payload's adoption list: the shared sheet
// first (when one resolved), then the compiled component style text, so
// component declarations come later in the cascade.
func (inst *Instance) resolveSheets(p *renderPayload, shared *css.Stylesheet) {
	if shared != nil {
		p.sheets = append(p.sheets, shared)
	}
	if p.styleText == "" {
		return
	}
	sheet, err := css.Parse(p.styleText)
	if err != nil {
		log.Printf("golem: <%s> dropping component styles: %v", inst.def.tag, err)
		return
	}
	p.sheets = append(p.sheets, sheet)
}

// commit swaps the payload in, gated on liveness: the instance must
// still be connected and the payload's sequence must still be the
// latest, otherwise the payload is abandoned without touching the tree.
//
// The content swap can re-enter the renderer on the same goroutine —
// a nested component connected by the swap may write state that reaches
// back into this instance. Re-entrant commits are stashed and applied
// after the in-progress swap finishes, so swaps never interleave.
func (inst *Instance) commit(p *renderPayload) {
	inst.mu.Lock()
	if !inst.connected || p.seq != inst.seq {
		inst.mu.Unlock()
		return
	}
	if inst.committing {
		inst.pending = p
		inst.mu.Unlock()
		return
	}
	inst.committing = true
	inst.mu.Unlock()

	for {
		inst.apply(p)

		inst.mu.Lock()
		next := inst.pending
		inst.pending = nil
		if next == nil || !inst.connected || next.seq != inst.seq {
			inst.committing = false
			inst.mu.Unlock()
			return
		}
		inst.mu.Unlock()
		p = next
	}
}

func (inst *Instance) apply(p *renderPayload) {
	shadow := inst.el.AttachShadow()
	shadow.SetAdoptedSheets(p.sheets)
	shadow.ReplaceChildren(p.nodes...)

	cleanups := inst.wireEvents(shadow)
	inst.mu.Lock()
	inst.cleanups = append(inst.cleanups, cleanups...)
	inst.mu.Unlock()
}

// wireEvents attaches the definition's delegated listeners against the
// committed content. Handler names resolve against the definition's
// methods at attach time; a name with no method logs a diagnostic and
// that wiring is skipped, the rest still attach.
func (inst *Instance) wireEvents(root *dom.Element) []func() {
	var cleanups []func()
	for _, w := range inst.def.wirings {
		method, ok := inst.def.Methods[w.method]
		if !ok {
			log.Printf("golem: <%s> has no method %q for %s on %s", inst.def.tag, w.method, w.event, w.selector)
			continue
		}
		for _, matched := range w.selector.FindAll(root) {
			handler := func(ev *dom.Event) {
				defer func() {
					_ = util.PanicHandler(fmt.Sprintf("<%s> method %s", inst.def.tag, w.method), recover())
				}()
				method(inst, ev, matched)
			}
			cleanups = append(cleanups, dom.Attach(matched, w.event, handler))
		}
	}
	return cleanups
}
