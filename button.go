package golem

import (
	"fmt"
	"html"

	"github.com/germtb/golem/attrs"
	"github.com/germtb/golem/dom"
)

// ButtonTag is the tag name of the built-in button element.
const ButtonTag = "golem-button"

// PressEvent bubbles from a button host on every accepted press, with
// the updated press count as detail.
const PressEvent = "golem-press"

const buttonStyles = `
button {
	font: inherit;
	padding: 0.5em 1em;
	border: 1px solid currentColor;
	border-radius: 4px;
	cursor: pointer;
}
button.primary {
	background: #2563eb;
	border-color: #2563eb;
	color: #fff;
}
button.danger {
	background: #dc2626;
	border-color: #dc2626;
	color: #fff;
}
button[disabled] {
	opacity: 0.5;
	cursor: default;
}
.count {
	margin-left: 0.5em;
	font-variant-numeric: tabular-nums;
}
`

func init() {
	Define(ButtonTag, Definition{
		Props: map[string]Prop{
			"variant":  {Kind: String, Default: "default", Reflect: true},
			"disabled": {Kind: Bool, Reflect: true},
			"label":    {Kind: String, Default: ""},
		},
		InitialState:  0,
		SnapshotState: true,
		Styles:        buttonStyles,
		Template:      buttonTemplate,
		Events: map[string]map[string]string{
			"button": {dom.ClickEvent: "press"},
		},
		Methods: map[string]Method{
			"press": press,
		},
		// Label changes on a disabled button keep the current rendering.
		OnPropertyChange: func(inst *Instance, name string, old, val any) bool {
			return name == "label" && inst.GetBool("disabled")
		},
	})
}

func buttonTemplate(stateVal any, props map[string]any) string {
	variant, _ := props["variant"].(string)
	label, _ := props["label"].(string)
	disabled := ""
	if d, _ := props["disabled"].(bool); d {
		disabled = " disabled"
	}

	markup := fmt.Sprintf(`<button class=%q%s><span class="label">%s</span>`,
		variant, disabled, html.EscapeString(label))
	if count := PressCount(stateVal); count > 0 {
		markup += fmt.Sprintf(`<span class="count">%d</span>`, count)
	}
	return markup + `</button>`
}

// press increments the counter and re-emits the press as a bubbling
// event from the host. Disabled buttons swallow the press.
func press(inst *Instance, ev *dom.Event, matched *dom.Element) {
	if inst.GetBool("disabled") {
		return
	}
	count := 0
	inst.UpdateState(func(prev any) any {
		count = PressCount(prev) + 1
		return count
	})
	dom.Dispatch(inst.Element(), dom.NewEvent(PressEvent, count))
}

// PressCount reads a button state value as its press count. The
// snapshot codec may hand the counter back in any integer width; a
// value that is not a number counts as zero.
func PressCount(stateVal any) int {
	if f, ok := attrs.AsNumber(stateVal); ok {
		return int(f)
	}
	return 0
}
