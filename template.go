package golem

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/germtb/golem/dom"
	"github.com/germtb/golem/util"
)

// evalTemplate runs the definition's template form against the state
// and property snapshots and returns the content to commit. Template
// code is user code: panics are caught, logged, and abort the render,
// leaving the previous content up.
func (inst *Instance) evalTemplate(stateVal any, props map[string]any) (nodes []*dom.Element, err error) {
	defer func() {
		if rerr := util.PanicHandler(fmt.Sprintf("<%s> template", inst.def.tag), recover()); rerr != nil {
			nodes, err = nil, rerr
		}
	}()

	switch {
	case inst.def.Template != nil:
		nodes, err = dom.Parse(inst.def.Template(stateVal, props))
	case inst.def.TemplateNodes != nil:
		nodes = nodesToDom(inst.def.TemplateNodes(stateVal, props))
	case inst.def.TemplateHTML != nil:
		var sb strings.Builder
		err = inst.def.TemplateHTML(stateVal, props).Render(context.Background(), &sb)
		if err == nil {
			nodes, err = dom.Parse(sb.String())
		}
	}
	if err != nil {
		log.Printf("golem: <%s> template failed: %v", inst.def.tag, err)
		return nil, err
	}
	return nodes, nil
}

// evalStyles returns this render's component style text. A panicking
// StylesFunc degrades to no component styles.
func (inst *Instance) evalStyles(stateVal any, props map[string]any) (text string) {
	if inst.def.StylesFunc == nil {
		return inst.def.Styles
	}
	defer func() {
		if err := util.PanicHandler(fmt.Sprintf("<%s> styles", inst.def.tag), recover()); err != nil {
			text = ""
		}
	}()
	return inst.def.StylesFunc(stateVal, props)
}
